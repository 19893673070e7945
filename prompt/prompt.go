// Package prompt assembles the system-prompt block that lists the available tools,
// and renders templates whose literal braces are escaped by doubling.
package prompt

import (
	"strings"
)

// DefaultBase is the instruction text placed ahead of the tool list when none is configured.
const DefaultBase = `You are a financial research assistant. Answer questions about public companies
using the tools below. Call a tool whenever the answer depends on market data or filings,
cite the tool output you relied on, and say so plainly when a tool returns no data.
`

// Separator delimits tool entries in the tool list.
const Separator = "\n~~\n"

const header = "\nAvailable tools, with name, description, and calling example, delimited by ~~:\n"

// Line formats one tool entry.
func Line(name, description string) string {
	return name + " : " + description
}

// Enrich appends the tool list to base and escapes every brace in the result,
// so the block can be used as a template with Format.
func Enrich(base string, lines []string) string {
	return Escape(base + header + strings.Join(lines, Separator) + "\n\n")
}

var escaper = strings.NewReplacer("{", "{{", "}", "}}")

// Escape doubles every brace in s.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Format substitutes {name} placeholders in tmpl with vars and turns "{{" and "}}" back
// into single braces. Placeholders without a value are left as written.
func Format(tmpl string, vars map[string]string) string {
	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch {
		case c == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				b.WriteString(tmpl[i:])
				return b.String()
			}
			name := tmpl[i+1 : i+1+end]
			if v, ok := vars[name]; ok {
				b.WriteString(v)
			} else {
				b.WriteString(tmpl[i : i+2+end])
			}
			i += end + 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
