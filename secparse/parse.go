// Package secparse splits the HTML of an SEC filing into semantic elements and arranges
// them into a section tree: parts, items within parts, titles within items, and the
// text and tables of each section as leaves.
package secparse

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Kind classifies an Element.
type Kind int

const (
	KindText Kind = iota
	KindTitle
	KindTopSectionTitle
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindTopSectionTitle:
		return "top-section-title"
	case KindTable:
		return "table"
	default:
		return "text"
	}
}

// Element is one block of the document in reading order.
type Element struct {
	Kind Kind
	Text string
	// Level orders section titles: parts 0, items 1, other titles 2. Zero for text and tables.
	Level int
}

const (
	levelPart  = 0
	levelItem  = 1
	levelTitle = 2

	// maxTitleLen is the longest text still considered a heading.
	maxTitleLen = 200
)

var (
	partRe = regexp.MustCompile(`(?i)^part\s+[ivx]+\b`)
	itemRe = regexp.MustCompile(`(?i)^item\s+\d+[a-z]?\b`)
	wsRe   = regexp.MustCompile(`\s+`)
)

var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Table: true, atom.Section: true, atom.Article: true, atom.Center: true,
	atom.Blockquote: true, atom.Pre: true, atom.Body: true, atom.Html: true,
}

var skipAtoms = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Title: true,
}

// Parse reads filing HTML and returns its elements in document order.
func Parse(r io.Reader) ([]Element, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("secparse: parse html: %w", err)
	}
	var p parser
	p.walk(doc)
	return p.elements, nil
}

// ParseString is Parse for an in-memory document.
func ParseString(s string) ([]Element, error) {
	return Parse(strings.NewReader(s))
}

type parser struct {
	elements []Element
}

func (p *parser) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		if skipped(n) {
			return
		}
		if n.DataAtom == atom.Table {
			p.emitTable(n)
			return
		}
		if blockAtoms[n.DataAtom] && !hasBlockDescendant(n) {
			p.emitBlock(n)
			return
		}
	}
	// Text directly under a block that also holds nested blocks is collected per run.
	var run []*html.Node
	flush := func() {
		if len(run) > 0 {
			p.emitRun(run)
			run = nil
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (blockAtoms[c.DataAtom] || hasBlockDescendant(c)) {
			flush()
			p.walk(c)
			continue
		}
		if c.Type == html.ElementNode && skipped(c) {
			continue
		}
		if c.Type == html.TextNode || c.Type == html.ElementNode {
			run = append(run, c)
		}
	}
	flush()
}

func (p *parser) emitTable(n *html.Node) {
	var rows []string
	var visit func(*html.Node)
	visit = func(x *html.Node) {
		if x.Type == html.ElementNode && x.DataAtom == atom.Tr {
			var cells []string
			for c := x.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
					if t := normalize(textOf(c)); t != "" {
						cells = append(cells, t)
					}
				}
			}
			if len(cells) > 0 {
				rows = append(rows, strings.Join(cells, " | "))
			}
			return
		}
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	if len(rows) == 0 {
		return
	}
	p.elements = append(p.elements, Element{Kind: KindTable, Text: strings.Join(rows, "\n")})
}

func (p *parser) emitBlock(n *html.Node) {
	p.emit(normalize(textOf(n)), allBold(n, false))
}

func (p *parser) emitRun(nodes []*html.Node) {
	var b strings.Builder
	bold := true
	for _, n := range nodes {
		b.WriteString(textOf(n))
		if !allBold(n, false) {
			bold = false
		}
	}
	p.emit(normalize(b.String()), bold)
}

func (p *parser) emit(text string, bold bool) {
	if text == "" {
		return
	}
	p.elements = append(p.elements, classify(text, bold))
}

func classify(text string, bold bool) Element {
	if len(text) <= maxTitleLen {
		switch {
		case partRe.MatchString(text):
			return Element{Kind: KindTopSectionTitle, Text: text, Level: levelPart}
		case itemRe.MatchString(text):
			return Element{Kind: KindTopSectionTitle, Text: text, Level: levelItem}
		case bold:
			return Element{Kind: KindTitle, Text: text, Level: levelTitle}
		}
	}
	return Element{Kind: KindText, Text: text}
}

func skipped(n *html.Node) bool {
	if skipAtoms[n.DataAtom] || n.Data == "ix:header" {
		return true
	}
	style := strings.ToLower(strings.ReplaceAll(attr(n, "style"), " ", ""))
	return strings.Contains(style, "display:none")
}

func hasBlockDescendant(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || skipped(c) {
			continue
		}
		if blockAtoms[c.DataAtom] || hasBlockDescendant(c) {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(x *html.Node) {
		switch {
		case x.Type == html.TextNode:
			b.WriteString(x.Data)
		case x.Type == html.ElementNode && skipped(x):
			return
		case x.Type == html.ElementNode && x.DataAtom == atom.Br:
			b.WriteByte(' ')
		}
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}

// allBold reports whether every non-blank text under n is rendered bold.
func allBold(n *html.Node, inherited bool) bool {
	switch n.Type {
	case html.TextNode:
		return inherited || normalize(n.Data) == ""
	case html.ElementNode:
		if skipped(n) {
			return true
		}
		bold := inherited || isBoldElement(n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !allBold(c, bold) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func isBoldElement(n *html.Node) bool {
	if n.DataAtom == atom.B || n.DataAtom == atom.Strong {
		return true
	}
	if isHeading(n.DataAtom) {
		return true
	}
	style := strings.ToLower(strings.ReplaceAll(attr(n, "style"), " ", ""))
	for _, w := range []string{"font-weight:bold", "font-weight:700", "font-weight:800", "font-weight:900", "font-weight:600"} {
		if strings.Contains(style, w) {
			return true
		}
	}
	return false
}

func isHeading(a atom.Atom) bool {
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}
