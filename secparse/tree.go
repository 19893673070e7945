package secparse

import (
	"strings"
)

// Node is one element of a section tree.
type Node struct {
	Element
	Children []*Node
}

// Descendants returns every node below n in document order.
func (n *Node) Descendants() []*Node {
	var out []*Node
	var visit func(*Node)
	visit = func(x *Node) {
		for _, c := range x.Children {
			out = append(out, c)
			visit(c)
		}
	}
	visit(n)
	return out
}

// SectionText joins the text of n and all its descendants with newlines.
func (n *Node) SectionText() string {
	desc := n.Descendants()
	texts := make([]string, 0, len(desc)+1)
	texts = append(texts, n.Text)
	for _, d := range desc {
		texts = append(texts, d.Text)
	}
	return strings.Join(texts, "\n")
}

// Tree is a forest of section nodes in document order.
type Tree struct {
	Roots []*Node
}

// BuildTree nests elements: a section title opens a section that lasts until the next
// title of the same or a higher rank; text and tables belong to the innermost open section.
// Elements before the first title become roots.
func BuildTree(elements []Element) *Tree {
	t := &Tree{}
	var stack []*Node
	attach := func(n *Node) {
		if len(stack) == 0 {
			t.Roots = append(t.Roots, n)
			return
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}
	for _, el := range elements {
		n := &Node{Element: el}
		if el.Kind == KindTopSectionTitle || el.Kind == KindTitle {
			for len(stack) > 0 && stack[len(stack)-1].Level >= el.Level {
				stack = stack[:len(stack)-1]
			}
			attach(n)
			stack = append(stack, n)
			continue
		}
		attach(n)
	}
	return t
}

// Nodes returns every node of the tree in document order.
func (t *Tree) Nodes() []*Node {
	var out []*Node
	for _, r := range t.Roots {
		out = append(out, r)
		out = append(out, r.Descendants()...)
	}
	return out
}

// FirstSection returns the first top-section title whose text starts with prefix,
// compared case-insensitively.
func (t *Tree) FirstSection(prefix string) (*Node, bool) {
	for _, n := range t.Nodes() {
		if n.Kind != KindTopSectionTitle {
			continue
		}
		if len(n.Text) >= len(prefix) && strings.EqualFold(n.Text[:len(prefix)], prefix) {
			return n, true
		}
	}
	return nil, false
}
