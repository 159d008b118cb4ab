package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// NodeType identifies the kind of a Node.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	DocumentNode
	OtherNode
)

// Node is a node of a live Document.
type Node struct {
	doc *Document
	h   *html.Node

	props     map[string]any
	listeners map[string][]*Registration
	scrolls   int
}

// Document returns the owning document.
func (n *Node) Document() *Document {
	return n.doc
}

// HTML exposes the backing x/net/html node. Changes made through it bypass
// the mutation log.
func (n *Node) HTML() *html.Node {
	return n.h
}

// Type returns the node type.
func (n *Node) Type() NodeType {
	switch n.h.Type {
	case html.ElementNode:
		return ElementNode
	case html.TextNode:
		return TextNode
	case html.CommentNode:
		return CommentNode
	case html.DocumentNode:
		return DocumentNode
	default:
		return OtherNode
	}
}

// IsElement reports whether n is an element.
func (n *Node) IsElement() bool {
	return n != nil && n.h.Type == html.ElementNode
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n != nil && n.h.Type == html.TextNode
}

// Tag returns the lower-case tag name of an element, or "" for other nodes.
func (n *Node) Tag() string {
	if n.h.Type != html.ElementNode {
		return ""
	}
	return n.h.Data
}

// Namespace returns the element namespace ("" for HTML, "svg", "math").
func (n *Node) Namespace() string {
	return n.h.Namespace
}

// Describe returns a short human-readable label such as <li> or #text "a".
func (n *Node) Describe() string {
	if n == nil {
		return "<nil>"
	}
	switch n.h.Type {
	case html.ElementNode:
		return "<" + n.h.Data + ">"
	case html.TextNode:
		return fmt.Sprintf("#text %q", n.h.Data)
	case html.DocumentNode:
		return "#document"
	case html.CommentNode:
		return "#comment"
	default:
		return "#node"
	}
}

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node { return n.doc.wrap(n.h.Parent) }

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node { return n.doc.wrap(n.h.FirstChild) }

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node { return n.doc.wrap(n.h.LastChild) }

// NextSibling returns the next sibling, or nil.
func (n *Node) NextSibling() *Node { return n.doc.wrap(n.h.NextSibling) }

// PrevSibling returns the previous sibling, or nil.
func (n *Node) PrevSibling() *Node { return n.doc.wrap(n.h.PrevSibling) }

// Children returns the child nodes in order.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.h.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, n.doc.wrap(c))
	}
	return out
}

// ElementChildren returns the element children in order.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for c := n.h.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, n.doc.wrap(c))
		}
	}
	return out
}

// Contains reports whether other is n or a descendant of n.
func (n *Node) Contains(other *Node) bool {
	for h := other.h; h != nil; h = h.Parent {
		if h == n.h {
			return true
		}
	}
	return false
}

// Connected reports whether n is attached to its document.
func (n *Node) Connected() bool {
	for h := n.h; h != nil; h = h.Parent {
		if h == n.doc.root {
			return true
		}
	}
	return false
}

// AppendChild appends child, moving it if it is already attached.
func (n *Node) AppendChild(child *Node) {
	n.InsertBefore(child, nil)
}

// InsertBefore inserts child before ref. A nil ref appends. A child that is
// already attached somewhere is moved.
func (n *Node) InsertBefore(child, ref *Node) {
	if child == n || child.Contains(n) {
		panic(fmt.Sprintf("dom: cannot insert %s into its own subtree", child.Describe()))
	}
	if ref != nil && ref.h.Parent != n.h {
		panic(fmt.Sprintf("dom: %s is not a child of %s", ref.Describe(), n.Describe()))
	}
	if ref == child {
		return
	}
	if p := child.h.Parent; p != nil {
		p.RemoveChild(child.h)
	}
	var refH *html.Node
	if ref != nil {
		refH = ref.h
	}
	n.h.InsertBefore(child.h, refH)
	n.doc.record(Mutation{Op: OpInsert, Target: child, Parent: n})
}

// RemoveChild detaches child from n.
func (n *Node) RemoveChild(child *Node) {
	if child.h.Parent != n.h {
		panic(fmt.Sprintf("dom: %s is not a child of %s", child.Describe(), n.Describe()))
	}
	n.h.RemoveChild(child.h)
	n.doc.record(Mutation{Op: OpRemove, Target: child, Parent: n})
}

// Remove detaches n from its parent, if any.
func (n *Node) Remove() {
	if n.h.Parent == nil {
		return
	}
	n.Parent().RemoveChild(n)
}

// ReplaceChildren removes every child of n and appends the given nodes.
func (n *Node) ReplaceChildren(children ...*Node) {
	for c := n.FirstChild(); c != nil; c = n.FirstChild() {
		n.RemoveChild(c)
	}
	for _, c := range children {
		n.AppendChild(c)
	}
}

// Data returns the text of a text or comment node.
func (n *Node) Data() string {
	if n.h.Type == html.TextNode || n.h.Type == html.CommentNode {
		return n.h.Data
	}
	return ""
}

// SetData replaces the text of a text node.
func (n *Node) SetData(text string) {
	if n.h.Data == text {
		return
	}
	n.h.Data = text
	n.doc.record(Mutation{Op: OpSetText, Target: n, Value: text})
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	if n.h.Type == html.TextNode {
		return n.h.Data
	}
	var b strings.Builder
	var walk func(h *html.Node)
	walk = func(h *html.Node) {
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			} else {
				walk(c)
			}
		}
	}
	walk(n.h)
	return b.String()
}

// SetTextContent replaces all children with a single text node.
func (n *Node) SetTextContent(text string) {
	if n.h.Type == html.TextNode {
		n.SetData(text)
		return
	}
	var children []*Node
	if text != "" {
		children = append(children, n.doc.CreateTextNode(text))
	}
	n.ReplaceChildren(children...)
}

// ScrollIntoView records a scroll request for n.
func (n *Node) ScrollIntoView() {
	n.scrolls++
}

// ScrollCount returns how many times ScrollIntoView was called on n.
func (n *Node) ScrollCount() int {
	return n.scrolls
}
