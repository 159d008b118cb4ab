package dom

import (
	"bytes"
	"io"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/vdom/internal/errors"
)

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.New("E142").Wrap(err)
	}
	return newDocument(root), nil
}

// ParseString parses a full HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ParseFragment parses markup in the context of parent and returns the
// resulting detached nodes. Nothing is recorded in the mutation log.
func (d *Document) ParseFragment(parent *Node, markup string) ([]*Node, error) {
	ctx := parent.h
	if ctx.Type != html.ElementNode {
		ctx = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, errors.New("E142").Wrap(err)
	}
	out := make([]*Node, 0, len(nodes))
	for _, h := range nodes {
		out = append(out, d.wrap(h))
	}
	return out, nil
}

// SetInnerHTML replaces the children of n with parsed markup.
func (n *Node) SetInnerHTML(markup string) error {
	nodes, err := n.doc.ParseFragment(n, markup)
	if err != nil {
		return errors.New("E205").WithDetail(n.Describe()).Wrap(err)
	}
	n.ReplaceChildren(nodes...)
	return nil
}

// InnerHTML serializes the children of n.
func (n *Node) InnerHTML() string {
	var buf bytes.Buffer
	for c := n.h.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// OuterHTML serializes n itself.
func (n *Node) OuterHTML() string {
	if n.h.Type == html.DocumentNode {
		return n.InnerHTML()
	}
	var buf bytes.Buffer
	_ = html.Render(&buf, n.h)
	return buf.String()
}

// Render writes the whole document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String returns the serialized document.
func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

// QueryAll evaluates an XPath expression relative to n.
func (n *Node) QueryAll(expr string) ([]*Node, error) {
	found, err := htmlquery.QueryAll(n.h, expr)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(found))
	for _, h := range found {
		out = append(out, n.doc.wrap(h))
	}
	return out, nil
}

// Query returns the first node matching an XPath expression, or nil.
func (n *Node) Query(expr string) (*Node, error) {
	h, err := htmlquery.Query(n.h, expr)
	if err != nil {
		return nil, err
	}
	return n.doc.wrap(h), nil
}

// QueryAll evaluates an XPath expression over the whole document.
func (d *Document) QueryAll(expr string) ([]*Node, error) {
	return d.Root().QueryAll(expr)
}

// FindOne is like Query on the document root but panics on a malformed
// expression. It is meant for tests and fixtures.
func (d *Document) FindOne(expr string) *Node {
	return d.wrap(htmlquery.FindOne(d.root, expr))
}

// ByID returns the element with the given id, or nil.
func (d *Document) ByID(id string) *Node {
	var found *html.Node
	var walk func(h *html.Node)
	walk = func(h *html.Node) {
		for c := h.FirstChild; c != nil && found == nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				for _, a := range c.Attr {
					if a.Key == "id" && a.Val == id {
						found = c
						return
					}
				}
			}
			walk(c)
		}
	}
	walk(d.root)
	return d.wrap(found)
}
