package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SVGNamespace is the namespace URI of SVG elements.
const SVGNamespace = "http://www.w3.org/2000/svg"

// Document is a live HTML document.
type Document struct {
	root  *html.Node
	nodes map[*html.Node]*Node

	active *Node

	log         []Mutation
	muted       int
	observers   map[int]func(Mutation)
	observerSeq int

	// SupportsPassive reports whether listeners may be registered as passive.
	// It stands in for the browser feature test of the same name.
	SupportsPassive bool
}

// NewDocument creates an empty document: <html><head></head><body></body></html>.
func NewDocument() *Document {
	root := &html.Node{Type: html.DocumentNode}
	htmlEl := newElement("html", "")
	root.AppendChild(htmlEl)
	htmlEl.AppendChild(newElement("head", ""))
	htmlEl.AppendChild(newElement("body", ""))
	return newDocument(root)
}

func newDocument(root *html.Node) *Document {
	return &Document{
		root:            root,
		nodes:           make(map[*html.Node]*Node),
		observers:       make(map[int]func(Mutation)),
		SupportsPassive: true,
	}
}

func newElement(tag, namespace string) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:      html.ElementNode,
		Data:      tag,
		DataAtom:  atom.Lookup([]byte(tag)),
		Namespace: namespace,
	}
}

// wrap returns the Node for h, creating it on first use.
func (d *Document) wrap(h *html.Node) *Node {
	if h == nil {
		return nil
	}
	if n, ok := d.nodes[h]; ok {
		return n
	}
	n := &Node{doc: d, h: h}
	d.nodes[h] = n
	return n
}

// Root returns the document node.
func (d *Document) Root() *Node {
	return d.wrap(d.root)
}

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *Node {
	return d.findChild(d.root, "html")
}

// Head returns the <head> element.
func (d *Document) Head() *Node {
	if el := d.DocumentElement(); el != nil {
		return d.findChild(el.h, "head")
	}
	return nil
}

// Body returns the <body> element.
func (d *Document) Body() *Node {
	if el := d.DocumentElement(); el != nil {
		return d.findChild(el.h, "body")
	}
	return nil
}

func (d *Document) findChild(parent *html.Node, tag string) *Node {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return d.wrap(c)
		}
	}
	return nil
}

// CreateElement creates a detached HTML element.
func (d *Document) CreateElement(tag string) *Node {
	return d.CreateElementNS("", tag)
}

// CreateElementNS creates a detached element in the given namespace.
// Both the SVG namespace URI and the short form "svg" are accepted.
func (d *Document) CreateElementNS(namespace, tag string) *Node {
	ns := namespace
	if ns == SVGNamespace {
		ns = "svg"
	}
	n := d.wrap(newElement(tag, ns))
	d.record(Mutation{Op: OpCreate, Target: n})
	return n
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(text string) *Node {
	n := d.wrap(&html.Node{Type: html.TextNode, Data: text})
	d.record(Mutation{Op: OpCreate, Target: n})
	return n
}

// ActiveElement returns the focused element, or nil.
func (d *Document) ActiveElement() *Node {
	if d.active != nil && !d.active.Connected() {
		d.active = nil
	}
	return d.active
}

// Silently runs fn without recording mutations. It is used when building
// fixtures that should not count against a test's mutation budget.
func (d *Document) Silently(fn func()) {
	d.muted++
	defer func() { d.muted-- }()
	fn()
}
