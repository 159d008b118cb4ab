package render

import (
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/registry"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// RendererConfig configures HTML output.
type RendererConfig struct {
	// Pretty indents block elements. Pretty output is not suitable for
	// Merge, which treats the added whitespace as stray text.
	Pretty bool

	// Indent is the indentation unit in pretty mode. Defaults to two spaces.
	Indent string

	// Registry resolves component labels while rendering.
	Registry *registry.Registry
}

// Renderer turns virtual trees into HTML. It mounts the tree into a scratch
// document with the reconciliation engine, so the output is exactly the
// DOM a live mount produces. Live properties such as value and checked are
// written as attributes, which lets Merge adopt the markup unchanged.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a Renderer.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders root with the default configuration.
func RenderToString(root *vdom.VNode) (string, error) {
	return NewRenderer(RendererConfig{}).RenderToString(root)
}

// RenderToString renders root to an HTML string.
func (r *Renderer) RenderToString(root *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter renders root to w. Content relocated to head or body is
// not part of the output; RenderPage includes it.
func (r *Renderer) RenderToWriter(w io.Writer, root *vdom.VNode) error {
	doc := dom.NewDocument()
	container := doc.CreateElement("div")
	doc.Body().AppendChild(container)

	h, err := r.mount(container, root)
	if err != nil {
		return err
	}
	defer h.Destroy()
	return r.WriteChildren(w, container)
}

func (r *Renderer) mount(target *dom.Node, root *vdom.VNode) (*Handle, error) {
	return Mount(MountOptions{
		Target:   target,
		Registry: r.config.Registry,
		Sync:     true,
		Append:   true,
	}, root)
}

// WriteChildren writes the children of n.
func (r *Renderer) WriteChildren(w io.Writer, n *dom.Node) error {
	sw := &writer{w: w, r: r}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		sw.node(c, 0, false)
	}
	return sw.err
}

// WriteNode writes n and its subtree.
func (r *Renderer) WriteNode(w io.Writer, n *dom.Node) error {
	sw := &writer{w: w, r: r}
	sw.node(n, 0, false)
	return sw.err
}

// writer keeps the first write error and ignores later writes.
type writer struct {
	w   io.Writer
	r   *Renderer
	err error
}

func (sw *writer) str(s string) {
	if sw.err == nil {
		_, sw.err = io.WriteString(sw.w, s)
	}
}

func (sw *writer) indent(depth int) {
	sw.str("\n")
	sw.str(strings.Repeat(sw.r.config.Indent, depth))
}

func (sw *writer) node(n *dom.Node, depth int, raw bool) {
	switch n.Type() {
	case dom.TextNode:
		if raw {
			sw.str(n.Data())
		} else {
			sw.str(escapeHTML(n.Data()))
		}
	case dom.CommentNode:
		sw.str("<!--" + n.Data() + "-->")
	case dom.ElementNode:
		sw.element(n, depth)
	}
}

func (sw *writer) element(n *dom.Node, depth int) {
	tag := n.Tag()
	sw.str("<" + tag)
	attrs := reflectProperties(n)
	names := make([]string, 0, len(attrs))
	for k := range attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		v := attrs[k]
		if booleanAttrs[k] && (v == "" || v == k) {
			sw.str(" " + k)
			continue
		}
		sw.str(" " + k + `="` + escapeAttr(v) + `"`)
	}
	sw.str(">")
	if voidElements[tag] {
		return
	}

	if tag == "textarea" {
		if v := n.Value(); v != "" {
			sw.str(escapeHTML(v) + "</textarea>")
			return
		}
	}

	pretty := sw.r.config.Pretty && !inlineElements[tag] && hasBlockChild(n)
	raw := rawTextElements[tag]
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if pretty && c.IsElement() && !inlineElements[c.Tag()] {
			sw.indent(depth + 1)
		}
		sw.node(c, depth+1, raw)
	}
	if pretty {
		sw.indent(depth)
	}
	sw.str("</" + tag + ">")
}

func hasBlockChild(n *dom.Node) bool {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.IsElement() && !inlineElements[c.Tag()] {
			return true
		}
	}
	return false
}

// reflectProperties returns n's attributes with live form state folded in.
func reflectProperties(n *dom.Node) map[string]string {
	attrs := n.Attrs()
	switch n.Tag() {
	case "input":
		if v := n.Value(); v != "" {
			attrs["value"] = v
		} else {
			delete(attrs, "value")
		}
		setBool(attrs, "checked", n.Checked())
	case "option":
		setBool(attrs, "selected", truthy(n.Property("selected")))
	}
	return attrs
}

func setBool(attrs map[string]string, name string, on bool) {
	if on {
		attrs[name] = ""
	} else {
		delete(attrs, name)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	}
	return v != nil
}

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)
)

// escapeHTML escapes text content.
func escapeHTML(s string) string { return textEscaper.Replace(s) }

// escapeAttr escapes a double-quoted attribute value.
func escapeAttr(s string) string { return attrEscaper.Replace(s) }
