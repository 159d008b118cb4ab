package render

import (
	"io"

	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// PageData describes a complete HTML document.
type PageData struct {
	// Body is mounted into the document body. Head and Body relocation
	// elements inside it land in the document head and body.
	Body *vdom.VNode

	Title string

	// Lang is the html lang attribute. Defaults to "en".
	Lang string

	Meta        []MetaTag
	Links       []LinkTag
	StyleSheets []string
	Styles      []string // inline CSS
	Scripts     []ScriptTag
}

// MetaTag is a meta element in the document head.
type MetaTag struct {
	Name      string
	Content   string
	Property  string
	HTTPEquiv string
	Charset   string
}

// LinkTag is a link element in the document head.
type LinkTag struct {
	Rel  string
	Href string
	Type string
}

// ScriptTag is a script element. Deferred and async scripts go in the
// head; the rest at the end of the body.
type ScriptTag struct {
	Src    string
	Defer  bool
	Async  bool
	Module bool
	Inline string
}

// RenderPage renders a complete HTML document to w.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	return r.writePage(w, page, func() {})
}

func (r *Renderer) writePage(w io.Writer, page PageData, flush func()) error {
	doc := dom.NewDocument()
	buildHead(doc, page)

	h, err := r.mount(doc.Body(), page.Body)
	if err != nil {
		return err
	}
	defer h.Destroy()
	for _, s := range page.Scripts {
		if !s.Defer && !s.Async {
			doc.Body().AppendChild(scriptNode(doc, s))
		}
	}

	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	sw := &writer{w: w, r: r}
	sw.str("<!DOCTYPE html>\n")
	sw.str(`<html lang="` + escapeAttr(lang) + `">`)
	sw.node(doc.Head(), 0, false)
	if sw.err != nil {
		return sw.err
	}
	flush()
	sw.node(doc.Body(), 0, false)
	sw.str("</html>\n")
	flush()
	return sw.err
}

func buildHead(doc *dom.Document, page PageData) {
	head := doc.Head()
	add := func(tag string, attrs ...string) *dom.Node {
		n := doc.CreateElement(tag)
		for i := 0; i+1 < len(attrs); i += 2 {
			if attrs[i+1] != "" {
				n.SetAttr(attrs[i], attrs[i+1])
			}
		}
		head.AppendChild(n)
		return n
	}

	add("meta", "charset", "utf-8")
	add("meta", "name", "viewport", "content", "width=device-width, initial-scale=1")
	if page.Title != "" {
		add("title").SetTextContent(page.Title)
	}
	for _, m := range page.Meta {
		add("meta", "charset", m.Charset, "name", m.Name, "property", m.Property,
			"http-equiv", m.HTTPEquiv, "content", m.Content)
	}
	for _, l := range page.Links {
		add("link", "rel", l.Rel, "href", l.Href, "type", l.Type)
	}
	for _, href := range page.StyleSheets {
		add("link", "rel", "stylesheet", "href", href)
	}
	for _, css := range page.Styles {
		add("style").SetTextContent(css)
	}
	for _, s := range page.Scripts {
		if s.Defer || s.Async {
			head.AppendChild(scriptNode(doc, s))
		}
	}
}

func scriptNode(doc *dom.Document, s ScriptTag) *dom.Node {
	n := doc.CreateElement("script")
	if s.Module {
		n.SetAttr("type", "module")
	}
	if s.Src != "" {
		n.SetAttr("src", s.Src)
	}
	if s.Defer {
		n.SetAttr("defer", "")
	}
	if s.Async {
		n.SetAttr("async", "")
	}
	if s.Inline != "" {
		n.SetTextContent(s.Inline)
	}
	return n
}
