package reconcile

import (
	"testing"

	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/vdom"
)

func (h *harness) markup(s string) {
	h.t.Helper()
	if err := h.target.SetInnerHTML(s); err != nil {
		h.t.Fatalf("SetInnerHTML() error = %v", err)
	}
	h.doc.ResetMutations()
}

func (h *harness) merge(v *vdom.VNode) {
	h.t.Helper()
	if err := h.e.Merge(h.target, v); err != nil {
		h.t.Fatalf("Merge() error = %v", err)
	}
}

func TestMergeRoundTrip(t *testing.T) {
	h := newHarness(t, Options{})
	h.markup(`<div id="app"><ul><li>a</li><li>b</li></ul><input type="text" value="x"/></div>`)
	app := h.target.FirstChild()

	h.merge(vdom.Div(vdom.ID("app"), list("a", "b"), vdom.Input(vdom.Type("text"), vdom.Value("x"))))

	if got := h.doc.CountOps(dom.OpCreate); got != 0 {
		t.Errorf("creates = %d, want 0", got)
	}
	if got := h.doc.CountOps(dom.OpInsert); got != 0 {
		t.Errorf("inserts = %d, want 0", got)
	}
	if h.target.FirstChild() != app {
		t.Error("root element was replaced")
	}
}

func TestMergeRepairsMarkup(t *testing.T) {
	h := newHarness(t, Options{})
	h.markup(`<div title="old" data-x="1"><p>stale</p><span>x</span></div>`)
	div := h.target.FirstChild()
	span := div.Children()[1]

	h.merge(vdom.Div(vdom.TitleAttr("new"), vdom.Span(vdom.Text("x")), vdom.Button(vdom.Text("go"))))

	if got, want := h.html(), `<div title="new"><span>x</span><button>go</button></div>`; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if div.Children()[0] != span {
		t.Error("span was not adopted")
	}
}

func TestMergeText(t *testing.T) {
	h := newHarness(t, Options{})
	h.markup(`<p>hello</p>`)
	text := h.target.FirstChild().FirstChild()

	h.merge(vdom.P(vdom.Text("hel"), vdom.Text("lo world")))

	if got := text.Data(); got != "hello world" {
		t.Errorf("Data() = %q, want %q", got, "hello world")
	}
	if h.target.FirstChild().FirstChild() != text {
		t.Error("text node was replaced")
	}
}

func TestMergeComponent(t *testing.T) {
	h := newHarness(t, Options{})
	h.markup(`<section><span>a</span></section>`)
	var c *labelled

	h.merge(vdom.H("section", vdom.Comp(newLabelled(&c), vdom.Props{"text": "a"})))

	if got := h.doc.CountOps(dom.OpCreate); got != 0 {
		t.Errorf("creates = %d, want 0", got)
	}
	if c == nil || c.Node("label") == nil {
		t.Fatal("component did not adopt its span")
	}
	if c.attached != 1 {
		t.Errorf("attached = %d, want 1", c.attached)
	}
}

func TestMergeThenUpdate(t *testing.T) {
	h := newHarness(t, Options{})
	h.markup(`<ul><li>a</li><li>b</li></ul>`)
	h.merge(list("a", "b"))
	first := h.target.FirstChild().FirstChild()

	h.update(list("b"))

	if got, want := h.html(), "<ul><li>b</li></ul>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if first.Connected() {
		t.Error("removed item still connected")
	}
}

func TestMergeEvents(t *testing.T) {
	h := newHarness(t, Options{})
	h.markup(`<button>go</button>`)
	clicks := 0
	h.merge(vdom.Button(vdom.OnClick(func() { clicks++ }), vdom.Text("go")))

	h.target.FirstChild().Click()
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
}
