package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/vango-dev/vdom/internal/errors"
	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/reconcile"
	"github.com/vango-dev/vdom/pkg/vdom"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type counter struct {
	vdom.Base
	n       int
	renders int
	bump    bool
}

func (c *counter) Render() *vdom.VNode {
	c.renders++
	if c.bump {
		c.bump = false
		c.n++
		c.Invalidate()
	}
	return vdom.Span(vdom.Textf("%d", c.n))
}

func newTarget() (*dom.Document, *dom.Node) {
	doc := dom.NewDocument()
	target := doc.CreateElement("main")
	doc.Body().AppendChild(target)
	return doc, target
}

type recorder struct {
	passes []string
	diags  []string
}

func (r *recorder) ObservePass(p Pass)                       { r.passes = append(r.passes, p.Kind) }
func (r *recorder) ObserveDiagnostic(d reconcile.Diagnostic) { r.diags = append(r.diags, d.Code) }

func TestRenderToString(t *testing.T) {
	tests := []struct {
		name string
		node *vdom.VNode
		want string
	}{
		{
			name: "text is escaped",
			node: vdom.P(vdom.Text("a < b & c")),
			want: "<p>a &lt; b &amp; c</p>",
		},
		{
			name: "attributes are sorted",
			node: vdom.A(vdom.Href("/x?a=1&b=2"), vdom.ID("l"), vdom.Text("go")),
			want: `<a href="/x?a=1&amp;b=2" id="l">go</a>`,
		},
		{
			name: "live properties become attributes",
			node: vdom.Input(vdom.Type("checkbox"), vdom.Value("x"), vdom.Checked(true)),
			want: `<input checked type="checkbox" value="x">`,
		},
		{
			name: "boolean attributes",
			node: vdom.Button(vdom.Disabled(), vdom.Text("b")),
			want: "<button disabled>b</button>",
		},
		{
			name: "classes and styles",
			node: vdom.Div(vdom.ClassList("a", "b"), vdom.Styles(map[string]string{"color": "red"})),
			want: `<div class="a b" style="color: red;"></div>`,
		},
		{
			name: "components render inline",
			node: vdom.Div(vdom.Comp(func() vdom.Component { return &counter{n: 3} }, nil)),
			want: "<div><span>3</span></div>",
		},
		{
			name: "fragments flatten",
			node: vdom.Fragment(vdom.Li(vdom.Text("1")), vdom.Li(vdom.Text("2"))),
			want: "<li>1</li><li>2</li>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderToString(tt.node)
			if err != nil {
				t.Fatalf("RenderToString() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RenderToString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderPretty(t *testing.T) {
	r := NewRenderer(RendererConfig{Pretty: true})
	got, err := r.RenderToString(vdom.Div(vdom.P(vdom.Span(vdom.Text("x")))))
	if err != nil {
		t.Fatalf("RenderToString() error = %v", err)
	}
	want := "<div>\n  <p><span>x</span></p>\n</div>"
	if got != want {
		t.Errorf("RenderToString() = %q, want %q", got, want)
	}
}

func TestRenderedMarkupMergesWithoutCreates(t *testing.T) {
	tree := func() *vdom.VNode {
		return vdom.Div(vdom.ID("app"),
			vdom.Ul(vdom.Li(vdom.Key(1), vdom.Text("one")), vdom.Li(vdom.Key(2), vdom.Text("two"))),
			vdom.Input(vdom.Type("checkbox"), vdom.Value("x"), vdom.Checked(true)),
			vdom.Comp(func() vdom.Component { return &counter{n: 1} }, nil),
		)
	}
	markup, err := RenderToString(tree())
	if err != nil {
		t.Fatalf("RenderToString() error = %v", err)
	}

	doc, target := newTarget()
	if err := target.SetInnerHTML(markup); err != nil {
		t.Fatalf("SetInnerHTML() error = %v", err)
	}
	doc.ResetMutations()

	h, err := Merge(target, tree(), WithSync())
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	defer h.Destroy()

	for _, op := range []dom.MutationOp{dom.OpCreate, dom.OpInsert, dom.OpRemove} {
		if got := doc.CountOps(op); got != 0 {
			t.Errorf("%v ops = %d, want 0: %v", op, got, doc.Mutations())
		}
	}
	var buf bytes.Buffer
	if err := NewRenderer(RendererConfig{}).WriteChildren(&buf, target); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != markup {
		t.Errorf("merged markup = %q, want %q", got, markup)
	}
}

func TestMountReplacesAndAppendKeeps(t *testing.T) {
	_, target := newTarget()
	if err := target.SetInnerHTML("<p>old</p>"); err != nil {
		t.Fatal(err)
	}
	h, err := Append(target, vdom.Span(), WithSync())
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if got, want := target.InnerHTML(), "<p>old</p><span></span>"; got != want {
		t.Errorf("after Append: %q, want %q", got, want)
	}
	if err := h.Destroy(); err != nil {
		t.Fatal(err)
	}
	if got, want := target.InnerHTML(), "<p>old</p>"; got != want {
		t.Errorf("after Destroy: %q, want %q", got, want)
	}

	h, err = Mount(MountOptions{Target: target, Sync: true}, vdom.Span())
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if got, want := target.InnerHTML(), "<span></span>"; got != want {
		t.Errorf("after Mount: %q, want %q", got, want)
	}
	if err := h.Destroy(); err != nil {
		t.Fatal(err)
	}
	if target.FirstChild() != nil {
		t.Errorf("target not cleared: %q", target.InnerHTML())
	}
}

func TestSyncInvalidation(t *testing.T) {
	_, target := newTarget()
	c := &counter{}
	h, err := Mount(MountOptions{Target: target, Sync: true},
		vdom.Comp(func() vdom.Component { return c }, nil))
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer h.Destroy()

	c.n = 7
	c.Invalidate()
	if got := target.InnerHTML(); got != "<span>7</span>" {
		t.Errorf("InnerHTML() = %q, want %q", got, "<span>7</span>")
	}
	if h.Rendering() {
		t.Error("Rendering() = true after a synchronous render")
	}
}

func TestSyncInvalidationDuringRenderIsQueued(t *testing.T) {
	_, target := newTarget()
	c := &counter{bump: true}
	h, err := Mount(MountOptions{Target: target, Sync: true},
		vdom.Comp(func() vdom.Component { return c }, nil))
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer h.Destroy()

	if c.renders != 2 {
		t.Errorf("renders = %d, want 2", c.renders)
	}
	if got := target.InnerHTML(); got != "<span>1</span>" {
		t.Errorf("InnerHTML() = %q, want %q", got, "<span>1</span>")
	}
}

func TestFrameScheduling(t *testing.T) {
	_, target := newTarget()
	loop := NewManualLoop()
	c := &counter{}
	h, err := Mount(MountOptions{Target: target, Loop: loop},
		vdom.Comp(func() vdom.Component { return c }, nil))
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer h.Destroy()
	loop.Drain()

	c.n = 2
	c.Invalidate()
	c.Invalidate()
	if got := target.InnerHTML(); got != "<span>0</span>" {
		t.Errorf("rendered before the frame: %q", got)
	}
	if !h.Rendering() {
		t.Error("Rendering() = false with a queued frame")
	}

	loop.Drain()
	if got := target.InnerHTML(); got != "<span>2</span>" {
		t.Errorf("InnerHTML() = %q, want %q", got, "<span>2</span>")
	}
	if c.renders != 2 {
		t.Errorf("renders = %d, want 2", c.renders)
	}
	if h.Rendering() {
		t.Error("Rendering() = true after the loop drained")
	}
}

func TestIdlePhaseRunsRerequestedRenders(t *testing.T) {
	_, target := newTarget()
	loop := NewManualLoop()
	c := &counter{}
	h, err := Mount(MountOptions{Target: target, Loop: loop},
		vdom.Comp(func() vdom.Component { return c }, nil))
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer h.Destroy()
	loop.Drain()

	c.bump = true
	c.Invalidate()
	if n := loop.RunFrame(); n != 1 {
		t.Fatalf("RunFrame() = %d, want 1", n)
	}
	if c.renders != 2 {
		t.Fatalf("renders after frame = %d, want 2", c.renders)
	}
	loop.RunIdle()

	if c.renders != 3 {
		t.Errorf("renders after idle = %d, want 3", c.renders)
	}
	if got := target.InnerHTML(); got != "<span>1</span>" {
		t.Errorf("InnerHTML() = %q, want %q", got, "<span>1</span>")
	}
	if h.Rendering() {
		t.Error("Rendering() = true after the idle phase")
	}

	// The frame queued during the render finds nothing left to do.
	loop.Drain()
	if c.renders != 3 {
		t.Errorf("renders after drain = %d, want 3", c.renders)
	}
}

func TestFlush(t *testing.T) {
	_, target := newTarget()
	loop := NewManualLoop()
	c := &counter{}
	h, err := Mount(MountOptions{Target: target, Loop: loop},
		vdom.Comp(func() vdom.Component { return c }, nil))
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer h.Destroy()

	c.n = 4
	c.Invalidate()
	if err := h.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := target.InnerHTML(); got != "<span>4</span>" {
		t.Errorf("InnerHTML() = %q, want %q", got, "<span>4</span>")
	}
}

func TestDeferredRunsInIdlePhase(t *testing.T) {
	_, target := newTarget()
	loop := NewManualLoop()
	width := 10
	h, err := Mount(MountOptions{Target: target, Loop: loop},
		vdom.Deferred("div", func() vdom.Props { return vdom.Props{"data-width": width} }))
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer h.Destroy()

	width = 20
	loop.Drain()
	if got, _ := target.FirstChild().Attr("data-width"); got != "20" {
		t.Errorf("data-width = %q, want %q", got, "20")
	}
}

func TestTickerLoop(t *testing.T) {
	_, target := newTarget()
	c := &counter{}
	h, err := Mount(MountOptions{Target: target, FrameInterval: time.Millisecond},
		vdom.Comp(func() vdom.Component { return c }, nil))
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}

	c.n = 9
	c.Invalidate()

	var got string
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.Do(func() { got = target.InnerHTML() })
		if got == "<span>9</span>" {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if got != "<span>9</span>" {
		t.Errorf("InnerHTML() = %q, want %q", got, "<span>9</span>")
	}
	if err := h.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
}

func TestDestroy(t *testing.T) {
	_, target := newTarget()
	c := &counter{}
	h, err := Mount(MountOptions{Target: target, Sync: true},
		vdom.Comp(func() vdom.Component { return c }, nil))
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if err := h.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}

	c.Invalidate()
	if c.renders != 1 {
		t.Errorf("renders = %d, want 1", c.renders)
	}
	if err := h.Update(vdom.Div()); !errors.HasCode(err, "E204") {
		t.Errorf("Update() error = %v, want E204", err)
	}
	if err := h.Destroy(); !errors.HasCode(err, "E204") {
		t.Errorf("second Destroy() error = %v, want E204", err)
	}
}

type broken struct{}

func (broken) Render() *vdom.VNode { panic("render failed") }

func TestMountErrors(t *testing.T) {
	if _, err := Mount(MountOptions{Sync: true}, vdom.Div()); !errors.HasCode(err, "E203") {
		t.Errorf("Mount(no target) error = %v, want E203", err)
	}

	_, target := newTarget()
	h, err := Mount(MountOptions{Target: target, Sync: true},
		vdom.Comp(func() vdom.Component { return broken{} }, nil))
	if !errors.HasCode(err, "E201") {
		t.Errorf("Mount() error = %v, want E201", err)
	}
	if h != nil {
		t.Error("Mount() returned a handle for a failed mount")
	}
}

func TestObserverAndDiagnostics(t *testing.T) {
	_, target := newTarget()
	rec := &recorder{}
	h, err := Mount(MountOptions{Target: target, Sync: true, Observer: rec},
		vdom.Ul(vdom.Li(vdom.Key("a")), vdom.Li(vdom.Key("a"))))
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if err := h.Update(vdom.Ul()); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := h.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}

	if diff := cmp.Diff([]string{PassMount, PassUpdate, PassDestroy}, rec.passes); diff != "" {
		t.Errorf("passes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{reconcile.DiagDuplicateKey}, rec.diags); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
	if got := h.Diagnostics(); len(got) != 1 || got[0].Code != reconcile.DiagDuplicateKey {
		t.Errorf("Diagnostics() = %v", got)
	}
}

func TestRenderPage(t *testing.T) {
	page := PageData{
		Title:       "Demo & co",
		StyleSheets: []string{"/app.css"},
		Scripts:     []ScriptTag{{Src: "/app.js", Defer: true}, {Inline: "boot()"}},
		Body: vdom.Div(vdom.ID("app"), vdom.Text("hi"),
			vdom.Head(vdom.MetaTag(vdom.Name("theme"), vdom.Attr{Key: "content", Value: "dark"}))),
	}

	var buf bytes.Buffer
	if err := NewRenderer(RendererConfig{}).RenderPage(&buf, page); err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="en">`,
		"<title>Demo &amp; co</title>",
		`<link href="/app.css" rel="stylesheet">`,
		`<meta content="dark" name="theme">`,
		`<script defer src="/app.js"></script>`,
		`<div id="app">hi</div><script>boot()</script></body>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q:\n%s", want, out)
		}
	}
}

func TestStreamingRenderer(t *testing.T) {
	w := &FlushableWriter{Writer: &bytes.Buffer{}}
	s := NewStreamingRenderer(w, RendererConfig{})
	if err := s.RenderPage(PageData{Body: vdom.P(vdom.Text("x"))}); err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	if w.FlushCount != 2 {
		t.Errorf("FlushCount = %d, want 2", w.FlushCount)
	}
}
