package reconcile

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vdom/internal/errors"
	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/vdom"
)

type harness struct {
	t      *testing.T
	doc    *dom.Document
	target *dom.Node
	e      *Engine
	diags  []Diagnostic
	dirty  []InstanceID
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{t: t, doc: dom.NewDocument()}
	h.target = h.doc.CreateElement("div")
	h.doc.Body().AppendChild(h.target)
	opts.Document = h.doc
	opts.OnDiagnostic = func(d Diagnostic) { h.diags = append(h.diags, d) }
	opts.OnInvalidate = func(id InstanceID) { h.dirty = append(h.dirty, id) }
	h.e = New(opts)
	return h
}

func (h *harness) mount(v *vdom.VNode) {
	h.t.Helper()
	if err := h.e.Mount(h.target, v); err != nil {
		h.t.Fatalf("Mount() error = %v", err)
	}
	h.doc.ResetMutations()
}

func (h *harness) update(v *vdom.VNode) {
	h.t.Helper()
	if err := h.e.Update(v); err != nil {
		h.t.Fatalf("Update() error = %v", err)
	}
}

func (h *harness) flush() {
	h.t.Helper()
	ids := h.dirty
	h.dirty = nil
	if err := h.e.RenderDirty(ids); err != nil {
		h.t.Fatalf("RenderDirty() error = %v", err)
	}
}

func (h *harness) html() string {
	return h.target.InnerHTML()
}

func (h *harness) codes() []string {
	var out []string
	for _, d := range h.diags {
		out = append(out, d.Code)
	}
	return out
}

func list(keys ...string) *vdom.VNode {
	items := make([]any, 0, len(keys))
	for _, k := range keys {
		items = append(items, vdom.Li(vdom.Key(k), vdom.Text(k)))
	}
	return vdom.Ul(items...)
}

func TestMount(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Div(vdom.ID("app"), vdom.P(vdom.Text("hello"))))

	if got, want := h.html(), `<div id="app"><p>hello</p></div>`; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if !h.e.Mounted() {
		t.Error("Mounted() = false, want true")
	}
	if got := len(h.e.Nodes()); got != 1 {
		t.Errorf("len(Nodes()) = %d, want 1", got)
	}
}

func TestMountRejectsBadTarget(t *testing.T) {
	h := newHarness(t, Options{})
	if err := h.e.Mount(nil, vdom.Div()); !errors.HasCode(err, "E203") {
		t.Errorf("Mount(nil) error = %v, want E203", err)
	}
	other := dom.NewDocument().Body()
	if err := h.e.Mount(other, vdom.Div()); !errors.HasCode(err, "E203") {
		t.Errorf("Mount(foreign) error = %v, want E203", err)
	}
	if err := h.e.Update(vdom.Div()); !errors.HasCode(err, "E204") {
		t.Errorf("Update() before Mount error = %v, want E204", err)
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	h := newHarness(t, Options{})
	tree := func() *vdom.VNode {
		return vdom.Div(vdom.ID("app"), vdom.Class("box"), list("a", "b", "c"), vdom.Input(vdom.Value("x"), vdom.Disabled()))
	}
	h.mount(tree())
	h.update(tree())

	if got := h.doc.MutationCount(); got != 0 {
		t.Errorf("MutationCount() = %d, want 0: %v", got, h.doc.Mutations())
	}
}

func TestKeyedRemovalKeepsIdentity(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(list("a", "b", "c"))
	ul := h.target.FirstChild()
	a, c := ul.Children()[0], ul.Children()[2]

	h.update(list("a", "c"))

	kids := ul.Children()
	if len(kids) != 2 {
		t.Fatalf("len(children) = %d, want 2", len(kids))
	}
	if kids[0] != a || kids[1] != c {
		t.Error("surviving items were recreated")
	}
	if got := h.doc.CountOps(dom.OpRemove); got != 1 {
		t.Errorf("removes = %d, want 1", got)
	}
	if got := h.doc.CountOps(dom.OpInsert); got != 0 {
		t.Errorf("inserts = %d, want 0", got)
	}
	if got := h.doc.CountOps(dom.OpCreate); got != 0 {
		t.Errorf("creates = %d, want 0", got)
	}
}

func TestKeyedReorder(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(list("a", "b", "c"))
	ul := h.target.FirstChild()
	before := map[string]*dom.Node{}
	for _, li := range ul.Children() {
		before[li.TextContent()] = li
	}

	h.update(list("c", "a", "b"))

	var order []string
	for _, li := range ul.Children() {
		order = append(order, li.TextContent())
		if before[li.TextContent()] != li {
			t.Errorf("item %q was recreated", li.TextContent())
		}
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if got := h.doc.CountOps(dom.OpCreate); got != 0 {
		t.Errorf("creates = %d, want 0", got)
	}
}

func TestNumericKeysMatchAcrossTypes(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Ul(vdom.Li(vdom.Key(1), vdom.Text("one"))))
	li := h.target.FirstChild().FirstChild()

	h.update(vdom.Ul(vdom.Li(vdom.Key(int64(1)), vdom.Text("one"))))

	if h.target.FirstChild().FirstChild() != li {
		t.Error("Key(1) and Key(int64(1)) did not match")
	}
}

func TestKindChangeReplaces(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Div(vdom.Span(vdom.Text("x"))))
	span := h.target.FirstChild().FirstChild()

	h.update(vdom.Div(vdom.P(vdom.Text("x"))))

	if got := h.target.FirstChild().FirstChild(); got == span || got.Tag() != "p" {
		t.Errorf("child = %s, want a new <p>", got.Describe())
	}
}

func TestTextCoalescing(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Div(vdom.Text("a"), vdom.Text(""), vdom.Text("b"), vdom.Fragment(vdom.Text("c"))))

	div := h.target.FirstChild()
	kids := div.Children()
	if len(kids) != 1 {
		t.Fatalf("len(children) = %d, want 1", len(kids))
	}
	if got := kids[0].Data(); got != "abc" {
		t.Errorf("text = %q, want %q", got, "abc")
	}

	h.update(vdom.Div(vdom.Text("ab"), vdom.Text("c")))
	if got := h.doc.MutationCount(); got != 0 {
		t.Errorf("MutationCount() = %d, want 0", got)
	}

	h.update(vdom.Div(vdom.Text("abd")))
	if got := h.doc.CountOps(dom.OpSetText); got != 1 {
		t.Errorf("SetText ops = %d, want 1", got)
	}
	if div.FirstChild() != kids[0] {
		t.Error("text node was recreated")
	}
}

func TestFragmentsFlatten(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Ul(vdom.Li(vdom.Text("1")), vdom.Fragment(vdom.Li(vdom.Text("2")), vdom.Li(vdom.Text("3")))))

	if got, want := h.html(), "<ul><li>1</li><li>2</li><li>3</li></ul>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestUserValueSurvivesDefaultDiff(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Input(vdom.Value("a")))
	input := h.target.FirstChild()
	input.SetValue("ab")

	h.update(vdom.Input(vdom.Value("a")))

	if got := input.Value(); got != "ab" {
		t.Errorf("Value() = %q, want %q", got, "ab")
	}
}

func TestDiffTypeNoneAlwaysWrites(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Input(vdom.WithDiffType(vdom.DiffNone), vdom.Value("a")))
	input := h.target.FirstChild()
	input.SetValue("ab")

	h.update(vdom.Input(vdom.WithDiffType(vdom.DiffNone), vdom.Value("a")))

	if got := input.Value(); got != "a" {
		t.Errorf("Value() = %q, want %q", got, "a")
	}
}

func TestDiffTypeDOM(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Input(vdom.WithDiffType(vdom.DiffDOM), vdom.Value("a")))
	input := h.target.FirstChild()

	input.SetValue("ab")
	h.update(vdom.Input(vdom.WithDiffType(vdom.DiffDOM), vdom.Value("a")))
	if got := input.Value(); got != "ab" {
		t.Errorf("unchanged declaration: Value() = %q, want %q", got, "ab")
	}

	h.update(vdom.Input(vdom.WithDiffType(vdom.DiffDOM), vdom.Value("b")))
	if got := input.Value(); got != "b" {
		t.Errorf("changed declaration: Value() = %q, want %q", got, "b")
	}

	input.SetValue("c")
	h.doc.ResetMutations()
	h.update(vdom.Input(vdom.WithDiffType(vdom.DiffDOM), vdom.Value("c")))
	if got := h.doc.CountOps(dom.OpSetProp); got != 0 {
		t.Errorf("SetProp ops = %d, want 0 when the live value already matches", got)
	}
}

func TestAttributesAndProperties(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Input(vdom.Type("checkbox"), vdom.Checked(true), vdom.Disabled(), vdom.Data("id", "7")))
	input := h.target.FirstChild()

	if !input.Checked() {
		t.Error("Checked() = false, want true")
	}
	if !input.HasAttr("disabled") {
		t.Error("disabled attribute missing")
	}
	if got, _ := input.Attr("data-id"); got != "7" {
		t.Errorf("data-id = %q, want %q", got, "7")
	}

	h.update(vdom.Input(vdom.Type("checkbox"), vdom.Checked(false)))
	if input.Checked() {
		t.Error("Checked() = true after update, want false")
	}
	if input.HasAttr("disabled") || input.HasAttr("data-id") {
		t.Errorf("stale attributes remain: %v", input.AttrNames())
	}
}

func TestClassesAreControlled(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Div(vdom.ClassList("a", "b")))
	div := h.target.FirstChild()
	div.AddClass("external")

	h.update(vdom.Div(vdom.ClassList("b", "c")))

	for _, c := range []string{"b", "c", "external"} {
		if !div.HasClass(c) {
			t.Errorf("HasClass(%q) = false, want true", c)
		}
	}
	if div.HasClass("a") {
		t.Error(`HasClass("a") = true, want false`)
	}
}

func TestStyles(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Div(vdom.Styles(map[string]string{"color": "red", "width": "1px"})))
	div := h.target.FirstChild()

	h.update(vdom.Div(vdom.Styles(map[string]string{"color": "blue"})))

	if got, _ := div.Style("color"); got != "blue" {
		t.Errorf("color = %q, want %q", got, "blue")
	}
	if _, ok := div.Style("width"); ok {
		t.Error("width was not removed")
	}
}

func TestEventHandlerSwap(t *testing.T) {
	h := newHarness(t, Options{})
	var first, second int
	h.mount(vdom.Button(vdom.OnClick(func() { first++ })))
	btn := h.target.FirstChild()

	h.update(vdom.Button(vdom.OnClick(func(*dom.Event) { second++ })))
	btn.Click()

	if first != 0 || second != 1 {
		t.Errorf("calls = %d/%d, want 0/1", first, second)
	}
	if got := btn.ListenerCount("click"); got != 1 {
		t.Errorf("ListenerCount() = %d, want 1", got)
	}
	if got := h.doc.CountOps(dom.OpListen); got != 0 {
		t.Errorf("Listen ops = %d, want 0", got)
	}

	h.update(vdom.Button())
	if got := btn.ListenerCount("click"); got != 0 {
		t.Errorf("ListenerCount() after removal = %d, want 0", got)
	}
}

func TestPassiveEvents(t *testing.T) {
	h := newHarness(t, Options{PassiveEvents: map[string]bool{"scroll": true}})
	h.doc.SupportsPassive = true
	h.mount(vdom.Div(vdom.On("scroll", func() {}), vdom.On("wheel", func() {})))
	div := h.target.FirstChild()

	if !div.Listeners("scroll")[0].Options().Passive {
		t.Error("scroll listener is not passive")
	}
	if div.Listeners("wheel")[0].Options().Passive {
		t.Error("wheel listener is passive")
	}
}

func TestInvalidHandlerDiagnostic(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Button(vdom.OnClick(42)))

	if diff := cmp.Diff([]string{DiagBadHandler}, h.codes()); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateKeyDiagnostic(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(list("a", "a"))

	if got := len(h.target.FirstChild().Children()); got != 2 {
		t.Errorf("len(children) = %d, want 2", got)
	}
	if diff := cmp.Diff([]string{DiagDuplicateKey}, h.codes()); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(h.diags[0].Path, "ul") {
		t.Errorf("Path = %q, want it to name the list", h.diags[0].Path)
	}
}

func TestAmbiguousSiblingsDiagnostic(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Ul(vdom.Li(vdom.Text("a")), vdom.Li(vdom.Text("b"))))
	h.update(vdom.Ul(vdom.Li(vdom.Text("a"))))

	if diff := cmp.Diff([]string{DiagAmbiguousSiblings}, h.codes()); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}

	h.diags = nil
	h.update(vdom.Ul(vdom.Li(vdom.Text("b"))))
	if len(h.diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", h.diags)
	}
}

func TestRelocation(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Div(vdom.Text("page"), vdom.Body(vdom.Div(vdom.ID("modal"))), vdom.Head(vdom.Title(vdom.Text("t")))))

	modal := h.doc.ByID("modal")
	if modal == nil {
		t.Fatal("modal not found")
	}
	if modal.Parent() != h.doc.Body() {
		t.Errorf("modal parent = %s, want body", modal.Parent().Describe())
	}
	if got, want := h.html(), "<div>page</div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	title, _ := h.doc.Head().Query("title")
	if title == nil {
		t.Fatal("title not relocated to head")
	}

	h.update(vdom.Div(vdom.Text("page")))
	if h.doc.ByID("modal") != nil {
		t.Error("modal still present after removal")
	}
	if title.Connected() {
		t.Error("title still connected after removal")
	}
}

func TestRawDOM(t *testing.T) {
	h := newHarness(t, Options{})
	canvas := h.doc.CreateElement("canvas")
	var attached, updated, detached int
	raw := func(w string) *vdom.VNode {
		return vdom.DOM(vdom.RawDOM{
			Node:     canvas,
			Props:    vdom.Props{"width": w},
			OnAttach: func(*dom.Node) { attached++ },
			OnUpdate: func(*dom.Node) { updated++ },
			OnDetach: func(*dom.Node) { detached++ },
		})
	}
	h.mount(vdom.Div(raw("10")))
	if canvas.Parent() != h.target.FirstChild() {
		t.Fatal("wrapped node not inserted")
	}
	h.update(vdom.Div(raw("20")))
	if got, _ := canvas.Attr("width"); got != "20" {
		t.Errorf("width = %q, want %q", got, "20")
	}
	h.update(vdom.Div())
	if canvas.Connected() {
		t.Error("wrapped node still connected")
	}
	if attached != 1 || updated != 1 || detached != 1 {
		t.Errorf("hooks = %d/%d/%d, want 1/1/1", attached, updated, detached)
	}

	if err := h.e.Update(vdom.Div(vdom.DOM(vdom.RawDOM{}))); !errors.HasCode(err, "E206") {
		t.Errorf("Update(nil node) error = %v, want E206", err)
	}
}

func TestDeferredProps(t *testing.T) {
	h := newHarness(t, Options{})
	n := 1
	h.mount(vdom.Deferred("div", func() vdom.Props {
		return vdom.Props{"data-n": n, "title": "deferred"}
	}, vdom.TitleAttr("static")))
	div := h.target.FirstChild()

	if got, _ := div.Attr("data-n"); got != "1" {
		t.Errorf("data-n = %q, want %q", got, "1")
	}
	if got, _ := div.Attr("title"); got != "static" {
		t.Errorf("title = %q, want static to win", got)
	}
	if !h.e.HasDeferred() {
		t.Fatal("HasDeferred() = false, want true")
	}

	n = 2
	if err := h.e.RunDeferred(); err != nil {
		t.Fatalf("RunDeferred() error = %v", err)
	}
	if got, _ := div.Attr("data-n"); got != "2" {
		t.Errorf("data-n = %q, want %q", got, "2")
	}

	h.update(vdom.Div())
	if err := h.e.RunDeferred(); err != nil {
		t.Fatalf("RunDeferred() error = %v", err)
	}
	if h.e.HasDeferred() {
		t.Error("HasDeferred() = true after the node went away")
	}
}

func TestInnerHTML(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Div(vdom.InnerHTML("<b>x</b>")))

	if got, want := h.html(), "<div><b>x</b></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestDirectives(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Div(vdom.Input(vdom.Focus(true)), vdom.Div(vdom.ScrollIntoView(true))))
	input := h.target.FirstChild().FirstChild()
	box := input.NextSibling()

	if h.doc.ActiveElement() != input {
		t.Error("input not focused")
	}
	if got := box.ScrollCount(); got != 1 {
		t.Errorf("ScrollCount() = %d, want 1", got)
	}

	h.update(vdom.Div(vdom.Input(vdom.Focus(true)), vdom.Div(vdom.ScrollIntoView(true))))
	if got := box.ScrollCount(); got != 1 {
		t.Errorf("ScrollCount() after idle update = %d, want 1", got)
	}

	h.update(vdom.Div(vdom.Input(vdom.Focus(false)), vdom.Div(vdom.ScrollIntoView(func() bool { return true }))))
	if got := box.ScrollCount(); got != 2 {
		t.Errorf("ScrollCount() with predicate = %d, want 2", got)
	}
}

func TestExitAnimation(t *testing.T) {
	h := newHarness(t, Options{})
	var remove func()
	exit := vdom.ExitAnimation(func(_ *dom.Node, done func(), _ vdom.Props) { remove = done })
	h.mount(vdom.Ul(vdom.Li(vdom.Key("a"), vdom.AnimateExit(exit)), vdom.Li(vdom.Key("b"))))
	ul := h.target.FirstChild()
	a := ul.FirstChild()

	h.update(vdom.Ul(vdom.Li(vdom.Key("b"))))
	if !a.Connected() || h.e.Exiting() != 1 {
		t.Fatal("node removed before its exit animation finished")
	}

	h.update(vdom.Ul(vdom.Li(vdom.Key("c")), vdom.Li(vdom.Key("b"))))
	if remove == nil {
		t.Fatal("exit animation was not started")
	}
	remove()
	if a.Connected() || h.e.Exiting() != 0 {
		t.Error("node still present after remove()")
	}
	if got := len(ul.Children()); got != 2 {
		t.Errorf("len(children) = %d, want 2", got)
	}
}

func TestPredicateDirectiveRunsEveryCommit(t *testing.T) {
	h := newHarness(t, Options{})
	want := true
	scroll := func() bool { return want }
	h.mount(vdom.Div(vdom.ScrollIntoView(scroll)))
	box := h.target.FirstChild()

	steps := []struct {
		want  bool
		count int
	}{
		{want: true, count: 2},
		{want: true, count: 3},
		{want: false, count: 3},
		{want: true, count: 4},
	}
	if got := box.ScrollCount(); got != 1 {
		t.Fatalf("ScrollCount() after mount = %d, want 1", got)
	}
	for i, step := range steps {
		want = step.want
		h.update(vdom.Div(vdom.ScrollIntoView(scroll)))
		if got := box.ScrollCount(); got != step.count {
			t.Errorf("commit %d: ScrollCount() = %d, want %d", i+1, got, step.count)
		}
	}
}

func TestNamedAnimationsNeedStrategy(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(vdom.Div(vdom.Span(vdom.AnimateExit("fade"))))

	err := h.e.Update(vdom.Div())
	if !errors.HasCode(err, "E202") {
		t.Errorf("Update() error = %v, want E202", err)
	}
	if got, want := h.html(), "<div><span></span></div>"; got != want {
		t.Errorf("html after failed removal = %q, want %q", got, want)
	}

	first := newHarness(t, Options{})
	err = first.e.Mount(first.target, vdom.Div(vdom.Span(vdom.AnimateEnter("fade-in"))))
	if !errors.HasCode(err, "E202") {
		t.Errorf("Mount() error = %v, want E202", err)
	}
	if first.e.Mounted() {
		t.Error("Mounted() = true after a failed mount")
	}
}

func TestClassTransitions(t *testing.T) {
	h := newHarness(t, Options{Transitions: ClassTransitions{}})
	h.mount(vdom.Div(vdom.Span(vdom.Key(1), vdom.AnimateEnter("fade-in"))))
	span := h.target.FirstChild().FirstChild()
	if span.HasClass("fade-in") {
		t.Error("enter animation ran on initial mount")
	}

	h.update(vdom.Div(vdom.Span(vdom.Key(1), vdom.AnimateEnter("fade-in")), vdom.Span(vdom.Key(2), vdom.AnimateEnter("fade-in"))))
	added := span.NextSibling()
	if !added.HasClass("fade-in") {
		t.Fatal("enter class missing")
	}
	added.DispatchEvent("animationend")
	if added.HasClass("fade-in") {
		t.Error("enter class not removed on animationend")
	}

	h.update(vdom.Div(vdom.Span(vdom.Key(1), vdom.AnimateExit("fade-out"))))
	h.update(vdom.Div())
	if !span.HasClass("fade-out") || !span.Connected() {
		t.Fatal("exit transition did not start")
	}
	span.DispatchEvent("transitionend")
	if span.Connected() {
		t.Error("node not removed after the exit transition")
	}
}

func TestDestroy(t *testing.T) {
	h := newHarness(t, Options{})
	exit := vdom.ExitAnimation(func(*dom.Node, func(), vdom.Props) {})
	h.mount(vdom.Div(vdom.Span(vdom.AnimateExit(exit)), vdom.Body(vdom.Div(vdom.ID("modal")))))

	if err := h.e.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if h.html() != "" || h.doc.ByID("modal") != nil {
		t.Errorf("document not cleaned up: %s", h.doc.String())
	}
	if h.e.Mounted() {
		t.Error("Mounted() = true after Destroy")
	}
}
