package vtest

import (
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"

	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/reconcile"
	"github.com/vango-dev/vdom/pkg/render"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// Mounted is a tree rendered synchronously into a fresh document. The
// handle is destroyed when the test ends.
type Mounted struct {
	t      testing.TB
	Doc    *dom.Document
	Target *dom.Node
	Handle *render.Handle
}

// Mount renders node into a <div id="root"> of a new document and clears
// the mutation log. Options are applied after Sync is set; passing
// render.WithLoop switches the handle back to frame scheduling.
//
// Example:
//
//	m := vtest.Mount(t, vdom.Comp(NewCounter, nil))
//	m.Click("//button")
//	m.ExpectText("//span", "1")
func Mount(t testing.TB, node *vdom.VNode, opts ...render.Option) *Mounted {
	t.Helper()
	doc := dom.NewDocument()
	target := doc.CreateElement("div")
	target.SetAttr("id", "root")
	doc.Body().AppendChild(target)

	o := render.MountOptions{Target: target, Sync: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Loop != nil {
		o.Sync = false
	}
	h, err := render.Mount(o, node)
	if err != nil {
		t.Fatalf("vtest.Mount: %v", err)
	}
	doc.ResetMutations()
	m := &Mounted{t: t, Doc: doc, Target: target, Handle: h}
	t.Cleanup(func() {
		// Tests may destroy the handle themselves.
		_ = h.Destroy()
	})
	return m
}

// Update renders node against the mounted tree.
func (m *Mounted) Update(node *vdom.VNode) {
	m.t.Helper()
	if err := m.Handle.Update(node); err != nil {
		m.t.Fatalf("Update: %v", err)
	}
}

// Flush renders pending invalidations.
func (m *Mounted) Flush() {
	m.t.Helper()
	if err := m.Handle.Flush(); err != nil {
		m.t.Fatalf("Flush: %v", err)
	}
}

// HTML returns the serialized content of the mount target.
func (m *Mounted) HTML() string {
	m.t.Helper()
	var sb strings.Builder
	if err := render.NewRenderer(render.RendererConfig{}).WriteChildren(&sb, m.Target); err != nil {
		m.t.Fatalf("HTML: %v", err)
	}
	return sb.String()
}

// Find returns the first node matching an XPath expression evaluated
// against the mount target. The test fails when nothing matches.
func (m *Mounted) Find(expr string) *dom.Node {
	m.t.Helper()
	n, err := m.Target.Query(expr)
	if err != nil {
		m.t.Fatalf("Find(%q): %v", expr, err)
	}
	if n == nil {
		m.t.Fatalf("Find(%q): no match in\n%s", expr, truncate(m.HTML(), 500))
	}
	return n
}

// Count returns how many nodes match an XPath expression.
func (m *Mounted) Count(expr string) int {
	m.t.Helper()
	nodes, err := htmlquery.QueryAll(m.Target.HTML(), expr)
	if err != nil {
		m.t.Fatalf("Count(%q): %v", expr, err)
	}
	return len(nodes)
}

// Text returns the text content of the first node matching expr.
func (m *Mounted) Text(expr string) string {
	m.t.Helper()
	return htmlquery.InnerText(m.Find(expr).HTML())
}

// Click dispatches a click on the first node matching expr.
func (m *Mounted) Click(expr string) {
	m.t.Helper()
	m.Find(expr).Click()
}

// Input sets the value of the first node matching expr and dispatches an
// input event.
func (m *Mounted) Input(expr, value string) {
	m.t.Helper()
	m.Find(expr).Input(value)
}

// Mutations returns the mutation log recorded since the last reset.
func (m *Mounted) Mutations() []dom.Mutation {
	return m.Doc.Mutations()
}

// ResetMutations clears the mutation log.
func (m *Mounted) ResetMutations() {
	m.Doc.ResetMutations()
}

// Diagnostics returns the diagnostics reported so far.
func (m *Mounted) Diagnostics() []reconcile.Diagnostic {
	return m.Handle.Diagnostics()
}

// ExpectText asserts the text content of the first node matching expr.
func (m *Mounted) ExpectText(expr, want string) {
	m.t.Helper()
	if got := m.Text(expr); got != want {
		m.t.Errorf("Text(%q) = %q, want %q", expr, got, want)
	}
}

// ExpectCount asserts how many nodes match expr.
func (m *Mounted) ExpectCount(expr string, want int) {
	m.t.Helper()
	if got := m.Count(expr); got != want {
		m.t.Errorf("Count(%q) = %d, want %d", expr, got, want)
	}
}

// ExpectOps asserts how many mutations of op were recorded since the last
// reset.
func (m *Mounted) ExpectOps(op dom.MutationOp, want int) {
	m.t.Helper()
	if got := m.Doc.CountOps(op); got != want {
		m.t.Errorf("%s mutations = %d, want %d\n%s", op, got, want, formatMutations(m.Doc.Mutations()))
	}
}

// ExpectNoMutations asserts that nothing changed since the last reset.
func (m *Mounted) ExpectNoMutations() {
	m.t.Helper()
	if n := m.Doc.MutationCount(); n != 0 {
		m.t.Errorf("got %d mutations, want none\n%s", n, formatMutations(m.Doc.Mutations()))
	}
}

func formatMutations(log []dom.Mutation) string {
	var sb strings.Builder
	for _, mu := range log {
		sb.WriteString("  ")
		sb.WriteString(mu.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
