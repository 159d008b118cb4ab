package instrument

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/reconcile"
	"github.com/vango-dev/vdom/pkg/render"
	"github.com/vango-dev/vdom/pkg/vdom"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestObservePass(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))

	m.ObservePass(render.Pass{
		Kind:     render.PassMount,
		Stats:    reconcile.Stats{Rendered: 2, Created: 5, Moved: 1},
		Duration: 3 * time.Millisecond,
	})
	m.ObservePass(render.Pass{
		Kind:  render.PassUpdate,
		Stats: reconcile.Stats{Removed: 2},
		Err:   errors.New("boom"),
	})

	if got := counterValue(t, m.passes.WithLabelValues(render.PassMount, "success")); got != 1 {
		t.Errorf("passes{mount,success} = %v, want 1", got)
	}
	if got := counterValue(t, m.passes.WithLabelValues(render.PassUpdate, "error")); got != 1 {
		t.Errorf("passes{update,error} = %v, want 1", got)
	}
	if got := histogramCount(t, m.passDuration.WithLabelValues(render.PassMount)); got != 1 {
		t.Errorf("pass_duration{mount} count = %v, want 1", got)
	}
	if got := counterValue(t, m.renders); got != 2 {
		t.Errorf("renders = %v, want 2", got)
	}
	if got := counterValue(t, m.created); got != 5 {
		t.Errorf("created = %v, want 5", got)
	}
	if got := counterValue(t, m.removed); got != 2 {
		t.Errorf("removed = %v, want 2", got)
	}
	if got := counterValue(t, m.moved); got != 1 {
		t.Errorf("moved = %v, want 1", got)
	}
}

func TestObserveDiagnostic(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))
	m.ObserveDiagnostic(reconcile.Diagnostic{Code: reconcile.DiagDuplicateKey})
	m.ObserveDiagnostic(reconcile.Diagnostic{Code: reconcile.DiagDuplicateKey})

	if got := counterValue(t, m.diagnostics.WithLabelValues(reconcile.DiagDuplicateKey)); got != 2 {
		t.Errorf("diagnostics = %v, want 2", got)
	}
}

func TestRegistryOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(WithRegistry(reg), WithNamespace("app"), WithSubsystem("ui"),
		WithConstLabels(prometheus.Labels{"env": "test"}), WithBuckets([]float64{0.1, 1}))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"app_ui_component_renders_total", "app_ui_nodes_created_total"} {
		if !names[want] {
			t.Errorf("metric %q not registered; got %v", want, names)
		}
	}
}

func TestMetricsWithRenderer(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))
	totals := NewTotals()

	doc := dom.NewDocument()
	target := doc.CreateElement("div")
	doc.Body().AppendChild(target)

	h, err := render.Mount(render.MountOptions{
		Target:   target,
		Sync:     true,
		Observer: Multi(m, nil, totals),
	}, vdom.Ul(vdom.Li(vdom.Key("a")), vdom.Li(vdom.Key("b"))))
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if err := h.Update(vdom.Ul(vdom.Li(vdom.Key("a")))); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := h.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}

	if got := counterValue(t, m.created); got != 3 {
		t.Errorf("created = %v, want 3", got)
	}
	if got := counterValue(t, m.passes.WithLabelValues(render.PassUpdate, "success")); got != 1 {
		t.Errorf("passes{update,success} = %v, want 1", got)
	}
	if got := totals.Passes(render.PassMount); got != 1 {
		t.Errorf("Totals.Passes(mount) = %d, want 1", got)
	}
	if got := totals.Stats().Created; got != 3 {
		t.Errorf("Totals.Stats().Created = %d, want 3", got)
	}
	if got := totals.Failed(); got != 0 {
		t.Errorf("Totals.Failed() = %d, want 0", got)
	}
}

func TestTotalsDiagnostics(t *testing.T) {
	totals := NewTotals()
	obs := Multi(totals)
	obs.ObserveDiagnostic(reconcile.Diagnostic{Code: "W101"})
	obs.ObservePass(render.Pass{Kind: render.PassRender, Err: errors.New("x")})

	if got := totals.Diagnostics("W101"); got != 1 {
		t.Errorf("Diagnostics(W101) = %d, want 1", got)
	}
	if got := totals.Failed(); got != 1 {
		t.Errorf("Failed() = %d, want 1", got)
	}
}
