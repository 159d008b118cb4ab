package instrument

import (
	"sync"

	"github.com/vango-dev/vdom/pkg/reconcile"
	"github.com/vango-dev/vdom/pkg/render"
)

// Multi returns an observer that forwards to each non-nil observer in order.
func Multi(observers ...render.Observer) render.Observer {
	list := make(multi, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multi []render.Observer

func (m multi) ObservePass(p render.Pass) {
	for _, o := range m {
		o.ObservePass(p)
	}
}

func (m multi) ObserveDiagnostic(d reconcile.Diagnostic) {
	for _, o := range m {
		o.ObserveDiagnostic(d)
	}
}

// Totals accumulates pass statistics in memory. It is safe for concurrent
// reads while passes are observed.
type Totals struct {
	mu          sync.Mutex
	passes      map[string]int
	failed      int
	stats       reconcile.Stats
	diagnostics map[string]int
}

// NewTotals creates an empty accumulator.
func NewTotals() *Totals {
	return &Totals{
		passes:      make(map[string]int),
		diagnostics: make(map[string]int),
	}
}

// ObservePass implements render.Observer.
func (t *Totals) ObservePass(p render.Pass) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.passes[p.Kind]++
	if p.Err != nil {
		t.failed++
	}
	t.stats.Rendered += p.Stats.Rendered
	t.stats.Created += p.Stats.Created
	t.stats.Removed += p.Stats.Removed
	t.stats.Moved += p.Stats.Moved
}

// ObserveDiagnostic implements render.Observer.
func (t *Totals) ObserveDiagnostic(d reconcile.Diagnostic) {
	t.mu.Lock()
	t.diagnostics[d.Code]++
	t.mu.Unlock()
}

// Passes returns how many passes of kind were observed.
func (t *Totals) Passes(kind string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.passes[kind]
}

// Failed returns the number of passes that returned an error.
func (t *Totals) Failed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

// Stats returns the summed pass statistics.
func (t *Totals) Stats() reconcile.Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Diagnostics returns how many diagnostics with code were observed.
func (t *Totals) Diagnostics(code string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.diagnostics[code]
}
