// Package registry maps component labels to factories.
//
// A label is defined either synchronously with a factory or asynchronously
// with a loader. Asynchronous entries start Pending and settle to Resolved
// or Failed when the loader returns. Registries nest: a child registry
// falls back to its parent for labels it does not define, which gives each
// subtree its own scope.
package registry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/vdom/internal/errors"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// State is the resolution state of a label.
type State uint8

const (
	Missing  State = iota // Not defined in this scope chain
	Pending               // Loader running
	Resolved              // Factory available
	Failed                // Loader returned an error
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case Missing:
		return "Missing"
	case Pending:
		return "Pending"
	case Resolved:
		return "Resolved"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Loader produces a factory asynchronously.
type Loader func(ctx context.Context) (vdom.Factory, error)

// Entry is a snapshot of a label's state.
type Entry struct {
	Label   string
	State   State
	Factory vdom.Factory
	Err     error
}

type entry struct {
	state   State
	factory vdom.Factory
	err     error
}

// Registry holds label definitions. It is safe for concurrent use.
type Registry struct {
	parent *Registry
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	subs    map[string]map[int]func()
	nextSub int
	wg      sync.WaitGroup
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for loader failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger:  slog.Default().With("component", "registry"),
		entries: make(map[string]*entry),
		subs:    make(map[string]map[int]func()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Child creates a registry scoped below r.
func (r *Registry) Child() *Registry {
	c := New(WithLogger(r.logger))
	c.parent = r
	return c
}

// Parent returns the enclosing registry, or nil.
func (r *Registry) Parent() *Registry {
	return r.parent
}

// Define registers a factory for label.
func (r *Registry) Define(label string, factory vdom.Factory) error {
	r.mu.Lock()
	if _, ok := r.entries[label]; ok {
		r.mu.Unlock()
		return errors.New("E221").WithDetail("label " + label)
	}
	r.entries[label] = &entry{state: Resolved, factory: factory}
	subs := r.takeSubs(label)
	r.mu.Unlock()

	notify(subs)
	return nil
}

// DefineAsync registers label as Pending and runs loader in a goroutine.
// Subscribers are notified when the loader settles.
func (r *Registry) DefineAsync(ctx context.Context, label string, loader Loader) error {
	r.mu.Lock()
	if _, ok := r.entries[label]; ok {
		r.mu.Unlock()
		return errors.New("E221").WithDetail("label " + label)
	}
	e := &entry{state: Pending}
	r.entries[label] = e
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		factory, err := loader(ctx)

		r.mu.Lock()
		if err != nil {
			e.state = Failed
			e.err = errors.New("E222").WithDetail("label " + label).Wrap(err)
		} else {
			e.state = Resolved
			e.factory = factory
		}
		subs := r.takeSubs(label)
		r.mu.Unlock()

		if err != nil {
			r.logger.Warn("component loader failed", "label", label, "error", err)
		}
		notify(subs)
	}()
	return nil
}

// Wait blocks until every loader started by r has settled.
func (r *Registry) Wait() {
	r.wg.Wait()
}

// Lookup resolves label in the nearest scope that defines it.
func (r *Registry) Lookup(label string) Entry {
	for cur := r; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		e, ok := cur.entries[label]
		var out Entry
		if ok {
			out = Entry{Label: label, State: e.state, Factory: e.factory, Err: e.err}
		}
		cur.mu.Unlock()
		if ok {
			return out
		}
	}
	return Entry{Label: label, State: Missing}
}

// Has reports whether label is defined in the scope chain.
func (r *Registry) Has(label string) bool {
	return r.Lookup(label).State != Missing
}

// Labels returns the labels defined directly in r.
func (r *Registry) Labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	return out
}

// Subscribe calls fn once, the next time label is defined or settles
// anywhere in r's scope chain. The returned function cancels the
// subscription. fn may run on a loader goroutine.
func (r *Registry) Subscribe(label string, fn func()) (cancel func()) {
	var once sync.Once
	fire := func() { once.Do(fn) }

	type reg struct {
		r  *Registry
		id int
	}
	var regs []reg
	for cur := r; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		cur.nextSub++
		id := cur.nextSub
		if cur.subs[label] == nil {
			cur.subs[label] = make(map[int]func())
		}
		cur.subs[label][id] = fire
		cur.mu.Unlock()
		regs = append(regs, reg{cur, id})
	}
	return func() {
		for _, rg := range regs {
			rg.r.mu.Lock()
			delete(rg.r.subs[label], rg.id)
			rg.r.mu.Unlock()
		}
	}
}

// takeSubs removes and returns the subscribers of label. Caller holds mu.
func (r *Registry) takeSubs(label string) []func() {
	m := r.subs[label]
	if len(m) == 0 {
		return nil
	}
	delete(r.subs, label)
	out := make([]func(), 0, len(m))
	for _, fn := range m {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}
