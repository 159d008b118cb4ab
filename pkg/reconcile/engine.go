package reconcile

import (
	"log/slog"
	"sort"

	"github.com/vango-dev/vdom/internal/errors"
	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/registry"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// TransitionStrategy runs named animations given as strings in the
// enterAnimation, exitAnimation and updateAnimation properties.
type TransitionStrategy interface {
	Enter(node *dom.Node, props vdom.Props, name string)
	// Exit must eventually call remove; the node stays in the document
	// until it does.
	Exit(node *dom.Node, props vdom.Props, name string, remove func())
	Update(node *dom.Node, props, prev vdom.Props, name string)
}

// RegistryProvider is implemented by components that define a registry
// scope for the components they render.
type RegistryProvider interface {
	Registry() *registry.Registry
}

// Options configure an Engine.
type Options struct {
	Document    *dom.Document
	Registry    *registry.Registry
	Transitions TransitionStrategy

	// PassiveEvents lists event names registered as passive listeners.
	PassiveEvents map[string]bool

	Logger       *slog.Logger
	OnDiagnostic func(Diagnostic)

	// OnInvalidate is called when a mounted component asks to be
	// rendered again. It may be called from any goroutine.
	OnInvalidate func(InstanceID)
}

// Stats counts the work done by the last pass.
type Stats struct {
	Rendered int // component renders
	Created  int // DOM nodes created
	Removed  int // subtrees removed
	Moved    int // DOM insertions, including first placement
}

// Engine reconciles one mounted tree against the live DOM. It is not safe
// for concurrent use; the render package serializes passes.
type Engine struct {
	opts  Options
	log   *slog.Logger
	doc   *dom.Document
	store *Store

	root     *rnode
	initial  bool
	teardown bool

	post     []func()
	deferred []*rnode
	exiting  map[*dom.Node]bool
	stats    Stats

	// created and spawned record the nodes and instances made by the
	// current pass, for rollback.
	created []*rnode
	spawned []*Instance
}

// passError carries an error out of a pass.
type passError struct{ err error }

// New creates an engine.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		opts:    opts,
		log:     log.With("component", "reconcile"),
		doc:     opts.Document,
		store:   NewStore(),
		exiting: make(map[*dom.Node]bool),
	}
}

// Store returns the instance store.
func (e *Engine) Store() *Store { return e.store }

// Stats returns the counters of the last pass.
func (e *Engine) Stats() Stats { return e.stats }

// Mounted reports whether a tree is mounted.
func (e *Engine) Mounted() bool { return e.root != nil }

// Nodes returns the top-level DOM nodes of the mounted tree.
func (e *Engine) Nodes() []*dom.Node {
	if e.root == nil {
		return nil
	}
	var out []*dom.Node
	for _, c := range e.root.children {
		out = c.domNodes(out)
	}
	return out
}

func (e *Engine) fail(err error) {
	panic(passError{err})
}

// run executes one pass. Errors raised with fail abort the pass and are
// returned; post-commit callbacks run only when the pass succeeds.
//
// A failure can be raised many frames deep inside the tree walk, including
// from a component's Render, so fail unwinds with a private panic value
// that run recovers into the returned error. Panics of any other value are
// re-raised. A recovered failure rolls the pass back before returning.
func (e *Engine) run(fn func()) (err error) {
	e.stats = Stats{}
	e.post = e.post[:0]
	e.resetPass()
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(passError)
			if !ok {
				panic(r)
			}
			e.post = e.post[:0]
			e.rollback()
			e.initial = false
			e.resetPass()
			err = pe.err
		}
	}()
	fn()
	e.resetPass()
	for i := 0; i < len(e.post); i++ {
		e.post[i]()
	}
	e.post = e.post[:0]
	return nil
}

func (e *Engine) resetPass() {
	clear(e.created)
	e.created = e.created[:0]
	clear(e.spawned)
	e.spawned = e.spawned[:0]
}

// rollback discards the work of an aborted pass. Nodes created by the pass
// leave the document and their instances are destroyed without detach
// hooks, since they never attached. Committed nodes removed before the
// failure are dropped from the committed tree. Nodes the pass patched keep
// their new state.
func (e *Engine) rollback() {
	if !e.initial {
		for _, r := range e.created {
			if !r.dead && r.node != nil && r.v.Kind != vdom.KindDOM {
				r.node.Remove()
			}
		}
	}
	for _, r := range e.created {
		if !r.dead {
			r.walk(discard)
		}
	}
	for i := len(e.spawned) - 1; i >= 0; i-- {
		if in := e.spawned[i]; in.Live() {
			e.destroyInstance(in)
		}
	}
	if e.root != nil {
		e.root.walk(func(r *rnode) {
			live := r.children[:0]
			for _, c := range r.children {
				if !c.dead {
					live = append(live, c)
				}
			}
			clear(r.children[len(live):])
			r.children = live
		})
	}
	e.post = e.post[:0]
}

// discard marks r dead and forgets its key registration.
func discard(r *rnode) {
	r.dead = true
	in := r.owner
	if r.node == nil || in == nil || in.nodes == nil {
		return
	}
	if key, ok := r.v.Key(); ok {
		nk := normalizeKey(key)
		if in.nodes[nk] == r.node {
			delete(in.nodes, nk)
		}
	}
}

func (e *Engine) afterCommit(fn func()) {
	e.post = append(e.post, fn)
}

func (e *Engine) checkTarget(target *dom.Node) error {
	if e.doc == nil || target == nil || !target.IsElement() || target.Document() != e.doc {
		return errors.New("E203")
	}
	if e.root != nil {
		return errors.New("E203").WithDetail("the engine already has a mounted tree")
	}
	return nil
}

// Mount creates the tree for root and appends it to target.
func (e *Engine) Mount(target *dom.Node, root *vdom.VNode) error {
	if err := e.checkTarget(target); err != nil {
		return err
	}
	err := e.run(func() {
		e.initial = true
		e.root = &rnode{host: target}
		e.root.children = e.reconcileChildren(e.root, nil, normalize([]*vdom.VNode{root}), nil)
		e.place(e.root)
		e.initial = false
	})
	if err != nil {
		e.root = nil
	}
	return err
}

// Update diffs root against the committed tree.
func (e *Engine) Update(root *vdom.VNode) error {
	if e.root == nil {
		return errors.New("E204").WithDetail("nothing is mounted")
	}
	return e.run(func() {
		e.root.children = e.reconcileChildren(e.root, e.root.children, normalize([]*vdom.VNode{root}), nil)
		e.place(e.root)
	})
}

// RenderDirty renders the given instances, parents before children.
// Instances that were destroyed, or re-rendered by an ancestor in the same
// pass, are skipped.
func (e *Engine) RenderDirty(ids []InstanceID) error {
	if e.root == nil {
		return nil
	}
	return e.run(func() {
		list := make([]*Instance, 0, len(ids))
		for _, id := range ids {
			if in := e.store.Get(id); in != nil {
				in.dirty = true
				list = append(list, in)
			}
		}
		sort.SliceStable(list, func(i, j int) bool { return list[i].depth < list[j].depth })
		for _, in := range list {
			if !in.Live() || !in.dirty {
				continue
			}
			e.renderInstance(in, true, nil)
		}
	})
}

// HasDeferred reports whether any mounted node has deferred properties.
func (e *Engine) HasDeferred() bool {
	return len(e.deferred) > 0
}

// RunDeferred re-evaluates deferred properties of every mounted node.
func (e *Engine) RunDeferred() error {
	return e.run(func() {
		live := e.deferred[:0]
		for _, r := range e.deferred {
			if r.dead || r.v.Deferred == nil {
				r.tracked = false
				continue
			}
			live = append(live, r)
		}
		for i := len(live); i < len(e.deferred); i++ {
			e.deferred[i] = nil
		}
		e.deferred = live
		for _, r := range append([]*rnode(nil), live...) {
			if r.dead {
				continue
			}
			d := r.v.Deferred()
			r.deferred = d
			next := overlay(d, r.v.Props)
			changed := e.applyProps(r, r.props, next, r.v.DiffType(), modeUpdate)
			e.applyEvents(r, next)
			if changed {
				e.queueUpdateAnimation(r, next, r.props)
			}
			r.props = next
			e.queueDirectives(r, next)
		}
	})
}

// Destroy detaches every component bottom-up and removes the engine's
// DOM nodes from the document.
func (e *Engine) Destroy() error {
	if e.root == nil {
		return nil
	}
	return e.run(func() {
		e.teardown = true
		for _, c := range e.root.children {
			e.remove(c)
		}
		for n := range e.exiting {
			n.Remove()
			delete(e.exiting, n)
		}
		e.root = nil
		e.deferred = nil
		e.teardown = false
	})
}
