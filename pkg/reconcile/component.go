package reconcile

import (
	"github.com/vango-dev/vdom/internal/errors"
	"github.com/vango-dev/vdom/pkg/registry"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// createComponent creates the instance for r and renders it. When c is
// non-nil the first render adopts existing markup through c.
func (e *Engine) createComponent(r *rnode, c *cursor) {
	in := &Instance{
		engine:   e,
		ref:      r.v.Comp,
		parent:   r.owner,
		rn:       r,
		props:    r.v.Props,
		children: r.v.Children,
		registry: e.opts.Registry,
	}
	if p := r.owner; p != nil {
		in.depth = p.depth + 1
		in.registry = p.scope()
	}
	e.store.create(in)
	e.spawned = append(e.spawned, in)
	r.inst = in

	if !e.resolve(in) {
		return
	}
	e.renderInstance(in, false, c)
}

// scope returns the registry that in's rendered components resolve
// labels against.
func (in *Instance) scope() *registry.Registry {
	if p, ok := in.comp.(RegistryProvider); ok {
		if reg := p.Registry(); reg != nil {
			return reg
		}
	}
	return in.registry
}

// resolve constructs the component value. It reports false while the label
// is unresolved; the instance then renders nothing and is invalidated when
// the label settles.
func (e *Engine) resolve(in *Instance) bool {
	if in.comp != nil {
		return true
	}
	var factory vdom.Factory
	if in.ref.Factory != nil {
		factory = in.ref.Factory
	} else {
		label := in.ref.Label
		if in.registry == nil {
			in.pending = true
			e.diag(DiagUnresolvedLabel, in.rn.path(), "no registry in scope for label %q", label)
			return false
		}
		entry := in.registry.Lookup(label)
		switch entry.State {
		case registry.Resolved:
			factory = entry.Factory
		case registry.Failed:
			in.pending = true
			e.diag(DiagLabelFailed, in.rn.path(), "label %q failed to load: %v", label, entry.Err)
			return false
		default:
			if entry.State == registry.Missing {
				e.diag(DiagUnresolvedLabel, in.rn.path(), "label %q is not defined; rendering nothing until it is", label)
			}
			in.pending = true
			if in.unsub == nil {
				in.unsub = in.registry.Subscribe(label, in.Invalidate)
				// The label may have settled between Lookup and Subscribe.
				if in.registry.Lookup(label).State != entry.State {
					in.Invalidate()
				}
			}
			return false
		}
	}

	if in.unsub != nil {
		in.unsub()
		in.unsub = nil
	}
	in.pending = false
	in.comp = factory()
	if b, ok := in.comp.(vdom.Binder); ok {
		b.Bind(in)
	}
	if s, ok := in.comp.(vdom.PropertySetter); ok {
		s.SetProperties(in.props, in.children)
	}
	e.afterCommit(func() { e.attach(in) })
	return true
}

// renderInstance calls Render and reconciles the output. scoped renders
// place the instance's DOM themselves; renders driven by a parent leave
// placement to the parent.
func (e *Engine) renderInstance(in *Instance, scoped bool, c *cursor) {
	if !e.resolve(in) {
		in.dirty = false
		return
	}
	r := in.rn
	out := e.callRender(in)
	in.rendered = out
	in.dirty = false
	e.stats.Rendered++

	next := normalize([]*vdom.VNode{out})
	if c != nil {
		r.children = e.mergeList(r, next, in, c)
	} else {
		r.children = e.reconcileChildren(r, r.children, next, in)
	}
	if scoped {
		e.place(r)
	}
	e.updateRoot(in)
}

// callRender runs Render, turning a panic into an E201 pass error.
func (e *Engine) callRender(in *Instance) (out *vdom.VNode) {
	defer func() {
		if rec := recover(); rec != nil {
			if pe, ok := rec.(passError); ok {
				panic(pe)
			}
			e.fail(errors.FromPanic(rec, "E201").WithPath(in.rn.path()))
		}
	}()
	return in.comp.Render()
}

// updateComponent hands new properties to the instance and renders it if
// they changed or it was invalidated. Custom property diffs decide first.
func (e *Engine) updateComponent(r *rnode) {
	in := r.inst
	next := r.v.Props

	var diffs map[string]vdom.PropertyDiff
	if d, ok := in.comp.(vdom.PropertyDiffer); ok {
		diffs = d.PropertyDiffs()
	}

	changed := false
	props := make(vdom.Props, len(next))
	for k, nv := range next {
		pv, had := in.props[k]
		if fn, ok := diffs[k]; ok {
			res := fn(pv, nv)
			props[k] = res.Value
			changed = changed || res.Changed
			continue
		}
		props[k] = nv
		if !had || !sameValue(pv, nv) {
			changed = true
		}
	}
	for k := range in.props {
		if _, ok := next[k]; !ok {
			changed = true
		}
	}
	if !sameChildren(in.children, r.v.Children) {
		changed = true
	}

	in.props = props
	in.children = r.v.Children
	if in.comp == nil {
		if in.pending && e.resolve(in) {
			e.renderInstance(in, false, nil)
		}
		return
	}
	if s, ok := in.comp.(vdom.PropertySetter); ok {
		s.SetProperties(props, r.v.Children)
	}
	if changed || in.dirty {
		e.renderInstance(in, false, nil)
	}
}

func sameChildren(a, b []*vdom.VNode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (e *Engine) attach(in *Instance) {
	if !in.Live() || in.attached {
		return
	}
	in.attached = true
	if a, ok := in.comp.(vdom.Attacher); ok {
		a.OnAttach()
	}
	for _, m := range in.metas {
		if m.OnAttach != nil {
			m.OnAttach()
		}
	}
}

func (e *Engine) destroyInstance(in *Instance) {
	if in.unsub != nil {
		in.unsub()
		in.unsub = nil
	}
	if in.attached {
		if d, ok := in.comp.(vdom.Detacher); ok {
			d.OnDetach()
		}
		for _, m := range in.metas {
			if m.OnDetach != nil {
				m.OnDetach()
			}
		}
		in.attached = false
	}
	e.store.destroy(in.id)
}
