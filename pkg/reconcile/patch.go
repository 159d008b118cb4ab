package reconcile

import (
	"strings"

	"github.com/vango-dev/vdom/internal/errors"
	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// create builds the rendered node and DOM for v. The DOM is not inserted
// into parent; the caller places it.
func (e *Engine) create(v *vdom.VNode, parent *rnode, owner *Instance) *rnode {
	r := &rnode{v: v, parent: parent, owner: owner}
	e.created = append(e.created, r)
	switch v.Kind {
	case vdom.KindText:
		r.node = e.doc.CreateTextNode(v.Text)
		e.stats.Created++
	case vdom.KindComponent:
		e.createComponent(r, nil)
	case vdom.KindDOM:
		e.createRaw(r)
	default:
		switch v.Tag {
		case vdom.TagBody, vdom.TagHead:
			e.createGroup(r)
		default:
			e.createElement(r)
		}
	}
	return r
}

// patch updates r, which matched v by kind and key, to describe v.
func (e *Engine) patch(r *rnode, v *vdom.VNode) {
	if r.v == v {
		return
	}
	prev := r.v
	r.v = v
	switch v.Kind {
	case vdom.KindText:
		if prev.Text != v.Text {
			r.node.SetData(v.Text)
		}
	case vdom.KindComponent:
		e.updateComponent(r)
	case vdom.KindDOM:
		e.updateRaw(r)
	default:
		if r.node == nil {
			r.children = e.reconcileChildren(r, r.children, normalize(v.Children), r.owner)
			e.place(r)
			return
		}
		e.updateElement(r)
	}
}

func (e *Engine) createGroup(r *rnode) {
	if r.v.Tag == vdom.TagHead {
		r.host = e.doc.Head()
	} else {
		r.host = e.doc.Body()
	}
	if r.host == nil {
		r.host = e.doc.DocumentElement()
	}
	r.children = e.reconcileChildren(r, nil, normalize(r.v.Children), r.owner)
	e.place(r)
}

func (e *Engine) createElement(r *rnode) {
	v := r.v
	ns := v.Namespace
	if ns == "" {
		ns = inheritedNamespace(r.parent)
	}
	r.node = e.doc.CreateElementNS(ns, v.Tag)
	e.stats.Created++

	props := e.effectiveProps(r, v)
	if _, ok := props["innerHTML"]; !ok {
		r.children = e.reconcileChildren(r, nil, normalize(v.Children), r.owner)
		e.place(r)
	}
	e.applyProps(r, nil, props, v.DiffType(), modeCreate)
	e.applyEvents(r, props)
	r.props = props
	e.registerNode(r)
	e.queueEnter(r)
	e.queueDirectives(r, props)
}

func (e *Engine) updateElement(r *rnode) {
	v := r.v
	next := e.effectiveProps(r, v)
	if _, ok := next["innerHTML"]; !ok {
		r.children = e.reconcileChildren(r, r.children, normalize(v.Children), r.owner)
		e.place(r)
	}
	changed := e.applyProps(r, r.props, next, v.DiffType(), modeUpdate)
	e.applyEvents(r, next)
	if changed {
		e.queueUpdateAnimation(r, next, r.props)
	}
	r.props = next
	e.queueDirectives(r, next)
}

// inheritedNamespace returns the namespace children of p's element use:
// SVG inside <svg> except below <foreignObject>.
func inheritedNamespace(p *rnode) string {
	for ; p != nil; p = p.parent {
		if !p.ownsDOM() {
			continue
		}
		n := p.container()
		if n.Namespace() == "svg" && !strings.EqualFold(n.Tag(), "foreignObject") {
			return dom.SVGNamespace
		}
		return ""
	}
	return ""
}

func (e *Engine) createRaw(r *rnode) {
	raw := r.v.Raw
	if raw == nil || raw.Node == nil {
		e.fail(errors.New("E206").WithPath(r.path()))
	}
	r.node = raw.Node

	props := e.effectiveProps(r, r.v)
	if len(r.v.Children) > 0 {
		r.children = e.reconcileChildren(r, nil, normalize(r.v.Children), r.owner)
		e.place(r)
	}
	e.applyProps(r, nil, props, r.v.DiffType(), modeAdopt)
	e.applyEvents(r, props)
	r.props = props
	e.registerNode(r)
	e.queueEnter(r)
	if raw.OnAttach != nil {
		n := r.node
		e.afterCommit(func() { raw.OnAttach(n) })
	}
	e.queueDirectives(r, props)
}

func (e *Engine) updateRaw(r *rnode) {
	raw := r.v.Raw
	next := e.effectiveProps(r, r.v)
	r.children = e.reconcileChildren(r, r.children, normalize(r.v.Children), r.owner)
	e.place(r)
	changed := e.applyProps(r, r.props, next, r.v.DiffType(), modeUpdate)
	e.applyEvents(r, next)
	if changed {
		e.queueUpdateAnimation(r, next, r.props)
	}
	r.props = next
	if raw.OnUpdate != nil {
		n := r.node
		e.afterCommit(func() { raw.OnUpdate(n) })
	}
	e.queueDirectives(r, next)
}

// effectiveProps returns v's properties with deferred results underneath,
// evaluating the deferred callback.
func (e *Engine) effectiveProps(r *rnode, v *vdom.VNode) vdom.Props {
	if v.Deferred == nil {
		return v.Props
	}
	d := v.Deferred()
	r.deferred = d
	if !r.tracked {
		r.tracked = true
		e.deferred = append(e.deferred, r)
	}
	return overlay(d, v.Props)
}

// overlay merges static over deferred; static properties win.
func overlay(deferred, static vdom.Props) vdom.Props {
	out := make(vdom.Props, len(deferred)+len(static))
	for k, val := range deferred {
		out[k] = val
	}
	for k, val := range static {
		out[k] = val
	}
	return out
}

// remove detaches r bottom-up and takes its DOM out of the document.
func (e *Engine) remove(r *rnode) {
	if !e.teardown && e.opts.Transitions == nil {
		e.checkExit(r)
	}
	e.detach(r)
	e.removeDOM(r)
	e.stats.Removed++
}

func (e *Engine) detach(r *rnode) {
	for _, c := range r.children {
		e.detach(c)
	}
	r.dead = true
	if r.node != nil {
		e.unregisterNode(r)
	}
	switch {
	case r.inst != nil:
		e.destroyInstance(r.inst)
	case r.v.Kind == vdom.KindDOM:
		r.removeEvents()
		if fn := r.v.Raw.OnDetach; fn != nil {
			fn(r.node)
		}
	}
}

// removeDOM removes r's top-level DOM nodes from their physical parents,
// including nodes relocated to body or head anywhere below r.
func (e *Engine) removeDOM(r *rnode) {
	if r.node == nil {
		for _, c := range r.children {
			e.removeDOM(c)
		}
		return
	}
	e.removeRelocated(r)
	if r.v.Kind == vdom.KindElement && !e.teardown {
		if _, ok := r.props["exitAnimation"]; ok {
			e.exit(r)
			return
		}
	}
	r.node.Remove()
}

// checkExit fails with E202 when removing r would start a named exit
// animation. It visits the nodes removeDOM would and runs before anything
// is detached.
func (e *Engine) checkExit(r *rnode) {
	if r.node == nil {
		for _, c := range r.children {
			e.checkExit(c)
		}
		return
	}
	e.checkRelocatedExit(r)
	if r.v.Kind != vdom.KindElement {
		return
	}
	if _, named := r.props["exitAnimation"].(string); named {
		e.transitions(r, "exitAnimation")
	}
}

func (e *Engine) checkRelocatedExit(r *rnode) {
	for _, c := range r.children {
		if c.isGroup() {
			e.checkExit(c)
			continue
		}
		e.checkRelocatedExit(c)
	}
}

func (e *Engine) removeRelocated(r *rnode) {
	for _, c := range r.children {
		if c.isGroup() {
			e.removeDOM(c)
			continue
		}
		e.removeRelocated(c)
	}
}
