package reconcile

import (
	"strings"

	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// listener is the single native registration for one event name. Handler
// changes swap the target without touching the DOM.
type listener struct {
	reg     *dom.Registration
	handler any
}

func (l *listener) fire(ev *dom.Event) {
	switch h := l.handler.(type) {
	case func(*dom.Event):
		h(ev)
	case func():
		h()
	}
}

func validHandler(h any) bool {
	switch h.(type) {
	case func(*dom.Event), func():
		return true
	}
	return false
}

// applyEvents attaches, swaps and detaches handlers for r.
func (e *Engine) applyEvents(r *rnode, next vdom.Props) {
	seen := 0
	for k, h := range next {
		if !vdom.IsEventKey(k) {
			continue
		}
		if h == nil {
			continue
		}
		if !validHandler(h) {
			e.diag(DiagBadHandler, r.path(), "handler for %s has unsupported type %T", k, h)
			continue
		}
		seen++
		name := strings.TrimPrefix(k, "on")
		if l, ok := r.listeners[name]; ok {
			l.handler = h
			continue
		}
		if r.listeners == nil {
			r.listeners = make(map[string]*listener)
		}
		l := &listener{handler: h}
		l.reg = r.node.AddEventListener(name, l.fire, dom.ListenerOptions{
			Passive: e.opts.PassiveEvents[name],
		})
		r.listeners[name] = l
	}
	if len(r.listeners) == seen {
		return
	}
	for name, l := range r.listeners {
		if h, ok := next["on"+name]; ok && h != nil && validHandler(h) {
			continue
		}
		l.reg.Remove()
		delete(r.listeners, name)
	}
}

// removeEvents drops every listener of r. Used for wrapped DOM nodes, which
// outlive the engine's ownership.
func (r *rnode) removeEvents() {
	for name, l := range r.listeners {
		l.reg.Remove()
		delete(r.listeners, name)
	}
}
