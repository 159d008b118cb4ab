package reconcile

import (
	"github.com/vango-dev/vdom/internal/errors"
	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/vdom"
)

func (e *Engine) transitions(r *rnode, prop string) TransitionStrategy {
	if e.opts.Transitions == nil {
		e.fail(errors.New("E202").WithPath(r.path()).WithDetail(prop + " is a transition name"))
	}
	return e.opts.Transitions
}

// queueEnter schedules the enter animation of a node created after the
// first commit. A named animation needs a strategy on the first commit
// too, even though it does not run.
func (e *Engine) queueEnter(r *rnode) {
	v, ok := r.props["enterAnimation"]
	if !ok || v == nil {
		return
	}
	if e.initial {
		if _, named := v.(string); named {
			e.transitions(r, "enterAnimation")
		}
		return
	}
	n, props := r.node, r.props
	switch t := v.(type) {
	case string:
		ts := e.transitions(r, "enterAnimation")
		e.afterCommit(func() { ts.Enter(n, props, t) })
	case vdom.EnterAnimation:
		e.afterCommit(func() { t(n, props) })
	case func(*dom.Node, vdom.Props):
		e.afterCommit(func() { t(n, props) })
	}
}

func (e *Engine) queueUpdateAnimation(r *rnode, props, prev vdom.Props) {
	v, ok := props["updateAnimation"]
	if !ok || v == nil {
		return
	}
	n := r.node
	switch t := v.(type) {
	case string:
		ts := e.transitions(r, "updateAnimation")
		e.afterCommit(func() { ts.Update(n, props, prev, t) })
	case vdom.UpdateAnimation:
		e.afterCommit(func() { t(n, props, prev) })
	case func(*dom.Node, vdom.Props, vdom.Props):
		e.afterCommit(func() { t(n, props, prev) })
	}
}

// exit runs the exit animation of r. The node stays in the document, and
// is skipped by placement, until the animation calls remove. remove must be
// called from the goroutine that drives the renderer.
func (e *Engine) exit(r *rnode) {
	n, props := r.node, r.props
	remove := func() {
		if e.exiting[n] {
			delete(e.exiting, n)
			n.Remove()
		}
	}
	switch t := props["exitAnimation"].(type) {
	case string:
		ts := e.transitions(r, "exitAnimation")
		e.exiting[n] = true
		ts.Exit(n, props, t, remove)
	case vdom.ExitAnimation:
		e.exiting[n] = true
		t(n, remove, props)
	case func(*dom.Node, func(), vdom.Props):
		e.exiting[n] = true
		t(n, remove, props)
	default:
		n.Remove()
	}
}

// Exiting returns the number of nodes waiting for an exit animation.
func (e *Engine) Exiting() int {
	return len(e.exiting)
}

var directives = []struct {
	name string
	run  func(*dom.Node)
}{
	{"focus", (*dom.Node).Focus},
	{"blur", (*dom.Node).Blur},
	{"click", func(n *dom.Node) { n.Click() }},
	{"scrollIntoView", (*dom.Node).ScrollIntoView},
}

// queueDirectives schedules imperative actions after the commit. A bool
// fires on its false to true transition only; a predicate fires whenever
// it returns true.
func (e *Engine) queueDirectives(r *rnode, props vdom.Props) {
	n := r.node
	for _, d := range directives {
		run := d.run
		switch t := props[d.name].(type) {
		case bool:
			was := r.directives[d.name]
			if r.directives == nil {
				r.directives = make(map[string]bool)
			}
			r.directives[d.name] = t
			if t && !was {
				e.afterCommit(func() { run(n) })
			}
		case func() bool:
			delete(r.directives, d.name)
			e.afterCommit(func() {
				if t() {
					run(n)
				}
			})
		default:
			delete(r.directives, d.name)
		}
	}
}

// ClassTransitions is a TransitionStrategy that animates with CSS classes.
// Enter and Update add the named class and remove it on animationend or
// transitionend. Exit adds the class and removes the node when the
// animation ends.
type ClassTransitions struct{}

// Enter implements TransitionStrategy.
func (ClassTransitions) Enter(node *dom.Node, _ vdom.Props, name string) {
	flash(node, name, nil)
}

// Update implements TransitionStrategy.
func (ClassTransitions) Update(node *dom.Node, _, _ vdom.Props, name string) {
	flash(node, name, nil)
}

// Exit implements TransitionStrategy.
func (ClassTransitions) Exit(node *dom.Node, _ vdom.Props, name string, remove func()) {
	flash(node, name, remove)
}

func flash(node *dom.Node, class string, done func()) {
	node.AddClass(class)
	var regs []*dom.Registration
	end := func(*dom.Event) {
		for _, r := range regs {
			r.Remove()
		}
		node.RemoveClass(class)
		if done != nil {
			done()
		}
	}
	regs = append(regs,
		node.AddEventListener("animationend", end, dom.ListenerOptions{}),
		node.AddEventListener("transitionend", end, dom.ListenerOptions{}),
	)
}
