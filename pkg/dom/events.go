package dom

// Event is dispatched to listeners. It bubbles from the target to the root.
type Event struct {
	Type          string
	Target        *Node
	CurrentTarget *Node
	Detail        any

	stopped   bool
	prevented bool
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// PreventDefault marks the default action as canceled.
func (e *Event) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.prevented }

// Listener handles an event.
type Listener func(*Event)

// ListenerOptions configure AddEventListener.
type ListenerOptions struct {
	Passive bool
	Capture bool
}

// Registration is a handle returned by AddEventListener.
type Registration struct {
	node    *Node
	typ     string
	fn      Listener
	opts    ListenerOptions
	removed bool
}

// Options returns the options the listener was registered with.
func (r *Registration) Options() ListenerOptions { return r.opts }

// Remove unregisters the listener. Calling it twice is a no-op.
func (r *Registration) Remove() {
	if r.removed {
		return
	}
	r.removed = true
	list := r.node.listeners[r.typ]
	for i, l := range list {
		if l == r {
			r.node.listeners[r.typ] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(r.node.listeners[r.typ]) == 0 {
		delete(r.node.listeners, r.typ)
	}
	r.node.doc.record(Mutation{Op: OpUnlisten, Target: r.node, Name: r.typ})
}

// AddEventListener registers fn for events of type typ.
func (n *Node) AddEventListener(typ string, fn Listener, opts ListenerOptions) *Registration {
	if opts.Passive && !n.doc.SupportsPassive {
		opts.Passive = false
	}
	r := &Registration{node: n, typ: typ, fn: fn, opts: opts}
	if n.listeners == nil {
		n.listeners = make(map[string][]*Registration)
	}
	n.listeners[typ] = append(n.listeners[typ], r)
	n.doc.record(Mutation{Op: OpListen, Target: n, Name: typ})
	return r
}

// ListenerCount returns the number of listeners registered for typ.
func (n *Node) ListenerCount(typ string) int {
	return len(n.listeners[typ])
}

// Listeners returns the registrations for typ.
func (n *Node) Listeners(typ string) []*Registration {
	return append([]*Registration(nil), n.listeners[typ]...)
}

// Dispatch delivers ev to n and its ancestors. It reports whether the
// default action was left uncanceled.
func (n *Node) Dispatch(ev *Event) bool {
	ev.Target = n
	for cur := n; cur != nil; cur = cur.Parent() {
		list := cur.listeners[ev.Type]
		if len(list) > 0 {
			ev.CurrentTarget = cur
			for _, r := range append([]*Registration(nil), list...) {
				if r.removed {
					continue
				}
				r.fn(ev)
			}
		}
		if ev.stopped {
			break
		}
	}
	return !ev.prevented
}

// DispatchEvent creates and dispatches an event of type typ.
func (n *Node) DispatchEvent(typ string) *Event {
	ev := &Event{Type: typ}
	n.Dispatch(ev)
	return ev
}

// Click dispatches a click event. Clicking a checkbox toggles it first.
func (n *Node) Click() *Event {
	if n.Tag() == "input" {
		if t, _ := n.Attr("type"); t == "checkbox" {
			n.setUserProp("checked", !n.Checked())
		}
	}
	return n.DispatchEvent("click")
}

// Input simulates typing: it sets the value and dispatches an input event.
func (n *Node) Input(value string) *Event {
	n.SetValue(value)
	return n.DispatchEvent("input")
}

func (n *Node) setUserProp(name string, v any) {
	if n.props == nil {
		n.props = make(map[string]any)
	}
	n.props[name] = v
}

// Focus makes n the active element.
func (n *Node) Focus() {
	if n.doc.active == n {
		return
	}
	if prev := n.doc.active; prev != nil {
		prev.DispatchEvent("blur")
	}
	n.doc.active = n
	n.DispatchEvent("focus")
}

// Blur clears focus if n is the active element.
func (n *Node) Blur() {
	if n.doc.active != n {
		return
	}
	n.doc.active = nil
	n.DispatchEvent("blur")
}
