package vdom

import "github.com/vango-dev/vdom/pkg/dom"

// Optional component capabilities. The engine checks for each with a type
// assertion.
type (
	// PropertySetter receives the properties and children declared by the
	// parent before every render.
	PropertySetter interface {
		SetProperties(props Props, children []*VNode)
	}

	// Binder receives the engine handle of the instance when it is created.
	Binder interface {
		Bind(b Binding)
	}

	// Attacher is notified once the instance's DOM is in the document.
	Attacher interface {
		OnAttach()
	}

	// Detacher is notified before the instance is destroyed.
	Detacher interface {
		OnDetach()
	}

	// PropertyDiffer supplies per-property change detection that replaces
	// the default shallow comparison.
	PropertyDiffer interface {
		PropertyDiffs() map[string]PropertyDiff
	}
)

// PropertyDiff decides whether a property changed and which value the
// component receives.
type PropertyDiff func(prev, next any) PropertyChange

// PropertyChange is the result of a PropertyDiff.
type PropertyChange struct {
	Changed bool
	Value   any
}

// IgnoreDiff never reports a change and keeps the new value.
func IgnoreDiff(_, next any) PropertyChange {
	return PropertyChange{Value: next}
}

// AlwaysDiff always reports a change.
func AlwaysDiff(_, next any) PropertyChange {
	return PropertyChange{Changed: true, Value: next}
}

// Binding is the engine side of a component instance.
type Binding interface {
	// Invalidate schedules a render of the instance. Safe from any goroutine.
	Invalidate()
	// Live reports whether the instance is still mounted.
	Live() bool
	// Node returns the DOM node rendered for key within this instance.
	Node(key any) *dom.Node
	// Root returns the outermost DOM node the instance rendered.
	Root() *dom.Node
	// AddMeta registers lifecycle callbacks, called in registration order.
	AddMeta(m Meta)
}

// NodeEventType identifies a node registry notification.
type NodeEventType uint8

const (
	NodeAdded NodeEventType = iota + 1
	NodeUpdated
	NodeRemoved
	RootChanged
)

// String returns the string representation of the NodeEventType.
func (t NodeEventType) String() string {
	switch t {
	case NodeAdded:
		return "Added"
	case NodeUpdated:
		return "Updated"
	case NodeRemoved:
		return "Removed"
	case RootChanged:
		return "RootChanged"
	default:
		return "Unknown"
	}
}

// NodeEvent reports a keyed DOM node change inside a component.
type NodeEvent struct {
	Type NodeEventType
	Key  any // nil for RootChanged
	Node *dom.Node
}

// Meta holds optional lifecycle callbacks registered by helpers.
type Meta struct {
	OnAttach func()
	OnDetach func()
	OnNode   func(NodeEvent)
}

// Base is embedded by components that need Invalidate or node lookups.
//
//	type Counter struct {
//	    vdom.Base
//	    n int
//	}
//
//	func (c *Counter) Render() *vdom.VNode {
//	    return vdom.Button(vdom.OnClick(func() { c.n++; c.Invalidate() }), vdom.Textf("%d", c.n))
//	}
type Base struct {
	binding Binding
}

// Bind implements Binder.
func (b *Base) Bind(binding Binding) {
	b.binding = binding
}

// Invalidate requests a re-render. It is a no-op before the component is
// mounted.
func (b *Base) Invalidate() {
	if b.binding != nil {
		b.binding.Invalidate()
	}
}

// Live reports whether the component is mounted.
func (b *Base) Live() bool {
	return b.binding != nil && b.binding.Live()
}

// Node returns the DOM node rendered with the given key, or nil.
func (b *Base) Node(key any) *dom.Node {
	if b.binding == nil {
		return nil
	}
	return b.binding.Node(key)
}

// RootNode returns the outermost DOM node, or nil.
func (b *Base) RootNode() *dom.Node {
	if b.binding == nil {
		return nil
	}
	return b.binding.Root()
}

// AddMeta registers lifecycle callbacks.
func (b *Base) AddMeta(m Meta) {
	if b.binding != nil {
		b.binding.AddMeta(m)
	}
}
