package vdom

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/vango-dev/vdom/pkg/dom"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, relocation tags
	KindText                   // Plain text node
	KindComponent              // Nested component
	KindDOM                    // Wrapped, externally owned DOM node
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComponent:
		return "Component"
	case KindDOM:
		return "DOM"
	default:
		return "Unknown"
	}
}

// Relocation tags. Elements with these tags have no DOM element of their own.
const (
	TagBody    = "body"
	TagHead    = "head"
	TagVirtual = "virtual"
)

// VNode is the virtual DOM node. Nodes are treated as immutable once built.
type VNode struct {
	Kind      VKind
	Tag       string       // Element tag name (e.g., "div")
	Namespace string       // "" for HTML, dom.SVGNamespace for SVG
	Props     Props        // Attributes, properties, handlers, directives
	Children  []*VNode     // Child nodes
	Text      string       // For KindText
	Comp      CompRef      // For KindComponent
	Deferred  DeferredFunc // Evaluated at commit and again after each frame
	Raw       *RawDOM      // For KindDOM
}

// Props holds attributes, DOM properties, event handlers and directives.
type Props map[string]any

// Clone returns a shallow copy of p.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Key returns the reconciliation key and whether one is set. A nil key is a
// valid key distinct from an absent one.
func (v *VNode) Key() (any, bool) {
	if v == nil || v.Props == nil {
		return nil, false
	}
	k, ok := v.Props["key"]
	return k, ok
}

// IsRelocation reports whether v is a body, head or virtual element.
func (v *VNode) IsRelocation() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	switch v.Tag {
	case TagBody, TagHead, TagVirtual:
		return true
	}
	return false
}

// DiffType returns the property diff policy of v.
func (v *VNode) DiffType() DiffType {
	if v == nil {
		return DiffVDOM
	}
	if v.Kind == KindDOM && v.Raw != nil && v.Raw.DiffType != "" {
		return v.Raw.DiffType
	}
	if dt, ok := v.Props["diffType"]; ok {
		switch t := dt.(type) {
		case DiffType:
			return t
		case string:
			return DiffType(t)
		}
	}
	return DiffVDOM
}

// IsInteractive returns true if this node has event handlers.
func (v *VNode) IsInteractive() bool {
	if v == nil || (v.Kind != KindElement && v.Kind != KindDOM) {
		return false
	}
	for key := range v.Props {
		if IsEventKey(key) {
			return true
		}
	}
	return false
}

// IsEventKey reports whether a property key names an event handler.
func IsEventKey(key string) bool {
	return len(key) > 2 && strings.HasPrefix(key, "on")
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler any    // func(*dom.Event) or func()
}

// DiffType selects what a node's properties are compared against.
type DiffType string

const (
	// DiffVDOM compares against the previously described properties.
	DiffVDOM DiffType = "vdom"
	// DiffDOM compares against the live DOM values.
	DiffDOM DiffType = "dom"
	// DiffNone re-applies every property on every patch.
	DiffNone DiffType = "none"
)

// DeferredFunc computes properties after the node is in the document.
type DeferredFunc func() Props

// RawDOM describes an externally created DOM node handed to the engine.
type RawDOM struct {
	Node     *dom.Node
	Props    Props
	DiffType DiffType

	OnAttach func(*dom.Node)
	OnUpdate func(*dom.Node)
	OnDetach func(*dom.Node)
}

// Animation hook signatures for the enterAnimation, exitAnimation and
// updateAnimation properties. String values are delegated to the renderer's
// transition strategy instead.
type (
	EnterAnimation  func(node *dom.Node, props Props)
	ExitAnimation   func(node *dom.Node, remove func(), props Props)
	UpdateAnimation func(node *dom.Node, props, prev Props)
)

// Factory constructs a component instance.
//
// Two component nodes refer to the same component when their factories
// share the same code. Use package-level functions (or method expressions)
// as factories; closures created from a single literal are indistinguishable.
type Factory func() Component

// CompRef names the component a node renders: a factory, or a label that
// is resolved through the nearest registry.
type CompRef struct {
	Factory Factory
	Label   string
}

// Identity returns a string that is equal for references to the same
// component.
func (c CompRef) Identity() string {
	if c.Factory != nil {
		return "f:" + funcID(c.Factory)
	}
	return "l:" + c.Label
}

func funcID(fn any) string {
	return strconv.FormatUint(uint64(reflect.ValueOf(fn).Pointer()), 16)
}

// Component is anything that can render to a VNode. Render may return nil
// to render nothing, or a Fragment to render several nodes.
type Component interface {
	Render() *VNode
}

// FuncComponent wraps a render function.
type FuncComponent struct {
	render func() *VNode
}

// Render implements Component.
func (f *FuncComponent) Render() *VNode {
	return f.render()
}

// Func creates a component from a render function.
func Func(render func() *VNode) Component {
	return &FuncComponent{render: render}
}
