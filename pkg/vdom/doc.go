// Package vdom describes UI trees as immutable virtual nodes.
//
// A VNode is an element (tag, props, children), a text node, a component
// node (a Factory or a registry label plus props and children) or a wrapper
// around an existing DOM node. Building a tree never touches the DOM; the
// reconcile package turns trees into DOM operations.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(ClassList("card"), ID("main"), Key(7),
//	    H1("Title"),
//	    P(Text("Content")),
//	    OnClick(handler),
//	)
//
// Element(tag, props, children...) takes an explicit property map instead.
//
// # Recognized properties
//
//   - key: identity among siblings of the same tag or component
//   - classes, styles: engine-controlled class set and inline styles
//   - diffType: "vdom" (default), "dom" or "none"
//   - on*: event handlers, func(*dom.Event) or func()
//   - focus, blur, click, scrollIntoView: directives, bool or func() bool
//   - enterAnimation, exitAnimation, updateAnimation: name or func
//   - innerHTML, value, checked, selected, indeterminate, textContent
//
// Everything else is written as an attribute. true renders as an empty
// attribute; false and nil remove it.
//
// # Relocation
//
// Head and Body place their children in document.head and document.body.
// Fragment contributes no element and splices its children into the parent.
//
// # Components
//
// A Component renders a VNode. Optional interfaces (PropertySetter, Binder,
// Attacher, Detacher, PropertyDiffer) add lifecycle behavior. Embed Base to
// get Invalidate and keyed node lookups.
package vdom
