package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Comp creates a component node. The factory is called once per mounted
// instance; props and children are handed to the instance before each render.
func Comp(factory Factory, props Props, children ...any) *VNode {
	return &VNode{
		Kind:     KindComponent,
		Comp:     CompRef{Factory: factory},
		Props:    props,
		Children: appendChildren(nil, children, nil),
	}
}

// Lazy creates a component node resolved by label through the nearest
// registry. Until the label resolves the node renders nothing.
func Lazy(label string, props Props, children ...any) *VNode {
	return &VNode{
		Kind:     KindComponent,
		Comp:     CompRef{Label: label},
		Props:    props,
		Children: appendChildren(nil, children, nil),
	}
}

// DOM wraps an existing DOM node. The engine inserts, updates and removes
// it but never recreates it.
func DOM(raw RawDOM, children ...any) *VNode {
	r := raw
	return &VNode{
		Kind:     KindDOM,
		Props:    raw.Props,
		Raw:      &r,
		Children: appendChildren(nil, children, nil),
	}
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// IfElse returns the first node if condition is true, the second otherwise.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Unless is the inverse of If.
// Returns the node if condition is false.
func Unless(condition bool, node *VNode) *VNode {
	if !condition {
		return node
	}
	return nil
}

// Range maps a slice to VNodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	result := make([]*VNode, 0, len(items))
	for i, item := range items {
		node := fn(item, i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Repeat creates n nodes using the given function.
func Repeat(n int, fn func(i int) *VNode) []*VNode {
	if n <= 0 {
		return nil
	}
	result := make([]*VNode, 0, n)
	for i := 0; i < n; i++ {
		node := fn(i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Key sets the reconciliation key. Strings, numbers, booleans and nil are
// all valid keys; 0, false, nil and "" are distinct.
func Key(key any) Attr {
	return attr("key", key)
}

// Nothing returns nil, useful for conditional rendering.
func Nothing() *VNode {
	return nil
}

// Either returns first if it's not nil, otherwise second.
func Either(first, second *VNode) *VNode {
	if first != nil {
		return first
	}
	return second
}

// Group is an alias for Fragment.
func Group(children ...any) *VNode {
	return Fragment(children...)
}
