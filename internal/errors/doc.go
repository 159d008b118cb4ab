// Package errors provides structured, actionable errors for the vdom engine
// and its tooling.
//
// Every error carries a code (e.g. "E201") that maps to a category, a short
// message, and a longer explanation. Errors raised while reconciling a tree
// can also carry the logical path of the offending node so the message points
// at the place in the virtual tree rather than at Go source.
//
// # Categories
//
//   - render: failures inside a render pass (component panics, animations)
//   - registry: component label resolution
//   - config: vdom.json loading and validation
//   - cli: tree files, HTML inputs, command usage
//
// # Usage
//
//	err := errors.New("E202").
//	    WithPath("div > ul > li[key=3]").
//	    WithSuggestion("Pass a TransitionStrategy in render.MountOptions")
//
//	fmt.Println(err.Format())
package errors
