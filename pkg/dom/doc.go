// Package dom is the live document the vdom engine reconciles against.
//
// A Document is an in-memory, mutable HTML tree backed by
// golang.org/x/net/html nodes. On top of the parsed tree it keeps what a
// browser keeps beside the markup: DOM properties that are not reflected to
// attributes (an input's value), event listeners, the focused element, and
// a log of every mutation applied through this package.
//
// # Mutation Log
//
// Every structural, attribute, property, text, and listener change made
// through Node methods appends a Mutation to the owning document. Tests use
// the log to assert that a commit was minimal:
//
//	doc.ResetMutations()
//	handle.Update(tree)
//	if n := doc.MutationCount(); n != 0 {
//	    t.Errorf("idempotent commit produced %d mutations", n)
//	}
//
// # Markup
//
// Parse and ParseFragment read server markup, Render and OuterHTML write it
// back, and QueryAll evaluates XPath expressions with htmlquery.
package dom
