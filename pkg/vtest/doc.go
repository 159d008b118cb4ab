// Package vtest provides testing helpers for vdom components.
//
// # Render Assertions
//
// Assert on the HTML a tree renders to:
//
//	vtest.ExpectContains(t, view, "Welcome")
//	vtest.ExpectAttribute(t, view, "class", "btn-primary")
//
// # Mounted Trees
//
// Mount renders synchronously into a fresh document so tests can drive
// events and inspect the DOM with XPath:
//
//	func TestCounter(t *testing.T) {
//	    m := vtest.Mount(t, vdom.Comp(NewCounter, nil))
//	    m.Click("//button")
//	    m.ExpectText("//span", "1")
//	    m.ExpectOps(dom.OpCreate, 0)
//	}
//
// The mutation log is cleared after mounting, so ExpectOps and
// ExpectNoMutations count only what later updates did.
package vtest
