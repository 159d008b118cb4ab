// Package render mounts virtual trees and schedules their re-renders.
//
// A mounted root is controlled through a Handle:
//
//	h, err := render.Mount(render.MountOptions{Target: doc.Body()}, app)
//	...
//	err = h.Update(next)
//	err = h.Destroy()
//
// Append keeps the existing content of the target; Merge adopts it, which
// is how server-rendered markup becomes interactive.
//
// # Scheduling
//
// Components invalidate themselves from any goroutine. Invalidations are
// queued per root and rendered on the next frame of the root's Loop,
// parents before children; after each frame the idle phase re-evaluates
// deferred properties. With Sync set, invalidations render immediately
// instead, and those raised during a pass are rendered when it finishes.
// Passes of one root never overlap.
//
// # HTML output
//
// Renderer produces HTML by mounting into a scratch document, so server
// output and client merge agree node for node:
//
//	html, err := render.RenderToString(app)
//
// RenderPage and StreamingRenderer produce full documents.
package render
