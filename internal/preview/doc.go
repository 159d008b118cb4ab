// Package preview serves a tree file in the browser and keeps it live.
//
// The server mounts the tree into an in-memory document and serves the
// resulting markup. A polling watcher reports edits under the project
// root: an edit to the tree file is diffed against the mounted tree, and
// an edit to any other watched file remounts with freshly loaded
// components. Every re-render is pushed to connected browsers over a
// websocket together with the mutation log of the pass.
//
// Endpoints:
//
//	GET /             preview page
//	GET /_vdom/ws     live updates
//	GET /_vdom/state  current markup, totals and diagnostics as JSON
//	GET /healthz      liveness
//	GET /metrics      Prometheus metrics, when enabled
package preview
