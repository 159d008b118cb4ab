// Package reconcile turns virtual trees into DOM and keeps the two in sync.
//
// An Engine owns one rendered tree. Mount creates it, Update diffs a new
// virtual tree against it and applies the minimal set of DOM mutations,
// and Merge adopts markup that is already in the document. Components get
// a persistent instance in the Store for as long as their slot survives;
// RenderDirty re-renders instances that invalidated themselves.
//
// Siblings are matched by key when they have one and by position and tag
// otherwise. Ambiguous or duplicate keys, unresolved labels and bad
// handler values are reported as Diagnostics and never abort a pass.
//
// The Engine is not safe for concurrent use; package render serializes
// access to it.
package reconcile
