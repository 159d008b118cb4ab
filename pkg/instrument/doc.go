// Package instrument provides render.Observer implementations.
//
// Metrics exports passes, node churn and diagnostics to Prometheus. Totals
// keeps the same numbers in memory for tools and tests. Multi fans out to
// several observers.
package instrument
