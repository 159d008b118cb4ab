package render

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vdom/pkg/reconcile"
)

// TracerName is the instrumentation name of the default tracer.
const TracerName = "github.com/vango-dev/vdom/pkg/render"

// Pass kinds reported to observers.
const (
	PassMount    = "mount"
	PassMerge    = "merge"
	PassUpdate   = "update"
	PassRender   = "render"
	PassDeferred = "deferred"
	PassDestroy  = "destroy"
)

// Pass describes one completed render pass.
type Pass struct {
	Kind     string
	Stats    reconcile.Stats
	Duration time.Duration
	Err      error
}

// Observer receives pass results and diagnostics. Calls happen on the
// goroutine running the pass, with the pass lock held; implementations
// must not call back into the Handle.
type Observer interface {
	ObservePass(p Pass)
	ObserveDiagnostic(d reconcile.Diagnostic)
}

// observe runs one engine operation inside a span and reports it.
func (h *Handle) observe(kind string, fn func() error) error {
	_, span := h.tracer.Start(context.Background(), "vdom."+kind,
		trace.WithAttributes(attribute.String("vdom.pass", kind)),
	)
	start := time.Now()
	err := fn()
	dur := time.Since(start)
	st := h.engine.Stats()

	span.SetAttributes(
		attribute.Int("vdom.rendered", st.Rendered),
		attribute.Int("vdom.created", st.Created),
		attribute.Int("vdom.removed", st.Removed),
		attribute.Int("vdom.moved", st.Moved),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.log.Error("render pass failed", "pass", kind, "error", err)
	} else {
		span.SetStatus(codes.Ok, "")
		h.log.Debug("render pass", "pass", kind, "duration", dur,
			"rendered", st.Rendered, "created", st.Created, "removed", st.Removed)
	}
	span.End()

	if h.opts.Observer != nil {
		h.opts.Observer.ObservePass(Pass{Kind: kind, Stats: st, Duration: dur, Err: err})
	}
	return err
}

func defaultTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
