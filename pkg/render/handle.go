package render

import (
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vdom/internal/errors"
	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/reconcile"
	"github.com/vango-dev/vdom/pkg/registry"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// MountOptions configure a mounted root.
type MountOptions struct {
	// Target is the element the tree renders into.
	Target *dom.Node

	// Registry resolves component labels.
	Registry *registry.Registry

	// Sync renders invalidated components immediately instead of on the
	// next frame. Invalidations raised during a pass are queued and
	// rendered when the pass finishes, never nested.
	Sync bool

	// TransitionStrategy runs animations given by name.
	TransitionStrategy reconcile.TransitionStrategy

	// Merge adopts the markup already in Target.
	Merge bool

	// Append keeps the existing content of Target and appends after it.
	// When neither Merge nor Append is set, Target is emptied first.
	Append bool

	// Loop drives frames in asynchronous mode. Defaults to a TickerLoop
	// at FrameInterval, owned and stopped by the Handle.
	Loop          Loop
	FrameInterval time.Duration

	// PassiveEvents are registered as passive listeners.
	PassiveEvents []string

	Logger       *slog.Logger
	Observer     Observer
	Tracer       trace.Tracer
	OnError      func(error)
	OnDiagnostic func(reconcile.Diagnostic)
}

// Option adjusts MountOptions for Append and Merge.
type Option func(*MountOptions)

// WithRegistry sets the label registry.
func WithRegistry(r *registry.Registry) Option {
	return func(o *MountOptions) { o.Registry = r }
}

// WithSync enables synchronous rendering.
func WithSync() Option {
	return func(o *MountOptions) { o.Sync = true }
}

// WithTransitions sets the transition strategy.
func WithTransitions(ts reconcile.TransitionStrategy) Option {
	return func(o *MountOptions) { o.TransitionStrategy = ts }
}

// WithLoop sets the frame loop.
func WithLoop(l Loop) Option {
	return func(o *MountOptions) { o.Loop = l }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *MountOptions) { o.Logger = l }
}

// WithObserver sets the pass observer.
func WithObserver(ob Observer) Option {
	return func(o *MountOptions) { o.Observer = ob }
}

// WithTracer sets the tracer used for pass spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *MountOptions) { o.Tracer = t }
}

// WithPassiveEvents registers the named events as passive.
func WithPassiveEvents(names ...string) Option {
	return func(o *MountOptions) { o.PassiveEvents = append(o.PassiveEvents, names...) }
}

// WithErrorHandler receives errors of passes that no caller waits for.
func WithErrorHandler(fn func(error)) Option {
	return func(o *MountOptions) { o.OnError = fn }
}

// WithDiagnostics receives reconciliation diagnostics.
func WithDiagnostics(fn func(reconcile.Diagnostic)) Option {
	return func(o *MountOptions) { o.OnDiagnostic = fn }
}

// maxDiagnostics bounds the diagnostics a Handle keeps.
const maxDiagnostics = 256

// Handle controls one mounted root. Its methods are safe for concurrent
// use; passes are serialized.
type Handle struct {
	opts   MountOptions
	log    *slog.Logger
	engine *reconcile.Engine
	tracer trace.Tracer
	loop   Loop
	owned  *TickerLoop

	passMu sync.Mutex // held for the duration of a pass

	mu          sync.Mutex // guards the fields below
	dirty       []reconcile.InstanceID
	queued      map[reconcile.InstanceID]bool
	inPass      bool
	frameQueued bool
	idleQueued  bool
	destroyed   bool
	diagnostics []reconcile.Diagnostic
}

// Mount renders root into opts.Target.
func Mount(opts MountOptions, root *vdom.VNode) (*Handle, error) {
	if opts.Target == nil {
		return nil, errors.New("E203").WithDetail("no target")
	}
	h := newHandle(opts)
	kind := PassMount
	if opts.Merge {
		kind = PassMerge
	}
	err := h.pass(kind, func() error {
		if opts.Merge {
			return h.engine.Merge(opts.Target, root)
		}
		if !opts.Append && opts.Target.FirstChild() != nil {
			opts.Target.ReplaceChildren()
		}
		return h.engine.Mount(opts.Target, root)
	})
	if err != nil {
		h.stopLoop()
		return nil, err
	}
	h.requestIdle()
	return h, nil
}

// Append renders root after the existing content of target.
func Append(target *dom.Node, root *vdom.VNode, opts ...Option) (*Handle, error) {
	o := MountOptions{Target: target, Append: true}
	for _, opt := range opts {
		opt(&o)
	}
	return Mount(o, root)
}

// Merge adopts the markup in target as the tree for root.
func Merge(target *dom.Node, root *vdom.VNode, opts ...Option) (*Handle, error) {
	o := MountOptions{Target: target, Merge: true}
	for _, opt := range opts {
		opt(&o)
	}
	return Mount(o, root)
}

func newHandle(opts MountOptions) *Handle {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	h := &Handle{
		opts:   opts,
		log:    log.With("component", "render"),
		tracer: opts.Tracer,
		loop:   opts.Loop,
		queued: make(map[reconcile.InstanceID]bool),
	}
	if h.tracer == nil {
		h.tracer = defaultTracer()
	}
	if h.loop == nil && !opts.Sync {
		h.owned = NewTickerLoop(opts.FrameInterval)
		h.loop = h.owned
	}
	passive := make(map[string]bool, len(opts.PassiveEvents))
	for _, name := range opts.PassiveEvents {
		passive[name] = true
	}
	h.engine = reconcile.New(reconcile.Options{
		Document:      opts.Target.Document(),
		Registry:      opts.Registry,
		Transitions:   opts.TransitionStrategy,
		PassiveEvents: passive,
		Logger:        log,
		OnDiagnostic:  h.diagnostic,
		OnInvalidate:  h.invalidate,
	})
	return h
}

// Engine returns the underlying engine. It must only be used from
// callbacks running inside a pass.
func (h *Handle) Engine() *reconcile.Engine { return h.engine }

// Update diffs root against the committed tree.
func (h *Handle) Update(root *vdom.VNode) error {
	if h.isDestroyed() {
		return errors.New("E204")
	}
	err := h.pass(PassUpdate, func() error { return h.engine.Update(root) })
	h.requestIdle()
	return err
}

// Flush renders every pending invalidation and re-evaluates deferred
// properties now, on the calling goroutine.
func (h *Handle) Flush() error {
	if h.isDestroyed() {
		return errors.New("E204")
	}
	return h.flush()
}

func (h *Handle) flush() error {
	h.passMu.Lock()
	defer h.passMu.Unlock()
	h.setInPass(true)
	return h.drain(true)
}

// Do runs fn with the pass lock held. DOM work done outside the engine,
// such as calling the remove callback of an exit animation from a timer,
// goes through Do.
func (h *Handle) Do(fn func()) {
	h.passMu.Lock()
	defer h.passMu.Unlock()
	fn()
}

// Rendering reports whether work is pending or in progress for this root.
func (h *Handle) Rendering() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.inPass || h.frameQueued || h.idleQueued || len(h.dirty) > 0
}

// Diagnostics returns the diagnostics reported so far, oldest first.
func (h *Handle) Diagnostics() []reconcile.Diagnostic {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]reconcile.Diagnostic(nil), h.diagnostics...)
}

// Destroy detaches every component and removes the tree. Pending renders
// are discarded. Using the handle afterwards returns E204.
func (h *Handle) Destroy() error {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return errors.New("E204")
	}
	h.destroyed = true
	h.dirty = nil
	clear(h.queued)
	h.mu.Unlock()

	h.passMu.Lock()
	err := h.observe(PassDestroy, h.engine.Destroy)
	if !h.opts.Append {
		h.opts.Target.ReplaceChildren()
	}
	h.passMu.Unlock()
	h.stopLoop()
	return err
}

func (h *Handle) stopLoop() {
	if h.owned != nil {
		h.owned.Stop()
	}
}

func (h *Handle) isDestroyed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.destroyed
}

func (h *Handle) setInPass(v bool) {
	h.mu.Lock()
	h.inPass = v
	h.mu.Unlock()
}

// pass runs fn as one pass. In sync mode the invalidations raised during
// the pass are rendered before the pass lock is released.
func (h *Handle) pass(kind string, fn func() error) error {
	h.passMu.Lock()
	defer h.passMu.Unlock()
	h.setInPass(true)
	err := h.observe(kind, fn)
	if !h.opts.Sync {
		h.setInPass(false)
		return err
	}
	if derr := h.drain(true); err == nil {
		err = derr
	}
	return err
}

// drain renders queued instances until none are left, then runs the
// deferred pass once. It clears inPass together with the final empty
// check, so an invalidation is either drained here or schedules its own
// work. The pass lock must be held.
func (h *Handle) drain(deferred bool) error {
	var first error
	note := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	for {
		h.mu.Lock()
		ids := h.takeDirty()
		if len(ids) == 0 && (!deferred || !h.engine.HasDeferred()) {
			h.inPass = false
			h.mu.Unlock()
			return first
		}
		h.mu.Unlock()
		if len(ids) > 0 {
			note(h.observe(PassRender, func() error { return h.engine.RenderDirty(ids) }))
			continue
		}
		deferred = false
		note(h.observe(PassDeferred, h.engine.RunDeferred))
	}
}

// takeDirty empties the dirty queue. h.mu must be held.
func (h *Handle) takeDirty() []reconcile.InstanceID {
	ids := h.dirty
	h.dirty = nil
	clear(h.queued)
	return ids
}

// invalidate queues id for rendering. It may run on any goroutine,
// including inside a pass.
func (h *Handle) invalidate(id reconcile.InstanceID) {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return
	}
	if !h.queued[id] {
		h.queued[id] = true
		h.dirty = append(h.dirty, id)
	}
	if h.opts.Sync {
		busy := h.inPass
		h.mu.Unlock()
		if !busy {
			h.report(h.flush())
		}
		return
	}
	if h.frameQueued {
		h.mu.Unlock()
		return
	}
	h.frameQueued = true
	h.mu.Unlock()
	h.loop.RequestFrame(h.frame)
}

func (h *Handle) frame() {
	h.mu.Lock()
	h.frameQueued = false
	if h.destroyed {
		h.mu.Unlock()
		return
	}
	ids := h.takeDirty()
	h.mu.Unlock()

	if len(ids) > 0 {
		h.report(h.pass(PassRender, func() error { return h.engine.RenderDirty(ids) }))
	}
	h.requestIdle()
}

func (h *Handle) requestIdle() {
	if h.opts.Sync {
		return
	}
	h.mu.Lock()
	if h.idleQueued || h.destroyed {
		h.mu.Unlock()
		return
	}
	h.idleQueued = true
	h.mu.Unlock()
	h.loop.RequestIdle(h.idle)
}

func (h *Handle) idle() {
	h.mu.Lock()
	h.idleQueued = false
	if h.destroyed {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	// Renders requested during the frame phase run here with the deferred
	// pass, so the root settles without waiting for another frame.
	h.passMu.Lock()
	defer h.passMu.Unlock()
	h.setInPass(true)
	err := h.drain(true)
	h.mu.Lock()
	if len(h.dirty) == 0 {
		// A frame queued for work drained above has nothing left to do.
		h.frameQueued = false
	}
	h.mu.Unlock()
	h.report(err)
}

// report hands errors of unattended passes to the error handler.
func (h *Handle) report(err error) {
	if err == nil {
		return
	}
	if h.opts.OnError != nil {
		h.opts.OnError(err)
	}
}

func (h *Handle) diagnostic(d reconcile.Diagnostic) {
	h.mu.Lock()
	if len(h.diagnostics) == maxDiagnostics {
		h.diagnostics = append(h.diagnostics[:0], h.diagnostics[1:]...)
	}
	h.diagnostics = append(h.diagnostics, d)
	h.mu.Unlock()
	if h.opts.OnDiagnostic != nil {
		h.opts.OnDiagnostic(d)
	} else {
		h.log.Warn(d.Message, "code", d.Code, "path", d.Path)
	}
	if h.opts.Observer != nil {
		h.opts.Observer.ObserveDiagnostic(d)
	}
}
