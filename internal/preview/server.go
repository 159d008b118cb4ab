package preview

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/vdom/internal/config"
	vderrors "github.com/vango-dev/vdom/internal/errors"
	"github.com/vango-dev/vdom/internal/treefile"
	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/instrument"
	"github.com/vango-dev/vdom/pkg/reconcile"
	"github.com/vango-dev/vdom/pkg/registry"
	"github.com/vango-dev/vdom/pkg/render"
	"github.com/vango-dev/vdom/pkg/vdom"
)

const (
	wsPath    = "/_vdom/ws"
	statePath = "/_vdom/state"

	// maxReportedMutations caps the mutation list sent to browsers.
	maxReportedMutations = 200

	shutdownTimeout = 5 * time.Second
)

// Options configures the preview server.
type Options struct {
	// Config is the project configuration.
	Config *config.Config

	// TreePath overrides the tree file from the configuration.
	TreePath string

	Logger *slog.Logger

	// Metrics receives the Prometheus metrics when metrics are enabled.
	// Defaults to a new registry served on the metrics path.
	Metrics *prometheus.Registry

	// Tracer traces requests and render passes. Defaults to the global
	// OpenTelemetry provider.
	Tracer trace.Tracer
}

// Server renders a tree file through the engine, re-renders it when files
// change, and pushes each patch to connected browsers.
type Server struct {
	cfg      *config.Config
	log      *slog.Logger
	treePath string
	root     string
	hub      *Hub
	watcher  *Watcher
	promReg  *prometheus.Registry
	metrics  *instrument.Metrics
	totals   *instrument.Totals
	router   chi.Router
	tracer   trace.Tracer

	ctx    context.Context
	cancel context.CancelFunc

	// mu serializes reloads and guards the fields below.
	mu      sync.Mutex
	doc     *dom.Document
	target  *dom.Node
	handle  *render.Handle
	reg     *registry.Registry
	lastErr error
	addr    string
}

// New loads the tree file and mounts it.
func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	treePath := opts.TreePath
	if treePath == "" {
		treePath = cfg.TreePath()
	}
	treePath, err := filepath.Abs(treePath)
	if err != nil {
		return nil, err
	}

	root := cfg.Dir()
	if root == "" {
		root = filepath.Dir(treePath)
	}

	s := &Server{
		cfg:      cfg,
		log:      log.With("component", "preview"),
		treePath: treePath,
		root:     root,
		totals:   instrument.NewTotals(),
		promReg:  opts.Metrics,
		tracer:   opts.Tracer,
	}
	s.hub = NewHub(s.log)
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if cfg.Metrics.Enabled {
		if s.promReg == nil {
			s.promReg = prometheus.NewRegistry()
		}
		s.metrics = instrument.New(
			instrument.WithRegistry(s.promReg),
			instrument.WithNamespace(cfg.Metrics.Namespace),
		)
	}

	s.doc = dom.NewDocument()
	s.target = s.doc.CreateElement("div")
	s.target.SetAttr("id", "root")
	s.doc.Body().AppendChild(s.target)

	tree, err := treefile.Load(treePath)
	if err != nil {
		s.cancel()
		return nil, err
	}
	if err := s.mount(tree); err != nil {
		s.cancel()
		return nil, err
	}

	s.watcher = NewWatcher(WatcherConfig{
		Root:     root,
		Watch:    cfg.Preview.Watch,
		Ignore:   cfg.Preview.Ignore,
		Interval: cfg.Debounce(),
	})
	s.watcher.OnChange(s.handleChanges)
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(tracing(s.tracer))

	r.Get("/", s.handlePage)
	r.Get(statePath, s.handleState)
	r.Get(wsPath, s.hub.HandleWebSocket)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if s.metrics != nil {
		r.Handle(s.cfg.Metrics.Path, promhttp.HandlerFor(s.promReg, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Totals returns the accumulated pass statistics.
func (s *Server) Totals() *instrument.Totals {
	return s.totals
}

// Addr returns the listen address once Run has started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// mount renders tree into a fresh handle, replacing the current one.
// Caller holds mu or has exclusive access.
func (s *Server) mount(tree treefile.Node) error {
	if s.handle != nil {
		if err := s.handle.Destroy(); err != nil {
			s.log.Warn("destroy before remount failed", "error", err)
		}
		s.handle = nil
	}

	s.reg = treefile.Components(s.ctx, s.componentDir(), tree,
		registry.WithLogger(s.log.With("component", "registry")))

	observers := []render.Observer{s.totals}
	if s.metrics != nil {
		observers = append(observers, s.metrics)
	}
	h, err := render.Mount(render.MountOptions{
		Target:        s.target,
		Registry:      s.reg,
		Sync:          s.cfg.Render.Sync,
		FrameInterval: s.cfg.FrameInterval(),
		PassiveEvents: s.cfg.Render.PassiveEvents,
		Logger:        s.log,
		Observer:      instrument.Multi(observers...),
		Tracer:        s.tracer,
		OnError:       s.reportPassError,
		OnDiagnostic:  s.logDiagnostic,
	}, tree.Build())
	if err != nil {
		return err
	}
	s.handle = h
	return nil
}

func (s *Server) componentDir() string {
	return filepath.Dir(s.treePath)
}

func (s *Server) logDiagnostic(d reconcile.Diagnostic) {
	switch s.cfg.Render.Diagnostics {
	case config.DiagnosticsOff:
	case config.DiagnosticsDebug:
		s.log.Debug("diagnostic", "code", d.Code, "message", d.Message, "path", d.Path)
	default:
		s.log.Warn("diagnostic", "code", d.Code, "message", d.Message, "path", d.Path)
	}
}

func (s *Server) reportPassError(err error) {
	s.log.Error("background render failed", "error", err)
	s.hub.Broadcast(Message{Type: MsgError, Error: err.Error()})
}

// handleChanges reacts to a batch of file changes. A change to the tree
// file is diffed against the mounted tree; a change to any other file
// remounts, since component files are read once per mount.
func (s *Server) handleChanges(changes []Change) {
	if len(changes) == 0 {
		return
	}
	treeRel, _ := filepath.Rel(s.root, s.treePath)
	treeRel = filepath.ToSlash(treeRel)

	remount := false
	for _, c := range changes {
		if c.Path != treeRel {
			remount = true
		}
	}

	s.log.Info("files changed", "count", len(changes), "remount", remount)
	var err error
	if remount {
		_, err = s.Remount()
	} else {
		_, err = s.Reload()
	}
	if err != nil {
		s.log.Error("re-render failed", "error", err)
	}
}

// Reload reads the tree file and patches the mounted tree to match it.
// The resulting patch is broadcast to every client.
func (s *Server) Reload() (Message, error) {
	return s.rerender(false)
}

// Remount reads the tree file and mounts it from scratch with freshly
// loaded components.
func (s *Server) Remount() (Message, error) {
	return s.rerender(true)
}

func (s *Server) rerender(remount bool) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return Message{}, vderrors.New("E204")
	}

	tree, err := treefile.Load(s.treePath)
	if err != nil {
		return s.failLocked(err)
	}

	before := s.totals.Stats()
	s.handle.Do(s.doc.ResetMutations)
	if remount {
		err = s.mount(tree)
	} else {
		treefile.Define(s.ctx, s.reg, s.componentDir(), tree)
		err = s.handle.Update(tree.Build())
	}
	if err != nil {
		return s.failLocked(err)
	}

	if s.lastErr != nil {
		s.lastErr = nil
		s.hub.Broadcast(Message{Type: MsgClear})
	}
	msg := s.patchMessage(before, remount)
	s.hub.Broadcast(msg)
	s.log.Info("patched", "mutations", msg.Stats.Mutations,
		"created", msg.Stats.Created, "removed", msg.Stats.Removed)
	return msg, nil
}

// failLocked records err and reports it to every client. Caller holds mu.
func (s *Server) failLocked(err error) (Message, error) {
	s.lastErr = err

	text := err.Error()
	var ve *vderrors.Error
	if errors.As(err, &ve) {
		text = ve.Format()
	}
	msg := Message{Type: MsgError, Error: text, File: s.treePath}
	s.hub.Broadcast(msg)
	return msg, err
}

// patchMessage summarizes the passes run since before was taken. Caller
// holds mu.
func (s *Server) patchMessage(before reconcile.Stats, remounted bool) Message {
	after := s.totals.Stats()
	msg := Message{Type: MsgPatch, Stats: &PatchStats{
		Rendered:  after.Rendered - before.Rendered,
		Created:   after.Created - before.Created,
		Removed:   after.Removed - before.Removed,
		Moved:     after.Moved - before.Moved,
		Remounted: remounted,
	}}
	s.handle.Do(func() {
		log := s.doc.Mutations()
		msg.Stats.Mutations = len(log)
		for i, m := range log {
			if i == maxReportedMutations {
				break
			}
			msg.Mutations = append(msg.Mutations, m.String())
		}
		msg.HTML = s.htmlLocked()
	})
	return msg
}

// htmlLocked serializes the mount target. Caller holds the pass lock.
func (s *Server) htmlLocked() string {
	var sb strings.Builder
	if err := render.NewRenderer(render.RendererConfig{}).WriteChildren(&sb, s.target); err != nil {
		s.log.Error("serialize failed", "error", err)
	}
	return sb.String()
}

// HTML returns the current markup of the mounted tree.
func (s *Server) HTML() string {
	s.mu.Lock()
	h := s.handle
	s.mu.Unlock()
	if h == nil {
		return ""
	}

	var out string
	h.Do(func() { out = s.htmlLocked() })
	return out
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	title := s.cfg.Preview.Title
	if title == "" {
		title = filepath.Base(s.treePath)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := render.NewStreamingRenderer(w, render.RendererConfig{}).RenderPage(render.PageData{
		Title: title,
		Body:  vdom.Div(vdom.ID("root"), vdom.InnerHTML(s.HTML())),
		Scripts: []render.ScriptTag{
			{Inline: ClientScript},
		},
	})
	if err != nil {
		s.log.Error("render page failed", "error", err)
	}
}

// State is the JSON document served on the state endpoint.
type State struct {
	Tree        string            `json:"tree"`
	HTML        string            `json:"html"`
	Error       string            `json:"error,omitempty"`
	Clients     int               `json:"clients"`
	Totals      PatchStats        `json:"totals"`
	Diagnostics []StateDiagnostic `json:"diagnostics"`
}

// StateDiagnostic is a diagnostic as reported on the state endpoint.
type StateDiagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	totals := s.totals.Stats()
	st := State{
		Tree:    s.treePath,
		Clients: s.hub.ClientCount(),
		Totals: PatchStats{
			Rendered: totals.Rendered,
			Created:  totals.Created,
			Removed:  totals.Removed,
			Moved:    totals.Moved,
		},
		Diagnostics: []StateDiagnostic{},
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	h := s.handle
	s.mu.Unlock()

	if h != nil {
		h.Do(func() { st.HTML = s.htmlLocked() })
		for _, d := range h.Diagnostics() {
			st.Diagnostics = append(st.Diagnostics, StateDiagnostic{Code: d.Code, Message: d.Message, Path: d.Path})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		s.log.Error("encode state failed", "error", err)
	}
}

// ListenAndServe listens on the configured preview address and runs the
// server until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.PreviewAddress())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln and the file watcher until ctx is done
// or either fails, then shuts both down and destroys the mounted tree.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()
	s.log.Info("preview server listening", "addr", s.addr, "tree", s.treePath)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.watcher.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.hub.Close()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close destroys the mounted tree and stops component loaders.
func (s *Server) Close() error {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return nil
	}
	err := s.handle.Destroy()
	s.handle = nil
	if s.reg != nil {
		s.reg.Wait()
	}
	return err
}
