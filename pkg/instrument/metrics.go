package instrument

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vdom/pkg/reconcile"
	"github.com/vango-dev/vdom/pkg/render"
)

// Config configures the Prometheus observer.
type Config struct {
	// Namespace is the metrics namespace (default: "vdom").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for pass duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vdom",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a render.Observer that records passes and diagnostics as
// Prometheus metrics.
//
// Metrics collected:
//   - vdom_passes_total: Counter of passes by kind and status
//   - vdom_pass_duration_seconds: Histogram of pass duration by kind
//   - vdom_component_renders_total: Counter of component renders
//   - vdom_nodes_created_total: Counter of DOM nodes created
//   - vdom_nodes_removed_total: Counter of subtrees removed
//   - vdom_nodes_moved_total: Counter of DOM insertions
//   - vdom_diagnostics_total: Counter of diagnostics by code
//
// Example:
//
//	m := instrument.New(instrument.WithNamespace("app"))
//	h, err := render.Mount(render.MountOptions{Target: root, Observer: m}, view)
//
//	http.Handle("/metrics", promhttp.Handler())
type Metrics struct {
	passes       *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	renders      prometheus.Counter
	created      prometheus.Counter
	removed      prometheus.Counter
	moved        prometheus.Counter
	diagnostics  *prometheus.CounterVec
}

var _ render.Observer = (*Metrics)(nil)

// New creates the metrics and registers them. It panics if the metrics are
// already registered in the chosen registry.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Buckets == nil {
		config.Buckets = prometheus.DefBuckets
	}

	factory := promauto.With(config.Registry)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "passes_total",
			Help:        "Total number of render passes",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),

		passDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pass_duration_seconds",
			Help:        "Render pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		renders: counter("component_renders_total", "Total number of component renders"),
		created: counter("nodes_created_total", "Total number of DOM nodes created"),
		removed: counter("nodes_removed_total", "Total number of DOM subtrees removed"),
		moved:   counter("nodes_moved_total", "Total number of DOM node insertions"),

		diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "diagnostics_total",
			Help:        "Total number of engine diagnostics by code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),
	}
}

// ObservePass implements render.Observer.
func (m *Metrics) ObservePass(p render.Pass) {
	status := "success"
	if p.Err != nil {
		status = "error"
	}
	m.passes.WithLabelValues(p.Kind, status).Inc()
	m.passDuration.WithLabelValues(p.Kind).Observe(p.Duration.Seconds())

	m.renders.Add(float64(p.Stats.Rendered))
	m.created.Add(float64(p.Stats.Created))
	m.removed.Add(float64(p.Stats.Removed))
	m.moved.Add(float64(p.Stats.Moved))
}

// ObserveDiagnostic implements render.Observer.
func (m *Metrics) ObserveDiagnostic(d reconcile.Diagnostic) {
	m.diagnostics.WithLabelValues(d.Code).Inc()
}
