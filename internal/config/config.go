package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vango-dev/vdom/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vdom.json"

	// DefaultPort is the default preview server port.
	DefaultPort = 3100

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultFrameInterval is the default async frame interval.
	DefaultFrameInterval = "16ms"

	// DefaultDebounce is the default delay between a file change and a
	// re-render in the preview server.
	DefaultDebounce = "100ms"

	// DefaultTree is the default tree file served by the preview server.
	DefaultTree = "tree.yaml"

	// DefaultNamespace is the default Prometheus metric namespace.
	DefaultNamespace = "vdom"

	// DefaultMetricsPath is the default metrics endpoint.
	DefaultMetricsPath = "/metrics"
)

// Diagnostic levels for render.diagnostics.
const (
	DiagnosticsDebug = "debug"
	DiagnosticsWarn  = "warn"
	DiagnosticsOff   = "off"
)

// Config represents the complete vdom.json configuration.
type Config struct {
	Render  RenderConfig  `json:"render"`
	Preview PreviewConfig `json:"preview"`
	Metrics MetricsConfig `json:"metrics"`

	// configPath is the path where this config was loaded from.
	configPath string
}

// RenderConfig configures the renderer used by the CLI and the preview
// server.
type RenderConfig struct {
	// Sync renders immediately on invalidation instead of on frames.
	Sync bool `json:"sync,omitempty"`

	// FrameInterval is the async frame period as a Go duration.
	FrameInterval string `json:"frameInterval,omitempty"`

	// PassiveEvents lists events registered as passive listeners.
	PassiveEvents []string `json:"passiveEvents,omitempty"`

	// Diagnostics is the log level for engine diagnostics: debug, warn or off.
	Diagnostics string `json:"diagnostics,omitempty"`
}

// PreviewConfig configures the preview server.
type PreviewConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`

	// Tree is the tree file rendered by the server, relative to the
	// project root.
	Tree string `json:"tree,omitempty"`

	// Title is the page title.
	Title string `json:"title,omitempty"`

	// Watch lists glob patterns of files that trigger a re-render.
	Watch []string `json:"watch,omitempty"`

	// Ignore lists glob patterns excluded from watching.
	Ignore []string `json:"ignore,omitempty"`

	// Debounce is the delay before re-rendering after a change.
	Debounce string `json:"debounce,omitempty"`
}

// MetricsConfig configures Prometheus instrumentation.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	Path      string `json:"path,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from vdom.json in the specified directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No vdom.json found in " + filepath.Dir(path)).
				WithSuggestion("Create vdom.json or pass flags on the command line")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithPath(path).
			WithDetail("Failed to parse vdom.json: " + err.Error()).
			WithSuggestion("Check that vdom.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").WithPath(path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Render.FrameInterval == "" {
		c.Render.FrameInterval = DefaultFrameInterval
	}
	if c.Render.Diagnostics == "" {
		c.Render.Diagnostics = DiagnosticsWarn
	}

	if c.Preview.Host == "" {
		c.Preview.Host = DefaultHost
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = DefaultPort
	}
	if c.Preview.Tree == "" {
		c.Preview.Tree = DefaultTree
	}
	if c.Preview.Watch == nil {
		c.Preview.Watch = []string{"**/*.yaml", "**/*.yml", "**/*.json"}
	}
	if c.Preview.Ignore == nil {
		c.Preview.Ignore = []string{".git/**", "node_modules/**", ConfigFileName}
	}
	if c.Preview.Debounce == "" {
		c.Preview.Debounce = DefaultDebounce
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if d, err := time.ParseDuration(c.Render.FrameInterval); err != nil || d <= 0 {
		return errors.New("E121").
			WithDetail("render.frameInterval is " + strconv.Quote(c.Render.FrameInterval))
	}
	switch c.Render.Diagnostics {
	case DiagnosticsDebug, DiagnosticsWarn, DiagnosticsOff:
	default:
		return errors.New("E125").
			WithDetail("render.diagnostics is " + strconv.Quote(c.Render.Diagnostics))
	}
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return errors.New("E122").
			WithDetail("Port must be between 0 and 65535")
	}
	if d, err := time.ParseDuration(c.Preview.Debounce); err != nil || d <= 0 {
		return errors.New("E123").
			WithDetail("preview.debounce is " + strconv.Quote(c.Preview.Debounce))
	}
	for _, list := range [][]string{c.Preview.Watch, c.Preview.Ignore} {
		for _, p := range list {
			if !doublestar.ValidatePattern(p) {
				return errors.New("E124").WithDetail("pattern " + strconv.Quote(p))
			}
		}
	}
	return nil
}

// FrameInterval returns render.frameInterval as a duration. Invalid values
// fall back to the default.
func (c *Config) FrameInterval() time.Duration {
	if d, err := time.ParseDuration(c.Render.FrameInterval); err == nil && d > 0 {
		return d
	}
	return 16 * time.Millisecond
}

// Debounce returns preview.debounce as a duration. Invalid values fall back
// to the default.
func (c *Config) Debounce() time.Duration {
	if d, err := time.ParseDuration(c.Preview.Debounce); err == nil && d > 0 {
		return d
	}
	return 100 * time.Millisecond
}

// PreviewAddress returns the listen address of the preview server.
func (c *Config) PreviewAddress() string {
	return net.JoinHostPort(c.Preview.Host, strconv.Itoa(c.Preview.Port))
}

// PreviewURL returns the full URL of the preview server.
func (c *Config) PreviewURL() string {
	return "http://" + c.PreviewAddress()
}

// TreePath returns the absolute path to the previewed tree file.
func (c *Config) TreePath() string {
	if filepath.IsAbs(c.Preview.Tree) {
		return c.Preview.Tree
	}
	return filepath.Join(c.Dir(), c.Preview.Tree)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing vdom.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No vdom.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the nearest project root
// above the working directory. When there is none, it returns defaults
// rooted at the working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		if errors.HasCode(err, "E141") {
			cfg := New()
			cfg.configPath = filepath.Join(wd, ConfigFileName)
			return cfg, nil
		}
		return nil, err
	}

	return Load(root)
}
