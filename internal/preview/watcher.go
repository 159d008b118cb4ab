package preview

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Change represents a detected file change.
type Change struct {
	// Path is slash-separated and relative to the watcher root.
	Path    string
	Removed bool
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Root is the directory that is walked.
	Root string

	// Watch lists glob patterns of files to report. Empty reports every
	// file.
	Watch []string

	// Ignore lists glob patterns of files and directories to skip.
	Ignore []string

	// Interval is the polling period. Changes within one period are
	// reported together.
	Interval time.Duration
}

// DefaultIgnore contains patterns that are always ignored.
var DefaultIgnore = []string{
	".git/**",
	"node_modules/**",
	"**/*.tmp",
	"**/*.swp",
	"**/*~",
}

type stamp struct {
	mod  time.Time
	size int64
}

// Watcher polls a directory tree for changes.
type Watcher struct {
	config     WatcherConfig
	mu         sync.Mutex
	onChange   func([]Change)
	timestamps map[string]stamp
	primed     bool
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval <= 0 {
		config.Interval = 100 * time.Millisecond
	}
	config.Ignore = append(append([]string(nil), DefaultIgnore...), config.Ignore...)
	return &Watcher{
		config:     config,
		timestamps: make(map[string]stamp),
	}
}

// OnChange sets the callback for file changes. It runs on the goroutine
// that calls Start.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start polls until ctx is done. It always returns nil.
func (w *Watcher) Start(ctx context.Context) error {
	w.Scan()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			changes := w.Scan()
			if len(changes) == 0 {
				continue
			}
			w.mu.Lock()
			fn := w.onChange
			w.mu.Unlock()
			if fn != nil {
				fn(changes)
			}
		}
	}
}

// Scan walks the tree once and returns what changed since the previous
// scan, sorted by path. The first scan only records the current state.
func (w *Watcher) Scan() []Change {
	seen := make(map[string]stamp)
	_ = filepath.WalkDir(w.config.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(w.config.Root, p)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if w.ignored(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.ignored(rel) || !w.watched(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		seen[rel] = stamp{mod: info.ModTime(), size: info.Size()}
		return nil
	})

	w.mu.Lock()
	defer w.mu.Unlock()

	var changes []Change
	if w.primed {
		for p, s := range seen {
			prev, ok := w.timestamps[p]
			if !ok || !prev.mod.Equal(s.mod) || prev.size != s.size {
				changes = append(changes, Change{Path: p})
			}
		}
		for p := range w.timestamps {
			if _, ok := seen[p]; !ok {
				changes = append(changes, Change{Path: p, Removed: true})
			}
		}
	}
	w.timestamps = seen
	w.primed = true

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

func (w *Watcher) ignored(rel string) bool {
	return matchAny(w.config.Ignore, rel)
}

func (w *Watcher) watched(rel string) bool {
	return len(w.config.Watch) == 0 || matchAny(w.config.Watch, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
