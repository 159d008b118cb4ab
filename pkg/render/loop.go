package render

import (
	"sync"
	"time"
)

// Loop supplies frame and idle boundaries to a scheduler. Frame callbacks
// render dirty components; idle callbacks re-evaluate deferred properties.
// A callback requested while callbacks run is deferred to the next round.
type Loop interface {
	RequestFrame(fn func())
	RequestIdle(fn func())
}

// ManualLoop runs callbacks only when told to. Tests and embedders that
// own their event loop use it.
type ManualLoop struct {
	mu     sync.Mutex
	frames []func()
	idles  []func()
}

// NewManualLoop creates an empty loop.
func NewManualLoop() *ManualLoop {
	return &ManualLoop{}
}

// RequestFrame implements Loop.
func (l *ManualLoop) RequestFrame(fn func()) {
	l.mu.Lock()
	l.frames = append(l.frames, fn)
	l.mu.Unlock()
}

// RequestIdle implements Loop.
func (l *ManualLoop) RequestIdle(fn func()) {
	l.mu.Lock()
	l.idles = append(l.idles, fn)
	l.mu.Unlock()
}

// RunFrame runs the frame callbacks queued so far and returns how many ran.
func (l *ManualLoop) RunFrame() int {
	l.mu.Lock()
	fns := l.frames
	l.frames = nil
	l.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// RunIdle runs the idle callbacks queued so far and returns how many ran.
func (l *ManualLoop) RunIdle() int {
	l.mu.Lock()
	fns := l.idles
	l.idles = nil
	l.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Pending reports whether any callback is queued.
func (l *ManualLoop) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames)+len(l.idles) > 0
}

// Drain alternates frames and idle phases until nothing is queued.
func (l *ManualLoop) Drain() {
	for l.Pending() {
		l.RunFrame()
		l.RunIdle()
	}
}

// DefaultFrameInterval is the tick of loops created without an interval.
const DefaultFrameInterval = 16 * time.Millisecond

// TickerLoop runs queued frame callbacks, then idle callbacks, on every
// tick of its own goroutine.
type TickerLoop struct {
	manual   ManualLoop
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewTickerLoop starts a loop ticking at interval.
func NewTickerLoop(interval time.Duration) *TickerLoop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	l := &TickerLoop{
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *TickerLoop) run() {
	defer close(l.done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.manual.RunFrame()
			l.manual.RunIdle()
		}
	}
}

// RequestFrame implements Loop.
func (l *TickerLoop) RequestFrame(fn func()) { l.manual.RequestFrame(fn) }

// RequestIdle implements Loop.
func (l *TickerLoop) RequestIdle(fn func()) { l.manual.RequestIdle(fn) }

// Stop ends the loop goroutine and waits for it. Queued callbacks are
// dropped.
func (l *TickerLoop) Stop() {
	l.once.Do(func() { close(l.stop) })
	<-l.done
}
