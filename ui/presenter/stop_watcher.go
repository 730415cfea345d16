package presenter

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Stopper is the part of the pipeline the stop watcher controls.
type Stopper interface {
	Stop()
	Stopped() bool
}

// StopWatcher polls the configured stop key and stops the pipeline once it
// is held. It exits after firing or when the pipeline stops on its own.
type StopWatcher struct {
	Target   Stopper
	Logger   *slog.Logger
	Pressed  func() bool
	OnStop   func()
	interval time.Duration
	fired    atomic.Bool

	mu   sync.Mutex
	done chan struct{} // nil while not polling
}

// NewStopWatcher constructs a watcher polling pressed every 25ms.
func NewStopWatcher(target Stopper, logger *slog.Logger, pressed func() bool) *StopWatcher {
	if pressed == nil {
		pressed = func() bool { return false }
	}
	return &StopWatcher{Target: target, Logger: logger, Pressed: pressed, interval: 25 * time.Millisecond}
}

// Start begins polling on a background goroutine. Idempotent.
func (w *StopWatcher) Start() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done != nil {
		return
	}
	w.done = make(chan struct{})
	go w.loop(w.done)
}

// Close stops polling without touching the pipeline. Idempotent.
func (w *StopWatcher) Close() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done == nil {
		return
	}
	close(w.done)
	w.done = nil
}

// Fired reports whether the stop key was seen.
func (w *StopWatcher) Fired() bool { return w != nil && w.fired.Load() }

func (w *StopWatcher) loop(done chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if w.poll() {
				// stop after firing to save cycles
				w.finish(done)
				return
			}
		case <-done:
			return
		}
	}
}

// finish releases done if it still belongs to the current polling run.
func (w *StopWatcher) finish(done chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done == done {
		close(done)
		w.done = nil
	}
}

// poll reports whether the watcher is finished.
func (w *StopWatcher) poll() bool {
	if w.Target == nil || w.Target.Stopped() {
		return true
	}
	if !w.Pressed() {
		return false
	}
	w.fired.Store(true)
	w.Target.Stop()
	if w.Logger != nil {
		w.Logger.Info("stop key pressed")
	}
	if w.OnStop != nil {
		w.OnStop()
	}
	return true
}
