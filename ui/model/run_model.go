package model

import (
	"sync/atomic"
)

// RunModel tracks whether the pipeline is running. The zero value is stopped and usable.
// Concurrency-safe via atomic Bool because the stop watcher and presenter ticks may race.
type RunModel struct{ running atomic.Bool }

// Running reports whether the pipeline is currently running.
func (m *RunModel) Running() bool {
	if m == nil {
		return false
	}
	return m.running.Load()
}

// SetRunning stores the running flag and reports whether it changed.
func (m *RunModel) SetRunning(b bool) bool {
	if m == nil {
		return false
	}
	return m.running.CompareAndSwap(!b, b)
}
