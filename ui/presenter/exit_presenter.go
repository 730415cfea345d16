package presenter

import (
	"log/slog"
	"time"
)

// Lifecycle narrows what the exit presenter needs from the pipeline.
type Lifecycle interface {
	Stop()
	Wait(timeout time.Duration) bool
}

// RunModel stores the running flag.
type RunModel interface {
	Running() bool
	SetRunning(bool) bool
}

// ExitView tears down the window.
type ExitView interface {
	Close()
}

// ExitPresenter owns the shutdown order: stop the pipeline, wait for it,
// then close the window.
type ExitPresenter struct {
	model   RunModel
	service Lifecycle
	view    ExitView
	logger  *slog.Logger
	timeout time.Duration
	closed  bool
}

func NewExitPresenter(model RunModel, service Lifecycle, view ExitView, logger *slog.Logger) *ExitPresenter {
	return &ExitPresenter{model: model, service: service, view: view, logger: logger, timeout: time.Second}
}

// Exit stops the pipeline and closes the view. Idempotent; call on the UI thread.
func (p *ExitPresenter) Exit() {
	if p == nil || p.closed || p.model == nil || p.service == nil || p.view == nil {
		return
	}
	p.closed = true
	p.service.Stop()
	if !p.service.Wait(p.timeout) && p.logger != nil {
		p.logger.Warn("pipeline did not stop in time", "timeout", p.timeout)
	}
	p.model.SetRunning(false)
	p.view.Close()
}
