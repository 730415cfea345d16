package app

import (
	"context"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/skillcheck-bot-go/config"
	"github.com/soocke/skillcheck-bot-go/debug"
	"github.com/soocke/skillcheck-bot-go/ui/presenter"
)

const debugLogInterval = 5 * time.Second

type app struct {
	title   string
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	c       *AppContainer
	afterID string
	cancel  context.CancelFunc
}

// NewApp builds the container and configures the main window.
func NewApp(title string, cfg *config.Config, cfgPath string, logger *slog.Logger) (*app, error) {
	c, err := BuildContainer(cfg, logger, cfgPath)
	if err != nil {
		return nil, err
	}
	a := &app{title: title, cfg: cfg, cfgPath: cfgPath, logger: logger, c: c}
	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	return a, nil
}

// Start builds the view, launches the pipeline and stop watcher, and blocks
// in the Tk event loop until the window is destroyed.
func (a *app) Start() {
	a.c.RootView.Build(a.exitHandler)
	a.c.Loop = presenter.NewLoop(a.c.SessionPresenter, a.c.StatePresenter, a.c.PreviewPresenter, a.c.Run, a.exitHandler, a.scheduleUpdate)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.c.Run.SetRunning(true)
	go func() {
		if err := a.c.Pipeline.Run(ctx); err != nil {
			a.logger.Error("pipeline run", "error", err)
		}
	}()
	a.c.StopWatcher.Start()
	if a.cfg.Debug {
		debug.StartRuntimeLogger(ctx, debugLogInterval, a.logger, a.c.Pipeline.Stats)
	}
	a.logger.Info("app started", "title", a.title, "config", a.cfgPath, "stop_key", a.cfg.StopKey)

	// Kick off update loop.
	a.scheduleUpdate()

	App.Wait()
	a.shutdown()
}

// exitHandler runs on the Tk thread for the Exit button, the Escape key,
// window close, and a pipeline stop observed by the update loop.
func (a *app) exitHandler() {
	// Cancel scheduled after event if any.
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
		a.afterID = ""
	}
	a.c.ExitPresenter.Exit()
}

// shutdown releases background work once the Tk loop has returned.
func (a *app) shutdown() {
	a.c.StopWatcher.Close()
	a.c.Pipeline.Stop()
	if a.cancel != nil {
		a.cancel()
	}
	s := a.c.Pipeline.Stats()
	a.logger.Info("app stopped", "ticks", s.Ticks, "triggers", s.Triggers, "capture_failures", s.CaptureFailures)
}

func (a *app) scheduleUpdate() {
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(a.cfg.PreviewPoll(), func() { a.c.Loop.Tick() })
}
