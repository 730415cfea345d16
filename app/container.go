package app

import (
	"fmt"
	"log/slog"

	"github.com/soocke/skillcheck-bot-go/config"
	"github.com/soocke/skillcheck-bot-go/domain/action"
	"github.com/soocke/skillcheck-bot-go/domain/capture"
	"github.com/soocke/skillcheck-bot-go/domain/pipeline"
	"github.com/soocke/skillcheck-bot-go/domain/skillcheck"
	"github.com/soocke/skillcheck-bot-go/domain/track"
	"github.com/soocke/skillcheck-bot-go/ui/model"
	"github.com/soocke/skillcheck-bot-go/ui/presenter"
	"github.com/soocke/skillcheck-bot-go/ui/view"
)

// AppContainer assembles models, the pipeline, presenters and the root view.
type AppContainer struct {
	Config   *config.Config
	Logger   *slog.Logger
	Run      *model.RunModel
	Session  *model.SessionModel
	Readout  *model.ReadoutModel
	Pipeline *pipeline.Loop
	RootView *view.RootView
	UI       view.UI

	// Presenters
	SessionPresenter *presenter.SessionPresenter
	StatePresenter   *presenter.StatePresenter
	PreviewPresenter *presenter.PreviewPresenter
	ExitPresenter    *presenter.ExitPresenter
	StopWatcher      *presenter.StopWatcher
	Loop             *presenter.Loop
}

// BuildContainer constructs all components. Nothing runs until the app starts
// the pipeline and the Tk loop.
func BuildContainer(cfg *config.Config, logger *slog.Logger, cfgPath string) (*AppContainer, error) {
	c := &AppContainer{Config: cfg, Logger: logger}
	c.Run = &model.RunModel{}
	c.Session = model.NewSessionModel()
	c.Readout = model.NewReadoutModel()

	strategy, err := track.NewStrategy(cfg.TrackStrategy, cfg.BarThicknessFraction, cfg.DarkThreshold)
	if err != nil {
		logger.Warn("track strategy fallback", "error", err, "strategy", strategy.Name())
	}
	c.Pipeline, err = pipeline.New(cfg, pipeline.Deps{
		Grabber:  capture.NewGrabber(cfg.CaptureBackend, logger),
		Strategy: strategy,
		Actions:  skillcheck.Actions{Release: action.ReleaseLeft},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	// View
	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	c.UI = c.RootView

	// Presenters
	c.StatePresenter = presenter.NewStatePresenter(c.UI)
	c.Pipeline.Trigger().AddListener(c.StatePresenter.OnState)
	c.SessionPresenter = presenter.NewSessionPresenter(c.Session, c.Run, c.UI)
	c.PreviewPresenter = presenter.NewPreviewPresenter(presenter.PreviewSources{
		Frames:     c.Pipeline.Frames,
		GreyMasks:  c.Pipeline.GreyMasks,
		WhiteMasks: c.Pipeline.WhiteMasks,
		TrackMasks: c.Pipeline.TrackMasks,
		Releases:   c.Pipeline.Trigger(),
	}, c.UI, c.Readout)
	c.ExitPresenter = presenter.NewExitPresenter(c.Run, c.Pipeline, c.UI, logger)

	vk := action.ParseVK(cfg.StopKey)
	c.StopWatcher = presenter.NewStopWatcher(c.Pipeline, logger, func() bool { return action.KeyDown(vk) })
	c.StopWatcher.OnStop = func() { c.Run.SetRunning(false) }
	// Loop is created by the app once the scheduler exists.
	return c, nil
}
