package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"
	"golang.org/x/time/rate"

	"github.com/soocke/skillcheck-bot-go/config"
	"github.com/soocke/skillcheck-bot-go/domain/capture"
	"github.com/soocke/skillcheck-bot-go/domain/skillcheck"
	"github.com/soocke/skillcheck-bot-go/domain/track"
	"github.com/soocke/skillcheck-bot-go/domain/vision"
)

const statsLogInterval = 5 * time.Second

var (
	// ErrCapture wraps capture boundary failures. Such ticks are retried
	// after the short capture retry delay.
	ErrCapture = errors.New("pipeline: capture failed")

	ErrAlreadyRunning = errors.New("pipeline: already running")
)

// Deps are the collaborators the loop drives.
type Deps struct {
	Grabber  capture.Grabber
	Strategy track.Strategy
	Actions  skillcheck.Actions
}

// Readout summarises one tick.
type Readout struct {
	Tick        uint64
	At          time.Time
	GreyFound   bool
	WhiteFound  bool
	Grey        image.Point
	White       image.Point
	HasAngle    bool
	Angle       float64
	Velocity    float64
	HasDistance bool
	Distance    float64
	State       skillcheck.State
	Fired       bool
}

// Frame is the annotated capture published after each tick.
type Frame struct {
	Image   image.Image
	Readout Readout
}

// Stats summarises loop behaviour for instrumentation.
type Stats struct {
	Ticks           uint64
	CaptureFailures uint64
	TickErrors      uint64
	Triggers        uint64
	Dropped         uint64
	AvgTick         time.Duration
	Last            Readout
}

// Loop runs capture, detection and triggering on its own goroutine and
// publishes results through single-slot mailboxes. Motion and cooldown state
// belong to the loop goroutine; Stop is the only cross-goroutine write.
type Loop struct {
	rect         image.Rectangle
	tickInterval time.Duration
	captureRetry time.Duration
	errorBackoff time.Duration
	grey, white  vision.Target
	greyMinArea  float64
	whiteMinArea float64
	whiteExpand  int

	logger   *slog.Logger
	grabber  capture.Grabber
	strategy track.Strategy
	motion   skillcheck.VelocityEstimator
	trigger  *skillcheck.TriggerController
	errLimit *rate.Limiter

	Frames     *Mailbox[Frame]
	GreyMasks  *Mailbox[image.Image]
	WhiteMasks *Mailbox[image.Image]
	TrackMasks *Mailbox[image.Image]

	stop    atomic.Bool
	started atomic.Bool
	done    chan struct{}

	ticks           atomic.Uint64
	captureFailures atomic.Uint64
	tickErrors      atomic.Uint64
	tickNanos       atomic.Uint64
	last            atomic.Pointer[Readout]
}

// New builds a loop from cfg. Register trigger listeners before calling Run.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) (*Loop, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if deps.Grabber == nil {
		return nil, errors.New("pipeline: grabber required")
	}
	grey, err := vision.ParseHex(cfg.HexGrey, cfg.ColorTolerance)
	if err != nil {
		return nil, fmt.Errorf("pipeline: grey target: %w", err)
	}
	white, err := vision.ParseHex(cfg.HexWhite, cfg.ColorTolerance)
	if err != nil {
		return nil, fmt.Errorf("pipeline: white target: %w", err)
	}
	strategy := deps.Strategy
	if strategy == nil {
		strategy = track.Annulus{ThicknessFraction: cfg.BarThicknessFraction}
	}
	logger = logger.With("run_id", uuid.NewString())
	l := &Loop{
		rect:         cfg.Rect(),
		tickInterval: cfg.TickInterval(),
		captureRetry: cfg.CaptureRetry(),
		errorBackoff: cfg.ErrorBackoff(),
		grey:         grey,
		white:        white,
		greyMinArea:  float64(cfg.GreyLineMinArea),
		whiteMinArea: float64(cfg.WhiteMinArea),
		whiteExpand:  cfg.WhiteAreaWidthIncrease,
		logger:       logger,
		grabber:      deps.Grabber,
		strategy:     strategy,
		trigger:      skillcheck.NewTriggerController(float64(cfg.MiddleThreshold), cfg.Cooldown(), deps.Actions, logger),
		errLimit:     rate.NewLimiter(rate.Every(time.Second), 1),
		Frames:       NewMailbox[Frame](),
		GreyMasks:    NewMailbox[image.Image](),
		WhiteMasks:   NewMailbox[image.Image](),
		TrackMasks:   NewMailbox[image.Image](),
		done:         make(chan struct{}),
	}
	if l.tickInterval <= 0 {
		l.tickInterval = 10 * time.Millisecond
	}
	return l, nil
}

// Trigger exposes the controller so listeners can be attached before Run.
func (l *Loop) Trigger() *skillcheck.TriggerController { return l.trigger }

// Tick performs exactly one capture and decision cycle at now.
// A failed capture returns an error wrapping ErrCapture and leaves motion
// and cooldown state untouched apart from the cooldown expiry check.
// Panics inside the cycle are recovered and returned as errors.
func (l *Loop) Tick(now time.Time) (r Readout, err error) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("pipeline: tick panic: %v", p)
			l.logger.Error("tick panic", "error", p, "stack", string(debug.Stack()))
		}
	}()

	l.trigger.Expire(now)

	img, err := l.grabber.Grab(l.rect)
	if err != nil {
		l.captureFailures.Add(1)
		return Readout{}, fmt.Errorf("%w: %w", ErrCapture, err)
	}
	frame, err := toBGR(img)
	if rc, ok := l.grabber.(capture.Recycler); ok {
		rc.Recycle(img)
	}
	if err != nil {
		frame.Close()
		return Readout{}, err
	}
	defer frame.Close()

	region := l.strategy.Build(frame, frame.Cols(), frame.Rows())
	defer region.Close()
	var limit *gocv.Mat
	if !region.Mask.Empty() {
		limit = &region.Mask
	}

	white := vision.Segment(frame, l.white, vision.Options{MinArea: l.whiteMinArea, ExpandWidth: l.whiteExpand, Limit: limit})
	defer white.Close()
	grey := vision.Segment(frame, l.grey, vision.Options{MinArea: l.greyMinArea, Limit: limit})
	defer grey.Close()

	r = Readout{
		Tick:       l.ticks.Add(1),
		At:         now,
		GreyFound:  grey.Found,
		WhiteFound: white.Found,
		Grey:       grey.Centroid,
		White:      white.Centroid,
	}
	if grey.Found {
		r.HasAngle = true
		r.Angle = skillcheck.Angle(grey.Centroid, region.Geometry.Pivot)
		r.Velocity = l.motion.Observe(r.Angle, now)
	} else {
		r.Velocity = l.motion.Lost()
	}
	if grey.Found && white.Found {
		d := l.trigger.Evaluate(grey.Centroid, white.Centroid, now)
		r.HasDistance = true
		r.Distance = d.Distance
		r.Fired = d.Fired
		if d.Fired {
			l.logger.Info("markers aligned", "tick", r.Tick, "distance", d.Distance, "angle", r.Angle, "velocity", r.Velocity)
		}
	}
	r.State = l.trigger.Current()

	l.publish(frame, region, white, grey, r)
	l.last.Store(&r)
	l.tickNanos.Add(uint64(time.Since(start).Nanoseconds()))
	return r, nil
}

// publish hands the annotated frame and the three masks to the consumer.
func (l *Loop) publish(frame gocv.Mat, region track.Region, white, grey vision.Detection, r Readout) {
	display := frame.Clone()
	defer display.Close()
	annotate(&display, region, white, grey, r)
	if img, err := toImage(display); err != nil {
		l.logger.Debug("publish frame", "error", err)
	} else if img != nil {
		l.Frames.Offer(Frame{Image: img, Readout: r})
	}
	l.offerMask(l.GreyMasks, grey.Mask, "grey")
	l.offerMask(l.WhiteMasks, white.Mask, "white")
	l.offerMask(l.TrackMasks, region.Mask, "track")
}

func (l *Loop) offerMask(box *Mailbox[image.Image], m gocv.Mat, name string) {
	img, err := toImage(m)
	if err != nil {
		l.logger.Debug("publish mask", "mask", name, "error", err)
		return
	}
	if img != nil {
		box.Offer(img)
	}
}

// Run ticks until Stop is called or ctx ends. A failing tick never ends the
// loop: capture failures retry after the capture retry delay, anything else
// after the error backoff. Every wait is sliced so a stop request is seen
// within one tick interval.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(l.done)
	l.logger.Info("pipeline started",
		"rect", l.rect.String(),
		"strategy", l.strategy.Name(),
		"capture", l.grabber.Name(),
		"grey", l.grey.String(),
		"white", l.white.String(),
	)
	statsTicker := time.NewTicker(statsLogInterval)
	defer statsTicker.Stop()

	for !l.halted(ctx) {
		_, err := l.Tick(time.Now())
		wait := l.tickInterval
		switch {
		case err == nil:
		case errors.Is(err, ErrCapture):
			wait = l.captureRetry
			if l.errLimit.Allow() {
				l.logger.Warn("capture failed", "error", err, "failures", l.captureFailures.Load())
			}
		default:
			l.tickErrors.Add(1)
			l.logger.Error("tick failed", "error", err)
			wait = l.errorBackoff
		}
		select {
		case <-statsTicker.C:
			l.logStats()
		default:
		}
		l.sleep(ctx, wait)
	}
	l.logStats()
	l.logger.Info("pipeline stopped")
	return nil
}

// Stop requests the loop to exit. Safe to call from any goroutine, any number of times.
func (l *Loop) Stop() { l.stop.Store(true) }

// Stopped reports whether Stop has been called.
func (l *Loop) Stopped() bool { return l.stop.Load() }

// Wait blocks until Run has returned or timeout elapses, reporting whether
// the loop finished. A loop that never started counts as finished.
func (l *Loop) Wait(timeout time.Duration) bool {
	if !l.started.Load() {
		return true
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-l.done:
		return true
	case <-t.C:
		return false
	}
}

// Stats returns a snapshot of the loop counters.
func (l *Loop) Stats() Stats {
	ticks := l.ticks.Load()
	s := Stats{
		Ticks:           ticks,
		CaptureFailures: l.captureFailures.Load(),
		TickErrors:      l.tickErrors.Load(),
		Triggers:        l.trigger.Fired(),
		Dropped:         l.Frames.Drops() + l.GreyMasks.Drops() + l.WhiteMasks.Drops() + l.TrackMasks.Drops(),
	}
	if ticks > 0 {
		s.AvgTick = time.Duration(l.tickNanos.Load() / ticks)
	}
	if last := l.last.Load(); last != nil {
		s.Last = *last
	}
	return s
}

func (l *Loop) halted(ctx context.Context) bool {
	return l.stop.Load() || ctx.Err() != nil
}

func (l *Loop) sleep(ctx context.Context, d time.Duration) {
	for d > 0 && !l.halted(ctx) {
		step := min(d, l.tickInterval)
		time.Sleep(step)
		d -= step
	}
}

func (l *Loop) logStats() {
	s := l.Stats()
	l.logger.Debug("pipeline.stats",
		"ticks", s.Ticks,
		"capture_failures", s.CaptureFailures,
		"tick_errors", s.TickErrors,
		"triggers", s.Triggers,
		"dropped", s.Dropped,
		"avg_tick", s.AvgTick,
	)
}
