package skillcheck

import (
	"image"
	"log/slog"
	"sync/atomic"
	"time"
)

// State enumerates trigger controller states.
type State int

const (
	StateIdle State = iota
	StateCooldown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// Actions externalizes the OS interaction performed when the markers align.
type Actions struct {
	Release func() error
}

// Listener is called on each state transition, on the caller's goroutine.
type Listener func(prev, next State)

// Decision reports the outcome of one Evaluate call.
type Decision struct {
	Distance float64
	Fired    bool
}

// TriggerController fires the release action when the markers come closer
// than the threshold, at most once per cooldown window.
// It is owned by a single goroutine; only Fired may be read concurrently.
type TriggerController struct {
	threshold float64
	cooldown  time.Duration
	actions   Actions
	logger    *slog.Logger

	state     State
	started   time.Time
	listeners []Listener
	fired     atomic.Uint64
}

// NewTriggerController returns an idle controller.
func NewTriggerController(threshold float64, cooldown time.Duration, actions Actions, logger *slog.Logger) *TriggerController {
	if cooldown < 0 {
		cooldown = 0
	}
	return &TriggerController{threshold: threshold, cooldown: cooldown, actions: actions, logger: logger}
}

// AddListener registers a transition listener.
func (c *TriggerController) AddListener(l Listener) {
	if l != nil {
		c.listeners = append(c.listeners, l)
	}
}

// Current returns the current state.
func (c *TriggerController) Current() State { return c.state }

// Fired returns how many times the action has been dispatched.
func (c *TriggerController) Fired() uint64 { return c.fired.Load() }

// Expire leaves the cooldown once the window has fully elapsed.
// Call once per tick before Evaluate.
func (c *TriggerController) Expire(now time.Time) {
	if c.state == StateCooldown && now.Sub(c.started) >= c.cooldown {
		c.transition(StateIdle)
	}
}

// Evaluate compares the two marker positions and fires when they align
// while idle. An active cooldown suppresses firing.
func (c *TriggerController) Evaluate(grey, white image.Point, now time.Time) Decision {
	d := Decision{Distance: Distance(grey, white)}
	if c.state != StateIdle || !(d.Distance < c.threshold) {
		return d
	}
	c.dispatch(d.Distance)
	c.started = now
	c.transition(StateCooldown)
	d.Fired = true
	return d
}

func (c *TriggerController) dispatch(distance float64) {
	c.fired.Add(1)
	if c.actions.Release == nil {
		return
	}
	defer recoverLog(c.logger, "release action panic")
	if err := c.actions.Release(); err != nil {
		if c.logger != nil {
			c.logger.Error("release action failed", "error", err)
		}
		return
	}
	if c.logger != nil {
		c.logger.Info("release action executed", "distance", distance)
	}
}

func (c *TriggerController) transition(next State) {
	prev := c.state
	if prev == next {
		return
	}
	c.state = next
	if c.logger != nil {
		c.logger.Debug("trigger state transition", "from", prev.String(), "to", next.String())
	}
	for _, l := range c.listeners {
		func() {
			defer recoverLog(c.logger, "trigger listener panic")
			l(prev, next)
		}()
	}
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}
