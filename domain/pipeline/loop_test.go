package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/skillcheck-bot-go/config"
	"github.com/soocke/skillcheck-bot-go/domain/skillcheck"
)

var (
	greyMarker  = color.RGBA{R: 0x48, G: 0x51, B: 0x63, A: 255}
	whiteMarker = color.RGBA{R: 0xce, G: 0xce, B: 0xce, A: 255}
)

// fakeGrabber serves copies of a fixed frame. fail and panics switch it into
// error modes from the test goroutine.
type fakeGrabber struct {
	frame  *image.RGBA
	calls  atomic.Int64
	fail   atomic.Bool
	panics atomic.Bool
}

func (g *fakeGrabber) Name() string { return "fake" }

func (g *fakeGrabber) Grab(rect image.Rectangle) (*image.RGBA, error) {
	g.calls.Add(1)
	if g.panics.Load() {
		panic("grabber exploded")
	}
	if g.fail.Load() {
		return nil, errors.New("screen locked")
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	copy(out.Pix, g.frame.Pix)
	return out, nil
}

func disc(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// skillFrame is a 120x120 black frame with both markers inside the default
// band and about 11px apart.
func skillFrame(withGrey bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 120, 120))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	disc(img, 78, 42, 6, whiteMarker)
	if withGrey {
		disc(img, 86, 50, 3, greyMarker)
	}
	return img
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.ROIX1, cfg.ROIY1, cfg.ROIX2, cfg.ROIY2 = 0, 0, 120, 120
	cfg.TickIntervalMS = 2
	cfg.CaptureRetryMS = 1
	cfg.ErrorBackoffMS = 20
	return cfg
}

func newTestLoop(t *testing.T, g *fakeGrabber, releases *atomic.Int64) *Loop {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l, err := New(testConfig(), Deps{
		Grabber: g,
		Actions: skillcheck.Actions{Release: func() error {
			releases.Add(1)
			return nil
		}},
	}, logger)
	require.NoError(t, err)
	return l
}

func TestNew_RequiresGrabber(t *testing.T) {
	_, err := New(testConfig(), Deps{}, nil)
	assert.Error(t, err)
}

func TestNew_RejectsBadColor(t *testing.T) {
	cfg := testConfig()
	cfg.HexGrey = "nope"
	_, err := New(cfg, Deps{Grabber: &fakeGrabber{frame: skillFrame(true)}}, nil)
	assert.Error(t, err)
}

func TestTick_FiresAndRespectsCooldown(t *testing.T) {
	var releases atomic.Int64
	g := &fakeGrabber{frame: skillFrame(true)}
	l := newTestLoop(t, g, &releases)

	var transitions []skillcheck.State
	l.Trigger().AddListener(func(_, next skillcheck.State) { transitions = append(transitions, next) })

	t0 := time.Unix(1000, 0)
	r, err := l.Tick(t0)
	require.NoError(t, err)
	require.True(t, r.GreyFound)
	require.True(t, r.WhiteFound)
	assert.InDelta(t, 78, r.White.X, 1)
	assert.InDelta(t, 42, r.White.Y, 1)
	assert.InDelta(t, 86, r.Grey.X, 1)
	assert.InDelta(t, 50, r.Grey.Y, 1)
	assert.True(t, r.HasDistance)
	assert.Less(t, r.Distance, 15.0)
	assert.True(t, r.Fired)
	assert.Equal(t, skillcheck.StateCooldown, r.State)
	assert.Equal(t, int64(1), releases.Load())

	r, err = l.Tick(t0.Add(10 * time.Millisecond))
	require.NoError(t, err)
	assert.False(t, r.Fired, "cooldown must suppress a second release")
	assert.Equal(t, int64(1), releases.Load())

	r, err = l.Tick(t0.Add(600 * time.Millisecond))
	require.NoError(t, err)
	assert.True(t, r.Fired)
	assert.Equal(t, int64(2), releases.Load())

	assert.Equal(t, []skillcheck.State{
		skillcheck.StateCooldown, skillcheck.StateIdle, skillcheck.StateCooldown,
	}, transitions)
	assert.Equal(t, uint64(2), l.Stats().Triggers)
	assert.Equal(t, uint64(3), l.Stats().Ticks)
}

func TestTick_PublishesAllOutputs(t *testing.T) {
	var releases atomic.Int64
	l := newTestLoop(t, &fakeGrabber{frame: skillFrame(true)}, &releases)

	_, err := l.Tick(time.Unix(1000, 0))
	require.NoError(t, err)

	f, ok := l.Frames.Poll()
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 120, 120), f.Image.Bounds())
	assert.True(t, f.Readout.Fired)

	for name, box := range map[string]*Mailbox[image.Image]{
		"grey": l.GreyMasks, "white": l.WhiteMasks, "track": l.TrackMasks,
	} {
		img, ok := box.Poll()
		require.True(t, ok, name)
		assert.Equal(t, image.Rect(0, 0, 120, 120), img.Bounds(), name)
	}
}

func TestTick_VelocityFromConsecutiveAngles(t *testing.T) {
	var releases atomic.Int64
	l := newTestLoop(t, &fakeGrabber{frame: skillFrame(true)}, &releases)

	t0 := time.Unix(1000, 0)
	r, err := l.Tick(t0)
	require.NoError(t, err)
	require.True(t, r.HasAngle)
	assert.Zero(t, r.Velocity)

	// Same frame again: the marker did not move.
	r, err = l.Tick(t0.Add(100 * time.Millisecond))
	require.NoError(t, err)
	assert.InDelta(t, 0, r.Velocity, 1e-9)
}

func TestTick_MissingGreyResetsMotion(t *testing.T) {
	var releases atomic.Int64
	g := &fakeGrabber{frame: skillFrame(false)}
	l := newTestLoop(t, g, &releases)

	r, err := l.Tick(time.Unix(1000, 0))
	require.NoError(t, err)
	assert.False(t, r.GreyFound)
	assert.True(t, r.WhiteFound)
	assert.False(t, r.HasAngle)
	assert.False(t, r.HasDistance)
	assert.Zero(t, r.Velocity)
	assert.Equal(t, skillcheck.StateIdle, r.State)
	assert.Zero(t, releases.Load())
}

func TestTick_CaptureFailureKeepsState(t *testing.T) {
	var releases atomic.Int64
	g := &fakeGrabber{frame: skillFrame(true)}
	l := newTestLoop(t, g, &releases)

	t0 := time.Unix(1000, 0)
	_, err := l.Tick(t0)
	require.NoError(t, err)

	g.fail.Store(true)
	_, err = l.Tick(t0.Add(10 * time.Millisecond))
	require.ErrorIs(t, err, ErrCapture)
	assert.Equal(t, skillcheck.StateCooldown, l.Trigger().Current())
	assert.Equal(t, uint64(1), l.Stats().CaptureFailures)
	assert.Equal(t, uint64(1), l.Stats().Ticks, "failed captures do not count as ticks")

	_, ok := l.Frames.Poll()
	assert.True(t, ok, "first frame stays available")
	_, ok = l.Frames.Poll()
	assert.False(t, ok, "failed capture publishes nothing")
}

func TestTick_RecoversPanic(t *testing.T) {
	var releases atomic.Int64
	g := &fakeGrabber{frame: skillFrame(true)}
	g.panics.Store(true)
	l := newTestLoop(t, g, &releases)

	_, err := l.Tick(time.Unix(1000, 0))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCapture)
}

func TestRun_StopAndWait(t *testing.T) {
	var releases atomic.Int64
	g := &fakeGrabber{frame: skillFrame(true)}
	l := newTestLoop(t, g, &releases)

	go l.Run(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for g.calls.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("loop did not tick, calls=%d", g.calls.Load())
		}
		time.Sleep(time.Millisecond)
	}

	l.Stop()
	if !l.Wait(time.Second) {
		t.Fatalf("loop did not stop within 1s")
	}
	assert.True(t, l.Stopped())
	assert.GreaterOrEqual(t, releases.Load(), int64(1))
	assert.Equal(t, uint64(releases.Load()), l.Stats().Triggers)

	err := l.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestRun_SurvivesErrorsAndContextCancel(t *testing.T) {
	var releases atomic.Int64
	g := &fakeGrabber{frame: skillFrame(true)}
	g.panics.Store(true)
	l := newTestLoop(t, g, &releases)

	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for g.calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("loop stopped after a panic, calls=%d", g.calls.Load())
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	if !l.Wait(time.Second) {
		t.Fatalf("loop ignored context cancellation")
	}
	assert.GreaterOrEqual(t, l.Stats().TickErrors, uint64(2))
}

// A long error backoff must not delay Stop beyond one tick interval.
func TestRun_StopInterruptsBackoff(t *testing.T) {
	var releases atomic.Int64
	g := &fakeGrabber{frame: skillFrame(true)}
	g.panics.Store(true)
	cfg := testConfig()
	cfg.ErrorBackoffMS = 5000
	l, err := New(cfg, Deps{Grabber: g}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	go l.Run(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for l.Stats().TickErrors < 1 {
		if time.Now().After(deadline) {
			t.Fatalf("loop never reported a tick error")
		}
		time.Sleep(time.Millisecond)
	}
	l.Stop()
	assert.True(t, l.Wait(50*time.Millisecond), "stop must cut the 5s backoff short")
	assert.Equal(t, int64(1), g.calls.Load())
	assert.Zero(t, releases.Load())
}

func TestWait_NotStarted(t *testing.T) {
	var releases atomic.Int64
	l := newTestLoop(t, &fakeGrabber{frame: skillFrame(true)}, &releases)
	assert.True(t, l.Wait(time.Millisecond))
}
