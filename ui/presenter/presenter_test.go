package presenter

import (
	"image"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soocke/skillcheck-bot-go/domain/pipeline"
	"github.com/soocke/skillcheck-bot-go/domain/skillcheck"
	"github.com/soocke/skillcheck-bot-go/ui/model"
)

type mockStateView struct {
	labels []string
}

func (v *mockStateView) SetStateLabel(s string) { v.labels = append(v.labels, s) }

func TestStatePresenter_ShowsLatestQueuedState(t *testing.T) {
	view := &mockStateView{}
	p := NewStatePresenter(view)

	p.Tick(time.Now())
	if len(view.labels) != 1 || view.labels[0] != "State: idle" {
		t.Fatalf("expected initial idle label, got %v", view.labels)
	}
	p.Tick(time.Now())
	if len(view.labels) != 1 {
		t.Fatalf("unchanged state must not relabel, got %v", view.labels)
	}

	p.OnState(skillcheck.StateIdle, skillcheck.StateCooldown)
	p.OnState(skillcheck.StateCooldown, skillcheck.StateIdle)
	p.OnState(skillcheck.StateIdle, skillcheck.StateCooldown)
	p.Tick(time.Now())
	if got := view.labels[len(view.labels)-1]; got != "State: cooldown" {
		t.Fatalf("expected cooldown label, got %q", got)
	}
	if len(view.labels) != 2 {
		t.Fatalf("expected a single update per tick, got %v", view.labels)
	}
}

type mockSessionView struct{ session, total time.Duration }

func (v *mockSessionView) SetSession(s, t time.Duration) { v.session, v.total = s, t }

type mockRunModel struct{ running bool }

func (m *mockRunModel) Running() bool { return m.running }
func (m *mockRunModel) SetRunning(b bool) bool {
	changed := m.running != b
	m.running = b
	return changed
}

func TestSessionPresenter_Tick(t *testing.T) {
	view := &mockSessionView{}
	run := &mockRunModel{running: true}
	p := NewSessionPresenter(model.NewSessionModel(), run, view)
	base := time.Unix(0, 0)
	p.Tick(base)
	p.Tick(base.Add(4 * time.Second))
	if view.session != 4*time.Second || view.total != 4*time.Second {
		t.Fatalf("expected 4s session, got %v/%v", view.session, view.total)
	}
	run.running = false
	p.Tick(base.Add(9 * time.Second))
	if view.total != 4*time.Second {
		t.Fatalf("stopped pipeline must not accumulate, got %v", view.total)
	}
}

type mockPreviewView struct {
	frames, grey, white, track int
	readout                    string
}

func (v *mockPreviewView) UpdateFrame(image.Image)     { v.frames++ }
func (v *mockPreviewView) UpdateGreyMask(image.Image)  { v.grey++ }
func (v *mockPreviewView) UpdateWhiteMask(image.Image) { v.white++ }
func (v *mockPreviewView) UpdateTrackMask(image.Image) { v.track++ }
func (v *mockPreviewView) SetReadout(s string)         { v.readout = s }

func TestPreviewPresenter_DrainsMailboxes(t *testing.T) {
	frames := pipeline.NewMailbox[pipeline.Frame]()
	grey := pipeline.NewMailbox[image.Image]()
	white := pipeline.NewMailbox[image.Image]()
	track := pipeline.NewMailbox[image.Image]()
	view := &mockPreviewView{}
	releases := &mockReleaseCounter{}
	p := NewPreviewPresenter(PreviewSources{Frames: frames, GreyMasks: grey, WhiteMasks: white, TrackMasks: track, Releases: releases}, view, nil)

	p.ProcessFrame()
	if view.frames+view.grey+view.white+view.track != 0 {
		t.Fatalf("empty mailboxes must not update the view")
	}

	img := image.NewGray(image.Rect(0, 0, 4, 4))
	releases.n.Add(1)
	frames.Offer(pipeline.Frame{Image: img, Readout: pipeline.Readout{Tick: 1, GreyFound: true, Grey: image.Pt(3, 4), Fired: true}})
	grey.Offer(img)
	track.Offer(img)
	p.ProcessFrame()
	if view.frames != 1 || view.grey != 1 || view.white != 0 || view.track != 1 {
		t.Fatalf("unexpected update counts %+v", view)
	}
	if !strings.Contains(view.readout, "Grey: (3,4)") || !strings.Contains(view.readout, "Releases: 1") {
		t.Fatalf("unexpected readout %q", view.readout)
	}

	p.ProcessFrame()
	if view.frames != 1 || view.grey != 1 {
		t.Fatalf("previews must only change when new images arrive")
	}
}

type mockReleaseCounter struct{ n atomic.Uint64 }

func (c *mockReleaseCounter) Fired() uint64 { return c.n.Load() }

// A fired frame replaced by a later one before the UI polls still counts.
func TestPreviewPresenter_ReleasesSurviveDroppedFrames(t *testing.T) {
	frames := pipeline.NewMailbox[pipeline.Frame]()
	view := &mockPreviewView{}
	releases := &mockReleaseCounter{}
	p := NewPreviewPresenter(PreviewSources{Frames: frames, Releases: releases}, view, nil)

	img := image.NewGray(image.Rect(0, 0, 4, 4))
	releases.n.Add(1)
	frames.Offer(pipeline.Frame{Image: img, Readout: pipeline.Readout{Tick: 1, Fired: true}})
	frames.Offer(pipeline.Frame{Image: img, Readout: pipeline.Readout{Tick: 2}})
	p.ProcessFrame()

	if view.frames != 1 {
		t.Fatalf("expected a single frame update, got %d", view.frames)
	}
	if !strings.Contains(view.readout, "Releases: 1") {
		t.Fatalf("dropped fired frame must still be counted, readout %q", view.readout)
	}
}

// The counter comes from the trigger controller in the running app.
func TestPreviewPresenter_ReleasesFromTriggerController(t *testing.T) {
	frames := pipeline.NewMailbox[pipeline.Frame]()
	view := &mockPreviewView{}
	ctrl := skillcheck.NewTriggerController(10, time.Second, skillcheck.Actions{}, nil)
	p := NewPreviewPresenter(PreviewSources{Frames: frames, Releases: ctrl}, view, nil)

	now := time.Unix(100, 0)
	ctrl.Evaluate(image.Pt(0, 0), image.Pt(1, 1), now)
	frames.Offer(pipeline.Frame{Image: image.NewGray(image.Rect(0, 0, 1, 1)), Readout: pipeline.Readout{Tick: 2}})
	p.ProcessFrame()
	if !strings.Contains(view.readout, "Releases: 1") {
		t.Fatalf("unexpected readout %q", view.readout)
	}
}

func TestFormatReadout(t *testing.T) {
	got := FormatReadout(pipeline.Readout{
		GreyFound: true, Grey: image.Pt(10, 20),
		WhiteFound: true, White: image.Pt(12, 22),
		HasAngle: true, Angle: 45,
		Velocity:    90,
		HasDistance: true, Distance: 2.83,
	}, 3)
	want := "Grey: (10,20)  White: (12,22)  Angle: 45.0  Vel: 90.0 deg/s  Dist: 2.8  Releases: 3"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if got := FormatReadout(pipeline.Readout{}, 0); got != "Grey: -  White: -  Vel: 0.0 deg/s  Releases: 0" {
		t.Fatalf("unexpected empty readout %q", got)
	}
}

type mockStopper struct{ stops, stopped atomic.Int32 }

func (s *mockStopper) Stop()         { s.stops.Add(1); s.stopped.Store(1) }
func (s *mockStopper) Stopped() bool { return s.stopped.Load() == 1 }

// Test that watcher stops the pipeline once the key is held and then exits.
func TestStopWatcher_FiresOnce(t *testing.T) {
	target := &mockStopper{}
	var pressed atomic.Bool
	var callbacks atomic.Int32
	w := NewStopWatcher(target, nil, pressed.Load)
	w.OnStop = func() { callbacks.Add(1) }
	w.Start()
	defer w.Close()

	time.Sleep(100 * time.Millisecond)
	if target.stops.Load() != 0 {
		t.Fatalf("expected no stop before key press")
	}
	pressed.Store(true)
	time.Sleep(100 * time.Millisecond)
	if target.stops.Load() != 1 || callbacks.Load() != 1 || !w.Fired() {
		t.Fatalf("expected one stop, got stops=%d callbacks=%d", target.stops.Load(), callbacks.Load())
	}
	time.Sleep(100 * time.Millisecond)
	if target.stops.Load() != 1 {
		t.Fatalf("unexpected repeat stop")
	}
}

// Test that the watcher exits quietly when the pipeline stopped by other means.
func TestStopWatcher_ExitsWhenTargetStopped(t *testing.T) {
	target := &mockStopper{}
	target.stopped.Store(1)
	w := NewStopWatcher(target, nil, func() bool { return true })
	w.Start()
	time.Sleep(100 * time.Millisecond)
	if target.stops.Load() != 0 || w.Fired() {
		t.Fatalf("watcher must not fire for an already stopped pipeline")
	}
	w.Close()
}

type mockLifecycle struct {
	stops, waits int
	finished     bool
}

func (l *mockLifecycle) Stop() { l.stops++ }
func (l *mockLifecycle) Wait(time.Duration) bool {
	l.waits++
	return l.finished
}

type mockExitView struct{ closed int }

func (v *mockExitView) Close() { v.closed++ }

func TestExitPresenter_OrderAndIdempotence(t *testing.T) {
	run := &mockRunModel{running: true}
	svc := &mockLifecycle{finished: true}
	view := &mockExitView{}
	p := NewExitPresenter(run, svc, view, nil)

	p.Exit()
	if svc.stops != 1 || svc.waits != 1 || view.closed != 1 || run.running {
		t.Fatalf("exit failed: stops=%d waits=%d closed=%d running=%v", svc.stops, svc.waits, view.closed, run.running)
	}
	p.Exit()
	if svc.stops != 1 || view.closed != 1 {
		t.Fatalf("exit not idempotent: stops=%d closed=%d", svc.stops, view.closed)
	}
}

func TestExitPresenter_ClosesEvenWhenWaitTimesOut(t *testing.T) {
	svc := &mockLifecycle{finished: false}
	view := &mockExitView{}
	NewExitPresenter(&mockRunModel{running: true}, svc, view, nil).Exit()
	if view.closed != 1 {
		t.Fatalf("window must close after a wait timeout")
	}
}

func TestLoop_ExitsWhenStopped(t *testing.T) {
	run := &mockRunModel{running: true}
	var scheduled, exited int
	l := NewLoop(nil, nil, nil, run, func() { exited++ }, func() { scheduled++ })
	l.Tick()
	if scheduled != 1 || exited != 0 {
		t.Fatalf("running loop must reschedule: scheduled=%d exited=%d", scheduled, exited)
	}
	run.running = false
	l.Tick()
	if scheduled != 1 || exited != 1 {
		t.Fatalf("stopped loop must exit: scheduled=%d exited=%d", scheduled, exited)
	}
}
