package presenter

import (
	"fmt"
	"image"
	"strings"

	"github.com/soocke/skillcheck-bot-go/domain/pipeline"
	"github.com/soocke/skillcheck-bot-go/ui/model"
)

// FrameSource is the consumer side of the pipeline mailboxes.
type FrameSource interface {
	Poll() (pipeline.Frame, bool)
}

// MaskSource is the consumer side of one mask mailbox.
type MaskSource interface {
	Poll() (image.Image, bool)
}

// ReleaseCounter reports how many releases the pipeline has fired.
type ReleaseCounter interface {
	Fired() uint64
}

// PreviewSources groups the four pipeline outputs and the release counter.
// Frames may be dropped before the UI polls them, so the release count is
// read from Releases rather than summed over received readouts.
type PreviewSources struct {
	Frames     FrameSource
	GreyMasks  MaskSource
	WhiteMasks MaskSource
	TrackMasks MaskSource
	Releases   ReleaseCounter
}

// PreviewView describes the UI surface updated by the presenter.
type PreviewView interface {
	UpdateFrame(img image.Image)
	UpdateGreyMask(img image.Image)
	UpdateWhiteMask(img image.Image)
	UpdateTrackMask(img image.Image)
	SetReadout(text string)
}

// PreviewPresenter drains the pipeline mailboxes on the UI thread. Each
// preview is replaced only when a new image arrived since the last poll.
type PreviewPresenter struct {
	src   PreviewSources
	view  PreviewView
	model *model.ReadoutModel
}

func NewPreviewPresenter(src PreviewSources, view PreviewView, m *model.ReadoutModel) *PreviewPresenter {
	if m == nil {
		m = model.NewReadoutModel()
	}
	return &PreviewPresenter{src: src, view: view, model: m}
}

// ProcessFrame polls every source once without blocking.
func (p *PreviewPresenter) ProcessFrame() {
	if p == nil || p.view == nil {
		return
	}
	if p.src.Frames != nil {
		if f, ok := p.src.Frames.Poll(); ok {
			p.view.UpdateFrame(f.Image)
			p.model.Set(f.Readout)
			r, _ := p.model.Latest()
			p.view.SetReadout(FormatReadout(r, p.releases()))
		}
	}
	pollMask(p.src.GreyMasks, p.view.UpdateGreyMask)
	pollMask(p.src.WhiteMasks, p.view.UpdateWhiteMask)
	pollMask(p.src.TrackMasks, p.view.UpdateTrackMask)
}

func (p *PreviewPresenter) releases() uint64 {
	if p.src.Releases == nil {
		return 0
	}
	return p.src.Releases.Fired()
}

func pollMask(src MaskSource, update func(image.Image)) {
	if src == nil {
		return
	}
	if img, ok := src.Poll(); ok {
		update(img)
	}
}

// FormatReadout renders a readout as the one-line status shown under the previews.
func FormatReadout(r pipeline.Readout, releases uint64) string {
	var b strings.Builder
	if r.GreyFound {
		fmt.Fprintf(&b, "Grey: (%d,%d)", r.Grey.X, r.Grey.Y)
	} else {
		b.WriteString("Grey: -")
	}
	if r.WhiteFound {
		fmt.Fprintf(&b, "  White: (%d,%d)", r.White.X, r.White.Y)
	} else {
		b.WriteString("  White: -")
	}
	if r.HasAngle {
		fmt.Fprintf(&b, "  Angle: %.1f", r.Angle)
	}
	fmt.Fprintf(&b, "  Vel: %.1f deg/s", r.Velocity)
	if r.HasDistance {
		fmt.Fprintf(&b, "  Dist: %.1f", r.Distance)
	}
	fmt.Fprintf(&b, "  Releases: %d", releases)
	return b.String()
}
