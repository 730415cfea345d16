package view

import (
	"image"

	"github.com/soocke/skillcheck-bot-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// PreviewPanel shows the annotated capture and the three masks side by side.
type PreviewPanel interface {
	UpdateFrame(img image.Image)
	UpdateGreyMask(img image.Image)
	UpdateWhiteMask(img image.Image)
	UpdateTrackMask(img image.Image)
	Reset()
}

// preview is one titled image slot. The last Tk photo is kept so it can be
// deleted before it is replaced.
type preview struct {
	label *LabelWidget
	photo *Img
}

type previewPanel struct {
	frame, grey, white, track preview
	targetW, targetH          int
}

// NewPreviewPanel creates the four previews in one row at the given grid row.
// w and h are the display size each image is resampled to.
func NewPreviewPanel(row, w, h int) PreviewPanel {
	p := &previewPanel{targetW: max(w, 50), targetH: max(h, 50)}
	titles := []string{"Capture", "Grey mask", "White mask", "Track mask"}
	slots := []*preview{&p.frame, &p.grey, &p.white, &p.track}
	placeholder := images.EncodePNG(image.NewRGBA(image.Rect(0, 0, p.targetW, p.targetH)))
	for i, slot := range slots {
		title := Label(Txt(titles[i]), Anchor("w"))
		Grid(title, Row(row), Column(i), Sticky("w"), Padx("0.4m"))
		slot.photo = NewPhoto(Data(placeholder))
		slot.label = Label(Image(slot.photo), Borderwidth(1), Relief("sunken"))
		Grid(slot.label, Row(row+1), Column(i), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	}
	return p
}

func (p *previewPanel) UpdateFrame(img image.Image)     { p.show(&p.frame, img) }
func (p *previewPanel) UpdateGreyMask(img image.Image)  { p.show(&p.grey, img) }
func (p *previewPanel) UpdateWhiteMask(img image.Image) { p.show(&p.white, img) }
func (p *previewPanel) UpdateTrackMask(img image.Image) { p.show(&p.track, img) }

func (p *previewPanel) show(slot *preview, img image.Image) {
	if slot.label == nil || img == nil {
		return
	}
	scaled := images.ScaleToFit(img, p.targetW, p.targetH)
	p.replace(slot, images.EncodePNG(scaled))
}

// Reset blanks all four previews.
func (p *previewPanel) Reset() {
	placeholder := images.EncodePNG(image.NewRGBA(image.Rect(0, 0, p.targetW, p.targetH)))
	for _, slot := range []*preview{&p.frame, &p.grey, &p.white, &p.track} {
		if slot.label != nil {
			p.replace(slot, placeholder)
		}
	}
}

func (p *previewPanel) replace(slot *preview, pngBytes []byte) {
	// Replace previous photo to avoid retaining obsolete pixel buffers.
	if slot.photo != nil {
		slot.photo.Delete()
	}
	slot.photo = NewPhoto(Data(pngBytes))
	slot.label.Configure(Image(slot.photo))
}
