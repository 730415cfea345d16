package capture

import (
	"fmt"
	"image"

	"github.com/vova616/screenshot"
)

// ScreenshotGrabber captures through github.com/vova616/screenshot.
type ScreenshotGrabber struct {
	screenRect  func() (image.Rectangle, error)
	captureRect func(image.Rectangle) (*image.RGBA, error)
}

// NewScreenshotGrabber returns a grabber backed by the screenshot library.
func NewScreenshotGrabber() *ScreenshotGrabber {
	return &ScreenshotGrabber{screenRect: screenshot.ScreenRect, captureRect: screenshot.CaptureRect}
}

func (g *ScreenshotGrabber) Name() string { return BackendScreenshot }

// Grab captures rect. The rectangle must lie fully on the screen so every
// frame has the configured size.
func (g *ScreenshotGrabber) Grab(rect image.Rectangle) (*image.RGBA, error) {
	if rect.Empty() {
		return nil, ErrEmptyRect
	}
	screen, err := g.screenRect()
	if err != nil {
		return nil, fmt.Errorf("capture: screen bounds: %w", err)
	}
	if !rect.In(screen) {
		return nil, fmt.Errorf("capture: selection out of bounds sel=%v screen=%v", rect, screen)
	}
	img, err := g.captureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	if img == nil {
		return nil, fmt.Errorf("capture: no image for %v", rect)
	}
	return img, nil
}
