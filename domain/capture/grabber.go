package capture

import (
	"errors"
	"image"
	"log/slog"
	"strings"
)

const (
	BackendScreenshot = "screenshot"
	BackendGDI        = "gdi"
)

// ErrEmptyRect is returned when asked to capture a rectangle with no area.
var ErrEmptyRect = errors.New("capture: empty selection")

// Grabber captures a rectangle of the screen into a newly owned RGBA image.
// Implementations may block on the platform API and must be safe to retry
// after a failure.
type Grabber interface {
	Name() string
	Grab(rect image.Rectangle) (*image.RGBA, error)
}

// Recycler is implemented by grabbers that reuse frame buffers. Callers hand
// a frame back once they no longer read it.
type Recycler interface {
	Recycle(img *image.RGBA)
}

// NewGrabber returns the grabber for backend. The GDI backend is only
// available on Windows; anything else falls back to the screenshot library.
func NewGrabber(backend string, logger *slog.Logger) Grabber {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendGDI:
		if g := newGDIGrabber(); g != nil {
			return g
		}
		if logger != nil {
			logger.Warn("gdi capture unavailable, using screenshot backend")
		}
	case "", BackendScreenshot:
	default:
		if logger != nil {
			logger.Warn("unknown capture backend, using screenshot backend", "backend", backend)
		}
	}
	return NewScreenshotGrabber()
}
