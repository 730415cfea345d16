package capture

import (
	"errors"
	"image"
	"testing"
)

func fakeScreenshot(screen image.Rectangle, captureErr error) (*ScreenshotGrabber, *[]image.Rectangle) {
	var calls []image.Rectangle
	g := &ScreenshotGrabber{
		screenRect: func() (image.Rectangle, error) { return screen, nil },
		captureRect: func(r image.Rectangle) (*image.RGBA, error) {
			calls = append(calls, r)
			if captureErr != nil {
				return nil, captureErr
			}
			return image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy())), nil
		},
	}
	return g, &calls
}

func TestScreenshotGrabber_GrabInsideScreen(t *testing.T) {
	g, calls := fakeScreenshot(image.Rect(0, 0, 1920, 1080), nil)
	img, err := g.Grab(image.Rect(960, 437, 1080, 557))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 120 {
		t.Fatalf("expected 120x120 frame, got %v", img.Bounds())
	}
	if len(*calls) != 1 {
		t.Fatalf("expected one capture call, got %d", len(*calls))
	}
}

func TestScreenshotGrabber_RejectsOutOfBounds(t *testing.T) {
	g, calls := fakeScreenshot(image.Rect(0, 0, 800, 600), nil)
	if _, err := g.Grab(image.Rect(700, 500, 900, 700)); err == nil {
		t.Fatalf("expected out of bounds error")
	}
	if len(*calls) != 0 {
		t.Fatalf("capture must not be attempted for an out of bounds rect")
	}
	if _, err := g.Grab(image.Rectangle{}); !errors.Is(err, ErrEmptyRect) {
		t.Fatalf("expected ErrEmptyRect, got %v", err)
	}
}

func TestScreenshotGrabber_WrapsCaptureError(t *testing.T) {
	boom := errors.New("permission denied")
	g, _ := fakeScreenshot(image.Rect(0, 0, 800, 600), boom)
	_, err := g.Grab(image.Rect(0, 0, 10, 10))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped capture error, got %v", err)
	}
}

func TestNewGrabber_FallsBackToScreenshot(t *testing.T) {
	if g := NewGrabber("bogus", nil); g.Name() != BackendScreenshot {
		t.Fatalf("expected screenshot backend, got %s", g.Name())
	}
	if g := NewGrabber("", nil); g.Name() != BackendScreenshot {
		t.Fatalf("expected screenshot backend, got %s", g.Name())
	}
}

func TestFramePool_ReusesBuffers(t *testing.T) {
	img := acquireFrame(image.Rect(0, 0, 8, 4))
	if len(img.Pix) != 8*4*4 || img.Stride != 32 {
		t.Fatalf("unexpected frame layout len=%d stride=%d", len(img.Pix), img.Stride)
	}
	RecycleFrame(img)
	small := acquireFrame(image.Rect(0, 0, 2, 2))
	if len(small.Pix) != 16 || small.Stride != 8 || small.Rect != image.Rect(0, 0, 2, 2) {
		t.Fatalf("reused frame not resized: len=%d stride=%d rect=%v", len(small.Pix), small.Stride, small.Rect)
	}
	empty := acquireFrame(image.Rectangle{})
	if empty.Pix != nil {
		t.Fatalf("empty rect should not allocate")
	}
}
