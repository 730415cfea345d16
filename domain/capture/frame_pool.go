package capture

import (
	"image"
	"sync"
)

// framePool reuses RGBA backing slices between ticks. The capture loop
// recycles a frame as soon as it has been converted for processing.
var framePool sync.Pool // stores *image.RGBA

// acquireFrame returns an RGBA image sized to rect with Stride width*4.
// Pixel contents are unspecified.
func acquireFrame(rect image.Rectangle) *image.RGBA {
	w, h := rect.Dx(), rect.Dy()
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: rect}
	}
	needed := w * h * 4
	var img *image.RGBA
	if v := framePool.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		return &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	}
	img.Stride = w * 4
	img.Rect = rect
	img.Pix = img.Pix[:needed]
	return img
}

// RecycleFrame returns the frame to the pool. The caller must not touch it afterwards.
func RecycleFrame(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	framePool.Put(img)
}
