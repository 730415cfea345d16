package pipeline

import (
	"fmt"
	"image"
	"runtime"

	"gocv.io/x/gocv"
)

// toBGR copies an RGBA capture into a new 8-bit BGR Mat owned by the caller.
func toBGR(img *image.RGBA) (gocv.Mat, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return gocv.NewMat(), fmt.Errorf("pipeline: empty frame %v", b)
	}
	pix := img.Pix
	if img.Stride != w*4 {
		pix = make([]byte, w*h*4)
		for y := 0; y < h; y++ {
			off := img.PixOffset(b.Min.X, b.Min.Y+y)
			copy(pix[y*w*4:(y+1)*w*4], img.Pix[off:off+w*4])
		}
	}
	rgba, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, pix[:w*h*4])
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("pipeline: wrap frame: %w", err)
	}
	defer rgba.Close()
	bgr := gocv.NewMat()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)
	runtime.KeepAlive(pix)
	return bgr, nil
}

// toImage converts a Mat for the presentation boundary. Empty Mats yield nil.
func toImage(m gocv.Mat) (image.Image, error) {
	if m.Empty() {
		return nil, nil
	}
	return m.ToImage()
}
