package images

import (
	"bytes"
	"image"
	"image/png"

	"github.com/disintegration/gift"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// FitSize returns the largest w x h that fits maxW x maxH with the aspect
// ratio of a srcW x srcH image. Never smaller than 1x1.
func FitSize(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return 1, 1
	}
	maxW, maxH = max(maxW, 1), max(maxH, 1)
	ratio := min(float64(maxW)/float64(srcW), float64(maxH)/float64(srcH))
	return max(int(float64(srcW)*ratio+0.5), 1), max(int(float64(srcH)*ratio+0.5), 1)
}

// ScaleToFit resamples src with a Lanczos filter so that it fills maxW x maxH
// as far as the aspect ratio allows. Both up- and downscaling happen; an
// image already at the target size is returned unchanged.
func ScaleToFit(src image.Image, maxW, maxH int) image.Image {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), maxW, maxH)
	if w == b.Dx() && h == b.Dy() {
		return src
	}
	g := gift.New(gift.Resize(w, h, gift.LanczosResampling))
	dst := image.NewRGBA(g.Bounds(b))
	g.Draw(dst, src)
	return dst
}
