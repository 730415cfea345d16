//go:build windows

package capture

// GDI capture: each Grab BitBlts the screen into a temporary top-down DIB and
// converts BGRA into a pooled *image.RGBA. GDI objects are freed per call.

import (
	"fmt"
	"image"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	smCxScreen   = 0
	smCyScreen   = 1
	srccopy      = 0x00CC0020
	dibRGBColors = 0
	biRgb        = 0
)

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	gdi32                  = windows.NewLazySystemDLL("gdi32.dll")
	procGetDC              = user32.NewProc("GetDC")
	procReleaseDC          = user32.NewProc("ReleaseDC")
	procGetSystemMetrics   = user32.NewProc("GetSystemMetrics")
	procCreateCompatibleDC = gdi32.NewProc("CreateCompatibleDC")
	procDeleteDC           = gdi32.NewProc("DeleteDC")
	procSelectObject       = gdi32.NewProc("SelectObject")
	procBitBlt             = gdi32.NewProc("BitBlt")
	procCreateDIBSection   = gdi32.NewProc("CreateDIBSection")
	procDeleteObject       = gdi32.NewProc("DeleteObject")
)

type bitmapInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type bitmapInfo struct {
	Header bitmapInfoHeader
	_      [4]byte // one RGBQUAD placeholder (unused for 32-bit)
}

type gdiGrabber struct{}

func newGDIGrabber() Grabber {
	if user32.Load() != nil || gdi32.Load() != nil {
		return nil
	}
	return gdiGrabber{}
}

func (gdiGrabber) Name() string { return BackendGDI }

// Grab captures rect, which must lie fully on the primary screen.
func (gdiGrabber) Grab(rect image.Rectangle) (*image.RGBA, error) {
	if rect.Empty() {
		return nil, ErrEmptyRect
	}
	screen := image.Rect(0, 0, systemMetric(smCxScreen), systemMetric(smCyScreen))
	if !rect.In(screen) {
		return nil, fmt.Errorf("capture: selection out of bounds sel=%v screen=%v", rect, screen)
	}
	return bitBlt(rect)
}

func (gdiGrabber) Recycle(img *image.RGBA) { RecycleFrame(img) }

func bitBlt(r image.Rectangle) (*image.RGBA, error) {
	w, h := r.Dx(), r.Dy()

	screenDC, _, callErr := procGetDC.Call(0)
	if screenDC == 0 {
		return nil, fmt.Errorf("capture: GetDC: %w", callErr)
	}
	defer procReleaseDC.Call(0, screenDC)

	memDC, _, callErr := procCreateCompatibleDC.Call(screenDC)
	if memDC == 0 {
		return nil, fmt.Errorf("capture: CreateCompatibleDC: %w", callErr)
	}
	defer procDeleteDC.Call(memDC)

	var bi bitmapInfo
	bi.Header.BiSize = uint32(unsafe.Sizeof(bi.Header))
	bi.Header.BiWidth = int32(w)
	bi.Header.BiHeight = -int32(h) // top-down
	bi.Header.BiPlanes = 1
	bi.Header.BiBitCount = 32
	bi.Header.BiCompression = biRgb
	bi.Header.BiSizeImage = uint32(w * h * 4)

	var bits unsafe.Pointer
	bmp, _, callErr := procCreateDIBSection.Call(memDC, uintptr(unsafe.Pointer(&bi)), dibRGBColors, uintptr(unsafe.Pointer(&bits)), 0, 0)
	if bmp == 0 {
		return nil, fmt.Errorf("capture: CreateDIBSection: %w", callErr)
	}
	defer procDeleteObject.Call(bmp)

	prev, _, callErr := procSelectObject.Call(memDC, bmp)
	if prev == 0 || prev == ^uintptr(0) { // failure or GDI_ERROR
		return nil, fmt.Errorf("capture: SelectObject: %w", callErr)
	}

	ok, _, callErr := procBitBlt.Call(memDC, 0, 0, uintptr(w), uintptr(h), screenDC, uintptr(r.Min.X), uintptr(r.Min.Y), srccopy)
	if ok == 0 {
		return nil, fmt.Errorf("capture: BitBlt x=%d y=%d w=%d h=%d: %w", r.Min.X, r.Min.Y, w, h, callErr)
	}

	n := w * h * 4
	src := unsafe.Slice((*byte)(bits), n)
	dst := acquireFrame(image.Rect(0, 0, w, h))
	for i := 0; i < n; i += 4 {
		dst.Pix[i+0] = src[i+2]
		dst.Pix[i+1] = src[i+1]
		dst.Pix[i+2] = src[i+0]
		dst.Pix[i+3] = 0xFF // DIB alpha is undefined
	}
	return dst, nil
}

func systemMetric(idx int) int {
	v, _, _ := procGetSystemMetrics.Call(uintptr(idx))
	return int(int32(v))
}
