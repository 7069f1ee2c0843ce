//go:build windows

package platform

// Primary screen capture through GDI. Each grab creates a temporary top-down
// DIB section, BitBlts the screen into it, converts BGRA to RGBA into a
// heap-owned frame and frees the GDI objects again.

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/soocke/deskdup/domain/capture"
)

const (
	smCxScreen   = 0
	smCyScreen   = 1
	smCMonitors  = 80
	srccopy      = 0x00CC0020
	dibRGBColors = 0
	biRgb        = 0
)

var (
	modUser32 = windows.NewLazySystemDLL("user32.dll")
	modGdi32  = windows.NewLazySystemDLL("gdi32.dll")

	procGetDC              = modUser32.NewProc("GetDC")
	procReleaseDC          = modUser32.NewProc("ReleaseDC")
	procGetSystemMetrics   = modUser32.NewProc("GetSystemMetrics")
	procCreateCompatibleDC = modGdi32.NewProc("CreateCompatibleDC")
	procDeleteDC           = modGdi32.NewProc("DeleteDC")
	procSelectObject       = modGdi32.NewProc("SelectObject")
	procBitBlt             = modGdi32.NewProc("BitBlt")
	procCreateDIBSection   = modGdi32.NewProc("CreateDIBSection")
	procDeleteObject       = modGdi32.NewProc("DeleteObject")
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
	_      [4]byte // one RGBQUAD, unused for 32-bit
}

type gdiBackend struct{}

func newGDIBackend() (backend, error) {
	if err := procBitBlt.Find(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return gdiBackend{}, nil
}

// count reports 1 when any monitor is attached; GDI only reaches the primary.
func (gdiBackend) count() int {
	if systemMetric(smCMonitors) > 0 {
		return 1
	}
	return 0
}

func (gdiBackend) open(screen int) (output, error) {
	if screen != 0 {
		return nil, fmt.Errorf("gdi driver captures screen 0 only, got %d", screen)
	}
	w, h := systemMetric(smCxScreen), systemMetric(smCyScreen)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid screen size w=%d h=%d", w, h)
	}
	return &gdiOutput{w: w, h: h}, nil
}

type gdiOutput struct {
	w, h int32
}

func (o *gdiOutput) valid() bool {
	return systemMetric(smCxScreen) == o.w && systemMetric(smCyScreen) == o.h
}

func (o *gdiOutput) grab() (capture.Frame, error) {
	w, h := int(o.w), int(o.h)

	screenDC, _, err := procGetDC.Call(0)
	if screenDC == 0 {
		return capture.Frame{}, fmt.Errorf("GetDC: %w", err)
	}
	defer procReleaseDC.Call(0, screenDC)

	memDC, _, err := procCreateCompatibleDC.Call(screenDC)
	if memDC == 0 {
		return capture.Frame{}, fmt.Errorf("CreateCompatibleDC: %w", err)
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
	bmp, _, err := procCreateDIBSection.Call(memDC, uintptr(unsafe.Pointer(&bi)), dibRGBColors, uintptr(unsafe.Pointer(&bits)), 0, 0)
	if bmp == 0 {
		return capture.Frame{}, fmt.Errorf("CreateDIBSection: %w", err)
	}
	defer procDeleteObject.Call(bmp)

	prev, _, err := procSelectObject.Call(memDC, bmp)
	if prev == 0 || prev == ^uintptr(0) {
		return capture.Frame{}, fmt.Errorf("SelectObject: %w", err)
	}

	ok, _, err := procBitBlt.Call(memDC, 0, 0, uintptr(w), uintptr(h), screenDC, 0, 0, srccopy)
	if ok == 0 {
		return capture.Frame{}, fmt.Errorf("BitBlt w=%d h=%d: %w", w, h, err)
	}

	n := w * h * 4
	src := unsafe.Slice((*byte)(bits), n)
	pix := make([]byte, n)
	bgraToRGBA(pix, src, true)
	return capture.Frame{Pix: pix, Width: uint32(w), Height: uint32(h)}, nil
}

func systemMetric(idx int) int32 {
	v, _, _ := procGetSystemMetrics.Call(uintptr(idx))
	return int32(v)
}
