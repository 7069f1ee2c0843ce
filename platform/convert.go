package platform

import (
	"image"

	"github.com/soocke/deskdup/domain/capture"
)

// fromRGBA copies img into a tightly packed frame, dropping any stride
// padding and sub-image offset.
func fromRGBA(img *image.RGBA) capture.Frame {
	if img == nil {
		return capture.Frame{}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return capture.Frame{}
	}
	row := w * 4
	pix := make([]byte, row*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*row:(y+1)*row], img.Pix[off:off+row])
	}
	return capture.Frame{Pix: pix, Width: uint32(w), Height: uint32(h)}
}

// bgraToRGBA swaps the red and blue channels of src into dst. With opaque
// set the alpha channel is forced to 0xFF, for sources whose alpha is
// undefined.
func bgraToRGBA(dst, src []byte, opaque bool) {
	n := min(len(dst), len(src)) &^ 3
	for i := 0; i < n; i += 4 {
		b, g, r, a := src[i], src[i+1], src[i+2], src[i+3]
		if opaque {
			a = 0xFF
		}
		dst[i], dst[i+1], dst[i+2], dst[i+3] = r, g, b, a
	}
}
