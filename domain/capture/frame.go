package capture

import "image"

// blankProbeLen is how many leading bytes the blank-frame heuristic inspects
// (the first two RGBA pixels).
const blankProbeLen = 8

// Frame is one captured screen image. Pix holds Width*Height*4 bytes in RGBA
// order. A Frame is owned by whoever received it; the capture layer keeps no
// reference after handing it out.
type Frame struct {
	Pix    []byte
	Width  uint32
	Height uint32
}

// RGBA returns an *image.RGBA view over the frame pixels without copying.
func (f Frame) RGBA() *image.RGBA {
	w, h := int(f.Width), int(f.Height)
	return &image.RGBA{Pix: f.Pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
}

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	if f.Pix == nil {
		return f
	}
	pix := make([]byte, len(f.Pix))
	copy(pix, f.Pix)
	return Frame{Pix: pix, Width: f.Width, Height: f.Height}
}

// Empty reports whether the frame carries no pixel data.
func (f Frame) Empty() bool { return len(f.Pix) == 0 }

// looksBlank reports whether the first two pixels are fully zero.
//
// Some duplication backends hand out an all-black first frame right after a
// session is (re)created. Checking 8 bytes is a heuristic for that quirk, not
// a proof that the image carries no content. Frames shorter than the probe
// are never treated as blank.
func looksBlank(f Frame) bool {
	if len(f.Pix) < blankProbeLen {
		return false
	}
	for _, b := range f.Pix[:blankProbeLen] {
		if b != 0 {
			return false
		}
	}
	return true
}
