package platform

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"github.com/soocke/deskdup/domain/capture"
)

// displayBackend captures any active display by its bounds.
type displayBackend struct{}

func (displayBackend) count() int { return screenshot.NumActiveDisplays() }

func (displayBackend) open(screen int) (output, error) {
	if n := screenshot.NumActiveDisplays(); screen < 0 || screen >= n {
		return nil, fmt.Errorf("display %d not active (displays=%d)", screen, n)
	}
	bounds := screenshot.GetDisplayBounds(screen)
	if bounds.Empty() {
		return nil, fmt.Errorf("display %d reports empty bounds", screen)
	}
	return &displayOutput{screen: screen, bounds: bounds}, nil
}

type displayOutput struct {
	screen int
	bounds image.Rectangle
}

func (o *displayOutput) grab() (capture.Frame, error) {
	img, err := screenshot.CaptureRect(o.bounds)
	if err != nil {
		return capture.Frame{}, err
	}
	return fromRGBA(img), nil
}

// valid fails once the display is gone or its mode changed, which is when a
// desktop duplication session would be invalidated.
func (o *displayOutput) valid() bool {
	if o.screen >= screenshot.NumActiveDisplays() {
		return false
	}
	return screenshot.GetDisplayBounds(o.screen) == o.bounds
}
