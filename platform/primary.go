package platform

import (
	"fmt"
	"image"

	"github.com/vova616/screenshot"

	"github.com/soocke/deskdup/domain/capture"
)

// primaryBackend captures the primary screen only.
type primaryBackend struct{}

func (primaryBackend) count() int {
	if _, err := screenshot.ScreenRect(); err != nil {
		return 0
	}
	return 1
}

func (primaryBackend) open(screen int) (output, error) {
	if screen != 0 {
		return nil, fmt.Errorf("primary driver captures screen 0 only, got %d", screen)
	}
	rect, err := screenshot.ScreenRect()
	if err != nil {
		return nil, err
	}
	return &primaryOutput{rect: rect}, nil
}

type primaryOutput struct {
	rect image.Rectangle
}

func (o *primaryOutput) grab() (capture.Frame, error) {
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return capture.Frame{}, err
	}
	return fromRGBA(img), nil
}

func (o *primaryOutput) valid() bool {
	rect, err := screenshot.ScreenRect()
	return err == nil && rect == o.rect
}
