package platform

import (
	"github.com/soocke/deskdup/domain/capture"
)

// backend is a screenshot source able to address one or more outputs.
type backend interface {
	count() int
	open(screen int) (output, error)
}

// output is one opened screen of a backend.
type output interface {
	grab() (capture.Frame, error)
	// valid reports whether the output still exists with the geometry it had
	// when it was opened.
	valid() bool
}
