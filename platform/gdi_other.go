//go:build !windows

package platform

func newGDIBackend() (backend, error) { return nil, ErrUnsupported }
