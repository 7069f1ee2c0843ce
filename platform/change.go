package platform

import "hash/maphash"

// changeDetector remembers a hash of the last frame it saw.
type changeDetector struct {
	seed maphash.Seed
	last uint64
	seen bool
}

func newChangeDetector() *changeDetector {
	return &changeDetector{seed: maphash.MakeSeed()}
}

// changed reports whether pix differs from the previous call. The first call
// always reports true.
func (c *changeDetector) changed(pix []byte) bool {
	sum := maphash.Bytes(c.seed, pix)
	if c.seen && sum == c.last {
		return false
	}
	c.last = sum
	c.seen = true
	return true
}
