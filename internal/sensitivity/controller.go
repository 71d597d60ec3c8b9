package sensitivity

import "sync/atomic"

// Controller owns the current sensitivity level. Only the table index is
// stored, so a reader always observes a complete Level record even while a
// concurrent Advance is in flight.
type Controller struct {
	index atomic.Uint32
}

// NewController returns a controller at MinLevel.
func NewController() *Controller {
	return &Controller{}
}

// Level returns the current level. Callers should read it once per render
// cycle and pass the value along.
func (c *Controller) Level() Level {
	return levels[c.index.Load()]
}

// Advance moves to the next level, wrapping from MaxLevel back to MinLevel,
// and returns the new level.
func (c *Controller) Advance() Level {
	for {
		cur := c.index.Load()
		next := (cur + 1) % MaxLevel
		if c.index.CompareAndSwap(cur, next) {
			return levels[next]
		}
	}
}
