// Package ledstrip transmits LED frames to a WS2812-style strip bridge.
//
// Each frame is sent as the 25 cells in strip order, three bytes per cell in
// green, red, blue order, followed by a latch pause before the next frame.
package ledstrip

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/cybre/matrix-sound-meter/internal/led"
)

const (
	// BytesPerCell is the wire size of one cell.
	BytesPerCell = 3
	// FrameBytes is the wire size of one frame.
	FrameBytes = led.Count * BytesPerCell
	// MinLatch is the shortest reset pause the strip accepts.
	MinLatch = 80 * time.Microsecond
	// DefaultLatch is the pause used when none is configured.
	DefaultLatch = 100 * time.Microsecond
)

// ErrClosed is returned when writing to a closed strip.
var ErrClosed = eris.New("led strip is closed")

// Encode appends the GRB wire representation of f to dst.
func Encode(dst []byte, f led.Frame) []byte {
	for _, c := range f {
		dst = append(dst, c.G, c.R, c.B)
	}
	return dst
}

// Strip writes frames to an underlying writer.
type Strip struct {
	mu     sync.Mutex
	w      io.Writer
	latch  time.Duration
	buf    []byte
	sleep  func(context.Context, time.Duration) error
	closed bool
}

// NewStrip wraps w. Latch values below MinLatch are raised to DefaultLatch.
func NewStrip(w io.Writer, latch time.Duration) *Strip {
	if latch < MinLatch {
		latch = DefaultLatch
	}
	return &Strip{
		w:     w,
		latch: latch,
		buf:   make([]byte, 0, FrameBytes),
		sleep: sleepContext,
	}
}

// Latch returns the configured pause after each frame.
func (s *Strip) Latch() time.Duration {
	return s.latch
}

// WriteFrame sends f and waits for the latch pause.
func (s *Strip) WriteFrame(ctx context.Context, f led.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.buf = Encode(s.buf[:0], f)
	if _, err := s.w.Write(s.buf); err != nil {
		return eris.Wrap(err, "write led frame")
	}

	return s.sleep(ctx, s.latch)
}

// Close closes the underlying writer when it is an io.Closer.
func (s *Strip) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if c, ok := s.w.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return eris.Wrap(err, "close led strip")
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "wait for led latch")
	case <-timer.C:
		return nil
	}
}
