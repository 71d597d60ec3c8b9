package sensitivity

import (
	"sync"
	"time"
)

// DefaultDebounce is the minimum spacing between two accepted events of the
// same kind.
const DefaultDebounce = 200 * time.Millisecond

// EventKind distinguishes the two hardware buttons.
type EventKind int

const (
	// EventAdvance steps to the next sensitivity level.
	EventAdvance EventKind = iota
	// EventMaintenance asks the meter to stop and hand over to maintenance.
	EventMaintenance
)

// String returns a human-friendly name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventAdvance:
		return "advance"
	case EventMaintenance:
		return "maintenance"
	default:
		return "unknown"
	}
}

// Event is a debounced button press.
type Event struct {
	Kind EventKind
	At   time.Time
}

// Debouncer filters raw button edges and forwards accepted events to a
// buffered channel. Each kind is debounced independently. Push never
// blocks: when the consumer lags behind, the event is dropped.
type Debouncer struct {
	mu      sync.Mutex
	spacing time.Duration
	last    map[EventKind]time.Time
	events  chan Event
	dropped uint64
}

// NewDebouncer builds a debouncer with the given minimum spacing and channel
// capacity. Non-positive values fall back to defaults.
func NewDebouncer(spacing time.Duration, capacity int) *Debouncer {
	if spacing <= 0 {
		spacing = DefaultDebounce
	}
	if capacity <= 0 {
		capacity = 8
	}
	return &Debouncer{
		spacing: spacing,
		last:    make(map[EventKind]time.Time, 2),
		events:  make(chan Event, capacity),
	}
}

// Push records a raw edge of the given kind at time now. It reports whether
// the edge was accepted and queued.
func (d *Debouncer) Push(kind EventKind, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.last[kind]; ok && now.Sub(last) <= d.spacing {
		return false
	}
	d.last[kind] = now

	select {
	case d.events <- Event{Kind: kind, At: now}:
		return true
	default:
		d.dropped++
		return false
	}
}

// Dropped returns how many accepted edges were discarded on a full queue.
func (d *Debouncer) Dropped() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Drain removes every queued event without blocking and returns them in
// arrival order.
func (d *Debouncer) Drain() []Event {
	var out []Event
	for {
		select {
		case ev := <-d.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}
