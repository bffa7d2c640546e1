// Package clock provides the monotonic time base for access expiry.
//
// All expiry comparisons in the engine are made against an abstract Tick
// rather than wall-clock time, so the core stays deterministic and tests can
// drive time explicitly. Production wires a WallSource (one tick per second);
// tests use a ManualSource.
package clock

import (
	"sync/atomic"
	"time"
)

// Tick is a monotonic time unit: a wall-clock second, a block height, or a
// logical counter, depending on the configured Source.
type Tick uint64

// Source supplies the current tick. Implementations must be safe for
// concurrent use.
type Source interface {
	Now() Tick
}

// WallSource derives ticks from wall-clock time at one tick per second.
type WallSource struct{}

func (WallSource) Now() Tick {
	return Tick(time.Now().Unix())
}

// ManualSource is an explicitly advanced tick counter for tests and
// deterministic replay.
type ManualSource struct {
	tick atomic.Uint64
}

// NewManualSource returns a ManualSource starting at the given tick.
func NewManualSource(start Tick) *ManualSource {
	s := &ManualSource{}
	s.tick.Store(uint64(start))
	return s
}

func (s *ManualSource) Now() Tick {
	return Tick(s.tick.Load())
}

// Advance moves the source forward by n ticks and returns the new value.
func (s *ManualSource) Advance(n Tick) Tick {
	return Tick(s.tick.Add(uint64(n)))
}

// Set pins the source to an absolute tick.
func (s *ManualSource) Set(t Tick) {
	s.tick.Store(uint64(t))
}
