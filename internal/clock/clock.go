package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System is the wall clock.
var System Clock = systemClock{}

// Fixed always reports the same instant. Tests use it to pin "today".
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// Today truncates the clock's current instant to a calendar date in UTC.
func Today(c Clock) time.Time {
	now := c.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// IDGenerator hands out candidate identifiers that are never reused within the process.
type IDGenerator interface {
	Batch(n int) []int64
	// Observe raises the floor so later ids stay above id, e.g. after a snapshot load.
	Observe(id int64)
}

// Sequence derives ids from the batch time in milliseconds plus a sequential offset.
// It never goes below the last issued id, so a stalled or rewound clock cannot collide.
type Sequence struct {
	mu    sync.Mutex
	clock Clock
	last  int64
}

func NewSequence(c Clock) *Sequence {
	if c == nil {
		c = System
	}
	return &Sequence{clock: c}
}

func (s *Sequence) Batch(n int) []int64 {
	if n <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.clock.Now().UnixMilli()
	if base <= s.last {
		base = s.last + 1
	}

	ids := make([]int64, n)
	for i := range ids {
		ids[i] = base + int64(i)
	}
	s.last = ids[n-1]

	return ids
}

func (s *Sequence) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id > s.last {
		s.last = id
	}
}
