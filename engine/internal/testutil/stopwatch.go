// Package testutil provides shared test infrastructure for the engine packages.
package testutil

import "time"

// Stopwatch is a manually advanced stopwatch.
type Stopwatch struct {
	elapsed  time.Duration
	Restarts int
}

func (s *Stopwatch) Elapsed() time.Duration { return s.elapsed }

func (s *Stopwatch) Restart() {
	s.elapsed = 0
	s.Restarts++
}

// Advance moves the stopwatch forward by d.
func (s *Stopwatch) Advance(d time.Duration) { s.elapsed += d }

// Toggle reports a press on the steps where Next is set, then clears it.
type Toggle struct {
	Next bool
}

func (t *Toggle) Pressed() bool {
	p := t.Next
	t.Next = false
	return p
}
