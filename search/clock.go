package search

import "time"

// Clock tells the iterative deepening driver how much of its budget is
// spent.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

// Now carries Go's monotonic reading, so Sub is immune to wall clock jumps.
func (wallClock) Now() time.Time { return time.Now() }
