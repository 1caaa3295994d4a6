package contract

import "time"

// Clock is the only source of wall-clock time for report generation.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. Useful for tests and replays.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return c.T }

var (
	_ Clock = SystemClock{} // Compile-time check
	_ Clock = FixedClock{}  // Compile-time check
)
