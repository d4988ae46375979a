package engine

import "time"

// Clock supplies "now" to the generator so that event windows and
// celebrations-today counts are deterministic under test.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system wall clock in the local zone.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time {
	return time.Now()
}
