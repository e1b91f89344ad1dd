package clock

import (
	"errors"
	"time"
)

// ErrBeforeEpoch is returned when the clock reads a time before the Unix epoch.
// No meaningful credential expiry can be computed from such a clock.
var ErrBeforeEpoch = errors.New("system clock is before the unix epoch")

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// UnixSeconds returns the clock's current time as whole seconds since the epoch
func UnixSeconds(c Clock) (uint64, error) {
	secs := c.Now().Unix()
	if secs < 0 {
		return 0, ErrBeforeEpoch
	}
	return uint64(secs), nil
}
