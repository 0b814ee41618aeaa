package platform

import "time"

// Clock supplies wall time and blocking sleeps. Polling loops take a Clock
// so tests can run them without real delays.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// WallClock is the real clock.
type WallClock struct{}

func (WallClock) Now() time.Time        { return time.Now() }
func (WallClock) Sleep(d time.Duration) { time.Sleep(d) }
