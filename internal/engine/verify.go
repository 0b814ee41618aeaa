package engine

import (
	"context"
	"time"

	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/platform"
)

// Verification defaults.
const (
	DefaultVerifyTimeout     = 2500 * time.Millisecond
	DefaultVerifyInterval    = 200 * time.Millisecond
	DefaultVerifyConsecutive = 2
)

// Verifier polls a read function until it returns the expected state on
// Consecutive reads in a row, or Timeout elapses.
type Verifier struct {
	Clock       platform.Clock
	Timeout     time.Duration
	Interval    time.Duration
	Consecutive int
}

// DefaultVerifier uses the wall clock and the default timings.
func DefaultVerifier() Verifier {
	return Verifier{
		Clock:       platform.WallClock{},
		Timeout:     DefaultVerifyTimeout,
		Interval:    DefaultVerifyInterval,
		Consecutive: DefaultVerifyConsecutive,
	}
}

// Verify reports whether expected was confirmed, along with the last
// state observed. A cancelled ctx stops polling early.
func (v Verifier) Verify(ctx context.Context, read func() ir.State, expected ir.State) (bool, ir.State) {
	clock := v.Clock
	if clock == nil {
		clock = platform.WallClock{}
	}
	interval := v.Interval
	if interval <= 0 {
		interval = DefaultVerifyInterval
	}
	need := max(1, v.Consecutive)

	deadline := clock.Now().Add(v.Timeout)
	last := ir.Unknown
	streak := 0
	for clock.Now().Before(deadline) {
		last = read()
		if last == expected {
			streak++
			if streak >= need {
				return true, last
			}
		} else {
			streak = 0
		}
		if ctx.Err() != nil {
			return false, last
		}
		clock.Sleep(interval)
	}
	return false, last
}
