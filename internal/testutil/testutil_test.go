package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock_SleepAdvances(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	var seen []time.Time
	c.OnSleep(func(now time.Time) { seen = append(seen, now) })

	c.Sleep(200 * time.Millisecond)
	c.Sleep(300 * time.Millisecond)
	c.Advance(time.Second)

	assert.Equal(t, start.Add(1500*time.Millisecond), c.Now())
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 300 * time.Millisecond}, c.Sleeps())
	assert.Equal(t, []time.Time{start.Add(200 * time.Millisecond), start.Add(500 * time.Millisecond)}, seen)
}

func TestSequenceIDGenerator(t *testing.T) {
	g := NewSequenceIDGenerator("")
	assert.Equal(t, "session-0001", g.Generate())
	assert.Equal(t, "session-0002", g.Generate())

	g2 := NewSequenceIDGenerator("learn")
	assert.Equal(t, "learn-0001", g2.Generate())
}
