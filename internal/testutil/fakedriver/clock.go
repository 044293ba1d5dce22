package fakedriver

import (
	"time"

	"github.com/benbjohnson/clock"
)

// AutoClock is a mock clock whose After fires immediately by advancing time,
// so a poll loop running on it finishes without real sleeping while still
// observing exact elapsed durations.
type AutoClock struct {
	*clock.Mock
}

func NewAutoClock() *AutoClock {
	return &AutoClock{Mock: clock.NewMock()}
}

func (c *AutoClock) After(d time.Duration) <-chan time.Time {
	ch := c.Mock.After(d)
	c.Mock.Add(d)
	return ch
}
