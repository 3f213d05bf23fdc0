// SPDX-License-Identifier: MPL-2.0

package clock

import (
	"sync"
	"time"
)

type (
	// Clock abstracts time operations for deterministic testing.
	Clock interface {
		// Now returns the current time.
		Now() time.Time

		// Since returns the time elapsed since t.
		Since(t time.Time) time.Duration
	}

	// Real implements Clock using actual system time.
	Real struct{}

	// Fake implements Clock with manually controlled time for testing.
	// Time only advances when Advance() or Set() is called.
	Fake struct {
		mu      sync.Mutex
		current time.Time
	}
)

// Now returns the current system time.
func (Real) Now() time.Time {
	return time.Now()
}

// Since returns the time elapsed since t.
func (Real) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// NewFake creates a Fake initialized to the given time.
// If initial is zero, defaults to a fixed reference time for reproducibility.
func NewFake(initial time.Time) *Fake {
	if initial.IsZero() {
		initial = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Fake{current: initial}
}

// Now returns the current fake time.
func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Since returns the fake time elapsed since t.
func (c *Fake) Since(t time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Sub(t)
}

// Advance moves the fake time forward by d.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Set sets the fake time to t.
func (c *Fake) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}
