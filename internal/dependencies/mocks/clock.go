package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/chainreaction/internal/dependencies/clock"
)

// MockClock is a manually advanced clock. Safe for use from websocket
// handlers running alongside the test goroutine.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ clock.Clock = (*MockClock)(nil)

func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward, e.g. to order games by UpdatedAt.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
