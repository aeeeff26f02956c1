package mocks

import (
	"fmt"

	"github.com/mcoot/chainreaction/internal/dependencies/ids"
)

// MockIDs is a mock implementation of ids.Generator for testing
type MockIDs struct {
	// Queued IDs are returned first, then sequential "id-N" values
	Queued []string
	next   int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a MockIDs with the given queued IDs
func NewMockIDs(queued ...string) *MockIDs {
	return &MockIDs{Queued: queued}
}

// NewID returns the next queued ID or a sequential fallback
func (m *MockIDs) NewID() string {
	if len(m.Queued) > 0 {
		id := m.Queued[0]
		m.Queued = m.Queued[1:]
		return id
	}
	m.next++
	return fmt.Sprintf("id-%d", m.next)
}
