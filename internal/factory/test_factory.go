package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/chainreaction/internal/dependencies/mocks"
	"github.com/mcoot/chainreaction/internal/services/seat"
	"github.com/mcoot/chainreaction/internal/storage/memory"
	"github.com/mcoot/chainreaction/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIDs    *mocks.MockIDs
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Game IDs are taken from gameIDs in order.
func NewTestApp(gameIDs ...string) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewMockIDs(gameIDs...)

	app := newWithDependencies(store, mockClock, mockRandom, mockIDs, Config{
		SeatConfig: seat.Config{BcryptCost: bcrypt.MinCost},
	}, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIDs:    mockIDs,
	}
}
