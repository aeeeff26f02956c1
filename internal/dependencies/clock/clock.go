package clock

import "time"

// Clock supplies timestamps for game records and presets.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock. Times are UTC so stored records compare
// equal across backends.
type System struct{}

func New() *System {
	return &System{}
}

func (System) Now() time.Time {
	return time.Now().UTC()
}
