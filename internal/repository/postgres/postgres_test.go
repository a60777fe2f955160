package postgres

import "time"

// mockTime returns a deterministic timestamp offset by n minutes, for row fixtures.
func mockTime(n int) time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Minute)
}
