package domain

import (
	"errors"
	"time"
)

var ErrUsageNotFound = errors.New("usage record not found")
var ErrUsageExists = errors.New("usage record already exists")

// UsageRecord is the per-user, per-day counter ledger entry. At most one
// exists per (user, day); the storage layer enforces that with a unique
// compound index, since two first-requests-of-the-day can race.
type UsageRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Day          time.Time `json:"day"`
	MessageCount int64     `json:"message_count"`
	TokenCount   int64     `json:"token_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// DayStart truncates t to midnight in t's own location. Usage ledger days
// are server-local calendar days, a service-wide clock that callers must not
// supply themselves.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
