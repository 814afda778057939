package security

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// LoginAccess tracks failed login attempts per source IP. One row per IP,
// upserted atomically so concurrent failures never lose an increment.
type LoginAccess struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	IPAddress    string       `db:"ip_address" json:"ip_address"`
	AttemptCount int          `db:"attempt_count" json:"attempt_count"`
	LastAttempt  time.Time    `db:"last_attempt" json:"last_attempt"`
	LockedUntil  sql.NullTime `db:"locked_until" json:"locked_until,omitempty"`
	LastEmail    string       `db:"last_email" json:"last_email"`
}

// LockActive reports whether the lock is currently in force
func (a *LoginAccess) LockActive(now time.Time) bool {
	return a.LockedUntil.Valid && now.Before(a.LockedUntil.Time)
}

// LockoutInfo is what the login flow shows a blocked caller
type LockoutInfo struct {
	Locked           bool   `json:"locked"`
	RemainingMinutes int    `json:"remaining_minutes,omitempty"`
	RemainingSeconds int    `json:"remaining_seconds,omitempty"`
	Message          string `json:"message,omitempty"`
}
