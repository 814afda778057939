package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidReferrer    = errors.New("referrer not found")
)

// LockedOutError carries the human message built by the lockout engine,
// including the remaining time.
type LockedOutError struct {
	Message string
}

func (e *LockedOutError) Error() string { return e.Message }
