package settings

import "errors"

var (
	// ErrNotConfigured is returned when the platform settings row is missing.
	// Operations that need configuration fail outright instead of proceeding
	// with defaults.
	ErrNotConfigured = errors.New("platform settings not configured")
)
