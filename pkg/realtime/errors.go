package realtime

import "errors"

var (
	// ErrNotAuthenticated is returned when a read or write is attempted
	// before the credential exchange completed.
	ErrNotAuthenticated = errors.New("realtime store not authenticated")
)
