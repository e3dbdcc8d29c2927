package core

import "errors"

// Common errors.
var (
	// ErrConfigInvalid marks a configuration edit that was rejected at the
	// boundary. The previous valid configuration stays in effect.
	ErrConfigInvalid = errors.New("configuration out of range")

	// ErrCollisionExhausted is returned when no free name variant could be
	// found within the probe cap. Callers treat it like a storage failure.
	ErrCollisionExhausted = errors.New("no free name variant found")

	// ErrNoNotifier is returned by Service.Run when no notification source
	// was wired in.
	ErrNoNotifier = errors.New("no notifier configured")
)
