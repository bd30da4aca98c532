package guide

import "errors"

var (
	// ErrInvalidInput marks malformed requests: empty value, unrecognized
	// input type, or unsupported language. A caller error, never retried.
	ErrInvalidInput = errors.New("invalid study guide input")

	// ErrConflict is the store's duplicate-fingerprint signal. It never
	// escapes the coordinator; losers of an insert race re-read instead.
	ErrConflict = errors.New("study guide already exists for fingerprint")

	// ErrNotFound means the principal has no ownership record for the guide.
	ErrNotFound = errors.New("study guide link not found")
)
