package config

import "errors"

var (
	// ErrParsingConfig wraps env parsing failures (missing required vars, bad values).
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrNilPointer is returned when Load or Parse receives nil.
	ErrNilPointer = errors.New("nil pointer provided to config loader")
)
