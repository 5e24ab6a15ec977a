package config

import "errors"

var (
	// ErrNilPointer is returned when Load receives a nil target.
	ErrNilPointer = errors.New("config.nil_pointer")

	// ErrParsingConfig is returned when environment parsing fails, e.g.
	// a required variable is missing or a value has the wrong type.
	ErrParsingConfig = errors.New("config.parsing_failed")
)
