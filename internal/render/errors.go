package render

import "errors"

var (
	// ErrTemplate reports a template that failed to compile.
	ErrTemplate = errors.New("render: template compilation failed")
	// ErrUnknownKind reports a message kind with no template.
	ErrUnknownKind = errors.New("render: unknown message kind")
	// ErrMissingField reports a template referencing a field the record does not have.
	ErrMissingField = errors.New("render: missing field")
	// ErrInvalidNumber reports NaN/Inf percentages and negative byte counts.
	ErrInvalidNumber = errors.New("render: invalid number")
)
