package generator

import "fmt"

// ParseError reports that a model response did not match the expected
// structure.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse model response: %v", e.Cause) }
func (e *ParseError) Unwrap() error { return e.Cause }

// CollaboratorError reports a failed downstream call. Op names the operation
// that failed ("create record", "append blocks", ...).
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *CollaboratorError) Unwrap() error { return e.Err }

// MissingFieldError reports that a record read back for publishing lacks a
// required field. Publishing is not attempted.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("record is missing required field %q", e.Field)
}
