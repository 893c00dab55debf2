package compliance

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField         = errors.New("required field is missing")
	ErrInvalidField         = errors.New("field value is invalid")
	ErrDuplicateRequirement = errors.New("requirement already exists")
	ErrStaleWrite           = errors.New("requirements were modified by another user")
	ErrUnknownEmployee      = errors.New("employee not found")
	ErrUnknownRequirement   = errors.New("requirement not found")
	ErrNotValidatable       = errors.New("requirement has nothing new to validate")
	// ErrUnreadableRequirements blocks writes over a stored blob that could not be decoded.
	ErrUnreadableRequirements = errors.New("stored requirements could not be read")
)

// FieldError names the field behind ErrMissingField or ErrInvalidField.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// DuplicateError carries the existing label a new request collided with.
type DuplicateError struct {
	Label    string
	Existing string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%q duplicates existing requirement %q", e.Label, e.Existing)
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicateRequirement
}

func missingField(field string) error {
	return &FieldError{Field: field, Err: ErrMissingField}
}

func invalidField(field string) error {
	return &FieldError{Field: field, Err: ErrInvalidField}
}
