package visitor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the visitor or alert doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates an illegal state transition.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates missing or invalid input.
	ErrValidation = errors.New("validation failed")
)

// FieldError describes a problem with one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field problems. It matches ErrValidation
// with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalidField(field, msg string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: msg}}}
}

// StoreError wraps a failure of the record store. The core never retries;
// callers decide whether to repeat the whole operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// storeErr passes ErrNotFound and ErrConflict through and wraps everything
// else.
func storeErr(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
