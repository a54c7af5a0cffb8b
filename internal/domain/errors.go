package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNotOrderable = errors.New("product is not available for ordering")
)

// ValidationError names the first offending field of a rejected input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// TransientFetchError wraps a backing-store or network failure during a read.
// Callers keep their previous state and may retry.
type TransientFetchError struct {
	Op  string
	Err error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// Transient wraps err unless it is nil or already a domain outcome
// (not found, validation).
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var te *TransientFetchError
	if errors.Is(err, ErrNotFound) || errors.As(err, &ve) || errors.As(err, &te) {
		return err
	}
	return &TransientFetchError{Op: op, Err: err}
}

func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func IsTransient(err error) bool {
	var te *TransientFetchError
	return errors.As(err, &te)
}
