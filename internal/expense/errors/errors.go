package errors

import (
	"errors"
	"fmt"
)

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrAccessDenied signals that the record exists but belongs to another user.
	ErrAccessDenied = errors.New("access denied")
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

// InvalidReferenceError marks a caller-supplied reference to another entity
// (for example a transaction's category) that is missing or owned by a
// different user. It maps to a 400, not a 403: the problem is the input,
// not access to the caller's own resource.
type InvalidReferenceError struct {
	Entity string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid %s reference", e.Entity)
}

func NewInvalidReferenceError(entity string) error {
	return &InvalidReferenceError{Entity: entity}
}

func IsInvalidReference(err error) bool {
	var refError *InvalidReferenceError
	return errors.As(err, &refError)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrCategoryNotFound) || errors.Is(err, ErrTransactionNotFound)
}
