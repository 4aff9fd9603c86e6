// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInputValidation  = errors.New("input validation failed")
	ErrInsufficientData = errors.New("insufficient data")
	ErrTradeNotFound    = errors.New("trade not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrDatabaseError    = errors.New("database error")
	ErrCoachUnavailable = errors.New("coach unavailable")
)

// ValidationError identifies a malformed trade record and the offending field.
// Index is the position of the record in the submitted collection, or -1.
type ValidationError struct {
	TradeID string
	Index   int
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	record := e.TradeID
	if record == "" {
		record = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("validation error: trade %s: %s (%v): %s", record, e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(tradeID string, index int, field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		TradeID: tradeID,
		Index:   index,
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// StoreError represents a persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [%s]: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// CoachError represents an error from the coaching LLM backend.
type CoachError struct {
	Operation string
	Err       error
}

func (e *CoachError) Error() string {
	return fmt.Sprintf("coach error [%s]: %v", e.Operation, e.Err)
}

func (e *CoachError) Unwrap() error {
	return e.Err
}

// NewCoachError creates a new CoachError.
func NewCoachError(operation string, err error) *CoachError {
	return &CoachError{Operation: operation, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
