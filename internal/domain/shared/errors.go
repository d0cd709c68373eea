// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrFutureTimestamp = errors.New("timestamp cannot be in the future")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrExpired         = errors.New("expired")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// Infrastructure errors
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "progression", "streak", "badge", "quiz"
	Op      string // Operation that failed, e.g., "Create", "Update"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Progression domain errors
var (
	ErrProgressNotFound = NewDomainError("progression", "Find", ErrNotFound, "user progress not found")
	ErrNegativeXP       = NewDomainError("progression", "Validate", ErrNegativeValue, "XP amount cannot be negative")
)

// Streak domain errors
var (
	ErrStreakNotFound  = NewDomainError("streak", "Find", ErrNotFound, "streak state not found")
	ErrInvalidTimezone = NewDomainError("streak", "Validate", ErrInvalidInput, "invalid timezone")
)

// Badge domain errors
var (
	ErrBadgeNotFound        = NewDomainError("badge", "Find", ErrNotFound, "badge not found")
	ErrBadgeTitleTaken      = NewDomainError("badge", "Create", ErrAlreadyExists, "badge title already in use")
	ErrBadgeRankTaken       = NewDomainError("badge", "Create", ErrAlreadyExists, "another active badge holds this rank")
	ErrInvalidBadgeRank     = NewDomainError("badge", "Validate", ErrValueOutOfRange, "badge rank must be positive")
	ErrInvalidXpThreshold   = NewDomainError("badge", "Validate", ErrNegativeValue, "XP threshold cannot be negative")
	ErrEmptyBadgeTitle      = NewDomainError("badge", "Validate", ErrEmptyValue, "badge title cannot be empty")
	ErrUserBadgeNotFound    = NewDomainError("badge", "FindUserBadge", ErrNotFound, "user badge not found")
)

// Quiz domain errors
var (
	ErrQuestionNotFound   = NewDomainError("quiz", "Find", ErrNotFound, "question not found")
	ErrSessionNotFound    = NewDomainError("quiz", "FindSession", ErrNotFound, "quiz session not found")
	ErrInvalidCount       = NewDomainError("quiz", "Validate", ErrInvalidInput, "question count must be positive")
	ErrPoolTooSmall       = NewDomainError("quiz", "Select", ErrInvalidInput, "question pool smaller than requested count")
	ErrEmptyQuestionText  = NewDomainError("quiz", "Validate", ErrEmptyValue, "question text cannot be empty")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" (conflict) error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}
