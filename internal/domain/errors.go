// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"errors"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

// ErrorType represents the semantic category of an error
type ErrorType int

const (
	ErrorTypeValidation  ErrorType = iota // Input validation errors (400 Bad Request)
	ErrorTypeNotFound                     // Resource not found errors (404 Not Found)
	ErrorTypeConflict                     // Resource conflict errors (409 Conflict)
	ErrorTypeInternal                     // Internal server errors (500 Internal Server Error)
	ErrorTypeUnavailable                  // Service unavailable errors (503 Service Unavailable)
	ErrorTypeForbidden                    // Permission errors (403 Forbidden)
	ErrorTypeUnauthorized                 // Missing or invalid credentials (401 Unauthorized)
)

// Sentinel errors shared by the storage backends and services.
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrRoomNotFound       = errors.New("room not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrRevisionMismatch   = errors.New("revision mismatch")
	ErrInternal           = errors.New("internal error")
	ErrUnmarshal          = errors.New("unmarshal error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrValidationFailed   = errors.New("validation failed")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrRoomConflict       = errors.New("room is already booked for this time")
)

// DomainError represents an error with semantic type information
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error // underlying error for wrapping

	// Conflicts lists the bookings that caused a room conflict, if any.
	Conflicts []models.WindowConflict
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the semantic type of an error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	switch {
	case errors.Is(err, ErrEventNotFound), errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrProfileNotFound):
		return ErrorTypeNotFound
	case errors.Is(err, ErrRevisionMismatch), errors.Is(err, ErrRoomConflict):
		return ErrorTypeConflict
	case errors.Is(err, ErrValidationFailed):
		return ErrorTypeValidation
	case errors.Is(err, ErrForbidden):
		return ErrorTypeForbidden
	case errors.Is(err, ErrUnauthorized):
		return ErrorTypeUnauthorized
	case errors.Is(err, ErrServiceUnavailable):
		return ErrorTypeUnavailable
	}
	return ErrorTypeInternal // default fallback
}

// GetConflicts returns the conflicts attached to err, if any.
func GetConflicts(err error) []models.WindowConflict {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Conflicts
	}
	return nil
}

// Error constructors for different types
func NewValidationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeValidation, Message: message, Err: errors.Join(err...)}
}

func NewNotFoundError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: message, Err: errors.Join(err...)}
}

func NewConflictError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeConflict, Message: message, Err: errors.Join(err...)}
}

func NewInternalError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInternal, Message: message, Err: errors.Join(err...)}
}

func NewUnavailableError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnavailable, Message: message, Err: errors.Join(err...)}
}

func NewForbiddenError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeForbidden, Message: message, Err: errors.Join(err...)}
}

func NewUnauthorizedError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnauthorized, Message: message, Err: errors.Join(err...)}
}

// NewRoomConflictError reports that one or more windows collide with
// existing bookings.
func NewRoomConflictError(conflicts []models.WindowConflict) *DomainError {
	return &DomainError{
		Type:      ErrorTypeConflict,
		Message:   "room booking conflict",
		Err:       ErrRoomConflict,
		Conflicts: conflicts,
	}
}
