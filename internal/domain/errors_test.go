// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

func TestDomainErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "ErrEventNotFound", err: ErrEventNotFound, expected: "event not found"},
		{name: "ErrInternal", err: ErrInternal, expected: "internal error"},
		{name: "ErrRevisionMismatch", err: ErrRevisionMismatch, expected: "revision mismatch"},
		{name: "ErrUnmarshal", err: ErrUnmarshal, expected: "unmarshal error"},
		{name: "ErrServiceUnavailable", err: ErrServiceUnavailable, expected: "service unavailable"},
		{name: "ErrValidationFailed", err: ErrValidationFailed, expected: "validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	errorVars := []error{
		ErrEventNotFound,
		ErrRoomNotFound,
		ErrProfileNotFound,
		ErrRevisionMismatch,
		ErrInternal,
		ErrUnmarshal,
		ErrServiceUnavailable,
		ErrValidationFailed,
		ErrForbidden,
		ErrRoomConflict,
	}

	for i, a := range errorVars {
		for j, b := range errorVars {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"validation", NewValidationError("bad input"), ErrorTypeValidation},
		{"not found", NewNotFoundError("missing"), ErrorTypeNotFound},
		{"conflict", NewConflictError("taken"), ErrorTypeConflict},
		{"internal", NewInternalError("boom"), ErrorTypeInternal},
		{"unavailable", NewUnavailableError("down"), ErrorTypeUnavailable},
		{"forbidden", NewForbiddenError("nope"), ErrorTypeForbidden},
		{"wrapped domain error", fmt.Errorf("ctx: %w", NewNotFoundError("missing")), ErrorTypeNotFound},
		{"sentinel not found", fmt.Errorf("get: %w", ErrEventNotFound), ErrorTypeNotFound},
		{"sentinel revision", ErrRevisionMismatch, ErrorTypeConflict},
		{"sentinel forbidden", ErrForbidden, ErrorTypeForbidden},
		{"plain error", errors.New("plain"), ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorType(tt.err))
		})
	}
}

func TestDomainErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError("failed to save event", cause)

	assert.Equal(t, "failed to save event: disk full", err.Error())
	assert.ErrorIs(t, err, cause)

	noCause := NewValidationError("title is required")
	assert.Equal(t, "title is required", noCause.Error())
}

func TestRoomConflictError(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	conflicts := []models.WindowConflict{{
		Window:   models.TimeWindow{StartsAt: start, EndsAt: start.Add(time.Hour)},
		Conflict: models.Conflict{EventID: "e1", Title: "Standup"},
	}}

	err := fmt.Errorf("create: %w", NewRoomConflictError(conflicts))

	assert.Equal(t, ErrorTypeConflict, GetErrorType(err))
	assert.ErrorIs(t, err, ErrRoomConflict)
	assert.Equal(t, conflicts, GetConflicts(err))
	assert.Nil(t, GetConflicts(errors.New("other")))
}
