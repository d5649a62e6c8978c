// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/recurrence"
)

// ValidateEventFields checks the editable fields of a booking.
func ValidateEventFields(f models.EventFields) error {
	var errs []error
	add := func(field, msg string) {
		errs = append(errs, &recurrence.FieldError{Field: field, Message: msg})
	}

	title := strings.TrimSpace(f.Title)
	switch {
	case title == "":
		add("title", "title is required")
	case utf8.RuneCountInString(title) > constants.MaxTitleLength:
		add("title", "title must be 200 characters or less")
	}
	if utf8.RuneCountInString(f.Description) > constants.MaxDescriptionLength {
		add("description", "description must be 1000 characters or less")
	}
	if strings.TrimSpace(f.RoomID) == "" {
		add("room_id", "room is required")
	}
	if f.StartsAt.IsZero() {
		add("starts_at", "start time is required")
	}
	if f.EndsAt.IsZero() {
		add("ends_at", "end time is required")
	}
	if !f.StartsAt.IsZero() && !f.EndsAt.IsZero() && !f.EndsAt.After(f.StartsAt) {
		add("ends_at", "end time must be after start time")
	}

	if len(errs) > 0 {
		return domain.NewValidationError("invalid event", errs...)
	}
	return nil
}

// ValidateEventRequest checks a create request, including its recurrence.
func ValidateEventRequest(req *models.CreateEventRequest) error {
	if req == nil {
		return domain.NewValidationError("request body is required")
	}

	var errs []error
	if err := ValidateEventFields(req.EventFields); err != nil {
		errs = append(errs, errors.Unwrap(err))
	}
	if err := recurrence.Validate(req.Recurrence, req.StartsAt); err != nil {
		errs = append(errs, err)
	}
	if req.Status != "" && !req.Status.Valid() {
		errs = append(errs, &recurrence.FieldError{Field: "status", Message: "unknown status"})
	}

	if len(errs) > 0 {
		return domain.NewValidationError("invalid event", errs...)
	}
	return nil
}
