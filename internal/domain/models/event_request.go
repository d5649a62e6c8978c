// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/recurrence"
)

// EventFields are the user editable fields of a booking.
type EventFields struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	RoomID      string    `json:"room_id"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

// CreateEventRequest is the payload for booking a room.
type CreateEventRequest struct {
	EventFields
	OrganizationID string            `json:"organization_id,omitempty"`
	Recurrence     recurrence.Config `json:"recurrence"`
	// Status may be set to draft by privileged actors. Everything else is
	// created pending review.
	Status          EventStatus `json:"status,omitempty"`
	IgnoreConflicts bool        `json:"ignore_conflicts,omitempty"`
}

// UpdateEventRequest is the payload for editing a booking.
type UpdateEventRequest struct {
	EventFields
	IgnoreConflicts bool `json:"ignore_conflicts,omitempty"`
}

// CreateEventResult is returned after a booking is created.
type CreateEventResult struct {
	Event         *Event           `json:"event"`
	InstanceCount int              `json:"instance_count"`
	Summary       string           `json:"summary"`
	Conflicts     []WindowConflict `json:"conflicts,omitempty"`
	Batch         *BatchResult     `json:"batch,omitempty"`
	Warnings      []string         `json:"warnings,omitempty"`
}

// EventResult is returned by operations that modify one event or a series.
type EventResult struct {
	Event    *Event       `json:"event,omitempty"`
	Revision uint64       `json:"-"`
	Batch    *BatchResult `json:"batch,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Series is an anchor event with its generated instances, ordered by start.
type Series struct {
	Anchor    *Event   `json:"anchor"`
	Summary   string   `json:"summary"`
	Instances []*Event `json:"instances"`
}

// RecurrencePreview describes the instances a rule would generate.
type RecurrencePreview struct {
	Rule      string                `json:"rule"`
	Summary   string                `json:"summary"`
	Instances []recurrence.Instance `json:"instances"`
}
