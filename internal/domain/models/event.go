// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"

	"github.com/akamensky/base58"
	"github.com/google/uuid"
)

// EventStatus is the approval state of a booking.
type EventStatus string

// Event statuses
const (
	StatusDraft         EventStatus = "draft"
	StatusPendingReview EventStatus = "pending_review"
	StatusApproved      EventStatus = "approved"
	StatusRejected      EventStatus = "rejected"
	StatusPublished     EventStatus = "published"
)

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusApproved, StatusRejected, StatusPublished:
		return true
	}
	return false
}

// IsActive reports whether an event in status s holds its room.
func (s EventStatus) IsActive() bool {
	switch s {
	case StatusPendingReview, StatusApproved, StatusPublished:
		return true
	}
	return false
}

// ActiveStatuses returns the statuses considered by room conflict checks.
func ActiveStatuses() []EventStatus {
	return []EventStatus{StatusPendingReview, StatusApproved, StatusPublished}
}

// Event is a room booking. A recurring series is stored as an anchor event
// carrying the recurrence rule plus one event per generated instance whose
// ParentEventID points at the anchor.
type Event struct {
	ID                string      `json:"id" db:"id"`
	OrganizationID    string      `json:"organization_id,omitempty" db:"organization_id"`
	Title             string      `json:"title" db:"title"`
	Description       string      `json:"description,omitempty" db:"description"`
	RoomID            string      `json:"room_id" db:"room_id"`
	StartsAt          time.Time   `json:"starts_at" db:"starts_at"`
	EndsAt            time.Time   `json:"ends_at" db:"ends_at"`
	Status            EventStatus `json:"status" db:"status"`
	IsRecurring       bool        `json:"is_recurring" db:"is_recurring"`
	ParentEventID     *string     `json:"parent_event_id" db:"parent_event_id"`
	RecurrenceRule    *string     `json:"recurrence_rule" db:"recurrence_rule"`
	RecurrenceEndDate *time.Time  `json:"recurrence_end_date" db:"recurrence_end_date"`
	CreatedBy         string      `json:"created_by" db:"created_by"`
	ReviewerID        *string     `json:"reviewer_id" db:"reviewer_id"`
	ReviewerNotes     *string     `json:"reviewer_notes" db:"reviewer_notes"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}

// AnchorID returns the id of the series anchor: the parent for an instance,
// the event itself otherwise.
func (e *Event) AnchorID() string {
	if e.ParentEventID != nil && *e.ParentEventID != "" {
		return *e.ParentEventID
	}
	return e.ID
}

// IsAnchor reports whether e is the first event of a recurring series.
func (e *Event) IsAnchor() bool {
	return e.IsRecurring && (e.ParentEventID == nil || *e.ParentEventID == "")
}

// Duration returns the length of the booking.
func (e *Event) Duration() time.Duration {
	return e.EndsAt.Sub(e.StartsAt)
}

// Overlaps reports whether e overlaps the half-open window [start, end).
func (e *Event) Overlaps(start, end time.Time) bool {
	return Overlaps(e.StartsAt, e.EndsAt, start, end)
}

// Reference returns a short, human friendly booking reference.
func (e *Event) Reference() string {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return base58.Encode([]byte(e.ID))
	}
	return base58.Encode(id[:])
}

// Clone returns a deep copy of e.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	c.ParentEventID = cloneString(e.ParentEventID)
	c.RecurrenceRule = cloneString(e.RecurrenceRule)
	c.ReviewerID = cloneString(e.ReviewerID)
	c.ReviewerNotes = cloneString(e.ReviewerNotes)
	if e.RecurrenceEndDate != nil {
		t := *e.RecurrenceEndDate
		c.RecurrenceEndDate = &t
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Windows that only touch at an endpoint do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
