// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"slices"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

// Action is a reviewer or requester operation on a booking's status.
type Action string

// Status actions
const (
	ActionSubmit    Action = "submit"
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionPublish   Action = "publish"
	ActionUnpublish Action = "unpublish"
	ActionUnapprove Action = "unapprove"
)

type transition struct {
	from       []models.EventStatus
	to         models.EventStatus
	privileged bool
}

var transitions = map[Action]transition{
	ActionSubmit:    {from: []models.EventStatus{models.StatusDraft}, to: models.StatusPendingReview},
	ActionApprove:   {from: []models.EventStatus{models.StatusPendingReview}, to: models.StatusApproved, privileged: true},
	ActionReject:    {from: []models.EventStatus{models.StatusPendingReview}, to: models.StatusRejected, privileged: true},
	ActionPublish:   {from: []models.EventStatus{models.StatusApproved}, to: models.StatusPublished, privileged: true},
	ActionUnpublish: {from: []models.EventStatus{models.StatusPublished}, to: models.StatusApproved, privileged: true},
	ActionUnapprove: {
		from:       []models.EventStatus{models.StatusApproved, models.StatusPublished, models.StatusRejected},
		to:         models.StatusPendingReview,
		privileged: true,
	},
}

// ParseAction returns the action named s.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	_, ok := transitions[a]
	return a, ok
}

// Notifies reports whether the requester is told about this action.
func (a Action) Notifies() bool {
	return a != ActionSubmit
}

// Lifecycle is the booking approval state machine.
type Lifecycle struct {
	now func() time.Time
}

// NewLifecycle creates a Lifecycle using the wall clock.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{now: func() time.Time { return time.Now().UTC() }}
}

// Target returns the status action moves an event into.
func (l *Lifecycle) Target(action Action) (models.EventStatus, bool) {
	t, ok := transitions[action]
	return t.to, ok
}

// CheckAction validates the parts of a transition that do not depend on the
// event, so bad requests fail before anything is read.
func (l *Lifecycle) CheckAction(actor models.Actor, action Action, reason string) error {
	t, ok := transitions[action]
	if !ok {
		return domain.NewValidationError("unknown status action: " + string(action))
	}
	if t.privileged && !actor.Privileged {
		return domain.NewForbiddenError("only reviewers can " + string(action) + " bookings")
	}
	if action == ActionReject && strings.TrimSpace(reason) == "" {
		return domain.NewValidationError("a reason is required to reject a booking")
	}
	return nil
}

// Transition applies action to event and returns the updated copy. The
// input event is left untouched.
func (l *Lifecycle) Transition(actor models.Actor, event *models.Event, action Action, reason string) (*models.Event, error) {
	if err := l.CheckAction(actor, action, reason); err != nil {
		return nil, err
	}
	t := transitions[action]

	if action == ActionSubmit && !actor.CanModify(event) {
		return nil, domain.NewForbiddenError("only the requester can submit this booking")
	}
	if !slices.Contains(t.from, event.Status) {
		return nil, domain.NewConflictError("cannot " + string(action) + " a booking that is " + string(event.Status))
	}

	next := event.Clone()
	next.Status = t.to
	next.UpdatedAt = l.now()

	switch t.to {
	case models.StatusApproved, models.StatusRejected:
		reviewer := actor.UserID
		next.ReviewerID = &reviewer
	}

	switch action {
	case ActionReject:
		notes := strings.TrimSpace(reason)
		next.ReviewerNotes = &notes
	case ActionUnapprove:
		next.ReviewerID = nil
		next.ReviewerNotes = nil
	}

	return next, nil
}

// InitialStatus returns the status a new booking is created in.
func (l *Lifecycle) InitialStatus(actor models.Actor, requested models.EventStatus) models.EventStatus {
	if actor.Privileged && requested == models.StatusDraft {
		return models.StatusDraft
	}
	return models.StatusPendingReview
}

// StatusAfterEdit returns the status of event after actor edits it. Edits
// by the requester to a draft or pending booking resubmit it.
func (l *Lifecycle) StatusAfterEdit(actor models.Actor, event *models.Event) models.EventStatus {
	if actor.UserID == event.CreatedBy {
		switch event.Status {
		case models.StatusDraft, models.StatusPendingReview:
			return models.StatusPendingReview
		}
	}
	return event.Status
}
