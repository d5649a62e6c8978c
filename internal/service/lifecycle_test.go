// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/utils"
)

var (
	reviewer  = models.Actor{UserID: "reviewer-1", Privileged: true}
	requester = models.Actor{UserID: "user-1"}
	stranger  = models.Actor{UserID: "user-2"}
)

func fixedLifecycle() *Lifecycle {
	return &Lifecycle{now: func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }}
}

func TestLifecycle_TransitionTable(t *testing.T) {
	allowed := map[Action]map[models.EventStatus]models.EventStatus{
		ActionSubmit:    {models.StatusDraft: models.StatusPendingReview},
		ActionApprove:   {models.StatusPendingReview: models.StatusApproved},
		ActionReject:    {models.StatusPendingReview: models.StatusRejected},
		ActionPublish:   {models.StatusApproved: models.StatusPublished},
		ActionUnpublish: {models.StatusPublished: models.StatusApproved},
		ActionUnapprove: {
			models.StatusApproved:  models.StatusPendingReview,
			models.StatusPublished: models.StatusPendingReview,
			models.StatusRejected:  models.StatusPendingReview,
		},
	}
	statuses := []models.EventStatus{
		models.StatusDraft, models.StatusPendingReview, models.StatusApproved,
		models.StatusRejected, models.StatusPublished,
	}

	lc := fixedLifecycle()
	for action, table := range allowed {
		for _, from := range statuses {
			t.Run(string(action)+"/"+string(from), func(t *testing.T) {
				event := &models.Event{ID: "e1", Status: from, CreatedBy: requester.UserID}
				next, err := lc.Transition(reviewer, event, action, "room is closed")

				to, ok := table[from]
				if !ok {
					require.Error(t, err)
					assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
					return
				}
				require.NoError(t, err)
				assert.Equal(t, to, next.Status)
				assert.Equal(t, from, event.Status, "input must not be mutated")
			})
		}
	}
}

func TestLifecycle_PrivilegedActionsRequireReviewer(t *testing.T) {
	lc := fixedLifecycle()
	for _, action := range []Action{ActionApprove, ActionReject, ActionPublish, ActionUnpublish, ActionUnapprove} {
		t.Run(string(action), func(t *testing.T) {
			event := &models.Event{ID: "e1", Status: models.StatusPendingReview, CreatedBy: requester.UserID}
			_, err := lc.Transition(requester, event, action, "reason")
			require.Error(t, err)
			assert.Equal(t, domain.ErrorTypeForbidden, domain.GetErrorType(err))
		})
	}
}

func TestLifecycle_SubmitByRequesterOnly(t *testing.T) {
	lc := fixedLifecycle()
	event := &models.Event{ID: "e1", Status: models.StatusDraft, CreatedBy: requester.UserID}

	next, err := lc.Transition(requester, event, ActionSubmit, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingReview, next.Status)

	_, err = lc.Transition(stranger, event, ActionSubmit, "")
	assert.Equal(t, domain.ErrorTypeForbidden, domain.GetErrorType(err))
}

func TestLifecycle_RejectRequiresReason(t *testing.T) {
	lc := fixedLifecycle()
	event := &models.Event{ID: "e1", Status: models.StatusPendingReview}

	for _, reason := range []string{"", "   ", "\n\t"} {
		_, err := lc.Transition(reviewer, event, ActionReject, reason)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	}

	next, err := lc.Transition(reviewer, event, ActionReject, "  double booked  ")
	require.NoError(t, err)
	assert.Equal(t, "double booked", utils.Value(next.ReviewerNotes))
	assert.Equal(t, reviewer.UserID, utils.Value(next.ReviewerID))
}

func TestLifecycle_ReviewerRecordedOnApprove(t *testing.T) {
	lc := fixedLifecycle()
	event := &models.Event{ID: "e1", Status: models.StatusPendingReview}

	next, err := lc.Transition(reviewer, event, ActionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, reviewer.UserID, utils.Value(next.ReviewerID))
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), next.UpdatedAt)
	assert.Nil(t, event.ReviewerID)
}

func TestLifecycle_UnapproveClearsDisposition(t *testing.T) {
	lc := fixedLifecycle()
	event := &models.Event{
		ID:            "e1",
		Status:        models.StatusRejected,
		ReviewerID:    utils.Ptr("reviewer-0"),
		ReviewerNotes: utils.Ptr("no"),
	}

	next, err := lc.Transition(reviewer, event, ActionUnapprove, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingReview, next.Status)
	assert.Nil(t, next.ReviewerID)
	assert.Nil(t, next.ReviewerNotes)
	assert.Equal(t, "no", utils.Value(event.ReviewerNotes))
}

func TestLifecycle_CheckActionUnknown(t *testing.T) {
	err := fixedLifecycle().CheckAction(reviewer, Action("archive"), "")
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestLifecycle_InitialStatus(t *testing.T) {
	lc := fixedLifecycle()
	assert.Equal(t, models.StatusPendingReview, lc.InitialStatus(requester, ""))
	assert.Equal(t, models.StatusPendingReview, lc.InitialStatus(requester, models.StatusDraft))
	assert.Equal(t, models.StatusPendingReview, lc.InitialStatus(requester, models.StatusApproved))
	assert.Equal(t, models.StatusDraft, lc.InitialStatus(reviewer, models.StatusDraft))
	assert.Equal(t, models.StatusPendingReview, lc.InitialStatus(reviewer, models.StatusPublished))
}

func TestLifecycle_StatusAfterEdit(t *testing.T) {
	lc := fixedLifecycle()
	tests := []struct {
		name     string
		actor    models.Actor
		status   models.EventStatus
		expected models.EventStatus
	}{
		{"requester edits draft", requester, models.StatusDraft, models.StatusPendingReview},
		{"requester edits pending", requester, models.StatusPendingReview, models.StatusPendingReview},
		{"requester edits approved", requester, models.StatusApproved, models.StatusApproved},
		{"reviewer edits draft", reviewer, models.StatusDraft, models.StatusDraft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &models.Event{Status: tt.status, CreatedBy: requester.UserID}
			assert.Equal(t, tt.expected, lc.StatusAfterEdit(tt.actor, event))
		})
	}
}

func TestParseAction(t *testing.T) {
	a, ok := ParseAction(" Approve ")
	assert.True(t, ok)
	assert.Equal(t, ActionApprove, a)

	_, ok = ParseAction("archive")
	assert.False(t, ok)

	assert.False(t, ActionSubmit.Notifies())
	assert.True(t, ActionUnpublish.Notifies())
}
