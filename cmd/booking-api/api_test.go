// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/service"
)

type stubParser struct {
	actor models.Actor
	err   error
}

func (p stubParser) ParseActor(_ context.Context, _ string) (models.Actor, error) {
	return p.actor, p.err
}

type apiMocks struct {
	events   *mocks.MockEventRepository
	rooms    *mocks.MockRoomRepository
	profiles *mocks.MockProfileRepository
	messages *mocks.MockMessageBuilder
	notifier *mocks.MockNotifier
}

func newTestRouter(actor models.Actor) (http.Handler, apiMocks) {
	m := apiMocks{
		events:   &mocks.MockEventRepository{},
		rooms:    &mocks.MockRoomRepository{},
		profiles: &mocks.MockProfileRepository{},
		messages: &mocks.MockMessageBuilder{},
		notifier: &mocks.MockNotifier{},
	}
	eventService := service.NewEventService(m.events, m.rooms, m.profiles, m.messages, m.notifier, service.ServiceConfig{SeriesWorkers: 2})
	directoryService := service.NewDirectoryService(m.rooms, m.profiles)
	return newRouter(NewBookingAPI(eventService, directoryService), stubParser{actor: actor}), m
}

func do(t *testing.T, h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer test")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var (
	apiRequester = models.Actor{UserID: "user-1"}
	apiReviewer  = models.Actor{UserID: "admin-1", Privileged: true}
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("bad"), http.StatusBadRequest},
		{"unauthorized", domain.NewUnauthorizedError("no token"), http.StatusUnauthorized},
		{"forbidden", domain.NewForbiddenError("nope"), http.StatusForbidden},
		{"not found", domain.NewNotFoundError("missing"), http.StatusNotFound},
		{"conflict", domain.NewRoomConflictError(nil), http.StatusConflict},
		{"revision mismatch", domain.ErrRevisionMismatch, http.StatusConflict},
		{"unavailable", domain.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"internal", domain.NewInternalError("boom"), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httpStatus(tt.err))
		})
	}
}

func TestLivezSkipsAuthorization(t *testing.T) {
	api := NewBookingAPI(service.NewEventService(nil, nil, nil, nil, nil, service.ServiceConfig{}), service.NewDirectoryService(nil, nil))
	h := newRouter(api, stubParser{err: domain.NewUnauthorizedError("no token")})

	rec := do(t, h, http.MethodGet, "/livez", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, h, http.MethodGet, "/events/ev-1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetEvent_SetsETag(t *testing.T) {
	h, m := newTestRouter(apiRequester)
	event := &models.Event{ID: "ev-1", Title: "Standup", RoomID: "room-1", Status: models.StatusApproved}
	m.events.On("GetWithRevision", mock.Anything, "ev-1").Return(event, uint64(7), nil)

	rec := do(t, h, http.MethodGet, "/events/ev-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", rec.Header().Get("ETag"))

	var got models.Event
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Standup", got.Title)
}

func TestGetEvent_NotFound(t *testing.T) {
	h, m := newTestRouter(apiRequester)
	m.events.On("GetWithRevision", mock.Anything, "missing").Return(nil, uint64(0), domain.ErrEventNotFound)

	rec := do(t, h, http.MethodGet, "/events/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEvent_ConflictIncludesDetails(t *testing.T) {
	h, m := newTestRouter(apiRequester)
	start := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	existing := &models.Event{
		ID:        "ev-existing",
		Title:     "Board meeting",
		RoomID:    "room-1",
		Status:    models.StatusApproved,
		StartsAt:  start.Add(30 * time.Minute),
		EndsAt:    start.Add(90 * time.Minute),
		CreatedBy: "user-2",
	}
	m.rooms.On("Get", mock.Anything, "room-1").Return(&models.Room{ID: "room-1", Name: "Boardroom"}, nil)
	m.events.On("ListOverlapping", mock.Anything, mock.Anything).Return([]*models.Event{existing}, nil)
	m.profiles.On("Get", mock.Anything, "user-2").Return(nil, domain.ErrProfileNotFound)

	body := `{"title":"Planning","room_id":"room-1","starts_at":"2024-05-06T10:00:00Z","ends_at":"2024-05-06T11:00:00Z","recurrence":{"frequency":"none","interval":1,"endType":"never"}}`
	rec := do(t, h, http.MethodPost, "/events", body, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, "ev-existing", resp.Conflicts[0].Conflict.EventID)
	assert.Equal(t, models.DefaultOwnerName, resp.Conflicts[0].Conflict.OwnerName)
	m.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateEvent_InvalidBody(t *testing.T) {
	h, _ := newTestRouter(apiRequester)

	rec := do(t, h, http.MethodPost, "/events", `{"title":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangeStatus_RejectWithoutReason(t *testing.T) {
	h, m := newTestRouter(apiReviewer)

	rec := do(t, h, http.MethodPost, "/events/ev-1/status", `{"action":"reject","reason":"   "}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	m.events.AssertNotCalled(t, "GetWithRevision", mock.Anything, mock.Anything)
}

func TestChangeStatus_UnknownAction(t *testing.T) {
	h, _ := newTestRouter(apiReviewer)

	rec := do(t, h, http.MethodPost, "/events/ev-1/status", `{"action":"archive"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangeStatus_RequesterForbidden(t *testing.T) {
	h, _ := newTestRouter(apiRequester)

	rec := do(t, h, http.MethodPost, "/events/ev-1/status", `{"action":"approve"}`, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteEvent_BadScopeAndIfMatch(t *testing.T) {
	h, _ := newTestRouter(apiRequester)

	rec := do(t, h, http.MethodDelete, "/events/ev-1?scope=some", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/events/ev-1", "", map[string]string{"If-Match": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewRecurrence(t *testing.T) {
	h, _ := newTestRouter(apiRequester)

	body := `{"starts_at":"2024-01-01T09:00:00Z","ends_at":"2024-01-01T10:00:00Z",` +
		`"recurrence":{"frequency":"weekly","interval":1,"daysOfWeek":[1,3,5],"endType":"after","occurrences":5}}`
	rec := do(t, h, http.MethodPost, "/recurrence/preview", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var preview models.RecurrencePreview
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&preview))
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO,WE,FR;COUNT=5", preview.Rule)
	assert.Equal(t, "Repeats every week on Monday, Wednesday, Friday, for 5 occurrences", preview.Summary)
	require.Len(t, preview.Instances, 4)
	assert.Equal(t, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC), preview.Instances[0].StartsAt)
}

func TestCheckConflict_AllowOverlapRoom(t *testing.T) {
	h, m := newTestRouter(apiRequester)
	m.rooms.On("Get", mock.Anything, "hall").Return(&models.Room{ID: "hall", Name: "Hall", AllowOverlap: true}, nil)

	body := `{"starts_at":"2024-05-06T10:00:00Z","ends_at":"2024-05-06T11:00:00Z"}`
	rec := do(t, h, http.MethodPost, "/rooms/hall/conflicts", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"conflict":null}`, rec.Body.String())
	m.events.AssertNotCalled(t, "ListOverlapping", mock.Anything, mock.Anything)
}

func TestPutRoom_UsesPathID(t *testing.T) {
	h, m := newTestRouter(apiReviewer)
	m.rooms.On("Put", mock.Anything, mock.MatchedBy(func(r *models.Room) bool {
		return r.ID == "room-9" && r.Name == "Chapel"
	})).Return(nil)

	rec := do(t, h, http.MethodPut, "/rooms/room-9", `{"id":"ignored","name":"Chapel","capacity":40}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	m.rooms.AssertExpectations(t)
}

func TestPutRoom_RequesterForbidden(t *testing.T) {
	h, m := newTestRouter(apiRequester)

	rec := do(t, h, http.MethodPut, "/rooms/room-1", `{"name":"Boardroom","allow_overlap":true}`, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	m.rooms.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestPutProfile_Ownership(t *testing.T) {
	h, m := newTestRouter(apiRequester)

	rec := do(t, h, http.MethodPut, "/profiles/someone-else", `{"email":"attacker@example.com"}`, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	m.profiles.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)

	m.profiles.On("Put", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
		return p.ID == apiRequester.UserID && p.Email == "me@example.com"
	})).Return(nil)
	rec = do(t, h, http.MethodPut, "/profiles/"+apiRequester.UserID, `{"email":"me@example.com"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	m.profiles.AssertExpectations(t)
}
