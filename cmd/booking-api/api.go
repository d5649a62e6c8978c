// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/middleware"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/recurrence"
)

// BookingAPI exposes the booking services over HTTP.
type BookingAPI struct {
	eventService     *service.EventService
	directoryService *service.DirectoryService
}

// NewBookingAPI creates a new BookingAPI.
func NewBookingAPI(eventService *service.EventService, directoryService *service.DirectoryService) *BookingAPI {
	return &BookingAPI{
		eventService:     eventService,
		directoryService: directoryService,
	}
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Code      string                  `json:"code"`
	Message   string                  `json:"message"`
	Conflicts []models.WindowConflict `json:"conflicts,omitempty"`
}

type statusChangeRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

type conflictCheckRequest struct {
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	ExcludeEventID string    `json:"exclude_event_id,omitempty"`
}

type previewRequest struct {
	StartsAt   time.Time         `json:"starts_at"`
	EndsAt     time.Time         `json:"ends_at"`
	Recurrence recurrence.Config `json:"recurrence"`
}

// Routes mounts the API on r.
func (a *BookingAPI) Routes(r chi.Router) {
	r.Get("/livez", a.Livez)
	r.Get("/readyz", a.Readyz)

	r.Route("/events", func(r chi.Router) {
		r.Post("/", a.CreateEvent)
		r.Get("/", a.ListEvents)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.GetEvent)
			r.Put("/", a.UpdateEvent)
			r.Delete("/", a.DeleteEvent)
			r.Get("/series", a.GetSeries)
			r.Post("/status", a.ChangeStatus)
		})
	})

	r.Route("/rooms/{id}", func(r chi.Router) {
		r.Get("/", a.GetRoom)
		r.Put("/", a.PutRoom)
		r.Post("/conflicts", a.CheckConflict)
	})

	r.Put("/profiles/{id}", a.PutProfile)
	r.Post("/recurrence/preview", a.PreviewRecurrence)
}

// Livez checks if the service is alive.
func (a *BookingAPI) Livez(w http.ResponseWriter, _ *http.Request) {
	// This always returns as long as the service is still running. As this
	// endpoint is expected to be used as a Kubernetes liveness check, this
	// service must likewise self-detect non-recoverable errors and
	// self-terminate.
	writeText(w, http.StatusOK, "OK\n")
}

// Readyz checks if the service is able to take inbound requests.
func (a *BookingAPI) Readyz(w http.ResponseWriter, _ *http.Request) {
	for _, svc := range []service.Service{a.eventService, a.directoryService} {
		if !svc.ServiceReady() {
			writeError(w, domain.ErrServiceUnavailable)
			return
		}
	}
	writeText(w, http.StatusOK, "OK\n")
}

// CreateEvent books a room, expanding a recurrence into a series.
func (a *BookingAPI) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := a.eventService.CreateEvent(r.Context(), actorOf(r), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListEvents lists events, optionally restricted to a room and window.
func (a *BookingAPI) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseTimeParam(q.Get("from"))
	if err != nil {
		writeError(w, domain.NewValidationError("from must be an RFC 3339 timestamp", err))
		return
	}
	to, err := parseTimeParam(q.Get("to"))
	if err != nil {
		writeError(w, domain.NewValidationError("to must be an RFC 3339 timestamp", err))
		return
	}

	events, err := a.eventService.ListEvents(r.Context(), q.Get("room_id"), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent returns one event with its revision as ETag.
func (a *BookingAPI) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, revision, err := a.eventService.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set(constants.EtagHeader, revision)
	writeJSON(w, http.StatusOK, event)
}

// GetSeries returns the series an event belongs to.
func (a *BookingAPI) GetSeries(w http.ResponseWriter, r *http.Request) {
	series, err := a.eventService.GetSeries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// UpdateEvent edits an event or its whole series.
func (a *BookingAPI) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}
	revision, ok := ifMatchOf(w, r)
	if !ok {
		return
	}
	var req models.UpdateEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := a.eventService.UpdateEvent(r.Context(), actorOf(r), chi.URLParam(r, "id"), &req, scope, revision)
	if err != nil {
		writeError(w, err)
		return
	}
	if result.Revision > 0 {
		w.Header().Set(constants.EtagHeader, strconv.FormatUint(result.Revision, 10))
	}
	writeJSON(w, http.StatusOK, result)
}

// DeleteEvent removes an event or its whole series.
func (a *BookingAPI) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}
	revision, ok := ifMatchOf(w, r)
	if !ok {
		return
	}

	result, err := a.eventService.DeleteEvent(r.Context(), actorOf(r), chi.URLParam(r, "id"), scope, revision)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ChangeStatus applies an approval workflow action.
func (a *BookingAPI) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}
	var req statusChangeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	action, ok := service.ParseAction(req.Action)
	if !ok {
		writeError(w, domain.NewValidationError("unknown action "+strconv.Quote(req.Action)))
		return
	}

	result, err := a.eventService.ChangeStatus(r.Context(), actorOf(r), chi.URLParam(r, "id"), action, req.Reason, scope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CheckConflict reports the first active booking overlapping a window.
func (a *BookingAPI) CheckConflict(w http.ResponseWriter, r *http.Request) {
	var req conflictCheckRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.EndsAt.After(req.StartsAt) {
		writeError(w, domain.NewValidationError("ends_at must be after starts_at"))
		return
	}

	conflict, err := a.eventService.Conflicts.FindConflict(r.Context(), chi.URLParam(r, "id"), req.StartsAt, req.EndsAt, req.ExcludeEventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ConflictCheckResponse{Conflict: conflict})
}

// PreviewRecurrence returns the rule, summary and instances of a recurrence.
func (a *BookingAPI) PreviewRecurrence(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	preview, err := a.eventService.PreviewRecurrence(r.Context(), req.StartsAt, req.EndsAt, req.Recurrence)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// GetRoom returns a room.
func (a *BookingAPI) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := a.directoryService.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// PutRoom creates or replaces a room.
func (a *BookingAPI) PutRoom(w http.ResponseWriter, r *http.Request) {
	var room models.Room
	if !decodeBody(w, r, &room) {
		return
	}
	room.ID = chi.URLParam(r, "id")

	if err := a.directoryService.PutRoom(r.Context(), actorOf(r), &room); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// PutProfile creates or replaces a user profile.
func (a *BookingAPI) PutProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.Profile
	if !decodeBody(w, r, &profile) {
		return
	}
	profile.ID = chi.URLParam(r, "id")

	if err := a.directoryService.PutProfile(r.Context(), actorOf(r), &profile); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func actorOf(r *http.Request) models.Actor {
	actor, _ := middleware.ActorFromContext(r.Context())
	return actor
}

func scopeOf(w http.ResponseWriter, r *http.Request) (models.Scope, bool) {
	raw := r.URL.Query().Get("scope")
	scope, ok := models.ParseScope(raw)
	if !ok {
		writeError(w, domain.NewValidationError("scope must be single or all"))
	}
	return scope, ok
}

// ifMatchOf parses the If-Match header. A missing header yields zero.
func ifMatchOf(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := strings.Trim(r.Header.Get(constants.IfMatchHeader), `"`)
	if raw == "" {
		return 0, true
	}
	revision, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, domain.NewValidationError("If-Match must be a revision number", err))
		return 0, false
	}
	return revision, true
}

func parseTimeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.DebugContext(r.Context(), "invalid request body", logging.ErrKey, err)
		writeError(w, domain.NewValidationError("invalid request body", err))
		return false
	}
	return true
}

// httpStatus maps a domain error onto an HTTP status code.
func httpStatus(err error) int {
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		return http.StatusBadRequest
	case domain.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrorTypeForbidden:
		return http.StatusForbidden
	case domain.ErrorTypeNotFound:
		return http.StatusNotFound
	case domain.ErrorTypeConflict:
		return http.StatusConflict
	case domain.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := httpStatus(err)
	resp := errorResponse{
		Code:      strconv.Itoa(code),
		Message:   err.Error(),
		Conflicts: domain.GetConflicts(err),
	}
	// Internal details stay in the logs.
	var domainErr *domain.DomainError
	if code == http.StatusInternalServerError && errors.As(err, &domainErr) {
		resp.Message = domainErr.Message
	}
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
