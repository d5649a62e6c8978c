// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package handlers answers NATS requests addressed to the booking service.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/recurrence"
)

// BookingHandler handles booking request/reply messages.
type BookingHandler struct {
	conflictDetector *service.ConflictDetector
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(conflictDetector *service.ConflictDetector) *BookingHandler {
	return &BookingHandler{conflictDetector: conflictDetector}
}

// HandlerReady reports whether the handler's dependencies are set up.
func (h *BookingHandler) HandlerReady() bool {
	return h.conflictDetector != nil && h.conflictDetector.ServiceReady()
}

// HandleMessage implements domain.MessageHandler interface
func (h *BookingHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) ([]byte, error){
		models.RoomConflictCheckSubject: h.HandleConflictCheck,
		models.RecurrenceSummarySubject: h.HandleRecurrenceSummary,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		respond(ctx, msg, nil)
		return
	}

	response, err := handler(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "error handling message", logging.ErrKey, err)
		respond(ctx, msg, nil)
		return
	}
	respond(ctx, msg, response)
}

func respond(ctx context.Context, msg domain.Message, response []byte) {
	if !msg.HasReply() {
		slog.DebugContext(ctx, "handled NATS message (no reply expected)")
		return
	}
	if err := msg.Respond(response); err != nil {
		slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
		return
	}
	slog.DebugContext(ctx, "responded to NATS message", "response_bytes", len(response))
}

// HandleConflictCheck replies with the first active booking overlapping the
// requested window, or a null conflict when the room is free.
func (h *BookingHandler) HandleConflictCheck(ctx context.Context, msg domain.Message) ([]byte, error) {
	if !h.HandlerReady() {
		return nil, errors.New("conflict detector not initialized")
	}

	var req models.ConflictCheckRequest
	if err := json.Unmarshal(msg.Data(), &req); err != nil {
		return nil, fmt.Errorf("error unmarshaling conflict check request: %w", err)
	}
	if req.RoomID == "" {
		return nil, errors.New("room id is required")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, errors.New("ends_at must be after starts_at")
	}

	ctx = logging.AppendCtx(ctx, slog.String("room_id", req.RoomID))

	conflict, err := h.conflictDetector.FindConflict(ctx, req.RoomID, req.StartsAt, req.EndsAt, req.ExcludeEventID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(models.ConflictCheckResponse{Conflict: conflict})
}

// HandleRecurrenceSummary replies with the human readable form of a stored
// rule string. Rules that do not repeat summarise as "Does not repeat".
func (h *BookingHandler) HandleRecurrenceSummary(_ context.Context, msg domain.Message) ([]byte, error) {
	rule := strings.TrimSpace(string(msg.Data()))
	return []byte(recurrence.Summary(recurrence.Decode(rule))), nil
}

var _ domain.MessageHandler = (*BookingHandler)(nil)
