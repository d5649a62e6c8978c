// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/concurrent"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/utils"
)

// ConflictDetector finds active bookings that overlap a candidate window in
// the same room. The result is advisory: nothing stops a booking from being
// written between a check and the following commit.
type ConflictDetector struct {
	EventRepository   domain.EventRepository
	RoomRepository    domain.RoomRepository
	ProfileRepository domain.ProfileRepository
	Config            ServiceConfig
}

// NewConflictDetector creates a new ConflictDetector.
func NewConflictDetector(
	eventRepository domain.EventRepository,
	roomRepository domain.RoomRepository,
	profileRepository domain.ProfileRepository,
	config ServiceConfig,
) *ConflictDetector {
	return &ConflictDetector{
		EventRepository:   eventRepository,
		RoomRepository:    roomRepository,
		ProfileRepository: profileRepository,
		Config:            config,
	}
}

// ServiceReady checks if the service is ready for use.
func (d *ConflictDetector) ServiceReady() bool {
	return d.EventRepository != nil && d.RoomRepository != nil && d.ProfileRepository != nil
}

// FindConflict returns the earliest active booking of roomID that overlaps
// [start, end), ignoring excludeEventID. It returns nil when the window is
// free or the room allows overlapping bookings.
func (d *ConflictDetector) FindConflict(ctx context.Context, roomID string, start, end time.Time, excludeEventID string) (*models.Conflict, error) {
	var exclude []string
	if excludeEventID != "" {
		exclude = []string{excludeEventID}
	}

	allow, err := d.roomAllowsOverlap(ctx, roomID)
	if err != nil || allow {
		return nil, err
	}

	return d.findConflict(ctx, roomID, start, end, exclude)
}

// CheckSeries checks every window concurrently and returns the conflicts
// found, in window order. Events whose id is in excludeIDs never conflict.
func (d *ConflictDetector) CheckSeries(ctx context.Context, roomID string, windows []models.TimeWindow, excludeIDs []string) ([]models.WindowConflict, error) {
	if !d.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if len(windows) == 0 {
		return nil, nil
	}

	allow, err := d.roomAllowsOverlap(ctx, roomID)
	if err != nil || allow {
		return nil, err
	}

	found := make([]*models.Conflict, len(windows))
	pool := concurrent.NewWorkerPool(d.workers())
	errs := pool.RunIndexed(ctx, len(windows), func(i int) error {
		c, err := d.findConflict(ctx, roomID, windows[i].StartsAt, windows[i].EndsAt, excludeIDs)
		found[i] = c
		return err
	})
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	var conflicts []models.WindowConflict
	for i, c := range found {
		if c != nil {
			conflicts = append(conflicts, models.WindowConflict{Window: windows[i], Conflict: *c})
		}
	}
	return conflicts, nil
}

func (d *ConflictDetector) roomAllowsOverlap(ctx context.Context, roomID string) (bool, error) {
	if !d.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return false, domain.ErrServiceUnavailable
	}

	room, err := d.RoomRepository.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			// Rooms are owned by another system; an unknown room is checked
			// like any other.
			slog.DebugContext(ctx, "room not registered, checking for conflicts", "room_id", roomID)
			return false, nil
		}
		slog.ErrorContext(ctx, "error getting room", "room_id", roomID, logging.ErrKey, err)
		return false, domain.NewInternalError("failed to load room", err)
	}
	return room.AllowOverlap, nil
}

func (d *ConflictDetector) findConflict(ctx context.Context, roomID string, start, end time.Time, excludeIDs []string) (*models.Conflict, error) {
	candidates, err := d.EventRepository.ListOverlapping(ctx, models.OverlapQuery{
		RoomID:   roomID,
		StartsAt: start,
		EndsAt:   end,
		Statuses: models.ActiveStatuses(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "error listing room bookings", "room_id", roomID, logging.ErrKey, err)
		return nil, domain.NewInternalError("failed to check room availability", err)
	}

	var first *models.Event
	for _, e := range candidates {
		if e == nil || e.RoomID != roomID || !e.Status.IsActive() || slices.Contains(excludeIDs, e.ID) {
			continue
		}
		if !e.Overlaps(start, end) {
			continue
		}
		if first == nil || earlier(e, first) {
			first = e
		}
	}
	if first == nil {
		return nil, nil
	}

	return &models.Conflict{
		EventID:   first.ID,
		Title:     first.Title,
		Status:    first.Status,
		StartsAt:  first.StartsAt,
		EndsAt:    first.EndsAt,
		OwnerID:   first.CreatedBy,
		OwnerName: d.ownerName(ctx, first.CreatedBy),
	}, nil
}

func (d *ConflictDetector) ownerName(ctx context.Context, userID string) string {
	if userID == "" {
		return models.DefaultOwnerName
	}
	profile, err := d.ProfileRepository.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			slog.WarnContext(ctx, "error getting owner profile", "user_id", userID, logging.ErrKey, err)
		}
		return models.DefaultOwnerName
	}
	return utils.CoalesceTrimmed(profile.FullName, models.DefaultOwnerName)
}

func (d *ConflictDetector) workers() int {
	if d.Config.SeriesWorkers > 0 {
		return d.Config.SeriesWorkers
	}
	return constants.DefaultSeriesWorkers
}

func earlier(a, b *models.Event) bool {
	if !a.StartsAt.Equal(b.StartsAt) {
		return a.StartsAt.Before(b.StartsAt)
	}
	return a.ID < b.ID
}
