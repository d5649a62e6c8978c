// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

// DirectoryService maintains the rooms and profiles bookings refer to.
type DirectoryService struct {
	RoomRepository    domain.RoomRepository
	ProfileRepository domain.ProfileRepository
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(roomRepository domain.RoomRepository, profileRepository domain.ProfileRepository) *DirectoryService {
	return &DirectoryService{
		RoomRepository:    roomRepository,
		ProfileRepository: profileRepository,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *DirectoryService) ServiceReady() bool {
	return s.RoomRepository != nil && s.ProfileRepository != nil
}

// GetRoom returns a room.
func (s *DirectoryService) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	room, err := s.RoomRepository.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return nil, domain.NewNotFoundError("room not found", err)
		}
		slog.ErrorContext(ctx, "error getting room", "room_id", id, logging.ErrKey, err)
		return nil, domain.NewInternalError("failed to load room", err)
	}
	return room, nil
}

// PutRoom creates or replaces a room. Only privileged actors manage rooms:
// a room that allows overlap is never checked for conflicts.
func (s *DirectoryService) PutRoom(ctx context.Context, actor models.Actor, room *models.Room) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}
	if !actor.Privileged {
		slog.WarnContext(ctx, "room change refused", "actor_id", actor.UserID)
		return domain.NewForbiddenError("only administrators can manage rooms")
	}
	if room == nil || strings.TrimSpace(room.ID) == "" {
		return domain.NewValidationError("room id is required")
	}
	if strings.TrimSpace(room.Name) == "" {
		return domain.NewValidationError("room name is required")
	}
	if room.Capacity < 0 {
		return domain.NewValidationError("room capacity cannot be negative")
	}

	if err := s.RoomRepository.Put(ctx, room); err != nil {
		slog.ErrorContext(ctx, "error saving room", "room_id", room.ID, logging.ErrKey, err)
		return domain.NewInternalError("failed to save room", err)
	}
	slog.InfoContext(ctx, "room saved", "room_id", room.ID, "allow_overlap", room.AllowOverlap)
	return nil
}

// PutProfile creates or replaces a user profile. Users may edit their own
// profile; anyone else's needs a privileged actor.
func (s *DirectoryService) PutProfile(ctx context.Context, actor models.Actor, profile *models.Profile) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}
	if profile == nil || strings.TrimSpace(profile.ID) == "" {
		return domain.NewValidationError("profile id is required")
	}
	if !actor.Privileged && actor.UserID != profile.ID {
		slog.WarnContext(ctx, "profile change refused", "actor_id", actor.UserID, "user_id", profile.ID)
		return domain.NewForbiddenError("cannot modify another user's profile")
	}

	if err := s.ProfileRepository.Put(ctx, profile); err != nil {
		slog.ErrorContext(ctx, "error saving profile", "user_id", profile.ID, logging.ErrKey, err)
		return domain.NewInternalError("failed to save profile", err)
	}
	return nil
}
