// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"sort"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

// NatsRoomRepository stores rooms keyed by id.
type NatsRoomRepository struct {
	*NatsBaseRepository[models.Room]
}

// NewNatsRoomRepository creates a room repository.
func NewNatsRoomRepository(kvStore INatsKeyValue) *NatsRoomRepository {
	return &NatsRoomRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Room](kvStore, "room", domain.ErrRoomNotFound),
	}
}

func (r *NatsRoomRepository) Get(ctx context.Context, roomID string) (*models.Room, error) {
	return r.NatsBaseRepository.Get(ctx, Segment(roomID))
}

func (r *NatsRoomRepository) Put(ctx context.Context, room *models.Room) error {
	_, err := r.NatsBaseRepository.Put(ctx, Segment(room.ID), room)
	return err
}

// List returns the rooms ordered by name.
func (r *NatsRoomRepository) List(ctx context.Context) ([]*models.Room, error) {
	rooms, err := r.ListEntities(ctx, nil)
	if err != nil {
		return nil, err
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms, nil
}

// NatsProfileRepository stores user profiles keyed by user id.
type NatsProfileRepository struct {
	*NatsBaseRepository[models.Profile]
}

// NewNatsProfileRepository creates a profile repository.
func NewNatsProfileRepository(kvStore INatsKeyValue) *NatsProfileRepository {
	return &NatsProfileRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Profile](kvStore, "profile", domain.ErrProfileNotFound),
	}
}

func (r *NatsProfileRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	return r.NatsBaseRepository.Get(ctx, Segment(userID))
}

func (r *NatsProfileRepository) Put(ctx context.Context, profile *models.Profile) error {
	_, err := r.NatsBaseRepository.Put(ctx, Segment(profile.ID), profile)
	return err
}
