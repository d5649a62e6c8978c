// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

// EventRepository defines the interface for booking storage operations.
// This interface can be implemented by different storage backends (NATS, PostgreSQL, etc.)
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	Get(ctx context.Context, eventID string) (*models.Event, error)
	GetWithRevision(ctx context.Context, eventID string) (*models.Event, uint64, error)
	Update(ctx context.Context, event *models.Event, revision uint64) error
	// Delete removes an event. A zero revision deletes unconditionally.
	Delete(ctx context.Context, eventID string, revision uint64) error

	// List returns every stored event.
	List(ctx context.Context) ([]*models.Event, error)
	// ListByParent returns the instances whose parent is anchorID, not
	// including the anchor itself.
	ListByParent(ctx context.Context, anchorID string) ([]*models.Event, error)
	// ListOverlapping returns the events of a room that intersect the query window.
	ListOverlapping(ctx context.Context, query models.OverlapQuery) ([]*models.Event, error)

	// Series operations. Implementations report per event outcomes; a
	// transactional backend either affects every event or returns an error.
	CreateBatch(ctx context.Context, events []*models.Event) (*models.BatchResult, error)
	UpdateBatch(ctx context.Context, events []*models.Event) (*models.BatchResult, error)
	DeleteBatch(ctx context.Context, eventIDs []string) (*models.BatchResult, error)
}

// RoomRepository stores bookable rooms.
type RoomRepository interface {
	Get(ctx context.Context, roomID string) (*models.Room, error)
	Put(ctx context.Context, room *models.Room) error
	List(ctx context.Context) ([]*models.Room, error)
}

// ProfileRepository stores user profiles.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Put(ctx context.Context, profile *models.Profile) error
}
