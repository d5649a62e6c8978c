// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

// RoomRepository stores rooms in the rooms table.
type RoomRepository struct {
	db *sqlx.DB
}

func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Get(ctx context.Context, roomID string) (_ *models.Room, err error) {
	ctx, span := startSpan(ctx, "select", "rooms")
	defer func() { endSpan(span, err) }()

	var room models.Room
	err = r.db.GetContext(ctx, &room,
		`SELECT id, organization_id, name, capacity, allow_overlap FROM rooms WHERE id = $1;`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("room '%s' not found", roomID), domain.ErrRoomNotFound, err)
	}
	if err != nil {
		return nil, classify(ctx, "get room", roomID, err)
	}
	return &room, nil
}

func (r *RoomRepository) Put(ctx context.Context, room *models.Room) (err error) {
	ctx, span := startSpan(ctx, "upsert", "rooms")
	defer func() { endSpan(span, err) }()

	_, err = r.db.NamedExecContext(ctx, `
	INSERT INTO rooms (id, organization_id, name, capacity, allow_overlap)
	VALUES (:id, :organization_id, :name, :capacity, :allow_overlap)
	ON CONFLICT (id) DO UPDATE
	   SET organization_id = EXCLUDED.organization_id, name = EXCLUDED.name,
	       capacity = EXCLUDED.capacity, allow_overlap = EXCLUDED.allow_overlap;`, room)
	if err != nil {
		return classify(ctx, "put room", room.ID, err)
	}
	return nil
}

func (r *RoomRepository) List(ctx context.Context) (_ []*models.Room, err error) {
	ctx, span := startSpan(ctx, "select", "rooms")
	defer func() { endSpan(span, err) }()

	var rooms []*models.Room
	if err = r.db.SelectContext(ctx, &rooms,
		`SELECT id, organization_id, name, capacity, allow_overlap FROM rooms ORDER BY name;`); err != nil {
		return nil, classify(ctx, "list rooms", "", err)
	}
	return rooms, nil
}

// ProfileRepository stores profiles in the profiles table.
type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (_ *models.Profile, err error) {
	ctx, span := startSpan(ctx, "select", "profiles")
	defer func() { endSpan(span, err) }()

	var profile models.Profile
	err = r.db.GetContext(ctx, &profile, `SELECT id, full_name, email FROM profiles WHERE id = $1;`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("profile '%s' not found", userID), domain.ErrProfileNotFound, err)
	}
	if err != nil {
		return nil, classify(ctx, "get profile", userID, err)
	}
	return &profile, nil
}

func (r *ProfileRepository) Put(ctx context.Context, profile *models.Profile) (err error) {
	ctx, span := startSpan(ctx, "upsert", "profiles")
	defer func() { endSpan(span, err) }()

	_, err = r.db.NamedExecContext(ctx, `
	INSERT INTO profiles (id, full_name, email)
	VALUES (:id, :full_name, :email)
	ON CONFLICT (id) DO UPDATE SET full_name = EXCLUDED.full_name, email = EXCLUDED.email;`, profile)
	if err != nil {
		return classify(ctx, "put profile", profile.ID, err)
	}
	return nil
}

var (
	_ domain.EventRepository   = (*EventRepository)(nil)
	_ domain.RoomRepository    = (*RoomRepository)(nil)
	_ domain.ProfileRepository = (*ProfileRepository)(nil)
)
