// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package cache fronts slow lookups with Redis.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

const (
	roomKeyPrefix = "room-booking:room:"

	// DefaultRoomTTL bounds how long a room edit can take to show up.
	DefaultRoomTTL = 5 * time.Minute
)

// Client is the subset of the Redis client the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RoomCache is a read-through cache over a RoomRepository. Rooms are read
// on every conflict check, so they are kept msgpack encoded in Redis. Redis
// failures fall back to the backing repository.
type RoomCache struct {
	rooms  domain.RoomRepository
	client Client
	ttl    time.Duration
}

// NewRoomCache wraps rooms. A zero ttl uses DefaultRoomTTL.
func NewRoomCache(rooms domain.RoomRepository, client Client, ttl time.Duration) *RoomCache {
	if ttl <= 0 {
		ttl = DefaultRoomTTL
	}
	return &RoomCache{rooms: rooms, client: client, ttl: ttl}
}

// NewRedisClient opens a client for addr.
func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}

func roomKey(id string) string {
	return roomKeyPrefix + id
}

// Get returns the cached room, loading and caching it on a miss.
func (c *RoomCache) Get(ctx context.Context, roomID string) (*models.Room, error) {
	key := roomKey(roomID)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var room models.Room
		if err := msgpack.Unmarshal(raw, &room); err == nil {
			return &room, nil
		}
		slog.WarnContext(ctx, "discarding undecodable cached room", logging.ErrKey, err, "room_id", roomID)
	case errors.Is(err, redis.Nil):
	default:
		slog.WarnContext(ctx, "room cache unavailable, reading through", logging.ErrKey, err, "room_id", roomID)
	}

	room, err := c.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if data, err := msgpack.Marshal(room); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "failed to cache room", logging.ErrKey, err, "room_id", roomID)
		}
	}
	return room, nil
}

// Put stores the room and drops the cached copy.
func (c *RoomCache) Put(ctx context.Context, room *models.Room) error {
	if err := c.rooms.Put(ctx, room); err != nil {
		return err
	}
	if err := c.client.Del(ctx, roomKey(room.ID)).Err(); err != nil {
		slog.WarnContext(ctx, "failed to evict cached room", logging.ErrKey, err, "room_id", room.ID)
	}
	return nil
}

// List is not cached.
func (c *RoomCache) List(ctx context.Context) ([]*models.Room, error) {
	return c.rooms.List(ctx)
}

var _ domain.RoomRepository = (*RoomCache)(nil)
