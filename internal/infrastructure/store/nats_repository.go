// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package store implements the booking repositories on NATS JetStream
// key-value buckets.
package store

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/nats-io/nats.go/jetstream"
)

// INatsKeyValue is the subset of jetstream.KeyValue the repositories use.
type INatsKeyValue interface {
	ListKeys(context.Context, ...jetstream.WatchOpt) (jetstream.KeyLister, error)
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(context.Context, string, []byte) (uint64, error)
	Update(context.Context, string, []byte, uint64) (uint64, error)
	Delete(context.Context, string, ...jetstream.KVDeleteOpt) error
}

var (
	_ domain.EventRepository   = (*NatsEventRepository)(nil)
	_ domain.RoomRepository    = (*NatsRoomRepository)(nil)
	_ domain.ProfileRepository = (*NatsProfileRepository)(nil)
)
