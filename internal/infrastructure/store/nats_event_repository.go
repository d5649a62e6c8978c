// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sort"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/concurrent"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/constants"
)

// NatsEventRepository stores events in a NATS KV bucket. Next to each event
// it keeps marker keys "index/room/<room>/<event>" and, for series
// instances, "index/parent/<anchor>/<event>" so room and series lookups do
// not decode the whole bucket.
//
// Batches are not atomic: each event is written independently and the
// result reports which ones failed.
type NatsEventRepository struct {
	*NatsBaseRepository[models.Event]
	keys *KeyBuilder
	pool *concurrent.WorkerPool
}

// NewNatsEventRepository creates an event repository. workers bounds the
// concurrency of batch operations.
func NewNatsEventRepository(kvStore INatsKeyValue, workers int) *NatsEventRepository {
	if workers <= 0 {
		workers = constants.DefaultSeriesWorkers
	}
	return &NatsEventRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Event](kvStore, "event", domain.ErrEventNotFound),
		keys:               NewKeyBuilder(""),
		pool:               concurrent.NewWorkerPool(workers),
	}
}

// Create stores event and its index markers.
func (r *NatsEventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := r.NatsBaseRepository.Create(ctx, r.keys.EntityKey(event.ID), event); err != nil {
		return err
	}
	return r.putIndexes(ctx, event)
}

// Get returns the event with id.
func (r *NatsEventRepository) Get(ctx context.Context, eventID string) (*models.Event, error) {
	return r.NatsBaseRepository.Get(ctx, r.keys.EntityKey(eventID))
}

// GetWithRevision returns the event with id and its revision.
func (r *NatsEventRepository) GetWithRevision(ctx context.Context, eventID string) (*models.Event, uint64, error) {
	return r.NatsBaseRepository.GetWithRevision(ctx, r.keys.EntityKey(eventID))
}

// Update replaces event if revision still matches. A zero revision uses
// the stored one.
func (r *NatsEventRepository) Update(ctx context.Context, event *models.Event, revision uint64) error {
	key := r.keys.EntityKey(event.ID)
	previous, current, err := r.NatsBaseRepository.GetWithRevision(ctx, key)
	if err != nil {
		return err
	}
	if revision == 0 {
		revision = current
	}

	if err := r.NatsBaseRepository.Update(ctx, key, event, revision); err != nil {
		return err
	}

	if previous.RoomID != event.RoomID {
		if err := r.DeleteIndex(ctx, r.keys.IndexKey(KeyPrefixIndexRoom, previous.RoomID, event.ID)); err != nil {
			slog.WarnContext(ctx, "stale room index left behind", logging.ErrKey, err, "event_id", event.ID)
		}
	}
	return r.putIndexes(ctx, event)
}

// Delete removes an event and its index markers. A zero revision deletes
// unconditionally.
func (r *NatsEventRepository) Delete(ctx context.Context, eventID string, revision uint64) error {
	key := r.keys.EntityKey(eventID)
	existing, err := r.NatsBaseRepository.Get(ctx, key)
	if err != nil {
		return err
	}

	if err := r.NatsBaseRepository.Delete(ctx, key, revision); err != nil {
		return err
	}

	for _, idx := range r.indexKeys(existing) {
		if err := r.DeleteIndex(ctx, idx); err != nil {
			slog.WarnContext(ctx, "stale index left behind", logging.ErrKey, err, "key", idx)
		}
	}
	return nil
}

// List returns every stored event ordered by start time.
func (r *NatsEventRepository) List(ctx context.Context) ([]*models.Event, error) {
	events, err := r.ListEntities(ctx, func(key string) bool { return !r.keys.IsIndexKey(key) })
	if err != nil {
		return nil, err
	}
	sortEvents(events)
	return events, nil
}

// ListByParent returns the instances of the series anchored at anchorID.
func (r *NatsEventRepository) ListByParent(ctx context.Context, anchorID string) ([]*models.Event, error) {
	events, err := r.listIndexed(ctx, KeyPrefixIndexParent, anchorID)
	if err != nil {
		return nil, err
	}
	sortEvents(events)
	return events, nil
}

// ListOverlapping returns the events in query.RoomID intersecting the
// query window, restricted to query.Statuses when set.
func (r *NatsEventRepository) ListOverlapping(ctx context.Context, query models.OverlapQuery) ([]*models.Event, error) {
	events, err := r.listIndexed(ctx, KeyPrefixIndexRoom, query.RoomID)
	if err != nil {
		return nil, err
	}

	matched := events[:0]
	for _, e := range events {
		if e.RoomID != query.RoomID || !e.Overlaps(query.StartsAt, query.EndsAt) {
			continue
		}
		if len(query.Statuses) > 0 && !slices.Contains(query.Statuses, e.Status) {
			continue
		}
		matched = append(matched, e)
	}
	sortEvents(matched)
	return matched, nil
}

// CreateBatch creates every event. It fails only when none was created.
func (r *NatsEventRepository) CreateBatch(ctx context.Context, events []*models.Event) (*models.BatchResult, error) {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return r.batch(ctx, "create", ids, func(i int) error {
		return r.Create(ctx, events[i])
	})
}

// UpdateBatch writes every event over its stored revision.
func (r *NatsEventRepository) UpdateBatch(ctx context.Context, events []*models.Event) (*models.BatchResult, error) {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return r.batch(ctx, "update", ids, func(i int) error {
		return r.Update(ctx, events[i], 0)
	})
}

// DeleteBatch removes every event unconditionally.
func (r *NatsEventRepository) DeleteBatch(ctx context.Context, eventIDs []string) (*models.BatchResult, error) {
	return r.batch(ctx, "delete", eventIDs, func(i int) error {
		return r.Delete(ctx, eventIDs[i], 0)
	})
}

func (r *NatsEventRepository) batch(ctx context.Context, op string, ids []string, fn func(i int) error) (*models.BatchResult, error) {
	result := &models.BatchResult{Affected: []string{}}
	if len(ids) == 0 {
		return result, nil
	}
	if !r.IsReady() {
		return nil, r.unavailable()
	}

	errs := r.pool.RunIndexed(ctx, len(ids), fn)
	for i, err := range errs {
		if err != nil {
			slog.WarnContext(ctx, "batch "+op+" failed for event", logging.ErrKey, err, "event_id", ids[i])
			result.Fail(ids[i], err)
			continue
		}
		result.Affected = append(result.Affected, ids[i])
	}

	if len(result.Affected) == 0 {
		return nil, domain.NewInternalError("every event in the batch failed to "+op, errors.Join(errs...))
	}
	return result, nil
}

func (r *NatsEventRepository) indexKeys(event *models.Event) []string {
	keys := []string{r.keys.IndexKey(KeyPrefixIndexRoom, event.RoomID, event.ID)}
	if event.ParentEventID != nil && *event.ParentEventID != "" {
		keys = append(keys, r.keys.IndexKey(KeyPrefixIndexParent, *event.ParentEventID, event.ID))
	}
	return keys
}

func (r *NatsEventRepository) putIndexes(ctx context.Context, event *models.Event) error {
	for _, idx := range r.indexKeys(event) {
		if err := r.PutIndex(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

// listIndexed loads the events referenced by one index value. Markers whose
// event has gone are skipped.
func (r *NatsEventRepository) listIndexed(ctx context.Context, indexType, value string) ([]*models.Event, error) {
	keys, err := r.ListKeysWithPrefix(ctx, r.keys.IndexPrefix(indexType, value))
	if err != nil {
		return nil, err
	}

	events := make([]*models.Event, 0, len(keys))
	for _, key := range keys {
		id, err := r.keys.IndexedID(key)
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed index key", logging.ErrKey, err, "key", key)
			continue
		}
		event, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrEventNotFound) {
				continue
			}
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func sortEvents(events []*models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].StartsAt.Equal(events[j].StartsAt) {
			return events[i].StartsAt.Before(events[j].StartsAt)
		}
		return events[i].ID < events[j].ID
	})
}
