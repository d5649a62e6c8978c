// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation name for the store package.
const tracerName = "github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/store"

// NatsBaseRepository provides the KV operations shared by every entity
// stored as JSON in a NATS bucket.
type NatsBaseRepository[T any] struct {
	kvStore    INatsKeyValue
	entityName string // used in error messages, e.g. "event"
	notFound   error  // sentinel joined into not found errors
}

// NewNatsBaseRepository creates a base repository. notFound is the domain
// sentinel callers match with errors.Is when a key is missing.
func NewNatsBaseRepository[T any](kvStore INatsKeyValue, entityName string, notFound error) *NatsBaseRepository[T] {
	return &NatsBaseRepository[T]{
		kvStore:    kvStore,
		entityName: entityName,
		notFound:   notFound,
	}
}

// IsReady checks if the repository is ready for use
func (r *NatsBaseRepository[T]) IsReady() bool {
	return r.kvStore != nil
}

func (r *NatsBaseRepository[T]) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("db.system", "nats"),
		attribute.String("db.operation", op),
		attribute.String("db.nats.entity", r.entityName),
	)
	return otel.Tracer(tracerName).Start(ctx, "nats.kv."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// fail records err on span and returns it.
func fail(span trace.Span, err error, status string) error {
	span.RecordError(err)
	if status == "" {
		status = err.Error()
	}
	span.SetStatus(codes.Error, status)
	return err
}

func (r *NatsBaseRepository[T]) unavailable() error {
	return domain.NewUnavailableError(fmt.Sprintf("%s repository is not available", r.entityName), domain.ErrServiceUnavailable)
}

func (r *NatsBaseRepository[T]) notFoundError(key string, err error) error {
	return domain.NewNotFoundError(fmt.Sprintf("%s '%s' not found", r.entityName, key), r.notFound, err)
}

// isRevisionMismatch reports whether err is the server rejecting a write
// because the key moved past the expected revision.
func isRevisionMismatch(err error) bool {
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}
	return strings.Contains(err.Error(), "wrong last sequence")
}

// GetRaw retrieves a raw entry from the bucket.
func (r *NatsBaseRepository[T]) GetRaw(ctx context.Context, key string) (jetstream.KeyValueEntry, error) {
	ctx, span := r.startSpan(ctx, "get", attribute.String("db.nats.key", key))
	defer span.End()

	if !r.IsReady() {
		return nil, fail(span, r.unavailable(), "")
	}

	entry, err := r.kvStore.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, fail(span, r.notFoundError(key, err), "not found")
		}
		slog.ErrorContext(ctx, fmt.Sprintf("error getting %s from NATS KV", r.entityName),
			logging.ErrKey, err, "key", key)
		return nil, fail(span, domain.NewInternalError(
			fmt.Sprintf("failed to retrieve %s from store", r.entityName), domain.ErrInternal, err), "")
	}

	span.SetStatus(codes.Ok, "")
	return entry, nil
}

// Get retrieves and unmarshals an entity.
func (r *NatsBaseRepository[T]) Get(ctx context.Context, key string) (*T, error) {
	entity, _, err := r.GetWithRevision(ctx, key)
	return entity, err
}

// GetWithRevision retrieves an entity together with its KV revision.
func (r *NatsBaseRepository[T]) GetWithRevision(ctx context.Context, key string) (*T, uint64, error) {
	entry, err := r.GetRaw(ctx, key)
	if err != nil {
		return nil, 0, err
	}

	entity, err := r.Unmarshal(ctx, entry)
	if err != nil {
		return nil, 0, domain.NewInternalError(
			fmt.Sprintf("failed to unmarshal %s data", r.entityName), domain.ErrUnmarshal, err)
	}

	return entity, entry.Revision(), nil
}

// Unmarshal decodes a KV entry into the entity type.
func (r *NatsBaseRepository[T]) Unmarshal(ctx context.Context, entry jetstream.KeyValueEntry) (*T, error) {
	var entity T
	if err := json.Unmarshal(entry.Value(), &entity); err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("error unmarshaling %s", r.entityName),
			logging.ErrKey, err, "key", entry.Key())
		return nil, err
	}
	return &entity, nil
}

// Marshal encodes an entity as JSON.
func (r *NatsBaseRepository[T]) Marshal(ctx context.Context, entity *T) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("error marshaling %s", r.entityName),
			logging.ErrKey, err)
		return nil, err
	}
	return data, nil
}

// Exists checks if a key is present.
func (r *NatsBaseRepository[T]) Exists(ctx context.Context, key string) (bool, error) {
	_, err := r.GetRaw(ctx, key)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Put writes an entity without a revision precondition.
func (r *NatsBaseRepository[T]) Put(ctx context.Context, key string, entity *T) (uint64, error) {
	ctx, span := r.startSpan(ctx, "put", attribute.String("db.nats.key", key))
	defer span.End()

	if !r.IsReady() {
		return 0, fail(span, r.unavailable(), "")
	}

	data, err := r.Marshal(ctx, entity)
	if err != nil {
		return 0, fail(span, domain.NewInternalError(fmt.Sprintf("failed to marshal %s", r.entityName), err), "")
	}

	revision, err := r.kvStore.Put(ctx, key, data)
	if err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("error writing %s to NATS KV", r.entityName),
			logging.ErrKey, err, "key", key)
		return 0, fail(span, domain.NewInternalError(
			fmt.Sprintf("failed to write %s to store", r.entityName), domain.ErrInternal, err), "")
	}

	span.SetStatus(codes.Ok, "")
	return revision, nil
}

// Create stores a new entity.
func (r *NatsBaseRepository[T]) Create(ctx context.Context, key string, entity *T) error {
	_, err := r.Put(ctx, key, entity)
	return err
}

// Update replaces an entity if its revision still matches.
func (r *NatsBaseRepository[T]) Update(ctx context.Context, key string, entity *T, revision uint64) error {
	ctx, span := r.startSpan(ctx, "update",
		attribute.String("db.nats.key", key),
		attribute.Int64("db.nats.revision", int64(revision)),
	)
	defer span.End()

	if !r.IsReady() {
		return fail(span, r.unavailable(), "")
	}

	data, err := r.Marshal(ctx, entity)
	if err != nil {
		return fail(span, domain.NewInternalError(fmt.Sprintf("failed to marshal %s", r.entityName), err), "")
	}

	if _, err = r.kvStore.Update(ctx, key, data, revision); err != nil {
		return fail(span, r.writeError(ctx, "update", key, revision, err), "")
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete removes an entity. A zero revision deletes regardless of the
// stored revision.
func (r *NatsBaseRepository[T]) Delete(ctx context.Context, key string, revision uint64) error {
	ctx, span := r.startSpan(ctx, "delete",
		attribute.String("db.nats.key", key),
		attribute.Int64("db.nats.revision", int64(revision)),
	)
	defer span.End()

	if !r.IsReady() {
		return fail(span, r.unavailable(), "")
	}

	var opts []jetstream.KVDeleteOpt
	if revision > 0 {
		opts = append(opts, jetstream.LastRevision(revision))
	}
	if err := r.kvStore.Delete(ctx, key, opts...); err != nil {
		return fail(span, r.writeError(ctx, "delete", key, revision, err), "")
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *NatsBaseRepository[T]) writeError(ctx context.Context, op, key string, revision uint64, err error) error {
	switch {
	case errors.Is(err, jetstream.ErrKeyNotFound):
		return r.notFoundError(key, err)
	case isRevisionMismatch(err):
		return domain.NewConflictError(fmt.Sprintf("%s has been modified", r.entityName), domain.ErrRevisionMismatch, err)
	}
	slog.ErrorContext(ctx, fmt.Sprintf("error during %s of %s in NATS KV", op, r.entityName),
		logging.ErrKey, err, "key", key, "revision", revision)
	return domain.NewInternalError(fmt.Sprintf("failed to %s %s in store", op, r.entityName), domain.ErrInternal, err)
}

// ListKeys returns every key in the bucket.
func (r *NatsBaseRepository[T]) ListKeys(ctx context.Context) ([]string, error) {
	ctx, span := r.startSpan(ctx, "list_keys")
	defer span.End()

	if !r.IsReady() {
		return nil, fail(span, r.unavailable(), "")
	}

	lister, err := r.kvStore.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			span.SetStatus(codes.Ok, "")
			return nil, nil
		}
		slog.ErrorContext(ctx, fmt.Sprintf("error listing %s keys from NATS KV", r.entityName),
			logging.ErrKey, err)
		return nil, fail(span, domain.NewInternalError(
			fmt.Sprintf("failed to list %s keys from store", r.entityName), domain.ErrInternal, err), "")
	}
	defer func() { _ = lister.Stop() }()

	var keys []string
	for key := range lister.Keys() {
		keys = append(keys, key)
	}

	span.SetAttributes(attribute.Int("db.nats.key_count", len(keys)))
	span.SetStatus(codes.Ok, "")
	return keys, nil
}

// ListKeysWithPrefix returns the keys that start with prefix.
func (r *NatsBaseRepository[T]) ListKeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	keys, err := r.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	matched := keys[:0]
	for _, key := range keys {
		if strings.HasPrefix(key, prefix) {
			matched = append(matched, key)
		}
	}
	return matched, nil
}

// ListEntities loads every entity whose key satisfies keep. Keys that
// disappear between listing and reading are skipped.
func (r *NatsBaseRepository[T]) ListEntities(ctx context.Context, keep func(key string) bool) ([]*T, error) {
	keys, err := r.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	entities := make([]*T, 0, len(keys))
	for _, key := range keys {
		if keep != nil && !keep(key) {
			continue
		}
		entity, err := r.Get(ctx, key)
		if err != nil {
			if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
				continue
			}
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// PutIndex writes an empty marker key.
func (r *NatsBaseRepository[T]) PutIndex(ctx context.Context, key string) error {
	ctx, span := r.startSpan(ctx, "put_index", attribute.String("db.nats.key", key))
	defer span.End()

	if !r.IsReady() {
		return fail(span, r.unavailable(), "")
	}

	if _, err := r.kvStore.Put(ctx, key, []byte{}); err != nil {
		slog.ErrorContext(ctx, "error writing index to NATS KV", logging.ErrKey, err, "key", key)
		return fail(span, domain.NewInternalError("failed to write index", domain.ErrInternal, err), "")
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// DeleteIndex removes a marker key. Missing keys are ignored.
func (r *NatsBaseRepository[T]) DeleteIndex(ctx context.Context, key string) error {
	ctx, span := r.startSpan(ctx, "delete_index", attribute.String("db.nats.key", key))
	defer span.End()

	if !r.IsReady() {
		return fail(span, r.unavailable(), "")
	}

	if err := r.kvStore.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		slog.ErrorContext(ctx, "error deleting index from NATS KV", logging.ErrKey, err, "key", key)
		return fail(span, domain.NewInternalError("failed to delete index", domain.ErrInternal, err), "")
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
