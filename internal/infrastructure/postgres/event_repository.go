// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

const eventColumns = `id, organization_id, title, description, room_id, starts_at, ends_at, status,
	is_recurring, parent_event_id, recurrence_rule, recurrence_end_date, created_by,
	reviewer_id, reviewer_notes, created_at, updated_at, revision`

const (
	insertEventSQL = `
	INSERT INTO events (id, organization_id, title, description, room_id, starts_at, ends_at, status,
		is_recurring, parent_event_id, recurrence_rule, recurrence_end_date, created_by,
		reviewer_id, reviewer_notes, created_at, updated_at)
	VALUES (:id, :organization_id, :title, :description, :room_id, :starts_at, :ends_at, :status,
		:is_recurring, :parent_event_id, :recurrence_rule, :recurrence_end_date, :created_by,
		:reviewer_id, :reviewer_notes, :created_at, :updated_at);`

	updateEventSQL = `
	UPDATE events
	   SET organization_id = :organization_id, title = :title, description = :description,
	       room_id = :room_id, starts_at = :starts_at, ends_at = :ends_at, status = :status,
	       is_recurring = :is_recurring, parent_event_id = :parent_event_id,
	       recurrence_rule = :recurrence_rule, recurrence_end_date = :recurrence_end_date,
	       reviewer_id = :reviewer_id, reviewer_notes = :reviewer_notes,
	       updated_at = :updated_at, revision = revision + 1
	 WHERE id = :id
	   AND (CAST(:expected AS BIGINT) = 0 OR revision = :expected);`

	deleteEventSQL = `DELETE FROM events WHERE id = $1 AND (CAST($2 AS BIGINT) = 0 OR revision = $2);`

	// Half-open ranges: bookings that only touch do not overlap.
	overlappingEventsSQL = `
	SELECT ` + eventColumns + `
	  FROM events
	 WHERE room_id = $1
	   AND tstzrange(starts_at, ends_at, '[)') && tstzrange($2, $3, '[)')
	   AND (cardinality($4::text[]) = 0 OR status = ANY($4))
	 ORDER BY starts_at, id;`
)

type eventRow struct {
	models.Event
	Revision uint64 `db:"revision"`
}

type eventUpdate struct {
	models.Event
	Expected uint64 `db:"expected"`
}

// EventRepository stores events in the events table. Series batches run in
// one transaction.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates an event repository on db.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) ready() error {
	if r.db == nil {
		return domain.NewUnavailableError("event database is not available", domain.ErrServiceUnavailable)
	}
	return nil
}

// Create inserts event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) (err error) {
	ctx, span := startSpan(ctx, "insert", "events")
	defer func() { endSpan(span, err) }()

	if err = r.ready(); err != nil {
		return err
	}
	return insertEvent(ctx, r.db, event)
}

func insertEvent(ctx context.Context, e sqlx.ExtContext, event *models.Event) error {
	if _, err := sqlx.NamedExecContext(ctx, e, insertEventSQL, event); err != nil {
		return classify(ctx, "insert event", event.ID, err)
	}
	return nil
}

// Get returns the event with id.
func (r *EventRepository) Get(ctx context.Context, eventID string) (*models.Event, error) {
	event, _, err := r.GetWithRevision(ctx, eventID)
	return event, err
}

// GetWithRevision returns the event with id and its row revision.
func (r *EventRepository) GetWithRevision(ctx context.Context, eventID string) (_ *models.Event, _ uint64, err error) {
	ctx, span := startSpan(ctx, "select", "events")
	defer func() { endSpan(span, err) }()

	if err = r.ready(); err != nil {
		return nil, 0, err
	}

	var row eventRow
	err = r.db.GetContext(ctx, &row, `SELECT `+eventColumns+` FROM events WHERE id = $1;`, eventID)
	if err != nil {
		return nil, 0, classify(ctx, "get event", eventID, err)
	}
	return &row.Event, row.Revision, nil
}

// Update writes event if its row revision still matches. A zero revision
// skips the check.
func (r *EventRepository) Update(ctx context.Context, event *models.Event, revision uint64) (err error) {
	ctx, span := startSpan(ctx, "update", "events")
	defer func() { endSpan(span, err) }()

	if err = r.ready(); err != nil {
		return err
	}
	return r.updateEvent(ctx, r.db, event, revision)
}

func (r *EventRepository) updateEvent(ctx context.Context, e sqlx.ExtContext, event *models.Event, revision uint64) error {
	res, err := sqlx.NamedExecContext(ctx, e, updateEventSQL, eventUpdate{Event: *event, Expected: revision})
	if err != nil {
		return classify(ctx, "update event", event.ID, err)
	}
	return r.checkAffected(ctx, e, res, event.ID)
}

// Delete removes an event. A zero revision deletes unconditionally.
func (r *EventRepository) Delete(ctx context.Context, eventID string, revision uint64) (err error) {
	ctx, span := startSpan(ctx, "delete", "events")
	defer func() { endSpan(span, err) }()

	if err = r.ready(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, deleteEventSQL, eventID, int64(revision))
	if err != nil {
		return classify(ctx, "delete event", eventID, err)
	}
	return r.checkAffected(ctx, r.db, res, eventID)
}

// checkAffected turns a write that matched no row into not found or a
// revision mismatch.
func (r *EventRepository) checkAffected(ctx context.Context, q sqlx.QueryerContext, res sql.Result, eventID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(ctx, "read affected rows", eventID, err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1);`, eventID); err != nil {
		return classify(ctx, "check event", eventID, err)
	}
	if !exists {
		return domain.NewNotFoundError(fmt.Sprintf("event '%s' not found", eventID), domain.ErrEventNotFound)
	}
	return domain.NewConflictError("event has been modified", domain.ErrRevisionMismatch)
}

// List returns every event ordered by start time.
func (r *EventRepository) List(ctx context.Context) ([]*models.Event, error) {
	return r.selectEvents(ctx, `SELECT `+eventColumns+` FROM events ORDER BY starts_at, id;`)
}

// ListByParent returns the instances of the series anchored at anchorID.
func (r *EventRepository) ListByParent(ctx context.Context, anchorID string) ([]*models.Event, error) {
	return r.selectEvents(ctx, `SELECT `+eventColumns+` FROM events WHERE parent_event_id = $1 ORDER BY starts_at, id;`, anchorID)
}

// ListOverlapping returns the events of query.RoomID intersecting the query
// window, restricted to query.Statuses when set.
func (r *EventRepository) ListOverlapping(ctx context.Context, query models.OverlapQuery) ([]*models.Event, error) {
	statuses := make([]string, len(query.Statuses))
	for i, s := range query.Statuses {
		statuses[i] = string(s)
	}
	return r.selectEvents(ctx, overlappingEventsSQL, query.RoomID, query.StartsAt, query.EndsAt, pq.Array(statuses))
}

func (r *EventRepository) selectEvents(ctx context.Context, query string, args ...any) (_ []*models.Event, err error) {
	ctx, span := startSpan(ctx, "select", "events")
	defer func() { endSpan(span, err) }()

	if err = r.ready(); err != nil {
		return nil, err
	}

	var rows []eventRow
	if err = r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, classify(ctx, "list events", "", err)
	}

	events := make([]*models.Event, len(rows))
	for i := range rows {
		events[i] = &rows[i].Event
	}
	return events, nil
}

// CreateBatch inserts every event or none.
func (r *EventRepository) CreateBatch(ctx context.Context, events []*models.Event) (*models.BatchResult, error) {
	return r.inTx(ctx, "insert", ids(events), func(tx *sqlx.Tx, i int) error {
		return insertEvent(ctx, tx, events[i])
	})
}

// UpdateBatch writes every event or none, ignoring row revisions.
func (r *EventRepository) UpdateBatch(ctx context.Context, events []*models.Event) (*models.BatchResult, error) {
	return r.inTx(ctx, "update", ids(events), func(tx *sqlx.Tx, i int) error {
		return r.updateEvent(ctx, tx, events[i], 0)
	})
}

// DeleteBatch removes every event or none.
func (r *EventRepository) DeleteBatch(ctx context.Context, eventIDs []string) (*models.BatchResult, error) {
	return r.inTx(ctx, "delete", eventIDs, func(tx *sqlx.Tx, i int) error {
		res, err := tx.ExecContext(ctx, deleteEventSQL, eventIDs[i], int64(0))
		if err != nil {
			return classify(ctx, "delete event", eventIDs[i], err)
		}
		return r.checkAffected(ctx, tx, res, eventIDs[i])
	})
}

func (r *EventRepository) inTx(ctx context.Context, op string, eventIDs []string, fn func(tx *sqlx.Tx, i int) error) (_ *models.BatchResult, err error) {
	ctx, span := startSpan(ctx, op+"_batch", "events")
	defer func() { endSpan(span, err) }()

	result := &models.BatchResult{Affected: []string{}}
	if len(eventIDs) == 0 {
		return result, nil
	}
	if err = r.ready(); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, classify(ctx, "begin transaction", "", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.ErrorContext(ctx, "error rolling back batch", logging.ErrKey, rbErr)
			}
		}
	}()

	for i := range eventIDs {
		if err = fn(tx, i); err != nil {
			slog.WarnContext(ctx, "batch "+op+" aborted", logging.ErrKey, err, "event_id", eventIDs[i])
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, classify(ctx, "commit batch", "", err)
	}

	result.Affected = append(result.Affected, eventIDs...)
	return result, nil
}

func ids(events []*models.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

// PostgreSQL error codes
const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
)

// classify maps driver errors onto domain errors.
func classify(ctx context.Context, op, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(fmt.Sprintf("event '%s' not found", id), domain.ErrEventNotFound, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return domain.NewConflictError(fmt.Sprintf("%q already exists", id), err)
		case pqSerializationFailure:
			return domain.NewConflictError("concurrent update, retry the request", domain.ErrRevisionMismatch, err)
		}
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	slog.ErrorContext(ctx, "database error", logging.ErrKey, err, "op", op, "id", id)
	return domain.NewInternalError("failed to "+op, domain.ErrInternal, err)
}
