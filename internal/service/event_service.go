// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/concurrent"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/recurrence"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/utils"
)

// Warnings returned alongside successful operations.
const (
	warnNotificationFailed = "Event status updated but email notification failed"
	warnPublishFailed      = "Event saved but change notifications could not be published"
	warnSeriesPartial      = "Some events in the series could not be updated"
)

// EventService implements room booking and the approval workflow.
type EventService struct {
	EventRepository   domain.EventRepository
	RoomRepository    domain.RoomRepository
	ProfileRepository domain.ProfileRepository
	MessageBuilder    domain.MessageBuilder
	Notifier          domain.Notifier
	Conflicts         *ConflictDetector
	Lifecycle         *Lifecycle
	Config            ServiceConfig

	now func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(
	eventRepository domain.EventRepository,
	roomRepository domain.RoomRepository,
	profileRepository domain.ProfileRepository,
	messageBuilder domain.MessageBuilder,
	notifier domain.Notifier,
	config ServiceConfig,
) *EventService {
	return &EventService{
		EventRepository:   eventRepository,
		RoomRepository:    roomRepository,
		ProfileRepository: profileRepository,
		MessageBuilder:    messageBuilder,
		Notifier:          notifier,
		Conflicts:         NewConflictDetector(eventRepository, roomRepository, profileRepository, config),
		Lifecycle:         NewLifecycle(),
		Config:            config,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// ServiceReady checks if the service is ready for use.
func (s *EventService) ServiceReady() bool {
	return s.EventRepository != nil &&
		s.RoomRepository != nil &&
		s.ProfileRepository != nil &&
		s.MessageBuilder != nil &&
		s.Notifier != nil &&
		s.Conflicts != nil &&
		s.Lifecycle != nil
}

func (s *EventService) maxInstances() int {
	if s.Config.MaxSeriesInstances > 0 {
		return s.Config.MaxSeriesInstances
	}
	return constants.MaxSeriesInstances
}

func (s *EventService) pool() *concurrent.WorkerPool {
	if s.Config.SeriesWorkers > 0 {
		return concurrent.NewWorkerPool(s.Config.SeriesWorkers)
	}
	return concurrent.NewWorkerPool(constants.DefaultSeriesWorkers)
}

// CreateEvent books a room. A recurring request creates the anchor event
// and one event per generated instance.
func (s *EventService) CreateEvent(ctx context.Context, actor models.Actor, req *models.CreateEventRequest) (*models.CreateEventResult, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if actor.UserID == "" {
		return nil, domain.NewForbiddenError("an authenticated user is required to book a room")
	}
	if err := ValidateEventRequest(req); err != nil {
		slog.WarnContext(ctx, "invalid create event request", logging.ErrKey, err)
		return nil, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("room_id", req.RoomID))

	cfg := req.Recurrence
	rule := recurrence.Encode(cfg)
	instances := recurrence.Generate(req.StartsAt, req.EndsAt, cfg, s.maxInstances())

	windows := make([]models.TimeWindow, 0, len(instances)+1)
	windows = append(windows, models.TimeWindow{StartsAt: req.StartsAt, EndsAt: req.EndsAt})
	for _, inst := range instances {
		windows = append(windows, models.TimeWindow{StartsAt: inst.StartsAt, EndsAt: inst.EndsAt})
	}

	// Drafts hold no room, so only active bookings are checked.
	status := s.Lifecycle.InitialStatus(actor, req.Status)
	var conflicts []models.WindowConflict
	if status.IsActive() {
		var err error
		conflicts, err = s.Conflicts.CheckSeries(ctx, req.RoomID, windows, nil)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			if !req.IgnoreConflicts {
				slog.WarnContext(ctx, "room booking conflicts", "conflicts", len(conflicts))
				return nil, domain.NewRoomConflictError(conflicts)
			}
			slog.InfoContext(ctx, "creating booking despite conflicts", "conflicts", len(conflicts))
		}
	}

	now := s.now()
	anchor := &models.Event{
		ID:             uuid.New().String(),
		OrganizationID: req.OrganizationID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		RoomID:         req.RoomID,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		Status:         status,
		IsRecurring:    cfg.IsRecurring(),
		CreatedBy:      actor.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if rule != "" {
		anchor.RecurrenceRule = &rule
		if cfg.EndType == recurrence.EndOn && cfg.EndDate != nil {
			end := cfg.EndDate.EndOfDay(req.StartsAt.Location())
			anchor.RecurrenceEndDate = &end
		}
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_id", anchor.ID))

	if err := s.EventRepository.Create(ctx, anchor); err != nil {
		slog.ErrorContext(ctx, "error creating event", logging.ErrKey, err)
		return nil, domain.NewInternalError("failed to create event", err)
	}

	result := &models.CreateEventResult{
		Event:     anchor,
		Summary:   recurrence.Summary(cfg),
		Conflicts: conflicts,
	}

	if len(instances) > 0 {
		members := make([]*models.Event, len(instances))
		for i, inst := range instances {
			parent := anchor.ID
			members[i] = &models.Event{
				ID:             uuid.New().String(),
				OrganizationID: anchor.OrganizationID,
				Title:          anchor.Title,
				Description:    anchor.Description,
				RoomID:         anchor.RoomID,
				StartsAt:       inst.StartsAt,
				EndsAt:         inst.EndsAt,
				Status:         anchor.Status,
				IsRecurring:    true,
				ParentEventID:  &parent,
				CreatedBy:      anchor.CreatedBy,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
		}

		batch, err := s.EventRepository.CreateBatch(ctx, members)
		if err != nil {
			slog.ErrorContext(ctx, "error creating series instances, removing anchor", logging.ErrKey, err, logging.PriorityCritical())
			if delErr := s.EventRepository.Delete(ctx, anchor.ID, 0); delErr != nil {
				slog.ErrorContext(ctx, "error removing anchor after failed series", logging.ErrKey, delErr, logging.PriorityCritical())
			}
			return nil, domain.NewInternalError("failed to create recurring events", err)
		}
		batch.AnchorID = anchor.ID
		result.Batch = batch
		result.InstanceCount = len(batch.Affected)
		if len(batch.Failed) > 0 {
			slog.WarnContext(ctx, "series created partially", "failed", len(batch.Failed), "created", len(batch.Affected))
			result.Warnings = append(result.Warnings, warnSeriesPartial)
		}
	}

	if err := s.MessageBuilder.PublishEventCreated(ctx, anchor); err != nil {
		slog.ErrorContext(ctx, "failed to publish event created message", logging.ErrKey, err)
		result.Warnings = append(result.Warnings, warnPublishFailed)
	}

	slog.InfoContext(ctx, "event created", "status", anchor.Status, "instances", result.InstanceCount)

	return result, nil
}

// GetEvent returns an event and its revision.
func (s *EventService) GetEvent(ctx context.Context, id string) (*models.Event, string, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, "", domain.ErrServiceUnavailable
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_id", id))

	event, revision, err := s.loadEvent(ctx, id)
	if err != nil {
		return nil, "", err
	}

	revisionStr := strconv.FormatUint(revision, 10)
	slog.DebugContext(ctx, "returning event", "revision", revision)

	return event, revisionStr, nil
}

// ListEvents returns the events of roomID overlapping [from, to), ordered
// by start. Zero values widen the filter.
func (s *EventService) ListEvents(ctx context.Context, roomID string, from, to time.Time) ([]*models.Event, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		return nil, domain.NewValidationError("to must be after from")
	}

	var (
		events []*models.Event
		err    error
	)
	if roomID != "" && !from.IsZero() && !to.IsZero() {
		events, err = s.EventRepository.ListOverlapping(ctx, models.OverlapQuery{RoomID: roomID, StartsAt: from, EndsAt: to})
	} else {
		events, err = s.EventRepository.List(ctx)
	}
	if err != nil {
		slog.ErrorContext(ctx, "error listing events", logging.ErrKey, err)
		return nil, domain.NewInternalError("failed to list events", err)
	}

	filtered := events[:0]
	for _, e := range events {
		if roomID != "" && e.RoomID != roomID {
			continue
		}
		if !from.IsZero() && !e.EndsAt.After(from) {
			continue
		}
		if !to.IsZero() && !e.StartsAt.Before(to) {
			continue
		}
		filtered = append(filtered, e)
	}
	sortByStart(filtered)

	return filtered, nil
}

// GetSeries returns the series id belongs to.
func (s *EventService) GetSeries(ctx context.Context, id string) (*models.Series, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_id", id))

	event, _, err := s.loadEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	anchor, instances, err := s.seriesMembers(ctx, event)
	if err != nil {
		return nil, err
	}

	series := &models.Series{Anchor: anchor, Instances: instances}
	if anchor != nil && anchor.RecurrenceRule != nil {
		series.Summary = recurrence.Summary(recurrence.Decode(*anchor.RecurrenceRule))
	} else {
		series.Summary = recurrence.Summary(recurrence.None())
	}
	return series, nil
}

// UpdateEvent edits one event or, with ScopeAll, every event of its series.
func (s *EventService) UpdateEvent(ctx context.Context, actor models.Actor, id string, req *models.UpdateEventRequest, scope models.Scope, revision uint64) (*models.EventResult, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if req == nil {
		return nil, domain.NewValidationError("request body is required")
	}
	if err := ValidateEventFields(req.EventFields); err != nil {
		slog.WarnContext(ctx, "invalid update event request", logging.ErrKey, err)
		return nil, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_id", id))
	ctx = logging.AppendCtx(ctx, slog.String("scope", string(scope)))

	existing, storedRevision, err := s.loadEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	// A zero revision means the caller sent no precondition.
	if s.Config.SkipEtagValidation || revision == 0 {
		revision = storedRevision
	}
	ctx = logging.AppendCtx(ctx, slog.String("etag", strconv.FormatUint(revision, 10)))

	if !actor.CanModify(existing) {
		return nil, domain.NewForbiddenError("only the requester or a reviewer can edit this booking")
	}

	if scope == models.ScopeAll && existing.IsRecurring {
		return s.updateSeries(ctx, actor, existing, req, revision, storedRevision)
	}

	updated := existing.Clone()
	applyFields(updated, req.EventFields)
	updated.StartsAt = req.StartsAt
	updated.EndsAt = req.EndsAt
	updated.Status = s.Lifecycle.StatusAfterEdit(actor, existing)
	updated.UpdatedAt = s.now()

	if !req.IgnoreConflicts && updated.Status.IsActive() {
		conflict, err := s.Conflicts.FindConflict(ctx, updated.RoomID, updated.StartsAt, updated.EndsAt, updated.ID)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, domain.NewRoomConflictError([]models.WindowConflict{{
				Window:   models.TimeWindow{StartsAt: updated.StartsAt, EndsAt: updated.EndsAt},
				Conflict: *conflict,
			}})
		}
	}

	if err := s.EventRepository.Update(ctx, updated, revision); err != nil {
		if errors.Is(err, domain.ErrRevisionMismatch) {
			slog.WarnContext(ctx, "If-Match header is invalid", logging.ErrKey, err)
			return nil, domain.ErrRevisionMismatch
		}
		slog.ErrorContext(ctx, "error updating event", logging.ErrKey, err)
		return nil, domain.NewInternalError("failed to update event", err)
	}

	result := &models.EventResult{Event: updated, Revision: revision + 1}
	if err := s.MessageBuilder.PublishEventUpdated(ctx, updated); err != nil {
		slog.ErrorContext(ctx, "failed to publish event updated message", logging.ErrKey, err)
		result.Warnings = append(result.Warnings, warnPublishFailed)
	}

	slog.DebugContext(ctx, "returning updated event", "status", updated.Status)

	return result, nil
}

// updateSeries applies an edit to every member of existing's series. The
// change in start time is applied as an offset so that members keep their
// spacing, and every member takes the new duration.
func (s *EventService) updateSeries(ctx context.Context, actor models.Actor, existing *models.Event, req *models.UpdateEventRequest, revision, storedRevision uint64) (*models.EventResult, error) {
	if revision != storedRevision {
		slog.WarnContext(ctx, "If-Match header is invalid", "stored", storedRevision)
		return nil, domain.ErrRevisionMismatch
	}

	members, err := s.seriesList(ctx, existing)
	if err != nil {
		return nil, err
	}

	delta := req.StartsAt.Sub(existing.StartsAt)
	duration := req.EndsAt.Sub(req.StartsAt)
	now := s.now()

	updated := make([]*models.Event, len(members))
	windows := make([]models.TimeWindow, 0, len(members))
	ids := make([]string, len(members))
	for i, m := range members {
		u := m.Clone()
		applyFields(u, req.EventFields)
		u.StartsAt = m.StartsAt.Add(delta)
		u.EndsAt = u.StartsAt.Add(duration)
		u.Status = s.Lifecycle.StatusAfterEdit(actor, m)
		u.UpdatedAt = now
		updated[i] = u
		ids[i] = m.ID
		if u.Status.IsActive() {
			windows = append(windows, models.TimeWindow{StartsAt: u.StartsAt, EndsAt: u.EndsAt})
		}
	}

	if !req.IgnoreConflicts {
		roomID := req.RoomID
		conflicts, err := s.Conflicts.CheckSeries(ctx, roomID, windows, ids)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, domain.NewRoomConflictError(conflicts)
		}
	}

	batch, err := s.EventRepository.UpdateBatch(ctx, updated)
	if err != nil {
		slog.ErrorContext(ctx, "error updating series", logging.ErrKey, err)
		return nil, domain.NewInternalError("failed to update series", err)
	}
	batch.AnchorID = existing.AnchorID()

	result := &models.EventResult{Batch: batch}
	for _, u := range updated {
		if u.ID == existing.ID {
			result.Event = u
		}
	}
	if len(batch.Failed) > 0 {
		slog.WarnContext(ctx, "series updated partially", "failed", len(batch.Failed), "updated", len(batch.Affected))
		result.Warnings = append(result.Warnings, warnSeriesPartial)
	}

	if s.publishAll(ctx, pick(updated, batch.Affected), s.MessageBuilder.PublishEventUpdated) {
		result.Warnings = append(result.Warnings, warnPublishFailed)
	}

	return result, nil
}

// DeleteEvent removes one event or, with ScopeAll, its whole series.
func (s *EventService) DeleteEvent(ctx context.Context, actor models.Actor, id string, scope models.Scope, revision uint64) (*models.EventResult, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_id", id))
	ctx = logging.AppendCtx(ctx, slog.String("scope", string(scope)))

	existing, storedRevision, err := s.loadEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Config.SkipEtagValidation || revision == 0 {
		revision = storedRevision
	}

	if !actor.CanModify(existing) {
		return nil, domain.NewForbiddenError("only the requester or a reviewer can delete this booking")
	}

	if scope == models.ScopeAll && existing.IsRecurring {
		members, err := s.seriesList(ctx, existing)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(members))
		for i, m := range members {
			ids[i] = m.ID
		}

		batch, err := s.EventRepository.DeleteBatch(ctx, ids)
		if err != nil {
			slog.ErrorContext(ctx, "error deleting series", logging.ErrKey, err)
			return nil, domain.NewInternalError("failed to delete series", err)
		}
		batch.AnchorID = existing.AnchorID()

		result := &models.EventResult{Batch: batch}
		if len(batch.Failed) > 0 {
			slog.WarnContext(ctx, "series deleted partially", "failed", len(batch.Failed), "deleted", len(batch.Affected))
			result.Warnings = append(result.Warnings, warnSeriesPartial)
		}

		publishErrs := s.pool().RunAll(ctx, publishDeleted(ctx, s.MessageBuilder, batch.Affected)...)
		if len(publishErrs) > 0 {
			slog.ErrorContext(ctx, "failed to publish event deleted messages", logging.ErrKey, errors.Join(publishErrs...))
			result.Warnings = append(result.Warnings, warnPublishFailed)
		}

		slog.InfoContext(ctx, "series deleted", "deleted", len(batch.Affected))
		return result, nil
	}

	if err := s.EventRepository.Delete(ctx, existing.ID, revision); err != nil {
		if errors.Is(err, domain.ErrRevisionMismatch) {
			slog.WarnContext(ctx, "If-Match header is invalid", logging.ErrKey, err)
			return nil, domain.ErrRevisionMismatch
		}
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, domain.NewNotFoundError("event not found", err)
		}
		slog.ErrorContext(ctx, "error deleting event", logging.ErrKey, err)
		return nil, domain.NewInternalError("failed to delete event", err)
	}

	result := &models.EventResult{Batch: &models.BatchResult{AnchorID: existing.AnchorID(), Affected: []string{existing.ID}}}
	if err := s.MessageBuilder.PublishEventDeleted(ctx, existing.ID); err != nil {
		slog.ErrorContext(ctx, "failed to publish event deleted message", logging.ErrKey, err)
		result.Warnings = append(result.Warnings, warnPublishFailed)
	}

	slog.InfoContext(ctx, "event deleted")
	return result, nil
}

// ChangeStatus applies a lifecycle action to one event or, with ScopeAll,
// to every event of its series. The requester is notified on a best effort
// basis; a failed notification is reported as a warning.
func (s *EventService) ChangeStatus(ctx context.Context, actor models.Actor, id string, action Action, reason string, scope models.Scope) (*models.EventResult, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if err := s.Lifecycle.CheckAction(actor, action, reason); err != nil {
		slog.WarnContext(ctx, "status change rejected", "action", action, logging.ErrKey, err)
		return nil, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_id", id))
	ctx = logging.AppendCtx(ctx, slog.String("action", string(action)))

	existing, revision, err := s.loadEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := s.Lifecycle.Transition(actor, existing, action, reason)
	if err != nil {
		slog.WarnContext(ctx, "invalid status transition", "status", existing.Status, logging.ErrKey, err)
		return nil, err
	}

	result := &models.EventResult{Event: next}

	if scope == models.ScopeAll && existing.IsRecurring {
		members, err := s.seriesList(ctx, existing)
		if err != nil {
			return nil, err
		}

		batch := &models.BatchResult{AnchorID: existing.AnchorID()}
		var changed []*models.Event
		for _, m := range members {
			if m.ID == existing.ID {
				changed = append(changed, next)
				continue
			}
			n, err := s.Lifecycle.Transition(actor, m, action, reason)
			if err != nil {
				batch.Fail(m.ID, err)
				continue
			}
			changed = append(changed, n)
		}

		written, err := s.EventRepository.UpdateBatch(ctx, changed)
		if err != nil {
			slog.ErrorContext(ctx, "error updating series status", logging.ErrKey, err)
			return nil, domain.NewInternalError("failed to update series status", err)
		}
		batch.Affected = written.Affected
		batch.Failed = append(batch.Failed, written.Failed...)
		result.Batch = batch

		if !slices.Contains(batch.Affected, existing.ID) {
			slog.ErrorContext(ctx, "status change of the selected event failed")
			return nil, domain.NewInternalError("failed to update event status")
		}
		if len(batch.Failed) > 0 {
			slog.WarnContext(ctx, "series status changed partially", "failed", len(batch.Failed), "changed", len(batch.Affected))
			result.Warnings = append(result.Warnings, warnSeriesPartial)
		}

		if s.publishAll(ctx, pick(changed, batch.Affected), func(ctx context.Context, e *models.Event) error {
			return s.MessageBuilder.PublishStatusChanged(ctx, e, existing.Status)
		}) {
			result.Warnings = append(result.Warnings, warnPublishFailed)
		}
	} else {
		if err := s.EventRepository.Update(ctx, next, revision); err != nil {
			if errors.Is(err, domain.ErrRevisionMismatch) {
				slog.WarnContext(ctx, "event changed during status update", logging.ErrKey, err)
				return nil, domain.ErrRevisionMismatch
			}
			slog.ErrorContext(ctx, "error updating event status", logging.ErrKey, err)
			return nil, domain.NewInternalError("failed to update event status", err)
		}
		result.Revision = revision + 1

		if err := s.MessageBuilder.PublishStatusChanged(ctx, next, existing.Status); err != nil {
			slog.ErrorContext(ctx, "failed to publish status changed message", logging.ErrKey, err)
			result.Warnings = append(result.Warnings, warnPublishFailed)
		}
	}

	if action.Notifies() {
		result.Warnings = append(result.Warnings, s.notify(ctx, next)...)
	}

	slog.InfoContext(ctx, "event status changed", "from", existing.Status, "to", next.Status)

	return result, nil
}

// PreviewRecurrence returns the rule string, summary and instances a
// recurrence would produce for the given anchor window.
func (s *EventService) PreviewRecurrence(ctx context.Context, start, end time.Time, cfg recurrence.Config) (*models.RecurrencePreview, error) {
	if start.IsZero() || !end.After(start) {
		return nil, domain.NewValidationError("end time must be after start time")
	}
	if err := recurrence.Validate(cfg, start); err != nil {
		slog.DebugContext(ctx, "invalid recurrence preview request", logging.ErrKey, err)
		return nil, domain.NewValidationError("invalid recurrence", err)
	}

	instances := recurrence.Generate(start, end, cfg, s.maxInstances())
	if instances == nil {
		instances = []recurrence.Instance{}
	}
	return &models.RecurrencePreview{
		Rule:      recurrence.Encode(cfg),
		Summary:   recurrence.Summary(cfg),
		Instances: instances,
	}, nil
}

// notify tells the requester about the new status of event. It returns the
// warnings to surface to the caller.
func (s *EventService) notify(ctx context.Context, event *models.Event) []string {
	profile, err := s.ProfileRepository.Get(ctx, event.CreatedBy)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			slog.DebugContext(ctx, "requester has no profile, skipping notification", "user_id", event.CreatedBy)
			return nil
		}
		slog.WarnContext(ctx, "error getting requester profile", "user_id", event.CreatedBy, logging.ErrKey, err)
		return []string{warnNotificationFailed}
	}
	if strings.TrimSpace(profile.Email) == "" {
		slog.DebugContext(ctx, "requester has no email, skipping notification", "user_id", event.CreatedBy)
		return nil
	}

	notification := models.EventNotification{
		To:             profile.Email,
		RequesterName:  utils.CoalesceTrimmed(profile.FullName, models.DefaultRequesterName),
		EventID:        event.ID,
		EventReference: event.Reference(),
		EventTitle:     event.Title,
		Description:    event.Description,
		StartsAt:       event.StartsAt,
		EndsAt:         event.EndsAt,
		RoomName:       models.DefaultRoomName,
		Status:         models.NotificationStatus(event.Status),
	}
	notification.ReviewerNotes = utils.Value(event.ReviewerNotes)
	if s.Config.EventURLs != nil {
		notification.EventURL = s.Config.EventURLs.GenerateEventURL(event.ID)
	}

	if room, err := s.RoomRepository.Get(ctx, event.RoomID); err == nil && room.Name != "" {
		notification.RoomName = room.Name
	} else if err != nil && !errors.Is(err, domain.ErrRoomNotFound) {
		slog.WarnContext(ctx, "error getting room for notification", logging.ErrKey, err)
	}

	if rule := s.ruleOf(ctx, event); rule != "" {
		notification.RecurrenceRule = rule
		notification.RecurrenceSummary = recurrence.Summary(recurrence.Decode(rule))
	}

	if err := s.Notifier.SendStatusNotification(ctx, notification); err != nil {
		slog.ErrorContext(ctx, "failed to send status notification", "status", notification.Status, logging.ErrKey, err)
		return []string{warnNotificationFailed}
	}

	slog.DebugContext(ctx, "status notification sent", "status", notification.Status)
	return nil
}

// ruleOf returns the recurrence rule that applies to event, read from its
// anchor for series instances.
func (s *EventService) ruleOf(ctx context.Context, event *models.Event) string {
	if event.RecurrenceRule != nil {
		return *event.RecurrenceRule
	}
	if event.AnchorID() == event.ID {
		return ""
	}
	anchor, err := s.EventRepository.Get(ctx, event.AnchorID())
	if err != nil || anchor.RecurrenceRule == nil {
		return ""
	}
	return *anchor.RecurrenceRule
}

func (s *EventService) loadEvent(ctx context.Context, id string) (*models.Event, uint64, error) {
	if strings.TrimSpace(id) == "" {
		return nil, 0, domain.NewValidationError("event id is required")
	}
	event, revision, err := s.EventRepository.GetWithRevision(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			slog.WarnContext(ctx, "event not found", logging.ErrKey, err)
			return nil, 0, domain.NewNotFoundError("event not found", err)
		}
		slog.ErrorContext(ctx, "error getting event from store", logging.ErrKey, err)
		return nil, 0, domain.NewInternalError("failed to load event", err)
	}
	return event, revision, nil
}

// seriesMembers returns the anchor of event's series and its instances
// ordered by start. The anchor is nil when it was deleted on its own.
func (s *EventService) seriesMembers(ctx context.Context, event *models.Event) (*models.Event, []*models.Event, error) {
	anchorID := event.AnchorID()

	var anchor *models.Event
	if anchorID == event.ID {
		anchor = event
	} else {
		a, err := s.EventRepository.Get(ctx, anchorID)
		switch {
		case err == nil:
			anchor = a
		case errors.Is(err, domain.ErrEventNotFound):
			slog.DebugContext(ctx, "series anchor no longer exists", "anchor_id", anchorID)
		default:
			slog.ErrorContext(ctx, "error getting series anchor", "anchor_id", anchorID, logging.ErrKey, err)
			return nil, nil, domain.NewInternalError("failed to load series", err)
		}
	}

	instances, err := s.EventRepository.ListByParent(ctx, anchorID)
	if err != nil {
		slog.ErrorContext(ctx, "error listing series instances", "anchor_id", anchorID, logging.ErrKey, err)
		return nil, nil, domain.NewInternalError("failed to load series", err)
	}
	sortByStart(instances)

	return anchor, instances, nil
}

// seriesList returns every member of event's series, anchor first.
func (s *EventService) seriesList(ctx context.Context, event *models.Event) ([]*models.Event, error) {
	anchor, instances, err := s.seriesMembers(ctx, event)
	if err != nil {
		return nil, err
	}
	members := make([]*models.Event, 0, len(instances)+1)
	if anchor != nil {
		members = append(members, anchor)
	}
	members = append(members, instances...)
	if !slices.ContainsFunc(members, func(m *models.Event) bool { return m.ID == event.ID }) {
		members = append(members, event)
	}
	return members, nil
}

// publishAll publishes one message per event and reports whether any failed.
func (s *EventService) publishAll(ctx context.Context, events []*models.Event, publish func(context.Context, *models.Event) error) bool {
	errs := s.pool().RunIndexed(ctx, len(events), func(i int) error {
		return publish(ctx, events[i])
	})
	if err := errors.Join(errs...); err != nil {
		slog.ErrorContext(ctx, "failed to publish series messages", logging.ErrKey, err)
		return true
	}
	return false
}

func publishDeleted(ctx context.Context, mb domain.MessageBuilder, ids []string) []func() error {
	fns := make([]func() error, len(ids))
	for i, id := range ids {
		fns[i] = func() error {
			if err := mb.PublishEventDeleted(ctx, id); err != nil {
				return fmt.Errorf("event %s: %w", id, err)
			}
			return nil
		}
	}
	return fns
}

func applyFields(e *models.Event, f models.EventFields) {
	e.Title = strings.TrimSpace(f.Title)
	e.Description = f.Description
	e.RoomID = f.RoomID
}

// pick returns the events whose id is in ids, keeping the order of events.
func pick(events []*models.Event, ids []string) []*models.Event {
	var out []*models.Event
	for _, e := range events {
		if slices.Contains(ids, e.ID) {
			out = append(out, e)
		}
	}
	return out
}

func sortByStart(events []*models.Event) {
	slices.SortStableFunc(events, func(a, b *models.Event) int {
		if c := a.StartsAt.Compare(b.StartsAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
