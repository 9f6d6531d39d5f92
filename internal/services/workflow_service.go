package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"land-backend/internal/metrics"
	"land-backend/internal/models"
	"land-backend/internal/repositories"
	"land-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// WorkflowService enforces the entity state machine. Every operation loads
// the entity, checks it in the order not found, validation, permission,
// state, then writes the new status and the activity entry in one
// transaction. Notifications go out after commit and never fail the call.
type WorkflowService struct {
	Entities EntityStore
	Users    UserDirectory
	Activity ActivityLogger
	Tx       Transactor
	Notifier Notifier
	Photos   PhotoStore // nil when object storage is not configured
	Clock    timeutil.Clock
	Log      logrus.FieldLogger
}

func NewWorkflowService(
	entities EntityStore,
	users UserDirectory,
	activity ActivityLogger,
	tx Transactor,
	notifier Notifier,
	photos PhotoStore,
	log logrus.FieldLogger,
) *WorkflowService {
	return &WorkflowService{
		Entities: entities,
		Users:    users,
		Activity: activity,
		Tx:       tx,
		Notifier: notifier,
		Photos:   photos,
		Clock:    timeutil.SystemClock{},
		Log:      log,
	}
}

// transition describes one state machine edge
type transition struct {
	action string
	// from lists the statuses the edge may start from
	from      []models.EntityStatus
	validate  func() error
	authorize func(h *models.EntityHeader, actor models.Actor) error
	apply     func(next *models.EntityHeader, actor models.Actor, now time.Time)
	metadata  map[string]any
	notify    func(ctx context.Context, h *models.EntityHeader) ([]uuid.UUID, models.NotificationMessage, error)
}

// Submit sends a DRAFT or REJECTED entity for review
func (s *WorkflowService) Submit(ctx context.Context, key models.EntityKey, actor models.Actor) (*models.EntityHeader, error) {
	return s.run(ctx, key, actor, transition{
		action:    models.ActionSubmitted,
		from:      []models.EntityStatus{models.StatusDraft, models.StatusRejected},
		authorize: creatorOrAdministrator,
		apply: func(next *models.EntityHeader, actor models.Actor, now time.Time) {
			next.Status = models.StatusSubmitted
			next.SubmittedAt = &now
			next.SubmittedBy = &actor.UserID
			next.RejectionFeedback = nil
		},
		notify: func(ctx context.Context, h *models.EntityHeader) ([]uuid.UUID, models.NotificationMessage, error) {
			recipients, err := s.Users.ListActiveByRoles(ctx, models.RoleApprover, models.RoleAdministrator)
			msg := models.NotificationMessage{
				Title:   fmt.Sprintf("%s submitted for review", h.Type.Label()),
				Message: fmt.Sprintf("%s %s is awaiting approval", h.Type.Label(), h.ReferenceID),
			}
			return recipients, msg, err
		},
	})
}

// Approve accepts a SUBMITTED entity
func (s *WorkflowService) Approve(ctx context.Context, key models.EntityKey, actor models.Actor) (*models.EntityHeader, error) {
	return s.run(ctx, key, actor, transition{
		action:    models.ActionApproved,
		from:      []models.EntityStatus{models.StatusSubmitted},
		authorize: reviewer,
		apply: func(next *models.EntityHeader, actor models.Actor, _ time.Time) {
			next.Status = models.StatusApproved
			next.ApprovedBy = &actor.UserID
		},
		notify: notifyCreator(func(h *models.EntityHeader) models.NotificationMessage {
			return models.NotificationMessage{
				Title:   fmt.Sprintf("%s approved", h.Type.Label()),
				Message: fmt.Sprintf("%s %s was approved", h.Type.Label(), h.ReferenceID),
			}
		}),
	})
}

// Reject returns a SUBMITTED entity to its creator with feedback. The
// feedback is stored exactly as given but must not be blank.
func (s *WorkflowService) Reject(ctx context.Context, key models.EntityKey, actor models.Actor, feedback string) (*models.EntityHeader, error) {
	return s.run(ctx, key, actor, transition{
		action: models.ActionRejected,
		from:   []models.EntityStatus{models.StatusSubmitted},
		validate: func() error {
			if strings.TrimSpace(feedback) == "" {
				return validationError("rejection feedback is required")
			}
			return nil
		},
		authorize: reviewer,
		apply: func(next *models.EntityHeader, _ models.Actor, _ time.Time) {
			fb := feedback
			next.Status = models.StatusRejected
			next.RejectionFeedback = &fb
		},
		metadata: map[string]any{"feedback": feedback},
		notify: notifyCreator(func(h *models.EntityHeader) models.NotificationMessage {
			return models.NotificationMessage{
				Title:   fmt.Sprintf("%s rejected", h.Type.Label()),
				Message: fmt.Sprintf("%s %s was rejected: %s", h.Type.Label(), h.ReferenceID, feedback),
			}
		}),
	})
}

// Archive hides a DRAFT or APPROVED property
func (s *WorkflowService) Archive(ctx context.Context, key models.EntityKey, actor models.Actor) (*models.EntityHeader, error) {
	var from []models.EntityStatus
	if key.Type == models.EntityProperty {
		from = []models.EntityStatus{models.StatusDraft, models.StatusApproved}
	}
	return s.run(ctx, key, actor, transition{
		action:    models.ActionArchived,
		from:      from,
		authorize: reviewer,
		apply: func(next *models.EntityHeader, _ models.Actor, _ time.Time) {
			next.Status = models.StatusArchived
		},
	})
}

// Unarchive restores an ARCHIVED property to APPROVED when it had been
// approved before, otherwise to DRAFT.
func (s *WorkflowService) Unarchive(ctx context.Context, key models.EntityKey, actor models.Actor) (*models.EntityHeader, error) {
	var from []models.EntityStatus
	if key.Type == models.EntityProperty {
		from = []models.EntityStatus{models.StatusArchived}
	}
	meta := map[string]any{}
	return s.run(ctx, key, actor, transition{
		action:    models.ActionUnarchived,
		from:      from,
		authorize: reviewer,
		apply: func(next *models.EntityHeader, _ models.Actor, _ time.Time) {
			next.Status = restoreStatus(next)
			meta["restored_to"] = string(next.Status)
		},
		metadata: meta,
	})
}

func restoreStatus(h *models.EntityHeader) models.EntityStatus {
	if h.ApprovedBy != nil {
		return models.StatusApproved
	}
	return models.StatusDraft
}

// Delete removes an entity with its detail rows and photos. Administrators
// may delete anything; an inputter may delete their own drafts.
func (s *WorkflowService) Delete(ctx context.Context, key models.EntityKey, actor models.Actor) (err error) {
	defer func() { s.record(key, models.ActionDeleted, err) }()

	h, err := s.load(ctx, key)
	if err != nil {
		return err
	}
	if err := canDelete(h, actor); err != nil {
		return err
	}

	var keys []string
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		removed, err := s.Entities.Delete(ctx, h)
		if err != nil {
			return mapStoreError(err)
		}
		keys = removed
		return s.Activity.Append(ctx, &models.ActivityLogEntry{
			EntityType:  key.Type,
			EntityID:    key.ID,
			Action:      models.ActionDeleted,
			FromStatus:  h.Status,
			PerformedBy: actor.UserID,
			Metadata:    map[string]any{"reference_id": h.ReferenceID, "photos_removed": len(removed)},
		})
	})
	if err != nil {
		return err
	}
	s.removePhotos(ctx, key, keys)

	s.Log.WithFields(logrus.Fields{
		"entity_type": key.Type,
		"entity_id":   key.ID,
		"action":      models.ActionDeleted,
		"actor":       actor.UserID,
	}).Info("entity deleted")
	return nil
}

// removePhotos deletes the blobs of a committed delete. The rows are already
// gone, so a failure only leaves orphaned objects and is logged.
func (s *WorkflowService) removePhotos(ctx context.Context, key models.EntityKey, keys []string) {
	if len(keys) == 0 {
		return
	}
	fields := logrus.Fields{"entity": key.String(), "photos": len(keys)}
	if s.Photos == nil {
		s.Log.WithFields(fields).Warn("object storage not configured, photo blobs left in place")
		return
	}
	if err := s.Photos.Delete(ctx, keys); err != nil {
		s.Log.WithFields(fields).WithField("keys", keys).WithError(err).Warn("photo blobs orphaned after delete")
	}
}

func canDelete(h *models.EntityHeader, actor models.Actor) error {
	if !actor.IsActive {
		return permissionDenied("account is inactive")
	}
	if actor.Role == models.RoleAdministrator {
		return nil
	}
	if actor.Role == models.RoleInputter && h.CreatedBy == actor.UserID && h.Status == models.StatusDraft {
		return nil
	}
	return permissionDenied("only administrators or the creating inputter of a draft may delete it")
}

// History returns the activity log of an entity
func (s *WorkflowService) History(ctx context.Context, key models.EntityKey, actor models.Actor) ([]*models.ActivityLogEntry, error) {
	if _, err := s.load(ctx, key); err != nil {
		return nil, err
	}
	if !actor.IsActive {
		return nil, permissionDenied("account is inactive")
	}
	return s.Activity.ListForEntity(ctx, key)
}

func (s *WorkflowService) run(ctx context.Context, key models.EntityKey, actor models.Actor, t transition) (next *models.EntityHeader, err error) {
	defer func() { s.record(key, t.action, err) }()

	h, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if t.validate != nil {
		if err := t.validate(); err != nil {
			return nil, err
		}
	}
	if !actor.IsActive {
		return nil, permissionDenied("account is inactive")
	}
	if err := t.authorize(h, actor); err != nil {
		return nil, err
	}
	if len(t.from) == 0 {
		return nil, invalidState("%s is not supported for %s records", verb(t.action), key.Type)
	}
	if !statusIn(h.Status, t.from) {
		return nil, invalidState("cannot %s a %s record in status %s", verb(t.action), key.Type, h.Status)
	}

	next = h.Clone()
	t.apply(next, actor, s.Clock.Now())

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Entities.UpdateWorkflowState(ctx, h, next); err != nil {
			return mapStoreError(err)
		}
		return s.Activity.Append(ctx, &models.ActivityLogEntry{
			EntityType:  key.Type,
			EntityID:    key.ID,
			Action:      t.action,
			FromStatus:  h.Status,
			ToStatus:    next.Status,
			PerformedBy: actor.UserID,
			Metadata:    t.metadata,
		})
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"entity_type": key.Type,
		"entity_id":   key.ID,
		"action":      t.action,
		"from":        h.Status,
		"to":          next.Status,
		"actor":       actor.UserID,
	}).Info("workflow transition")

	if t.notify != nil {
		s.emit(ctx, next, t)
	}
	return next, nil
}

// emit delivers notifications for a committed transition. Failures are
// logged and counted only.
func (s *WorkflowService) emit(ctx context.Context, h *models.EntityHeader, t transition) {
	fields := logrus.Fields{"entity_type": h.Type, "entity_id": h.ID, "action": t.action}

	recipients, msg, err := t.notify(ctx, h)
	if err == nil && len(recipients) > 0 {
		msg.EntityType = h.Type
		msg.EntityID = h.ID
		err = s.Notifier.Notify(ctx, recipients, msg)
	}
	if err != nil {
		metrics.NotificationFailures.Inc()
		s.Log.WithFields(fields).WithError(err).Warn("notification delivery failed")
	}
}

func (s *WorkflowService) load(ctx context.Context, key models.EntityKey) (*models.EntityHeader, error) {
	if !key.Type.Valid() {
		return nil, validationError("unknown entity type %q", key.Type)
	}
	h, err := s.Entities.GetHeader(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFoundError("%s %s not found", key.Type, key.ID)
		}
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return h, nil
}

func (s *WorkflowService) record(key models.EntityKey, action string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
		if kind := KindOf(err); kind != "" {
			outcome = string(kind)
		}
	}
	metrics.WorkflowTransitions.WithLabelValues(string(key.Type), action, outcome).Inc()
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrStaleStatus):
		return conflictError()
	case errors.Is(err, repositories.ErrNotFound):
		return conflictError()
	}
	return err
}

func creatorOrAdministrator(h *models.EntityHeader, actor models.Actor) error {
	if actor.Role == models.RoleAdministrator || h.CreatedBy == actor.UserID {
		return nil
	}
	return permissionDenied("only the creator or an administrator may submit this record")
}

func reviewer(_ *models.EntityHeader, actor models.Actor) error {
	if actor.Role.CanReview() {
		return nil
	}
	return permissionDenied("role %s may not review records", actor.Role)
}

func notifyCreator(build func(h *models.EntityHeader) models.NotificationMessage) func(context.Context, *models.EntityHeader) ([]uuid.UUID, models.NotificationMessage, error) {
	return func(_ context.Context, h *models.EntityHeader) ([]uuid.UUID, models.NotificationMessage, error) {
		return []uuid.UUID{h.CreatedBy}, build(h), nil
	}
}

func statusIn(s models.EntityStatus, set []models.EntityStatus) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

func verb(action string) string {
	switch action {
	case models.ActionSubmitted:
		return "submit"
	case models.ActionApproved:
		return "approve"
	case models.ActionRejected:
		return "reject"
	case models.ActionArchived:
		return "archive"
	case models.ActionUnarchived:
		return "unarchive"
	}
	return strings.ToLower(action)
}
