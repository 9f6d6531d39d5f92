package services

import (
	"context"
	"errors"
	"fmt"

	"land-backend/internal/cache"
	"land-backend/internal/models"
	"land-backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

type NotificationService struct {
	Store     NotificationStore
	Publisher NotificationPublisher // optional live push
	Log       logrus.FieldLogger
}

func NewNotificationService(store NotificationStore, publisher NotificationPublisher, log logrus.FieldLogger) *NotificationService {
	return &NotificationService{Store: store, Publisher: publisher, Log: log}
}

// Notify writes one notification per distinct recipient. The caller decides
// what a failure means; the workflow treats it as non-fatal.
func (s *NotificationService) Notify(ctx context.Context, recipients []uuid.UUID, msg models.NotificationMessage) error {
	seen := make(map[uuid.UUID]bool, len(recipients))
	items := make([]*models.Notification, 0, len(recipients))
	users := make([]uuid.UUID, 0, len(recipients))
	for _, id := range recipients {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		users = append(users, id)
		items = append(items, &models.Notification{
			UserID:     id,
			Title:      msg.Title,
			Message:    msg.Message,
			EntityType: msg.EntityType,
			EntityID:   msg.EntityID,
		})
	}
	if len(items) == 0 {
		return nil
	}

	if err := s.Store.CreateBatch(ctx, items); err != nil {
		return fmt.Errorf("failed to store %d notifications: %w", len(items), err)
	}

	cache.InvalidateUnreadCounts(ctx, users...)

	if s.Publisher != nil {
		for _, n := range items {
			s.Publisher.Publish(n.UserID, n)
		}
	}

	s.Log.WithFields(logrus.Fields{
		"entity_type": msg.EntityType,
		"entity_id":   msg.EntityID,
		"recipients":  len(items),
	}).Debug("notifications created")
	return nil
}

// ListForUser returns the user's notifications newest first
func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID, filter models.NotificationFilter, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	items, err := s.Store.ListForUser(ctx, userID, filter, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Notification{}
	}
	return items, nil
}

// MarkRead marks one notification as read. Only the recipient may do so;
// repeating the call is harmless.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	n, err := s.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundError("notification %s not found", id)
		}
		return err
	}
	if n.UserID != userID {
		return permissionDenied("notification belongs to another user")
	}
	if n.IsRead {
		return nil
	}

	if err := s.Store.MarkRead(ctx, id, userID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	cache.InvalidateUnreadCounts(ctx, userID)
	return nil
}

// MarkAllRead flips every unread notification of the user and returns how
// many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.Store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	if n > 0 {
		cache.InvalidateUnreadCounts(ctx, userID)
	}
	return n, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if n, ok := cache.GetUnreadCount(ctx, userID); ok {
		return n, nil
	}
	n, err := s.Store.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	cache.CacheUnreadCount(ctx, userID, n)
	return n, nil
}
