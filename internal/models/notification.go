package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	EntityType EntityType `json:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id"`
	IsRead     bool       `json:"is_read"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
}

// NotificationMessage is the content fanned out to every recipient of one event
type NotificationMessage struct {
	Title      string
	Message    string
	EntityType EntityType
	EntityID   uuid.UUID
}

type NotificationFilter string

const (
	NotificationsAll    NotificationFilter = "all"
	NotificationsUnread NotificationFilter = "unread"
	NotificationsRead   NotificationFilter = "read"
)

// ParseNotificationFilter defaults an empty value to all
func ParseNotificationFilter(s string) (NotificationFilter, error) {
	switch NotificationFilter(s) {
	case "", NotificationsAll:
		return NotificationsAll, nil
	case NotificationsUnread, NotificationsRead:
		return NotificationFilter(s), nil
	}
	return "", fmt.Errorf("unknown notification filter %q", s)
}
