package services

import (
	"context"
	"io"

	"land-backend/internal/models"

	"github.com/google/uuid"
)

// The interfaces below are the seams between the services and persistence.
// The repositories package provides the Postgres implementations.

// EntityStore reads and writes the workflow columns of customers and properties
type EntityStore interface {
	GetHeader(ctx context.Context, key models.EntityKey) (*models.EntityHeader, error)
	// UpdateWorkflowState and Delete only apply while the stored status and
	// updated_at still equal the loaded header, returning
	// repositories.ErrStaleStatus otherwise.
	UpdateWorkflowState(ctx context.Context, loaded, next *models.EntityHeader) error
	// Delete returns the storage keys of the photo rows it removed
	Delete(ctx context.Context, loaded *models.EntityHeader) ([]string, error)
}

// UserDirectory answers role and name lookups
type UserDirectory interface {
	ListActiveByRoles(ctx context.Context, roles ...models.Role) ([]uuid.UUID, error)
	NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type ActivityLogger interface {
	Append(ctx context.Context, e *models.ActivityLogEntry) error
	ListForEntity(ctx context.Context, key models.EntityKey) ([]*models.ActivityLogEntry, error)
}

// Transactor runs fn atomically; store calls using the ctx given to fn join it
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier fans a message out to recipients
type Notifier interface {
	Notify(ctx context.Context, recipients []uuid.UUID, msg models.NotificationMessage) error
}

// PhotoStore holds binary assets attached to properties
type PhotoStore interface {
	NewKey(propertyID uuid.UUID, filename string) string
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, keys []string) error
	URL(key string) string
}

// NotificationStore persists per-user notifications
type NotificationStore interface {
	CreateBatch(ctx context.Context, items []*models.Notification) error
	Get(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	ListForUser(ctx context.Context, userID uuid.UUID, filter models.NotificationFilter, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// NotificationPublisher pushes stored notifications to live connections
type NotificationPublisher interface {
	Publish(userID uuid.UUID, n *models.Notification)
}

// SubmittedCustomers lists SUBMITTED customers with their detail loaded,
// oldest submission first
type SubmittedCustomers interface {
	ListSubmitted(ctx context.Context, limit int) ([]*models.Customer, error)
}

// SubmittedProperties lists SUBMITTED properties with their detail loaded,
// oldest submission first
type SubmittedProperties interface {
	ListSubmitted(ctx context.Context, limit int) ([]*models.Property, error)
}

// CustomerStore persists customers with their detail rows
type CustomerStore interface {
	Create(ctx context.Context, c *models.Customer) error
	Get(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, status models.EntityStatus, limit, offset int) ([]*models.Customer, error)
	UpdateDetail(ctx context.Context, c *models.Customer) error
}

// PropertyStore persists properties with their detail rows and photos
type PropertyStore interface {
	Create(ctx context.Context, p *models.Property) error
	Get(ctx context.Context, id uuid.UUID) (*models.Property, error)
	List(ctx context.Context, status models.EntityStatus, limit, offset int) ([]*models.Property, error)
	UpdateDetail(ctx context.Context, p *models.Property) error
	AddPhoto(ctx context.Context, photo *models.PropertyPhoto) error
	ListPhotos(ctx context.Context, propertyID uuid.UUID) ([]*models.PropertyPhoto, error)
}
