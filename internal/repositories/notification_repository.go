package repositories

import (
	"context"
	"fmt"

	"land-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	DB *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

// CreateBatch inserts one row per notification in a single round trip and
// fills in the generated ids and timestamps.
func (r *NotificationRepository) CreateBatch(ctx context.Context, items []*models.Notification) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, n := range items {
		batch.Queue(
			`INSERT INTO notifications (user_id, title, message, entity_type, entity_id)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			n.UserID, n.Title, n.Message, n.EntityType, n.EntityID)
	}

	results := r.DB.SendBatch(ctx, batch)
	defer results.Close()

	for _, n := range items {
		if err := results.QueryRow().Scan(&n.ID, &n.CreatedAt); err != nil {
			return fmt.Errorf("failed to create notification for %s: %w", n.UserID, err)
		}
	}
	return nil
}

func (r *NotificationRepository) Get(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	err := r.DB.QueryRow(ctx,
		`SELECT id, user_id, title, message, entity_type, entity_id, is_read, created_at, read_at
		 FROM notifications WHERE id=$1`, id,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.EntityType, &n.EntityID, &n.IsRead, &n.CreatedAt, &n.ReadAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

// ListForUser returns a user's notifications newest first
func (r *NotificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, filter models.NotificationFilter, limit int) ([]*models.Notification, error) {
	query := `SELECT id, user_id, title, message, entity_type, entity_id, is_read, created_at, read_at
	          FROM notifications WHERE user_id=$1`
	switch filter {
	case models.NotificationsUnread:
		query += ` AND NOT is_read`
	case models.NotificationsRead:
		query += ` AND is_read`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $2`

	rows, err := r.DB.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var items []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.EntityType, &n.EntityID,
			&n.IsRead, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, err
		}
		items = append(items, &n)
	}
	return items, rows.Err()
}

// MarkRead flips one unread notification. Already read rows are left alone.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE notifications SET is_read=TRUE, read_at=NOW()
		 WHERE id=$1 AND user_id=$2 AND NOT is_read`, id, userID)
	return err
}

// MarkAllRead flips every unread notification of the user and returns how
// many changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE notifications SET is_read=TRUE, read_at=NOW() WHERE user_id=$1 AND NOT is_read`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND NOT is_read`, userID).Scan(&n)
	return n, err
}
