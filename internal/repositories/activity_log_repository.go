package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"land-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityLogRepository is append-only: there is deliberately no update or
// delete method.
type ActivityLogRepository struct {
	DB *pgxpool.Pool
}

func NewActivityLogRepository(db *pgxpool.Pool) *ActivityLogRepository {
	return &ActivityLogRepository{DB: db}
}

// Append records one activity entry, joining the caller's transaction if any
func (r *ActivityLogRepository) Append(ctx context.Context, e *models.ActivityLogEntry) error {
	metadata := e.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode activity metadata: %w", err)
	}

	err = conn(ctx, r.DB).QueryRow(ctx,
		`INSERT INTO activity_logs (entity_type, entity_id, action, from_status, to_status, performed_by, metadata)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		 RETURNING id, created_at`,
		e.EntityType, e.EntityID, e.Action, string(e.FromStatus), string(e.ToStatus), e.PerformedBy, raw,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append activity log: %w", err)
	}
	return nil
}

// ListForEntity returns the history of one entity, oldest first
func (r *ActivityLogRepository) ListForEntity(ctx context.Context, key models.EntityKey) ([]*models.ActivityLogEntry, error) {
	rows, err := conn(ctx, r.DB).Query(ctx,
		`SELECT a.id, a.entity_type, a.entity_id, a.action,
		        COALESCE(a.from_status, ''), COALESCE(a.to_status, ''),
		        a.performed_by, a.metadata, a.created_at,
		        COALESCE(NULLIF(u.name, ''), u.email, '')
		 FROM activity_logs a
		 LEFT JOIN users u ON u.id = a.performed_by
		 WHERE a.entity_type=$1 AND a.entity_id=$2
		 ORDER BY a.created_at, a.id`,
		key.Type, key.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []*models.ActivityLogEntry
	for rows.Next() {
		var e models.ActivityLogEntry
		var raw []byte
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action,
			&e.FromStatus, &e.ToStatus, &e.PerformedBy, &raw, &e.CreatedAt, &e.PerformedByName); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &e.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode activity metadata: %w", err)
			}
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
