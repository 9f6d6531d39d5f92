package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"land-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EntityRepository reads and writes the workflow columns shared by customers
// and properties. Detail rows are handled by the per-type repositories.
type EntityRepository struct {
	DB *pgxpool.Pool
}

func NewEntityRepository(db *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{DB: db}
}

func tableFor(t models.EntityType) (string, error) {
	switch t {
	case models.EntityCustomer:
		return "customers", nil
	case models.EntityProperty:
		return "properties", nil
	}
	return "", fmt.Errorf("unknown entity type %q", t)
}

// GetHeader loads the workflow state of one entity
func (r *EntityRepository) GetHeader(ctx context.Context, key models.EntityKey) (*models.EntityHeader, error) {
	table, err := tableFor(key.Type)
	if err != nil {
		return nil, err
	}

	h := &models.EntityHeader{Type: key.Type}
	err = conn(ctx, r.DB).QueryRow(ctx,
		`SELECT id, reference_id, status, created_by, approved_by, rejection_feedback,
		        submitted_by, submitted_at, created_at, updated_at
		 FROM `+table+` WHERE id=$1`, key.ID,
	).Scan(&h.ID, &h.ReferenceID, &h.Status, &h.CreatedBy, &h.ApprovedBy, &h.RejectionFeedback,
		&h.SubmittedBy, &h.SubmittedAt, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return h, nil
}

// UpdateWorkflowState writes status, approver, feedback and submission time,
// but only while the row still has the status and updated_at that were
// loaded. A lost race returns ErrStaleStatus and leaves the row untouched.
func (r *EntityRepository) UpdateWorkflowState(ctx context.Context, loaded, next *models.EntityHeader) error {
	table, err := tableFor(next.Type)
	if err != nil {
		return err
	}

	err = conn(ctx, r.DB).QueryRow(ctx,
		`UPDATE `+table+`
		 SET status=$4, approved_by=$5, rejection_feedback=$6, submitted_by=$7, submitted_at=$8, updated_at=NOW()
		 WHERE id=$1 AND status=$2 AND updated_at=$3
		 RETURNING updated_at`,
		next.ID, loaded.Status, loaded.UpdatedAt,
		next.Status, next.ApprovedBy, next.RejectionFeedback, next.SubmittedBy, next.SubmittedAt,
	).Scan(&next.UpdatedAt)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return ErrStaleStatus
		}
		return fmt.Errorf("failed to update %s status: %w", next.Type, err)
	}
	return nil
}

// Delete removes the entity with its detail and photo rows while the row
// still matches the loaded status and updated_at, and returns the storage
// keys of the removed photos. It locks the row first, so it must run inside
// a transaction.
func (r *EntityRepository) Delete(ctx context.Context, loaded *models.EntityHeader) ([]string, error) {
	table, err := tableFor(loaded.Type)
	if err != nil {
		return nil, err
	}
	q := conn(ctx, r.DB)

	var status models.EntityStatus
	var updatedAt time.Time
	err = q.QueryRow(ctx, `SELECT status, updated_at FROM `+table+` WHERE id=$1 FOR UPDATE`, loaded.ID).
		Scan(&status, &updatedAt)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return nil, ErrStaleStatus
		}
		return nil, fmt.Errorf("failed to lock %s: %w", loaded.Type, err)
	}
	if status != loaded.Status || !updatedAt.Equal(loaded.UpdatedAt) {
		return nil, ErrStaleStatus
	}

	var keys []string
	if loaded.Type == models.EntityProperty {
		keys, err = deletePhotoRows(ctx, q, loaded.ID)
		if err != nil {
			return nil, err
		}
	}
	for _, stmt := range detailDeletes(loaded.Type) {
		if _, err := q.Exec(ctx, stmt, loaded.ID); err != nil {
			return nil, fmt.Errorf("failed to delete %s details: %w", loaded.Type, err)
		}
	}
	if _, err := q.Exec(ctx, `DELETE FROM `+table+` WHERE id=$1`, loaded.ID); err != nil {
		return nil, fmt.Errorf("failed to delete %s: %w", loaded.Type, err)
	}
	return keys, nil
}

func deletePhotoRows(ctx context.Context, q querier, propertyID uuid.UUID) ([]string, error) {
	rows, err := q.Query(ctx, `DELETE FROM property_photos WHERE property_id=$1 RETURNING storage_key`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete property photos: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func detailDeletes(t models.EntityType) []string {
	switch t {
	case models.EntityCustomer:
		return []string{
			`DELETE FROM customer_person_details WHERE customer_id=$1`,
			`DELETE FROM customer_business_details WHERE customer_id=$1`,
			`DELETE FROM customer_government_details WHERE customer_id=$1`,
		}
	case models.EntityProperty:
		return []string{
			`DELETE FROM property_land_details WHERE property_id=$1`,
			`DELETE FROM property_building_details WHERE property_id=$1`,
		}
	}
	return nil
}
