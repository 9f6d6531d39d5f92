package repositories

import (
	"context"
	"errors"
	"fmt"

	"land-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PropertyRepository struct {
	DB *pgxpool.Pool
}

func NewPropertyRepository(db *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{DB: db}
}

const propertySelect = `
	SELECT p.id, p.reference_id, p.property_type, p.owner_customer_id, p.assessed_value, p.status,
	       p.created_by, p.approved_by, p.rejection_feedback, p.submitted_by, p.submitted_at,
	       p.created_at, p.updated_at,
	       l.parcel_number, l.area_sqm, l.land_use, l.location,
	       b.building_name, b.plot_number, b.floors, b.floor_area_sqm, b.location
	FROM properties p
	LEFT JOIN property_land_details l ON l.property_id = p.id
	LEFT JOIN property_building_details b ON b.property_id = p.id`

func scanProperty(row rowScanner) (*models.Property, error) {
	p := &models.Property{}
	p.Type = models.EntityProperty

	var (
		lParcel, lUse, lLocation *string
		lArea                    decimal.NullDecimal
		bName, bPlot, bLocation  *string
		bFloors                  *int
		bArea                    decimal.NullDecimal
	)

	err := row.Scan(&p.ID, &p.ReferenceID, &p.PropertyType, &p.OwnerCustomerID, &p.AssessedValue, &p.Status,
		&p.CreatedBy, &p.ApprovedBy, &p.RejectionFeedback, &p.SubmittedBy, &p.SubmittedAt,
		&p.CreatedAt, &p.UpdatedAt,
		&lParcel, &lArea, &lUse, &lLocation,
		&bName, &bPlot, &bFloors, &bArea, &bLocation)
	if err != nil {
		return nil, err
	}

	switch p.PropertyType {
	case models.PropertyLand:
		if lParcel != nil {
			p.Detail = models.LandDetail{
				ParcelNumber: *lParcel, AreaSqm: lArea.Decimal,
				LandUse: deref(lUse), Location: deref(lLocation),
			}
		}
	case models.PropertyBuilding:
		if bPlot != nil {
			floors := 0
			if bFloors != nil {
				floors = *bFloors
			}
			p.Detail = models.BuildingDetail{
				BuildingName: deref(bName), PlotNumber: *bPlot, Floors: floors,
				FloorAreaSqm: bArea.Decimal, Location: deref(bLocation),
			}
		}
	}

	return p, nil
}

// Create inserts the property row and its detail row. Call inside a transaction.
func (r *PropertyRepository) Create(ctx context.Context, p *models.Property) error {
	err := conn(ctx, r.DB).QueryRow(ctx,
		`INSERT INTO properties (property_type, owner_customer_id, assessed_value, status, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, reference_id, created_at, updated_at`,
		p.PropertyType, p.OwnerCustomerID, p.AssessedValue, p.Status, p.CreatedBy,
	).Scan(&p.ID, &p.ReferenceID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	return r.insertDetail(ctx, p.ID, p.Detail)
}

func (r *PropertyRepository) insertDetail(ctx context.Context, id uuid.UUID, detail models.PropertyDetail) error {
	q := conn(ctx, r.DB)
	var err error
	switch d := detail.(type) {
	case models.LandDetail:
		_, err = q.Exec(ctx,
			`INSERT INTO property_land_details (property_id, parcel_number, area_sqm, land_use, location)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, d.ParcelNumber, d.AreaSqm, d.LandUse, d.Location)
	case models.BuildingDetail:
		_, err = q.Exec(ctx,
			`INSERT INTO property_building_details
			 (property_id, building_name, plot_number, floors, floor_area_sqm, location)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, d.BuildingName, d.PlotNumber, d.Floors, d.FloorAreaSqm, d.Location)
	default:
		return fmt.Errorf("unsupported property detail %T", detail)
	}
	if err != nil {
		return fmt.Errorf("failed to store property detail: %w", err)
	}
	return nil
}

func (r *PropertyRepository) Get(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	p, err := scanProperty(conn(ctx, r.DB).QueryRow(ctx, propertySelect+` WHERE p.id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// List returns properties newest first, optionally restricted to one status
func (r *PropertyRepository) List(ctx context.Context, status models.EntityStatus, limit, offset int) ([]*models.Property, error) {
	query := propertySelect
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" WHERE p.status=$%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY p.created_at DESC, p.id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return r.query(ctx, query, args...)
}

// ListSubmitted returns up to limit SUBMITTED properties, oldest submission first
func (r *PropertyRepository) ListSubmitted(ctx context.Context, limit int) ([]*models.Property, error) {
	return r.query(ctx,
		propertySelect+` WHERE p.status='SUBMITTED' ORDER BY p.submitted_at, p.id LIMIT $1`, limit)
}

func (r *PropertyRepository) query(ctx context.Context, query string, args ...any) ([]*models.Property, error) {
	rows, err := conn(ctx, r.DB).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

// UpdateDetail replaces the editable columns and detail of a DRAFT or
// REJECTED property. Returns ErrStaleStatus otherwise.
func (r *PropertyRepository) UpdateDetail(ctx context.Context, p *models.Property) error {
	q := conn(ctx, r.DB)
	err := q.QueryRow(ctx,
		`UPDATE properties SET property_type=$2, owner_customer_id=$3, assessed_value=$4, updated_at=NOW()
		 WHERE id=$1 AND status IN ('DRAFT', 'REJECTED')
		 RETURNING updated_at`,
		p.ID, p.PropertyType, p.OwnerCustomerID, p.AssessedValue,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return ErrStaleStatus
		}
		return fmt.Errorf("failed to update property: %w", err)
	}

	if _, err := q.Exec(ctx, `DELETE FROM property_land_details WHERE property_id=$1`, p.ID); err != nil {
		return fmt.Errorf("failed to clear property detail: %w", err)
	}
	if _, err := q.Exec(ctx, `DELETE FROM property_building_details WHERE property_id=$1`, p.ID); err != nil {
		return fmt.Errorf("failed to clear property detail: %w", err)
	}
	return r.insertDetail(ctx, p.ID, p.Detail)
}

// AddPhoto records an uploaded photo, but only while the property is still
// DRAFT or REJECTED. Otherwise it returns ErrStaleStatus.
func (r *PropertyRepository) AddPhoto(ctx context.Context, photo *models.PropertyPhoto) error {
	err := conn(ctx, r.DB).QueryRow(ctx,
		`INSERT INTO property_photos (property_id, storage_key, content_type, size_bytes, uploaded_by)
		 SELECT p.id, $2, $3, $4, $5 FROM properties p
		 WHERE p.id=$1 AND p.status IN ('DRAFT', 'REJECTED')
		 RETURNING id, created_at`,
		photo.PropertyID, photo.StorageKey, photo.ContentType, photo.SizeBytes, photo.UploadedBy,
	).Scan(&photo.ID, &photo.CreatedAt)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return ErrStaleStatus
		}
		return fmt.Errorf("failed to record property photo: %w", err)
	}
	return nil
}

// ListPhotos returns the photos of a property in upload order
func (r *PropertyRepository) ListPhotos(ctx context.Context, propertyID uuid.UUID) ([]*models.PropertyPhoto, error) {
	rows, err := conn(ctx, r.DB).Query(ctx,
		`SELECT id, property_id, storage_key, content_type, size_bytes, uploaded_by, created_at
		 FROM property_photos WHERE property_id=$1 ORDER BY created_at, id`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list property photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.PropertyPhoto
	for rows.Next() {
		var ph models.PropertyPhoto
		if err := rows.Scan(&ph.ID, &ph.PropertyID, &ph.StorageKey, &ph.ContentType,
			&ph.SizeBytes, &ph.UploadedBy, &ph.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, &ph)
	}
	return photos, rows.Err()
}
