package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"land-backend/internal/models"
	"land-backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MaxPhotoBytes caps a single photo upload
const MaxPhotoBytes = 10 << 20

// ErrStorageDisabled is returned by photo uploads when no bucket is configured
var ErrStorageDisabled = errors.New("photo storage is not configured")

// PropertyService creates and edits property records and their photos
type PropertyService struct {
	Repo      PropertyStore
	Customers CustomerStore
	Activity  ActivityLogger
	Tx        Transactor
	Photos    PhotoStore // nil when object storage is not configured
	Log       logrus.FieldLogger
}

func NewPropertyService(repo PropertyStore, customers CustomerStore, activity ActivityLogger, tx Transactor, photos PhotoStore, log logrus.FieldLogger) *PropertyService {
	return &PropertyService{Repo: repo, Customers: customers, Activity: activity, Tx: tx, Photos: photos, Log: log}
}

func (s *PropertyService) Create(ctx context.Context, req *models.PropertyRequest, actor models.Actor) (*models.Property, error) {
	detail, err := s.checkRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := canAuthor(actor); err != nil {
		return nil, err
	}

	p, err := models.NewProperty(req.PropertyType, detail)
	if err != nil {
		return nil, validationError("%v", err)
	}
	p.OwnerCustomerID = req.OwnerCustomerID
	p.AssessedValue = req.AssessedValue
	p.CreatedBy = actor.UserID

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Repo.Create(ctx, p); err != nil {
			return err
		}
		return s.Activity.Append(ctx, &models.ActivityLogEntry{
			EntityType:  models.EntityProperty,
			EntityID:    p.ID,
			Action:      models.ActionCreated,
			ToStatus:    p.Status,
			PerformedBy: actor.UserID,
			Metadata:    map[string]any{"property_type": string(p.PropertyType)},
		})
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{"entity_type": models.EntityProperty, "entity_id": p.ID, "reference_id": p.ReferenceID}).
		Info("property created")
	return p, nil
}

// checkRequest validates the DTO, the detail variant and the owner reference
func (s *PropertyService) checkRequest(ctx context.Context, req *models.PropertyRequest) (models.PropertyDetail, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	detail, err := req.Detail()
	if err != nil {
		return nil, validationError("%v", err)
	}
	if req.AssessedValue.IsNegative() {
		return nil, validationError("assessed_value must not be negative")
	}
	if req.OwnerCustomerID != nil {
		if _, err := s.Customers.Get(ctx, *req.OwnerCustomerID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, validationError("owner customer %s does not exist", *req.OwnerCustomerID)
			}
			return nil, err
		}
	}
	return detail, nil
}

func (s *PropertyService) Get(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	p, err := s.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFoundError("property %s not found", id)
		}
		return nil, err
	}
	return p, nil
}

func (s *PropertyService) List(ctx context.Context, status models.EntityStatus, limit, offset int) ([]*models.Property, error) {
	limit, offset = pageBounds(limit, offset)
	items, err := s.Repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Property{}
	}
	return items, nil
}

// Update replaces the content of a DRAFT or REJECTED property
func (s *PropertyService) Update(ctx context.Context, id uuid.UUID, req *models.PropertyRequest, actor models.Actor) (*models.Property, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	detail, err := s.checkRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := canEdit(&p.EntityHeader, actor); err != nil {
		return nil, err
	}
	if !p.IsEditable() {
		return nil, invalidState("property in status %s cannot be edited", p.Status)
	}

	p.PropertyType = req.PropertyType
	p.OwnerCustomerID = req.OwnerCustomerID
	p.AssessedValue = req.AssessedValue
	p.Detail = detail

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Repo.UpdateDetail(ctx, p); err != nil {
			return mapStoreError(err)
		}
		return s.Activity.Append(ctx, &models.ActivityLogEntry{
			EntityType:  models.EntityProperty,
			EntityID:    p.ID,
			Action:      models.ActionUpdated,
			FromStatus:  p.Status,
			ToStatus:    p.Status,
			PerformedBy: actor.UserID,
		})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UploadPhoto stores a photo blob and records it against an editable property
func (s *PropertyService) UploadPhoto(ctx context.Context, id uuid.UUID, actor models.Actor, filename, contentType string, body io.Reader, size int64) (*models.PropertyPhoto, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, validationError("photo must be an image, got %q", contentType)
	}
	if size <= 0 || size > MaxPhotoBytes {
		return nil, validationError("photo must be between 1 byte and %d bytes", MaxPhotoBytes)
	}
	if err := canEdit(&p.EntityHeader, actor); err != nil {
		return nil, err
	}
	if !p.IsEditable() {
		return nil, invalidState("photos cannot be added to a property in status %s", p.Status)
	}
	if s.Photos == nil {
		return nil, ErrStorageDisabled
	}

	key := s.Photos.NewKey(p.ID, filename)
	if err := s.Photos.Put(ctx, key, contentType, body, size); err != nil {
		return nil, err
	}

	photo := &models.PropertyPhoto{
		PropertyID:  p.ID,
		StorageKey:  key,
		ContentType: contentType,
		SizeBytes:   size,
		UploadedBy:  actor.UserID,
	}
	if err := s.Repo.AddPhoto(ctx, photo); err != nil {
		// drop the orphaned blob
		if derr := s.Photos.Delete(ctx, []string{key}); derr != nil {
			s.Log.WithError(derr).WithField("key", key).Warn("failed to remove orphaned photo")
		}
		if errors.Is(err, repositories.ErrStaleStatus) {
			return nil, conflictError()
		}
		return nil, fmt.Errorf("failed to record photo: %w", err)
	}
	photo.URL = s.Photos.URL(key)
	return photo, nil
}

func (s *PropertyService) ListPhotos(ctx context.Context, id uuid.UUID) ([]*models.PropertyPhoto, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	photos, err := s.Repo.ListPhotos(ctx, id)
	if err != nil {
		return nil, err
	}
	if photos == nil {
		photos = []*models.PropertyPhoto{}
	}
	if s.Photos != nil {
		for _, ph := range photos {
			ph.URL = s.Photos.URL(ph.StorageKey)
		}
	}
	return photos, nil
}
