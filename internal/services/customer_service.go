package services

import (
	"context"
	"errors"

	"land-backend/internal/models"
	"land-backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// CustomerService creates and edits customer records. Status changes go
// through WorkflowService.
type CustomerService struct {
	Repo     CustomerStore
	Activity ActivityLogger
	Tx       Transactor
	Log      logrus.FieldLogger
}

func NewCustomerService(repo CustomerStore, activity ActivityLogger, tx Transactor, log logrus.FieldLogger) *CustomerService {
	return &CustomerService{Repo: repo, Activity: activity, Tx: tx, Log: log}
}

// Create stores a new DRAFT customer owned by actor
func (s *CustomerService) Create(ctx context.Context, req *models.CustomerRequest, actor models.Actor) (*models.Customer, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	detail, err := req.Detail()
	if err != nil {
		return nil, validationError("%v", err)
	}
	if err := canAuthor(actor); err != nil {
		return nil, err
	}

	c, err := models.NewCustomer(req.CustomerType, detail)
	if err != nil {
		return nil, validationError("%v", err)
	}
	c.CreatedBy = actor.UserID

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Repo.Create(ctx, c); err != nil {
			return err
		}
		return s.Activity.Append(ctx, &models.ActivityLogEntry{
			EntityType:  models.EntityCustomer,
			EntityID:    c.ID,
			Action:      models.ActionCreated,
			ToStatus:    c.Status,
			PerformedBy: actor.UserID,
			Metadata:    map[string]any{"customer_type": string(c.CustomerType)},
		})
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{"entity_type": models.EntityCustomer, "entity_id": c.ID, "reference_id": c.ReferenceID}).
		Info("customer created")
	return c, nil
}

func (s *CustomerService) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	c, err := s.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFoundError("customer %s not found", id)
		}
		return nil, err
	}
	return c, nil
}

func (s *CustomerService) List(ctx context.Context, status models.EntityStatus, limit, offset int) ([]*models.Customer, error) {
	limit, offset = pageBounds(limit, offset)
	items, err := s.Repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Customer{}
	}
	return items, nil
}

// Update replaces the detail of a DRAFT or REJECTED customer
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req *models.CustomerRequest, actor models.Actor) (*models.Customer, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	detail, err := req.Detail()
	if err != nil {
		return nil, validationError("%v", err)
	}
	if err := canEdit(&c.EntityHeader, actor); err != nil {
		return nil, err
	}
	if !c.IsEditable() {
		return nil, invalidState("customer in status %s cannot be edited", c.Status)
	}

	c.CustomerType = req.CustomerType
	c.Detail = detail

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Repo.UpdateDetail(ctx, c); err != nil {
			return mapStoreError(err)
		}
		return s.Activity.Append(ctx, &models.ActivityLogEntry{
			EntityType:  models.EntityCustomer,
			EntityID:    c.ID,
			Action:      models.ActionUpdated,
			FromStatus:  c.Status,
			ToStatus:    c.Status,
			PerformedBy: actor.UserID,
		})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// canAuthor allows inputters and administrators to create records
func canAuthor(actor models.Actor) error {
	if !actor.IsActive {
		return permissionDenied("account is inactive")
	}
	if actor.Role != models.RoleInputter && actor.Role != models.RoleAdministrator {
		return permissionDenied("role %s may not create records", actor.Role)
	}
	return nil
}

// canEdit allows the creator or an administrator to change record content
func canEdit(h *models.EntityHeader, actor models.Actor) error {
	if !actor.IsActive {
		return permissionDenied("account is inactive")
	}
	if actor.Role == models.RoleAdministrator {
		return nil
	}
	if actor.Role == models.RoleInputter && h.CreatedBy == actor.UserID {
		return nil
	}
	return permissionDenied("only the creator or an administrator may edit this record")
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
