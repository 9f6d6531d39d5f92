package handlers

import (
	"context"
	"net/http"

	"land-backend/internal/models"
	"land-backend/internal/services"
	"land-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CustomerReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

type PropertyReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Property, error)
}

// WorkflowHandler exposes the status transitions of customers and properties.
// Each method is bound to an entity type when the routes are registered.
type WorkflowHandler struct {
	Service    *services.WorkflowService
	Customers  CustomerReader
	Properties PropertyReader
	Log        logrus.FieldLogger
}

func NewWorkflowHandler(s *services.WorkflowService, customers CustomerReader, properties PropertyReader, log logrus.FieldLogger) *WorkflowHandler {
	return &WorkflowHandler{Service: s, Customers: customers, Properties: properties, Log: log}
}

type rejectRequest struct {
	Feedback string `json:"feedback"`
}

type transitionFunc func(ctx context.Context, key models.EntityKey, actor models.Actor) (*models.EntityHeader, error)

func (h *WorkflowHandler) Submit(t models.EntityType) http.HandlerFunc {
	return h.transition(t, h.Service.Submit)
}

func (h *WorkflowHandler) Approve(t models.EntityType) http.HandlerFunc {
	return h.transition(t, h.Service.Approve)
}

func (h *WorkflowHandler) Archive(t models.EntityType) http.HandlerFunc {
	return h.transition(t, h.Service.Archive)
}

func (h *WorkflowHandler) Unarchive(t models.EntityType) http.HandlerFunc {
	return h.transition(t, h.Service.Unarchive)
}

// Reject reads {"feedback": "..."}; a missing body counts as empty feedback
func (h *WorkflowHandler) Reject(t models.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rejectRequest
		if err := decodeJSON(r, &req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		h.transition(t, func(ctx context.Context, key models.EntityKey, actor models.Actor) (*models.EntityHeader, error) {
			return h.Service.Reject(ctx, key, actor, req.Feedback)
		})(w, r)
	}
}

func (h *WorkflowHandler) Delete(t models.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		key, ok := entityKey(w, r, t)
		if !ok {
			return
		}
		if err := h.Service.Delete(r.Context(), key, actor); err != nil {
			writeServiceError(w, h.Log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// History lists the activity log of one entity
func (h *WorkflowHandler) History(t models.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		key, ok := entityKey(w, r, t)
		if !ok {
			return
		}
		entries, err := h.Service.History(r.Context(), key, actor)
		if err != nil {
			writeServiceError(w, h.Log, err)
			return
		}
		if entries == nil {
			entries = []*models.ActivityLogEntry{}
		}
		utils.JSON(w, http.StatusOK, entries)
	}
}

func (h *WorkflowHandler) transition(t models.EntityType, fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		key, ok := entityKey(w, r, t)
		if !ok {
			return
		}
		next, err := fn(r.Context(), key, actor)
		if err != nil {
			writeServiceError(w, h.Log, err)
			return
		}
		utils.JSON(w, http.StatusOK, h.record(r.Context(), next))
	}
}

// record reloads the full customer or property after a committed transition.
// If that fails the header alone is returned; the transition already happened.
func (h *WorkflowHandler) record(ctx context.Context, next *models.EntityHeader) any {
	var (
		rec any
		err error
	)
	switch {
	case next.Type == models.EntityCustomer && h.Customers != nil:
		rec, err = h.Customers.Get(ctx, next.ID)
	case next.Type == models.EntityProperty && h.Properties != nil:
		rec, err = h.Properties.Get(ctx, next.ID)
	default:
		return next
	}
	if err != nil {
		h.Log.WithError(err).WithField("entity", next.Key().String()).Warn("failed to reload record after transition")
		return next
	}
	return rec
}

func entityKey(w http.ResponseWriter, r *http.Request, t models.EntityType) (models.EntityKey, bool) {
	id, ok := pathID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid "+string(t)+" ID")
		return models.EntityKey{}, false
	}
	return models.EntityKey{Type: t, ID: id}, true
}
