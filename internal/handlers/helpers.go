package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"land-backend/internal/middleware"
	"land-backend/internal/models"
	"land-backend/internal/services"
	"land-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// writeServiceError maps service errors onto HTTP statuses. Unclassified
// errors are logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	var we *services.WorkflowError
	if errors.As(err, &we) {
		utils.ErrorWithKind(w, statusForKind(we.Kind), string(we.Kind), we.Message)
		return
	}
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Error(w, http.StatusUnauthorized, err.Error())
		return
	case errors.Is(err, services.ErrStorageDisabled):
		utils.Error(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	log.WithError(err).Error("request failed")
	utils.Error(w, http.StatusInternalServerError, "Internal server error")
}

func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindInvalidState, services.KindConflict:
		return http.StatusConflict
	case services.KindPermissionDenied:
		return http.StatusForbidden
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a JSON body. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	return id, err == nil
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// requireActor returns the authenticated actor or writes a 401
func requireActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authentication required")
	}
	return actor, ok
}

func parseStatus(s string) (models.EntityStatus, bool) {
	switch st := models.EntityStatus(s); st {
	case "", models.StatusDraft, models.StatusSubmitted, models.StatusApproved,
		models.StatusRejected, models.StatusArchived:
		return st, true
	}
	return "", false
}
