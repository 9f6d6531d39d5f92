package handlers

import (
	"net/http"

	"land-backend/internal/models"
	"land-backend/internal/services"
	"land-backend/pkg/utils"

	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	Service *services.UserService
	Log     logrus.FieldLogger
}

func NewUserHandler(s *services.UserService, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{Service: s, Log: log}
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req models.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.Service.CreateUser(r.Context(), &req, actor)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	utils.JSON(w, http.StatusCreated, user)
}

// ListUsers returns all users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	users, err := h.Service.ListUsers(r.Context(), actor)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	utils.JSON(w, http.StatusOK, users)
}

// ToggleActive suspends or reactivates a user
func (h *UserHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.Service.ToggleActive(r.Context(), id, actor)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	utils.JSON(w, http.StatusOK, user)
}
