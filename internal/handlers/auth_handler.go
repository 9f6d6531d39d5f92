package handlers

import (
	"net/http"

	"land-backend/internal/middleware"
	"land-backend/internal/models"
	"land-backend/internal/services"
	"land-backend/pkg/utils"

	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	Service *services.UserService
	Log     logrus.FieldLogger
}

func NewAuthHandler(s *services.UserService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Service: s, Log: log}
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	authResp, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		h.Log.WithFields(logrus.Fields{"email": req.Email, "ip": r.RemoteAddr}).Warn("login failed")
		writeServiceError(w, h.Log, err)
		return
	}

	h.Log.WithField("user_id", authResp.User.ID).Info("login")
	utils.JSON(w, http.StatusOK, authResp)
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	utils.JSON(w, http.StatusOK, user)
}
