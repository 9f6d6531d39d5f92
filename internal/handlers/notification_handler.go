package handlers

import (
	"net/http"

	"land-backend/internal/models"
	"land-backend/internal/services"
	"land-backend/pkg/utils"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origins are already restricted by the CORS middleware
	CheckOrigin: func(r *http.Request) bool { return true },
}

type NotificationHandler struct {
	Service *services.NotificationService
	Hub     *services.NotificationHub
	Log     logrus.FieldLogger
}

func NewNotificationHandler(s *services.NotificationService, hub *services.NotificationHub, log logrus.FieldLogger) *NotificationHandler {
	return &NotificationHandler{Service: s, Hub: hub, Log: log}
}

// List returns the caller's notifications, newest first
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	filter, err := models.ParseNotificationFilter(r.URL.Query().Get("filter"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.Service.ListForUser(r.Context(), actor.UserID, filter, queryInt(r, "limit", 0))
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	utils.JSON(w, http.StatusOK, items)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	n, err := h.Service.UnreadCount(r.Context(), actor.UserID)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]int{"unread": n})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}
	if err := h.Service.MarkRead(r.Context(), id, actor.UserID); err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	n, err := h.Service.MarkAllRead(r.Context(), actor.UserID)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]int64{"updated": n})
}

// Stream upgrades to a websocket that receives new notifications live
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	h.Hub.Serve(actor.UserID, conn)
}
