package handlers

import (
	"net/http"

	"land-backend/internal/models"
	"land-backend/internal/services"
	"land-backend/pkg/utils"

	"github.com/sirupsen/logrus"
)

type ReviewQueueHandler struct {
	Service *services.ReviewQueueService
	Log     logrus.FieldLogger
}

func NewReviewQueueHandler(s *services.ReviewQueueService, log logrus.FieldLogger) *ReviewQueueHandler {
	return &ReviewQueueHandler{Service: s, Log: log}
}

// Queue returns ?view=all|customers|properties|overdue, oldest first
func (h *ReviewQueueHandler) Queue(w http.ResponseWriter, r *http.Request) {
	view, err := models.ParseQueueView(r.URL.Query().Get("view"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.Service.View(r.Context(), view, queryInt(r, "limit", 0))
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	utils.JSON(w, http.StatusOK, items)
}

func (h *ReviewQueueHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Service.Summary(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	utils.JSON(w, http.StatusOK, sum)
}
