package handlers

import (
	"net/http"

	"land-backend/internal/models"
	"land-backend/internal/services"
	"land-backend/pkg/utils"

	"github.com/sirupsen/logrus"
)

type CustomerHandler struct {
	Service *services.CustomerService
	Log     logrus.FieldLogger
}

func NewCustomerHandler(s *services.CustomerService, log logrus.FieldLogger) *CustomerHandler {
	return &CustomerHandler{Service: s, Log: log}
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req models.CustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.Service.Create(r.Context(), &req, actor)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	utils.JSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}
	c, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	utils.JSON(w, http.StatusOK, c)
}

// List supports ?status=&limit=&offset=
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	status, ok := parseStatus(r.URL.Query().Get("status"))
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid status filter")
		return
	}
	items, err := h.Service.List(r.Context(), status, queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	utils.JSON(w, http.StatusOK, items)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}
	var req models.CustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.Service.Update(r.Context(), id, &req, actor)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	utils.JSON(w, http.StatusOK, c)
}
