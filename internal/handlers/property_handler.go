package handlers

import (
	"net/http"

	"land-backend/internal/models"
	"land-backend/internal/services"
	"land-backend/pkg/utils"

	"github.com/sirupsen/logrus"
)

type PropertyHandler struct {
	Service *services.PropertyService
	Log     logrus.FieldLogger
}

func NewPropertyHandler(s *services.PropertyService, log logrus.FieldLogger) *PropertyHandler {
	return &PropertyHandler{Service: s, Log: log}
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req models.PropertyRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.Service.Create(r.Context(), &req, actor)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	utils.JSON(w, http.StatusCreated, p)
}

func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid property ID")
		return
	}
	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
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

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid property ID")
		return
	}
	var req models.PropertyRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.Service.Update(r.Context(), id, &req, actor)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

// UploadPhoto accepts a multipart form with a single "photo" file
func (h *PropertyHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid property ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxPhotoBytes+1<<20)
	if err := r.ParseMultipartForm(services.MaxPhotoBytes); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid or oversized upload")
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Missing photo file")
		return
	}
	defer file.Close()

	photo, err := h.Service.UploadPhoto(r.Context(), id, actor, header.Filename,
		header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	utils.JSON(w, http.StatusCreated, photo)
}

func (h *PropertyHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid property ID")
		return
	}
	photos, err := h.Service.ListPhotos(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	utils.JSON(w, http.StatusOK, photos)
}
