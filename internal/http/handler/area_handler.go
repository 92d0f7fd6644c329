package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
	"github.com/sandeepkv93/estate-admin-backend/internal/http/response"
	"github.com/sandeepkv93/estate-admin-backend/internal/observability"
	"github.com/sandeepkv93/estate-admin-backend/internal/service"
)

type AreaHandler struct {
	areas    service.AreaServiceInterface
	media    service.MediaServiceInterface
	uploader *ImageUploader
	logger   *slog.Logger
}

func NewAreaHandler(areas service.AreaServiceInterface, media service.MediaServiceInterface, uploader *ImageUploader, logger *slog.Logger) *AreaHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AreaHandler{areas: areas, media: media, uploader: uploader, logger: logger}
}

type areaRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
}

type areaPatchRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,min=1"`
}

func (h *AreaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req areaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	area, err := h.areas.Create(r.Context(), service.AreaInput{Title: req.Title, Description: req.Description})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, area)
}

func (h *AreaHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.areas.List(r.Context(), pageRequest(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, page)
}

func (h *AreaHandler) Get(w http.ResponseWriter, r *http.Request) {
	area, err := h.areas.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, area)
}

func (h *AreaHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req areaPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	area, err := h.areas.Update(r.Context(), pathParam(r, "id"), service.AreaPatch{Title: req.Title, Description: req.Description})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, area)
}

func (h *AreaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if err := h.areas.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	observability.Audit(r, "area.deleted", "area_id", id)
	response.Message(w, r, http.StatusOK, "Area deleted")
}

func (h *AreaHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	uploadImages(w, r, h.logger, h.uploader, h.media, domain.AreaOwner(pathParam(r, "id")))
}

func (h *AreaHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	deleteImage(w, r, h.logger, h.media, domain.AreaOwner(pathParam(r, "areaId")), pathParam(r, "imageId"))
}

func uploadImages(w http.ResponseWriter, r *http.Request, logger *slog.Logger, uploader *ImageUploader, media service.MediaServiceInterface, owner domain.MediaOwner) {
	files, err := uploader.Receive(r)
	if err != nil {
		var uerr *uploadError
		if errors.As(err, &uerr) {
			response.Error(w, r, uerr.status, uerr.code, uerr.message, nil)
			return
		}
		writeServiceError(w, r, logger, err)
		return
	}
	items, err := media.Upload(r.Context(), owner, files)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	observability.Audit(r, "media.uploaded", "owner", owner.String(), "files", len(items))
	response.JSON(w, r, http.StatusCreated, items)
}

func deleteImage(w http.ResponseWriter, r *http.Request, logger *slog.Logger, media service.MediaServiceInterface, owner domain.MediaOwner, mediaID string) {
	if err := media.DeleteImage(r.Context(), owner, mediaID); err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	observability.Audit(r, "media.deleted", "owner", owner.String(), "media_id", mediaID)
	response.Message(w, r, http.StatusOK, "Image deleted")
}
