package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
	"github.com/sandeepkv93/estate-admin-backend/internal/http/response"
	"github.com/sandeepkv93/estate-admin-backend/internal/observability"
	"github.com/sandeepkv93/estate-admin-backend/internal/repository"
	"github.com/sandeepkv93/estate-admin-backend/internal/service"
)

type PropertyHandler struct {
	properties service.PropertyServiceInterface
	media      service.MediaServiceInterface
	uploader   *ImageUploader
	logger     *slog.Logger
}

func NewPropertyHandler(properties service.PropertyServiceInterface, media service.MediaServiceInterface, uploader *ImageUploader, logger *slog.Logger) *PropertyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PropertyHandler{properties: properties, media: media, uploader: uploader, logger: logger}
}

type propertyRequest struct {
	Title        string              `json:"title" validate:"required,max=255"`
	Description  string              `json:"description" validate:"required"`
	PropertyType domain.PropertyType `json:"propertyType" validate:"required"`
	SaleType     domain.SaleType     `json:"saleType" validate:"required"`
	Price        int64               `json:"price" validate:"gte=0"`
	Rooms        string              `json:"rooms" validate:"required,max=32"`
	Beds         string              `json:"beds" validate:"required,max=32"`
	Baths        string              `json:"baths" validate:"required,max=32"`
}

type propertyPatchRequest struct {
	Title        *string              `json:"title" validate:"omitempty,min=1,max=255"`
	Description  *string              `json:"description" validate:"omitempty,min=1"`
	PropertyType *domain.PropertyType `json:"propertyType"`
	SaleType     *domain.SaleType     `json:"saleType"`
	Price        *int64               `json:"price" validate:"omitempty,gte=0"`
	Rooms        *string              `json:"rooms" validate:"omitempty,min=1,max=32"`
	Beds         *string              `json:"beds" validate:"omitempty,min=1,max=32"`
	Baths        *string              `json:"baths" validate:"omitempty,min=1,max=32"`
	AreaID       *string              `json:"areaId" validate:"omitempty,min=1"`
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	prop, err := h.properties.Create(r.Context(), pathParam(r, "areaId"), service.PropertyInput{
		Title:        req.Title,
		Description:  req.Description,
		PropertyType: req.PropertyType,
		SaleType:     req.SaleType,
		Price:        req.Price,
		Rooms:        req.Rooms,
		Beds:         req.Beds,
		Baths:        req.Baths,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, prop)
}

func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := propertyFilter(w, r)
	if !ok {
		return
	}
	page, err := h.properties.List(r.Context(), filter, pageRequest(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, page)
}

func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	prop, err := h.properties.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, prop)
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req propertyPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	prop, err := h.properties.Update(r.Context(), pathParam(r, "id"), service.PropertyPatch{
		Title:        req.Title,
		Description:  req.Description,
		PropertyType: req.PropertyType,
		SaleType:     req.SaleType,
		Price:        req.Price,
		Rooms:        req.Rooms,
		Beds:         req.Beds,
		Baths:        req.Baths,
		AreaID:       req.AreaID,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, prop)
}

func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if err := h.properties.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	observability.Audit(r, "property.deleted", "property_id", id)
	response.Message(w, r, http.StatusOK, "Property deleted")
}

func (h *PropertyHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	uploadImages(w, r, h.logger, h.uploader, h.media, domain.PropertyOwner(pathParam(r, "id")))
}

func (h *PropertyHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	deleteImage(w, r, h.logger, h.media, domain.PropertyOwner(pathParam(r, "propertyId")), pathParam(r, "imageId"))
}

// propertyFilter reads the list query. Enum and range checks happen in the
// service; only number syntax is checked here.
func propertyFilter(w http.ResponseWriter, r *http.Request) (repository.PropertyFilter, bool) {
	q := r.URL.Query()
	filter := repository.PropertyFilter{
		AreaID:       strings.TrimSpace(q.Get("area")),
		PropertyType: domain.PropertyType(strings.TrimSpace(q.Get("propertyType"))),
		SaleType:     domain.SaleType(strings.TrimSpace(q.Get("saleType"))),
		Rooms:        strings.TrimSpace(q.Get("rooms")),
		Baths:        strings.TrimSpace(q.Get("baths")),
	}
	for _, bound := range []struct {
		name string
		dst  **int64
	}{
		{"minPrice", &filter.MinPrice},
		{"maxPrice", &filter.MaxPrice},
	} {
		raw := strings.TrimSpace(q.Get(bound.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", bound.name+" must be an integer", nil)
			return repository.PropertyFilter{}, false
		}
		*bound.dst = &v
	}
	return filter, true
}
