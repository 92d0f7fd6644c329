package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
	"github.com/sandeepkv93/estate-admin-backend/internal/repository"
)

type PropertyInput struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	PropertyType domain.PropertyType `json:"propertyType"`
	SaleType     domain.SaleType     `json:"saleType"`
	Price        int64               `json:"price"`
	Rooms        string              `json:"rooms"`
	Beds         string              `json:"beds"`
	Baths        string              `json:"baths"`
}

type PropertyPatch struct {
	Title        *string              `json:"title"`
	Description  *string              `json:"description"`
	PropertyType *domain.PropertyType `json:"propertyType"`
	SaleType     *domain.SaleType     `json:"saleType"`
	Price        *int64               `json:"price"`
	Rooms        *string              `json:"rooms"`
	Beds         *string              `json:"beds"`
	Baths        *string              `json:"baths"`
	AreaID       *string              `json:"areaId"`
}

type PropertyService struct {
	properties repository.PropertyRepository
	areas      repository.AreaRepository
	media      *MediaWorkflow
}

func NewPropertyService(properties repository.PropertyRepository, areas repository.AreaRepository, media *MediaWorkflow) *PropertyService {
	return &PropertyService{properties: properties, areas: areas, media: media}
}

func (s *PropertyService) Create(ctx context.Context, areaID string, in PropertyInput) (*domain.Property, error) {
	p := &domain.Property{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		PropertyType: in.PropertyType,
		SaleType:     in.SaleType,
		Price:        in.Price,
		Rooms:        strings.TrimSpace(in.Rooms),
		Beds:         strings.TrimSpace(in.Beds),
		Baths:        strings.TrimSpace(in.Baths),
		AreaID:       areaID,
	}
	if err := validateProperty(p); err != nil {
		return nil, err
	}
	if err := s.areaMustExist(ctx, areaID); err != nil {
		return nil, err
	}
	if err := s.properties.Create(ctx, p); err != nil {
		return nil, internal("create property", err)
	}
	return p, nil
}

func (s *PropertyService) Get(ctx context.Context, id string) (*domain.Property, error) {
	p, err := s.properties.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return nil, notFound("Property not found")
		}
		return nil, internal("load property", err)
	}
	s.media.AttachURLs(ctx, p.Medias)
	return p, nil
}

func (s *PropertyService) List(ctx context.Context, filter repository.PropertyFilter, page repository.PageRequest) (repository.PageResult[domain.Property], error) {
	if filter.PropertyType != "" && !filter.PropertyType.Valid() {
		return repository.PageResult[domain.Property]{}, badRequest("Unknown property type")
	}
	if filter.SaleType != "" && !filter.SaleType.Valid() {
		return repository.PageResult[domain.Property]{}, badRequest("Unknown sale type")
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return repository.PageResult[domain.Property]{}, badRequest("minPrice must not exceed maxPrice")
	}
	res, err := s.properties.ListPaged(ctx, filter, page)
	if err != nil {
		return res, internal("list properties", err)
	}
	for i := range res.Items {
		s.media.AttachURLs(ctx, res.Items[i].Medias)
	}
	return res, nil
}

func (s *PropertyService) Update(ctx context.Context, id string, in PropertyPatch) (*domain.Property, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyString(&p.Title, in.Title)
	applyString(&p.Description, in.Description)
	applyString(&p.Rooms, in.Rooms)
	applyString(&p.Beds, in.Beds)
	applyString(&p.Baths, in.Baths)
	if in.PropertyType != nil {
		p.PropertyType = *in.PropertyType
	}
	if in.SaleType != nil {
		p.SaleType = *in.SaleType
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.AreaID != nil && *in.AreaID != p.AreaID {
		if err := s.areaMustExist(ctx, *in.AreaID); err != nil {
			return nil, err
		}
		p.AreaID = *in.AreaID
	}
	if err := validateProperty(p); err != nil {
		return nil, err
	}
	if err := s.properties.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return nil, notFound("Property not found")
		}
		return nil, internal("update property", err)
	}
	return p, nil
}

func (s *PropertyService) Delete(ctx context.Context, id string) error {
	return s.media.DeleteProperty(ctx, id)
}

func (s *PropertyService) areaMustExist(ctx context.Context, areaID string) error {
	ok, err := s.areas.Exists(ctx, areaID)
	if err != nil {
		return internal("check area", err)
	}
	if !ok {
		return notFound("Area not found")
	}
	return nil
}

func validateProperty(p *domain.Property) error {
	switch {
	case p.Title == "" || p.Description == "":
		return badRequest("Title and description are required")
	case !p.PropertyType.Valid():
		return badRequest("Unknown property type")
	case !p.SaleType.Valid():
		return badRequest("Unknown sale type")
	case p.Price < 0:
		return badRequest("Price must not be negative")
	case p.Rooms == "" || p.Beds == "" || p.Baths == "":
		return badRequest("Rooms, beds and baths are required")
	}
	return nil
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
