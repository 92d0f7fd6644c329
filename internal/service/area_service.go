package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
	"github.com/sandeepkv93/estate-admin-backend/internal/repository"
)

type AreaInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type AreaPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type AreaService struct {
	areas repository.AreaRepository
	media *MediaWorkflow
}

func NewAreaService(areas repository.AreaRepository, media *MediaWorkflow) *AreaService {
	return &AreaService{areas: areas, media: media}
}

func (s *AreaService) Create(ctx context.Context, in AreaInput) (*domain.Area, error) {
	area := &domain.Area{Title: strings.TrimSpace(in.Title), Description: strings.TrimSpace(in.Description)}
	if area.Title == "" || area.Description == "" {
		return nil, badRequest("Title and description are required")
	}
	if err := s.areas.Create(ctx, area); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("Area with this title already exists")
		}
		return nil, internal("create area", err)
	}
	return area, nil
}

func (s *AreaService) Get(ctx context.Context, id string) (*domain.Area, error) {
	area, err := s.areas.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAreaNotFound) {
			return nil, notFound("Area not found")
		}
		return nil, internal("load area", err)
	}
	s.media.AttachURLs(ctx, area.Medias)
	for i := range area.Properties {
		s.media.AttachURLs(ctx, area.Properties[i].Medias)
	}
	return area, nil
}

func (s *AreaService) List(ctx context.Context, page repository.PageRequest) (repository.PageResult[domain.Area], error) {
	res, err := s.areas.ListPaged(ctx, page)
	if err != nil {
		return res, internal("list areas", err)
	}
	for i := range res.Items {
		s.media.AttachURLs(ctx, res.Items[i].Medias)
	}
	return res, nil
}

func (s *AreaService) Update(ctx context.Context, id string, in AreaPatch) (*domain.Area, error) {
	area, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		if area.Title = strings.TrimSpace(*in.Title); area.Title == "" {
			return nil, badRequest("Title must not be empty")
		}
	}
	if in.Description != nil {
		if area.Description = strings.TrimSpace(*in.Description); area.Description == "" {
			return nil, badRequest("Description must not be empty")
		}
	}
	if err := s.areas.Update(ctx, area); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, conflict("Area with this title already exists")
		case errors.Is(err, repository.ErrAreaNotFound):
			return nil, notFound("Area not found")
		default:
			return nil, internal("update area", err)
		}
	}
	return area, nil
}

func (s *AreaService) Delete(ctx context.Context, id string) error {
	return s.media.DeleteArea(ctx, id)
}
