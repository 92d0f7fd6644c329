package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
)

type AreaRepository interface {
	Create(ctx context.Context, area *domain.Area) error
	FindByID(ctx context.Context, id string) (*domain.Area, error)
	FindByTitle(ctx context.Context, title string) (*domain.Area, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, area *domain.Area) error
	Delete(ctx context.Context, id string) error
	ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.Area], error)
}

type GormAreaRepository struct{ db *gorm.DB }

func NewAreaRepository(db *gorm.DB) AreaRepository { return &GormAreaRepository{db: db} }

func (r *GormAreaRepository) Create(ctx context.Context, area *domain.Area) error {
	err := translate(r.db.WithContext(ctx).Omit("Properties", "Medias").Create(area).Error, ErrAreaNotFound)
	observe(ctx, "area", "create", err)
	return err
}

// FindByID loads the area with its live properties and its own media.
func (r *GormAreaRepository) FindByID(ctx context.Context, id string) (*domain.Area, error) {
	var a domain.Area
	err := r.db.WithContext(ctx).
		Preload("Medias", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Properties", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Properties.Medias").
		Where("id = ?", id).
		First(&a).Error
	err = translate(err, ErrAreaNotFound)
	observe(ctx, "area", "find_by_id", err)
	if err != nil {
		return nil, err
	}
	a.PropertiesCount = int64(len(a.Properties))
	return &a, nil
}

func (r *GormAreaRepository) FindByTitle(ctx context.Context, title string) (*domain.Area, error) {
	var a domain.Area
	err := translate(r.db.WithContext(ctx).Where("title = ?", title).First(&a).Error, ErrAreaNotFound)
	observe(ctx, "area", "find_by_title", err)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormAreaRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Area{}).Where("id = ?", id).Count(&n).Error
	observe(ctx, "area", "exists", err)
	return n > 0, err
}

func (r *GormAreaRepository) Update(ctx context.Context, area *domain.Area) error {
	res := r.db.WithContext(ctx).Model(area).Select("title", "description", "updated_at").Updates(area)
	err := translate(res.Error, ErrAreaNotFound)
	if err == nil && res.RowsAffected == 0 {
		err = ErrAreaNotFound
	}
	observe(ctx, "area", "update", err)
	return err
}

func (r *GormAreaRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Area{})
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = ErrAreaNotFound
	}
	observe(ctx, "area", "delete", err)
	return err
}

// ListPaged returns areas newest first with their media and a live property count.
func (r *GormAreaRepository) ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.Area], error) {
	result, err := findPage[domain.Area](r.db.WithContext(ctx).Model(&domain.Area{}), req, withMedias, ordered("created_at DESC", "id ASC"))
	if err == nil {
		err = r.fillPropertyCounts(ctx, result.Items)
	}
	observe(ctx, "area", "list_paged", err)
	if err != nil {
		return PageResult[domain.Area]{}, err
	}
	return result, nil
}

func (r *GormAreaRepository) fillPropertyCounts(ctx context.Context, areas []domain.Area) error {
	if len(areas) == 0 {
		return nil
	}
	ids := make([]string, 0, len(areas))
	for _, a := range areas {
		ids = append(ids, a.ID)
	}
	var rows []struct {
		AreaID string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Property{}).
		Select("area_id, COUNT(*) AS count").
		Where("area_id IN ?", ids).
		Group("area_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.AreaID] = row.Count
	}
	for i := range areas {
		areas[i].PropertiesCount = counts[areas[i].ID]
	}
	return nil
}
