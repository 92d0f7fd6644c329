package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
)

// PropertyFilter narrows property listings; zero values are ignored.
type PropertyFilter struct {
	AreaID       string
	PropertyType domain.PropertyType
	SaleType     domain.SaleType
	Rooms        string
	Baths        string
	MinPrice     *int64
	MaxPrice     *int64
}

type PropertyRepository interface {
	Create(ctx context.Context, property *domain.Property) error
	FindByID(ctx context.Context, id string) (*domain.Property, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, property *domain.Property) error
	Delete(ctx context.Context, id string) error
	DeleteByAreaID(ctx context.Context, areaID string) (int64, error)
	IDsByAreaID(ctx context.Context, areaID string) ([]string, error)
	ListPaged(ctx context.Context, filter PropertyFilter, req PageRequest) (PageResult[domain.Property], error)
}

type GormPropertyRepository struct{ db *gorm.DB }

func NewPropertyRepository(db *gorm.DB) PropertyRepository { return &GormPropertyRepository{db: db} }

func (r *GormPropertyRepository) Create(ctx context.Context, property *domain.Property) error {
	err := translate(r.db.WithContext(ctx).Omit("Medias").Create(property).Error, ErrPropertyNotFound)
	observe(ctx, "property", "create", err)
	return err
}

func (r *GormPropertyRepository) FindByID(ctx context.Context, id string) (*domain.Property, error) {
	var p domain.Property
	err := r.db.WithContext(ctx).
		Preload("Medias", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).
		First(&p).Error
	err = translate(err, ErrPropertyNotFound)
	observe(ctx, "property", "find_by_id", err)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormPropertyRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Property{}).Where("id = ?", id).Count(&n).Error
	observe(ctx, "property", "exists", err)
	return n > 0, err
}

func (r *GormPropertyRepository) Update(ctx context.Context, property *domain.Property) error {
	res := r.db.WithContext(ctx).Model(property).
		Select("title", "description", "property_type", "sale_type", "price", "rooms", "beds", "baths", "area_id", "updated_at").
		Updates(property)
	err := translate(res.Error, ErrPropertyNotFound)
	if err == nil && res.RowsAffected == 0 {
		err = ErrPropertyNotFound
	}
	observe(ctx, "property", "update", err)
	return err
}

func (r *GormPropertyRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Property{})
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = ErrPropertyNotFound
	}
	observe(ctx, "property", "delete", err)
	return err
}

func (r *GormPropertyRepository) DeleteByAreaID(ctx context.Context, areaID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("area_id = ?", areaID).Delete(&domain.Property{})
	observe(ctx, "property", "delete_by_area_id", res.Error)
	return res.RowsAffected, res.Error
}

func (r *GormPropertyRepository) IDsByAreaID(ctx context.Context, areaID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.Property{}).Where("area_id = ?", areaID).Pluck("id", &ids).Error
	observe(ctx, "property", "ids_by_area_id", err)
	return ids, err
}

func (r *GormPropertyRepository) ListPaged(ctx context.Context, filter PropertyFilter, req PageRequest) (PageResult[domain.Property], error) {
	q := applyPropertyFilter(r.db.WithContext(ctx).Model(&domain.Property{}), filter)
	result, err := findPage[domain.Property](q, req, withMedias, ordered("created_at DESC", "id ASC"))
	observe(ctx, "property", "list_paged", err)
	return result, err
}

func applyPropertyFilter(q *gorm.DB, f PropertyFilter) *gorm.DB {
	if f.AreaID != "" {
		q = q.Where("area_id = ?", f.AreaID)
	}
	if f.PropertyType != "" {
		q = q.Where("property_type = ?", f.PropertyType)
	}
	if f.SaleType != "" {
		q = q.Where("sale_type = ?", f.SaleType)
	}
	if f.Rooms != "" {
		q = q.Where("rooms = ?", f.Rooms)
	}
	if f.Baths != "" {
		q = q.Where("baths = ?", f.Baths)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	return q
}
