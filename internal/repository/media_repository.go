package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
)

type MediaRepository interface {
	Create(ctx context.Context, media *domain.Media) error
	FindByID(ctx context.Context, id string) (*domain.Media, error)
	ListByOwner(ctx context.Context, owner domain.MediaOwner) ([]domain.Media, error)
	ListForArea(ctx context.Context, areaID string, propertyIDs []string) ([]domain.Media, error)
	Delete(ctx context.Context, id string) error
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

type GormMediaRepository struct{ db *gorm.DB }

func NewMediaRepository(db *gorm.DB) MediaRepository { return &GormMediaRepository{db: db} }

func (r *GormMediaRepository) Create(ctx context.Context, media *domain.Media) error {
	err := translate(r.db.WithContext(ctx).Create(media).Error, ErrMediaNotFound)
	observe(ctx, "media", "create", err)
	return err
}

func (r *GormMediaRepository) FindByID(ctx context.Context, id string) (*domain.Media, error) {
	var m domain.Media
	err := translate(r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error, ErrMediaNotFound)
	observe(ctx, "media", "find_by_id", err)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormMediaRepository) ListByOwner(ctx context.Context, owner domain.MediaOwner) ([]domain.Media, error) {
	var items []domain.Media
	err := r.db.WithContext(ctx).Where(owner.Column()+" = ?", owner.ID).Order("created_at ASC").Find(&items).Error
	observe(ctx, "media", "list_by_owner", err)
	return items, err
}

// ListForArea returns media owned by the area or by any of the given properties.
func (r *GormMediaRepository) ListForArea(ctx context.Context, areaID string, propertyIDs []string) ([]domain.Media, error) {
	var items []domain.Media
	q := r.db.WithContext(ctx).Where("area_id = ?", areaID)
	if len(propertyIDs) > 0 {
		q = q.Or("property_id IN ?", propertyIDs)
	}
	err := q.Order("created_at ASC").Find(&items).Error
	observe(ctx, "media", "list_for_area", err)
	return items, err
}

func (r *GormMediaRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Media{})
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = ErrMediaNotFound
	}
	observe(ctx, "media", "delete", err)
	return err
}

func (r *GormMediaRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Media{})
	observe(ctx, "media", "delete_by_ids", res.Error)
	return res.RowsAffected, res.Error
}
