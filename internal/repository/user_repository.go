package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByName(ctx context.Context, name string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.User], error)
	Count(ctx context.Context) (int64, error)
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := translate(r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error, ErrUserNotFound)
	observe(ctx, "user", "find_by_id", err)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) FindByName(ctx context.Context, name string) (*domain.User, error) {
	var u domain.User
	err := translate(r.db.WithContext(ctx).Where("name = ?", name).First(&u).Error, ErrUserNotFound)
	observe(ctx, "user", "find_by_name", err)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	err := translate(r.db.WithContext(ctx).Create(user).Error, ErrUserNotFound)
	observe(ctx, "user", "create", err)
	return err
}

func (r *GormUserRepository) Update(ctx context.Context, user *domain.User) error {
	res := r.db.WithContext(ctx).Model(user).Select("name", "password_hash", "role", "updated_at").Updates(user)
	err := translate(res.Error, ErrUserNotFound)
	if err == nil && res.RowsAffected == 0 {
		err = ErrUserNotFound
	}
	observe(ctx, "user", "update", err)
	return err
}

// Delete soft-deletes the user and drops its session in one transaction.
func (r *GormUserRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&domain.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return tx.Where("user_id = ?", id).Delete(&domain.Session{}).Error
	})
	err = translate(err, ErrUserNotFound)
	observe(ctx, "user", "delete", err)
	return err
}

func (r *GormUserRepository) ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.User], error) {
	result, err := findPage[domain.User](r.db.WithContext(ctx).Model(&domain.User{}), req, ordered("created_at ASC", "id ASC"))
	observe(ctx, "user", "list_paged", err)
	return result, err
}

func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	observe(ctx, "user", "count", err)
	return n, err
}
