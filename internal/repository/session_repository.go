package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
)

type SessionRepository interface {
	Upsert(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	FindByHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	FindByUserID(ctx context.Context, userID string) (*domain.Session, error)
	DeleteByHash(ctx context.Context, tokenHash string) (bool, error)
	DeleteByUserID(ctx context.Context, userID string) error
	CleanupExpired(ctx context.Context) (int64, error)
}

type GormSessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &GormSessionRepository{db: db} }

// Upsert keeps exactly one row per user; a later write replaces the token.
func (r *GormSessionRepository) Upsert(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	s := domain.Session{UserID: userID, RefreshTokenHash: tokenHash, ExpiresAt: expiresAt}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"refresh_token_hash", "expires_at", "updated_at"}),
	}).Create(&s).Error
	err = translate(err, ErrSessionNotFound)
	observe(ctx, "session", "upsert", err)
	return err
}

func (r *GormSessionRepository) FindByHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var s domain.Session
	err := translate(r.db.WithContext(ctx).Where("refresh_token_hash = ?", tokenHash).First(&s).Error, ErrSessionNotFound)
	observe(ctx, "session", "find_by_hash", err)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormSessionRepository) FindByUserID(ctx context.Context, userID string) (*domain.Session, error) {
	var s domain.Session
	err := translate(r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error, ErrSessionNotFound)
	observe(ctx, "session", "find_by_user_id", err)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormSessionRepository) DeleteByHash(ctx context.Context, tokenHash string) (bool, error) {
	res := r.db.WithContext(ctx).Where("refresh_token_hash = ?", tokenHash).Delete(&domain.Session{})
	observe(ctx, "session", "delete_by_hash", res.Error)
	return res.RowsAffected > 0, res.Error
}

func (r *GormSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Session{}).Error
	observe(ctx, "session", "delete_by_user_id", err)
	return err
}

func (r *GormSessionRepository) CleanupExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", time.Now().UTC()).Delete(&domain.Session{})
	observe(ctx, "session", "cleanup_expired", res.Error)
	return res.RowsAffected, res.Error
}
