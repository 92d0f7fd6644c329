package service

import (
	"context"
	"time"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
	"github.com/sandeepkv93/estate-admin-backend/internal/repository"
	"github.com/sandeepkv93/estate-admin-backend/internal/security"
)

// SessionStore keeps the single live refresh token of each user. Tokens are
// persisted as a keyed digest, so a lookup matches only the exact value.
type SessionStore struct {
	repo   repository.SessionRepository
	pepper string
}

func NewSessionStore(repo repository.SessionRepository, pepper string) *SessionStore {
	return &SessionStore{repo: repo, pepper: pepper}
}

func (s *SessionStore) Save(ctx context.Context, userID, refreshToken string, expiresAt time.Time) error {
	return s.repo.Upsert(ctx, userID, security.HashRefreshToken(refreshToken, s.pepper), expiresAt)
}

func (s *SessionStore) Find(ctx context.Context, refreshToken string) (*domain.Session, error) {
	return s.repo.FindByHash(ctx, security.HashRefreshToken(refreshToken, s.pepper))
}

func (s *SessionStore) Delete(ctx context.Context, refreshToken string) (bool, error) {
	return s.repo.DeleteByHash(ctx, security.HashRefreshToken(refreshToken, s.pepper))
}

func (s *SessionStore) DeleteForUser(ctx context.Context, userID string) error {
	return s.repo.DeleteByUserID(ctx, userID)
}

func (s *SessionStore) CleanupExpired(ctx context.Context) (int64, error) {
	return s.repo.CleanupExpired(ctx)
}
