package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
	"github.com/sandeepkv93/estate-admin-backend/internal/repository"
)

type inMemoryUserRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{byID: map[string]*domain.User{}}
}

func (r *inMemoryUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) FindByName(_ context.Context, name string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Name == name {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *inMemoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Name == user.Name {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for id, u := range r.byID {
		if id != user.ID && u.Name == user.Name {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *inMemoryUserRepo) ListPaged(_ context.Context, req repository.PageRequest) (repository.PageResult[domain.User], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := repository.PageResult[domain.User]{Page: req.Page, PageSize: req.PageSize, Total: int64(len(r.byID))}
	for _, u := range r.byID {
		res.Items = append(res.Items, *u)
	}
	return res, nil
}

func (r *inMemoryUserRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

type inMemorySessionRepo struct {
	mu     sync.Mutex
	byUser map[string]domain.Session
}

func newInMemorySessionRepo() *inMemorySessionRepo {
	return &inMemorySessionRepo{byUser: map[string]domain.Session{}}
}

func (r *inMemorySessionRepo) Upsert(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[userID] = domain.Session{ID: userID, UserID: userID, RefreshTokenHash: tokenHash, ExpiresAt: expiresAt}
	return nil
}

func (r *inMemorySessionRepo) FindByHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byUser {
		if s.RefreshTokenHash == tokenHash {
			cp := s
			return &cp, nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

func (r *inMemorySessionRepo) FindByUserID(_ context.Context, userID string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byUser[userID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &s, nil
}

func (r *inMemorySessionRepo) DeleteByHash(_ context.Context, tokenHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.byUser {
		if s.RefreshTokenHash == tokenHash {
			delete(r.byUser, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *inMemorySessionRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userID)
	return nil
}

func (r *inMemorySessionRepo) CleanupExpired(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.byUser {
		if !s.ExpiresAt.After(time.Now()) {
			delete(r.byUser, id)
			n++
		}
	}
	return n, nil
}

func (r *inMemorySessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser)
}
