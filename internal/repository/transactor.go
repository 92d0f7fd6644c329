package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles repositories bound to one connection or transaction.
type Repositories struct {
	Users      UserRepository
	Sessions   SessionRepository
	Areas      AreaRepository
	Properties PropertyRepository
	Media      MediaRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:      NewUserRepository(db),
		Sessions:   NewSessionRepository(db),
		Areas:      NewAreaRepository(db),
		Properties: NewPropertyRepository(db),
		Media:      NewMediaRepository(db),
	}
}

// Transactor runs fn inside a database transaction. Returning an error from fn
// rolls the transaction back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error
}

type GormTransactor struct{ db *gorm.DB }

func NewTransactor(db *gorm.DB) Transactor { return &GormTransactor{db: db} }

func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
