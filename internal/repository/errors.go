package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sandeepkv93/estate-admin-backend/internal/observability"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")

	ErrUserNotFound     = fmt.Errorf("user: %w", ErrNotFound)
	ErrSessionNotFound  = fmt.Errorf("session: %w", ErrNotFound)
	ErrAreaNotFound     = fmt.Errorf("area: %w", ErrNotFound)
	ErrPropertyNotFound = fmt.Errorf("property: %w", ErrNotFound)
	ErrMediaNotFound    = fmt.Errorf("media: %w", ErrNotFound)
)

// translate maps driver level errors onto repository sentinels.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

func observe(ctx context.Context, entity, operation string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrDuplicate):
		outcome = "conflict"
	default:
		outcome = "error"
	}
	observability.RecordRepositoryOperation(ctx, entity, operation, outcome)
}
