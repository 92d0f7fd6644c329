package service

import (
	"context"
	"log/slog"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
)

// EnsureAdmin makes sure the bootstrap admin account exists. Running it again
// leaves an existing account untouched.
func EnsureAdmin(ctx context.Context, users *UserService, name, password string, logger *slog.Logger) error {
	user, created, err := users.EnsureUser(ctx, CreateUserInput{Name: name, Password: password, Role: domain.RoleAdmin})
	if err != nil {
		return err
	}
	if created {
		logger.InfoContext(ctx, "bootstrap admin created", "user_id", user.ID, "name", user.Name)
	} else {
		logger.DebugContext(ctx, "bootstrap admin present", "user_id", user.ID)
	}
	return nil
}
