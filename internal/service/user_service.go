package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
	"github.com/sandeepkv93/estate-admin-backend/internal/repository"
	"github.com/sandeepkv93/estate-admin-backend/internal/security"
)

const minPasswordLength = 8

type CreateUserInput struct {
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

type UpdateUserInput struct {
	Name     *string      `json:"name"`
	Password *string      `json:"password"`
	Role     *domain.Role `json:"role"`
}

type UserService struct {
	users  repository.UserRepository
	hasher *security.PasswordHasher
}

func NewUserService(users repository.UserRepository, hasher *security.PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Role == "" {
		in.Role = domain.RoleOrdinary
	}
	if err := validateUserFields(in.Name, in.Password, in.Role); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, internal("hash password", err)
	}
	user := &domain.User{Name: in.Name, PasswordHash: hash, Role: in.Role}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("User with this name already exists")
		}
		return nil, internal("create user", err)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("User not found")
		}
		return nil, internal("load user", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, page repository.PageRequest) (repository.PageResult[domain.User], error) {
	res, err := s.users.ListPaged(ctx, page)
	if err != nil {
		return res, internal("list users", err)
	}
	return res, nil
}

// Update applies the non-nil fields. Only a root caller may grant the root
// role or change a root account.
func (s *UserService) Update(ctx context.Context, actor security.Identity, id string, in UpdateUserInput) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mayManage(actor, user); err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, badRequest("Name must not be empty")
		}
		user.Name = name
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, badRequest("Unknown role")
		}
		if *in.Role == domain.RoleRoot && actor.Role != string(domain.RoleRoot) {
			return nil, forbidden("Only root may grant the root role")
		}
		user.Role = *in.Role
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, badRequest("Password must be at least 8 characters")
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, internal("hash password", err)
		}
		user.PasswordHash = hash
	}
	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, conflict("User with this name already exists")
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, notFound("User not found")
		default:
			return nil, internal("update user", err)
		}
	}
	return user, nil
}

// Delete soft-deletes the user; its session goes with it. Root accounts can
// only be deleted by root.
func (s *UserService) Delete(ctx context.Context, actor security.Identity, id string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := mayManage(actor, user); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound("User not found")
		}
		return internal("delete user", err)
	}
	return nil
}

// EnsureUser creates the named user unless one already exists. It reports
// whether a row was written.
func (s *UserService) EnsureUser(ctx context.Context, in CreateUserInput) (*domain.User, bool, error) {
	existing, err := s.users.FindByName(ctx, strings.TrimSpace(in.Name))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, internal("load user", err)
	}
	user, err := s.Create(ctx, in)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			existing, findErr := s.users.FindByName(ctx, strings.TrimSpace(in.Name))
			if findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	return user, true, nil
}

func validateUserFields(name, password string, role domain.Role) error {
	switch {
	case name == "":
		return badRequest("Name is required")
	case len(password) < minPasswordLength:
		return badRequest("Password must be at least 8 characters")
	case !role.Valid():
		return badRequest("Unknown role")
	}
	return nil
}

func mayManage(actor security.Identity, target *domain.User) error {
	if target.Role == domain.RoleRoot && actor.Role != string(domain.RoleRoot) {
		return forbidden("Only root may modify a root account")
	}
	return nil
}
