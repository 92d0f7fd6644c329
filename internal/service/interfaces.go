package service

import (
	"context"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
	"github.com/sandeepkv93/estate-admin-backend/internal/repository"
	"github.com/sandeepkv93/estate-admin-backend/internal/security"
	"github.com/sandeepkv93/estate-admin-backend/internal/storage"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, name, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
	Logout(ctx context.Context, in LogoutInput) error
}

type UserServiceInterface interface {
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, page repository.PageRequest) (repository.PageResult[domain.User], error)
	Update(ctx context.Context, actor security.Identity, id string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor security.Identity, id string) error
}

type AreaServiceInterface interface {
	Create(ctx context.Context, in AreaInput) (*domain.Area, error)
	Get(ctx context.Context, id string) (*domain.Area, error)
	List(ctx context.Context, page repository.PageRequest) (repository.PageResult[domain.Area], error)
	Update(ctx context.Context, id string, in AreaPatch) (*domain.Area, error)
	Delete(ctx context.Context, id string) error
}

type PropertyServiceInterface interface {
	Create(ctx context.Context, areaID string, in PropertyInput) (*domain.Property, error)
	Get(ctx context.Context, id string) (*domain.Property, error)
	List(ctx context.Context, filter repository.PropertyFilter, page repository.PageRequest) (repository.PageResult[domain.Property], error)
	Update(ctx context.Context, id string, in PropertyPatch) (*domain.Property, error)
	Delete(ctx context.Context, id string) error
}

type MediaServiceInterface interface {
	Upload(ctx context.Context, owner domain.MediaOwner, files []storage.StagedFile) ([]domain.Media, error)
	DeleteImage(ctx context.Context, owner domain.MediaOwner, mediaID string) error
}

type MailServiceInterface interface {
	SendContact(ctx context.Context, in ContactInput) error
}

var (
	_ AuthServiceInterface     = (*AuthService)(nil)
	_ UserServiceInterface     = (*UserService)(nil)
	_ AreaServiceInterface     = (*AreaService)(nil)
	_ PropertyServiceInterface = (*PropertyService)(nil)
	_ MediaServiceInterface    = (*MediaWorkflow)(nil)
	_ MailServiceInterface     = (*MailService)(nil)
)
