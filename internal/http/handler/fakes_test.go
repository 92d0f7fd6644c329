package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
	"github.com/sandeepkv93/estate-admin-backend/internal/repository"
	"github.com/sandeepkv93/estate-admin-backend/internal/security"
	"github.com/sandeepkv93/estate-admin-backend/internal/service"
	"github.com/sandeepkv93/estate-admin-backend/internal/storage"
)

type fakeAuth struct {
	loginRes   *service.LoginResult
	loginErr   error
	refreshRes *service.LoginResult
	refreshErr error
	logoutErr  error
	lastLogout service.LogoutInput
	lastToken  string
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (*service.LoginResult, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeAuth) Refresh(_ context.Context, token string) (*service.LoginResult, error) {
	f.lastToken = token
	return f.refreshRes, f.refreshErr
}

func (f *fakeAuth) Logout(_ context.Context, in service.LogoutInput) error {
	f.lastLogout = in
	return f.logoutErr
}

type fakeUsers struct {
	user      *domain.User
	err       error
	lastActor security.Identity
	lastID    string
}

func (f *fakeUsers) Create(_ context.Context, in service.CreateUserInput) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u := &domain.User{Name: in.Name, Role: in.Role}
	u.ID = "u-new"
	return u, nil
}

func (f *fakeUsers) Get(_ context.Context, id string) (*domain.User, error) {
	f.lastID = id
	return f.user, f.err
}

func (f *fakeUsers) List(_ context.Context, page repository.PageRequest) (repository.PageResult[domain.User], error) {
	return repository.PageResult[domain.User]{Page: page.Page, PageSize: page.PageSize}, f.err
}

func (f *fakeUsers) Update(_ context.Context, actor security.Identity, id string, _ service.UpdateUserInput) (*domain.User, error) {
	f.lastActor = actor
	f.lastID = id
	return f.user, f.err
}

func (f *fakeUsers) Delete(_ context.Context, actor security.Identity, id string) error {
	f.lastActor = actor
	f.lastID = id
	return f.err
}

type fakeProperties struct {
	lastFilter repository.PropertyFilter
	lastPage   repository.PageRequest
	lastAreaID string
	err        error
}

func (f *fakeProperties) Create(_ context.Context, areaID string, in service.PropertyInput) (*domain.Property, error) {
	f.lastAreaID = areaID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Property{Title: in.Title, AreaID: areaID}, nil
}

func (f *fakeProperties) Get(context.Context, string) (*domain.Property, error) {
	return &domain.Property{}, f.err
}

func (f *fakeProperties) List(_ context.Context, filter repository.PropertyFilter, page repository.PageRequest) (repository.PageResult[domain.Property], error) {
	f.lastFilter = filter
	f.lastPage = page
	return repository.PageResult[domain.Property]{}, f.err
}

func (f *fakeProperties) Update(context.Context, string, service.PropertyPatch) (*domain.Property, error) {
	return &domain.Property{}, f.err
}

func (f *fakeProperties) Delete(context.Context, string) error { return f.err }

type fakeMedia struct {
	owner    domain.MediaOwner
	received []storage.StagedFile
	err      error
}

func (f *fakeMedia) Upload(_ context.Context, owner domain.MediaOwner, files []storage.StagedFile) ([]domain.Media, error) {
	f.owner = owner
	f.received = files
	_ = storage.RemoveStaged(files)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Media, len(files))
	for i, file := range files {
		out[i] = domain.Media{FileName: file.FileName, MimeType: file.MimeType, Size: file.Size}
	}
	return out, nil
}

func (f *fakeMedia) DeleteImage(_ context.Context, owner domain.MediaOwner, _ string) error {
	f.owner = owner
	return f.err
}

type fakeMail struct {
	last service.ContactInput
	err  error
}

func (f *fakeMail) SendContact(_ context.Context, in service.ContactInput) error {
	f.last = in
	return f.err
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
