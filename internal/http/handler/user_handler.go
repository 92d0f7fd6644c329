package handler

import (
	"log/slog"
	"net/http"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
	"github.com/sandeepkv93/estate-admin-backend/internal/http/response"
	"github.com/sandeepkv93/estate-admin-backend/internal/observability"
	"github.com/sandeepkv93/estate-admin-backend/internal/service"
)

type UserHandler struct {
	users  service.UserServiceInterface
	logger *slog.Logger
}

func NewUserHandler(users service.UserServiceInterface, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{users: users, logger: logger}
}

type createUserRequest struct {
	Name     string      `json:"name" validate:"required,max=255"`
	Password string      `json:"password" validate:"required,min=8,max=1024"`
	Role     domain.Role `json:"role" validate:"omitempty,oneof=ordinary admin root"`
}

type updateUserRequest struct {
	Name     *string      `json:"name" validate:"omitempty,min=1,max=255"`
	Password *string      `json:"password" validate:"omitempty,min=8,max=1024"`
	Role     *domain.Role `json:"role" validate:"omitempty,oneof=ordinary admin root"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "User unauthorized", nil)
		return
	}
	user, err := h.users.Get(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.users.Create(r.Context(), service.CreateUserInput{Name: req.Name, Password: req.Password, Role: req.Role})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	observability.Audit(r, "user.created", "user_id", user.ID, "role", string(user.Role))
	response.JSON(w, r, http.StatusCreated, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.users.List(r.Context(), pageRequest(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, page)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentIdentity(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "User unauthorized", nil)
		return
	}
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := pathParam(r, "id")
	user, err := h.users.Update(r.Context(), actor, id, service.UpdateUserInput{Name: req.Name, Password: req.Password, Role: req.Role})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	observability.Audit(r, "user.updated", "user_id", id, "actor_id", actor.UserID)
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentIdentity(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "User unauthorized", nil)
		return
	}
	id := pathParam(r, "id")
	if err := h.users.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	observability.Audit(r, "user.deleted", "user_id", id, "actor_id", actor.UserID)
	response.Message(w, r, http.StatusOK, "User deleted")
}
