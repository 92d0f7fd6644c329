package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
	"github.com/sandeepkv93/estate-admin-backend/internal/http/middleware"
	"github.com/sandeepkv93/estate-admin-backend/internal/http/response"
	"github.com/sandeepkv93/estate-admin-backend/internal/observability"
	"github.com/sandeepkv93/estate-admin-backend/internal/security"
	"github.com/sandeepkv93/estate-admin-backend/internal/service"
)

type AuthHandler struct {
	auth   service.AuthServiceInterface
	cookie security.CookieOptions
	logger *slog.Logger
}

func NewAuthHandler(auth service.AuthServiceInterface, cookie security.CookieOptions, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{auth: auth, cookie: cookie, logger: logger}
}

type loginRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=1024"`
}

type authPayload struct {
	Message         string       `json:"message"`
	User            *domain.User `json:"user"`
	AccessToken     string       `json:"accessToken"`
	RefreshToken    string       `json:"refreshToken"`
	AccessExpiresAt time.Time    `json:"accessExpiresAt"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.auth.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		observability.Audit(r, "auth.login.failed", "name", req.Name, "reason", string(service.KindOf(err)))
		writeServiceError(w, r, h.logger, err)
		return
	}
	observability.Audit(r, "auth.login", "user_id", res.User.ID)
	security.SetRefreshCookie(w, res.RefreshToken, h.cookieFor(res))
	response.JSON(w, r, http.StatusOK, payloadOf("User logged in", res))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := security.GetCookie(r, security.RefreshTokenCookie)
	if token == "" {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "User unauthorized", nil)
		return
	}
	res, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		if service.KindOf(err) == service.KindUnauthorized {
			security.ClearRefreshCookie(w, h.cookie)
		}
		writeServiceError(w, r, h.logger, err)
		return
	}
	security.SetRefreshCookie(w, res.RefreshToken, h.cookieFor(res))
	response.JSON(w, r, http.StatusOK, payloadOf("Tokens refreshed", res))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	access, _ := middleware.AccessTokenFromContext(r.Context())
	err := h.auth.Logout(r.Context(), service.LogoutInput{
		RefreshToken: security.GetCookie(r, security.RefreshTokenCookie),
		AccessToken:  access,
		AccessClaims: claims,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if claims != nil {
		observability.Audit(r, "auth.logout", "user_id", claims.Subject)
	}
	security.ClearRefreshCookie(w, h.cookie)
	response.Message(w, r, http.StatusOK, "User logged out")
}

func (h *AuthHandler) cookieFor(res *service.LoginResult) security.CookieOptions {
	opts := h.cookie
	if ttl := time.Until(res.RefreshExpiresAt); ttl > 0 {
		opts.MaxAge = ttl
	}
	return opts
}

func payloadOf(msg string, res *service.LoginResult) authPayload {
	return authPayload{
		Message:         msg,
		User:            res.User,
		AccessToken:     res.AccessToken,
		RefreshToken:    res.RefreshToken,
		AccessExpiresAt: res.AccessExpiresAt,
	}
}
