package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
	"github.com/sandeepkv93/estate-admin-backend/internal/observability"
	"github.com/sandeepkv93/estate-admin-backend/internal/repository"
	"github.com/sandeepkv93/estate-admin-backend/internal/security"
)

type LoginResult struct {
	User             *domain.User `json:"user"`
	AccessToken      string       `json:"accessToken"`
	RefreshToken     string       `json:"refreshToken"`
	AccessExpiresAt  time.Time    `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time    `json:"-"`
}

type LogoutInput struct {
	RefreshToken string
	AccessToken  string
	AccessClaims *security.Claims
}

type AuthService struct {
	users    repository.UserRepository
	sessions *SessionStore
	revoked  RevocationStore
	hasher   *security.PasswordHasher
	tokens   *security.JWTManager
	logger   *slog.Logger
	now      func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	sessions *SessionStore,
	revoked RevocationStore,
	hasher *security.PasswordHasher,
	tokens *security.JWTManager,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		revoked:  revoked,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) Login(ctx context.Context, name, password string) (*LoginResult, error) {
	ctx, span := observability.StartSpan(ctx, "auth.login", attribute.String("user.name", name))
	defer span.End()

	user, err := s.users.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthLogin(ctx, "not_found")
			return nil, notFound("User not found")
		}
		observability.RecordAuthLogin(ctx, "error")
		return nil, internal("load user", err)
	}
	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		observability.RecordAuthLogin(ctx, "error")
		return nil, internal("verify password", err)
	}
	if !ok {
		observability.RecordAuthLogin(ctx, "bad_password")
		return nil, badRequest("Wrong password")
	}

	res, err := s.issue(ctx, user)
	if err != nil {
		observability.RecordAuthLogin(ctx, "error")
		return nil, err
	}
	observability.RecordAuthLogin(ctx, "success")
	return res, nil
}

// Refresh exchanges a refresh token for a new pair. The token must carry a
// valid signature and also be the one currently stored for its subject.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	ctx, span := observability.StartSpan(ctx, "auth.refresh")
	defer span.End()

	if refreshToken == "" {
		observability.RecordAuthRefresh(ctx, "missing")
		return nil, unauthorized("Refresh token is missing")
	}
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		observability.RecordAuthRefresh(ctx, "invalid_signature")
		return nil, unauthorized("User unauthorized")
	}
	session, err := s.sessions.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			observability.RecordAuthRefresh(ctx, "not_stored")
			return nil, unauthorized("User unauthorized")
		}
		observability.RecordAuthRefresh(ctx, "error")
		return nil, internal("load session", err)
	}
	if session.UserID != claims.Subject || !session.ExpiresAt.After(s.now()) {
		observability.RecordAuthRefresh(ctx, "mismatch")
		return nil, unauthorized("User unauthorized")
	}
	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthRefresh(ctx, "user_gone")
			return nil, unauthorized("User unauthorized")
		}
		observability.RecordAuthRefresh(ctx, "error")
		return nil, internal("load user", err)
	}

	res, err := s.issue(ctx, user)
	if err != nil {
		observability.RecordAuthRefresh(ctx, "error")
		return nil, err
	}
	observability.RecordAuthRefresh(ctx, "success")
	return res, nil
}

// Logout revokes the presented access token for the rest of its lifetime and
// drops the stored session. The access token is revoked even when the refresh
// token is missing.
func (s *AuthService) Logout(ctx context.Context, in LogoutInput) error {
	ctx, span := observability.StartSpan(ctx, "auth.logout")
	defer span.End()

	if in.AccessToken != "" && in.AccessClaims != nil {
		if ttl := in.AccessClaims.Remaining(s.now()); ttl > 0 {
			if err := s.revoked.Revoke(ctx, in.AccessToken, ttl); err != nil {
				observability.RecordAuthLogout(ctx, "error")
				return internal("revoke access token", err)
			}
		}
	}
	if in.RefreshToken == "" {
		observability.RecordAuthLogout(ctx, "missing")
		return unauthorized("Refresh token is missing")
	}

	session, err := s.sessions.Find(ctx, in.RefreshToken)
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		observability.RecordAuthLogout(ctx, "no_session")
		return nil
	case err != nil:
		observability.RecordAuthLogout(ctx, "error")
		return internal("load session", err)
	}
	if in.AccessClaims != nil && session.UserID != in.AccessClaims.Subject {
		observability.RecordAuthLogout(ctx, "mismatch")
		return unauthorized("User unauthorized")
	}
	if _, err := s.sessions.Delete(ctx, in.RefreshToken); err != nil {
		observability.RecordAuthLogout(ctx, "error")
		return internal("delete session", err)
	}
	observability.RecordAuthLogout(ctx, "success")
	return nil
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*LoginResult, error) {
	pair, err := s.tokens.Issue(security.Identity{UserID: user.ID, Name: user.Name, Role: string(user.Role)})
	if err != nil {
		return nil, internal("issue tokens", err)
	}
	if err := s.sessions.Save(ctx, user.ID, pair.RefreshToken, pair.RefreshExpiresAt); err != nil {
		return nil, internal("save session", err)
	}
	s.logger.DebugContext(ctx, "issued token pair", "user_id", user.ID)
	return &LoginResult{
		User:             user,
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}, nil
}
