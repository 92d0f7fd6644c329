package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
	"github.com/sandeepkv93/estate-admin-backend/internal/security"
)

type authFixture struct {
	svc      *AuthService
	users    *inMemoryUserRepo
	sessions *inMemorySessionRepo
	revoked  *InMemoryRevocationStore
	tokens   *security.JWTManager
	hasher   *security.PasswordHasher
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newInMemoryUserRepo()
	sessions := newInMemorySessionRepo()
	revoked := NewInMemoryRevocationStore()
	hasher := security.NewPasswordHasher(security.Argon2Params{MemoryKiB: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	tokens := security.NewJWTManager("estate-admin", "estate-admin-api",
		"abcdefghijklmnopqrstuvwxyz123456", "abcdefghijklmnopqrstuvwxyz654321", 15*time.Minute, 720*time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewAuthService(users, NewSessionStore(sessions, "pepper"), revoked, hasher, tokens, logger)
	return &authFixture{svc: svc, users: users, sessions: sessions, revoked: revoked, tokens: tokens, hasher: hasher}
}

func (f *authFixture) seedUser(t *testing.T, name, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &domain.User{Name: name, PasswordHash: hash, Role: role}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestAuthServiceLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "admin", "Admin123!", domain.RoleAdmin)
	ctx := context.Background()

	tests := []struct {
		name     string
		user     string
		password string
		wantErr  error
	}{
		{name: "unknown user", user: "nobody", password: "Admin123!", wantErr: ErrNotFound},
		{name: "wrong password", user: "admin", password: "nope", wantErr: ErrBadRequest},
		{name: "success", user: "admin", password: "Admin123!"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := f.svc.Login(ctx, tc.user, tc.password)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("login: %v", err)
			}
			if res.AccessToken == "" || res.RefreshToken == "" {
				t.Fatal("expected both tokens")
			}
			if res.User.Role != domain.RoleAdmin {
				t.Fatalf("unexpected role %q", res.User.Role)
			}
			claims, err := f.tokens.ParseAccessToken(res.AccessToken)
			if err != nil {
				t.Fatalf("parse access: %v", err)
			}
			if claims.Name != "admin" || claims.Role != "admin" {
				t.Fatalf("unexpected claims %+v", claims)
			}
		})
	}
}

func TestAuthServiceRepeatedLoginKeepsOneSession(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "alice", "Password1!", domain.RoleAdmin)
	ctx := context.Background()

	var first *LoginResult
	for i := 0; i < 3; i++ {
		res, err := f.svc.Login(ctx, "alice", "Password1!")
		if err != nil {
			t.Fatalf("login %d: %v", i, err)
		}
		if first == nil {
			first = res
		}
	}
	if n := f.sessions.count(); n != 1 {
		t.Fatalf("expected one session, got %d", n)
	}
	if _, err := f.svc.Refresh(ctx, first.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected superseded refresh token to be rejected, got %v", err)
	}
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "bob", "Password1!", domain.RoleOrdinary)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, "bob", "Password1!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	refreshed, err := f.svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("expected a new refresh token")
	}
	if _, err := f.svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected old refresh token rejected, got %v", err)
	}
	if _, err := f.svc.Refresh(ctx, refreshed.RefreshToken); err != nil {
		t.Fatalf("new refresh token should work: %v", err)
	}
}

func TestAuthServiceRefreshRequiresSignatureAndStoredSession(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "carol", "Password1!", domain.RoleAdmin)
	ctx := context.Background()

	if _, err := f.svc.Refresh(ctx, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("empty token: expected unauthorized, got %v", err)
	}

	// Valid signature but never stored.
	unstored, err := f.tokens.SignRefreshToken(security.Identity{UserID: user.ID, Name: user.Name, Role: string(user.Role)}, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := f.svc.Refresh(ctx, unstored); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unstored token: expected unauthorized, got %v", err)
	}

	// Stored but with a bad signature.
	forged := "not-a-jwt"
	if err := f.sessions.Upsert(ctx, user.ID, security.HashRefreshToken(forged, "pepper"), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := f.svc.Refresh(ctx, forged); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("forged token: expected unauthorized, got %v", err)
	}

	// Access token presented as refresh token.
	login, err := f.svc.Login(ctx, "carol", "Password1!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := f.svc.Refresh(ctx, login.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("access token as refresh: expected unauthorized, got %v", err)
	}
}

func TestAuthServiceRefreshRejectsDeletedUser(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "dave", "Password1!", domain.RoleAdmin)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, "dave", "Password1!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := f.users.Delete(ctx, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for deleted user, got %v", err)
	}
}

func TestAuthServiceLogoutRevokesAccessAndDropsSession(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "erin", "Password1!", domain.RoleAdmin)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, "erin", "Password1!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := f.tokens.ParseAccessToken(login.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if err := f.svc.Logout(ctx, LogoutInput{AccessToken: login.AccessToken, AccessClaims: claims}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("missing refresh token: expected unauthorized, got %v", err)
	}

	if err := f.svc.Logout(ctx, LogoutInput{RefreshToken: login.RefreshToken, AccessToken: login.AccessToken, AccessClaims: claims}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	revoked, err := f.revoked.IsRevoked(ctx, login.AccessToken)
	if err != nil || !revoked {
		t.Fatalf("IsRevoked()=%v,%v want true,nil", revoked, err)
	}
	if f.sessions.count() != 0 {
		t.Fatal("expected session removed")
	}
	if _, err := f.svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("refresh after logout: expected unauthorized, got %v", err)
	}
}

func TestAuthServiceLogoutWithoutRefreshTokenStillRevokesAccess(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "gina", "Password1!", domain.RoleAdmin)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, "gina", "Password1!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := f.tokens.ParseAccessToken(login.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	err = f.svc.Logout(ctx, LogoutInput{AccessToken: login.AccessToken, AccessClaims: claims})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for missing refresh token, got %v", err)
	}
	if revoked, _ := f.revoked.IsRevoked(ctx, login.AccessToken); !revoked {
		t.Fatal("expected access token revoked even without a refresh token")
	}
	if f.sessions.count() != 1 {
		t.Fatalf("expected session kept, got %d", f.sessions.count())
	}
}

func TestAuthServiceLogoutSkipsExpiredAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "frank", "Password1!", domain.RoleAdmin)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, "frank", "Password1!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := f.tokens.ParseAccessToken(login.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f.svc.now = func() time.Time { return claims.ExpiresAt.Add(time.Second) }

	if err := f.svc.Logout(ctx, LogoutInput{RefreshToken: login.RefreshToken, AccessToken: login.AccessToken, AccessClaims: claims}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if f.revoked.Len() != 0 {
		t.Fatal("expected no revocation entry for an already expired token")
	}
}
