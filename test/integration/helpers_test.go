package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/estate-admin-backend/internal/config"
	"github.com/sandeepkv93/estate-admin-backend/internal/di"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		AppEnv:                 "test",
		HTTPAddr:               "127.0.0.1:0",
		ReadHeaderTimeout:      time.Second,
		ShutdownTimeout:        5 * time.Second,
		DatabaseDriver:         "sqlite",
		DatabaseURL:            "file:" + filepath.Join(dir, "estate.db") + "?_foreign_keys=on",
		JWTIssuer:              "estate-itest",
		JWTAudience:            "estate-itest",
		JWTAccessSecret:        "itest-access-secret-0123456789abcdefghij",
		JWTRefreshSecret:       "itest-refresh-secret-0123456789abcdefghij",
		AccessTokenTTL:         5 * time.Minute,
		RefreshTokenTTL:        time.Hour,
		RefreshTokenPepper:     "itest-pepper",
		CookieSameSite:         "lax",
		PasswordMemoryKiB:      8 * 1024,
		PasswordIterations:     1,
		PasswordParallelism:    1,
		UploadTempDir:          filepath.Join(dir, "uploads"),
		UploadMaxFiles:         3,
		UploadMaxFileSize:      64 * 1024,
		MailTo:                 "sales@example.com",
		BootstrapAdminEnabled:  true,
		BootstrapAdminName:     "admin",
		BootstrapAdminPassword: "Admin123!",
		APIRateLimitRPM:        10000,
		AuthRateLimitRPM:       10000,
		MailRateLimit:          1,
		MailRateWindow:         time.Minute,
		ReadinessProbeTimeout:  time.Second,
	}
}

// newTestServer wires the full application against sqlite and in-memory
// object storage and serves it over a real listener.
func newTestServer(t *testing.T, mutate ...func(*config.Config)) (string, *http.Client) {
	t.Helper()
	cfg := testConfig(t)
	for _, m := range mutate {
		m(cfg)
	}
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, cleanup, err := di.InitializeApp(ctx, cfg, logger, nil)
	if err != nil {
		t.Fatalf("initialize app: %v", err)
	}
	t.Cleanup(cleanup)
	if err := a.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	srv := httptest.NewServer(a.Server.Handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return srv.URL, &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, token string) (*http.Response, apiEnvelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return send(t, client, req, token)
}

func doUpload(t *testing.T, client *http.Client, url, token string, files map[string][]byte) (*http.Response, apiEnvelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, name))
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return send(t, client, req, token)
}

func send(t *testing.T, client *http.Client, req *http.Request, token string) (*http.Response, apiEnvelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()
	var env apiEnvelope
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode envelope %q: %v", raw, err)
		}
	}
	return resp, env
}

func decodeData[T any](t *testing.T, env apiEnvelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return v
}

type loginData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"user"`
}

func login(t *testing.T, client *http.Client, baseURL, name, password string) loginData {
	t.Helper()
	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/auth/login", map[string]string{"name": name, "password": password}, "")
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("login %s failed: status=%d env=%+v", name, resp.StatusCode, env.Error)
	}
	return decodeData[loginData](t, env)
}
