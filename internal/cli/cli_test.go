package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sandeepkv93/estate-admin-backend/internal/health"
)

func setCLIEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	for k, v := range map[string]string{
		"APP_ENV":                     "test",
		"APP_ENV_FILE":                filepath.Join(dir, "missing.env"),
		"DATABASE_DRIVER":             "sqlite",
		"DATABASE_URL":                filepath.Join(dir, "estate.db"),
		"REDIS_ADDR":                  "",
		"STORAGE_ENDPOINT":            "",
		"STORAGE_ACCESS_KEY":          "",
		"UPLOAD_TEMP_DIR":             filepath.Join(dir, "uploads"),
		"PASSWORD_ARGON2_MEMORY_KIB":  "8192",
		"PASSWORD_ARGON2_ITERATIONS":  "1",
		"PASSWORD_ARGON2_PARALLELISM": "1",
		"OTEL_LOGS_ENABLED":           "false",
	} {
		t.Setenv(k, v)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCreateUserRejectsUnknownRoleBeforeConnecting(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "oracle")
	_, err := execute(t, "create-user", "--name", "bob", "--password", "Secret123", "--role", "owner")
	if err == nil || !strings.Contains(err.Error(), "invalid role") {
		t.Fatalf("expected invalid role error, got %v", err)
	}
}

func TestMigrateCreateUserAndEnsureAdmin(t *testing.T) {
	setCLIEnv(t)

	out, err := execute(t, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "migrations applied") {
		t.Fatalf("unexpected migrate output: %q", out)
	}

	out, err = execute(t, "create-user", "--name", "clerk", "--password", "Secret123", "--role", "ordinary")
	if err != nil {
		t.Fatalf("create-user: %v", err)
	}
	if !strings.Contains(out, "clerk (ordinary)") {
		t.Fatalf("unexpected create-user output: %q", out)
	}
	if _, err := execute(t, "create-user", "--name", "clerk", "--password", "Secret123"); err == nil {
		t.Fatal("expected duplicate user to fail")
	}

	for range 2 {
		out, err = execute(t, "ensure-admin")
		if err != nil {
			t.Fatalf("ensure-admin: %v", err)
		}
		if !strings.Contains(out, "admin ready: admin") {
			t.Fatalf("unexpected ensure-admin output: %q", out)
		}
	}
}

func TestCheckReportsReadyInCIMode(t *testing.T) {
	setCLIEnv(t)

	out, err := execute(t, "--ci", "check")
	if err != nil {
		t.Fatalf("check: %v (%s)", err, out)
	}
	var report ciReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report %q: %v", out, err)
	}
	if !report.Ready || len(report.Checks) != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestPrintReport(t *testing.T) {
	results := []health.CheckResult{
		{Name: "database", Healthy: true, DurationMS: 3},
		{Name: "redis", Healthy: false, Error: "connection refused", DurationMS: 12},
	}
	cases := []struct {
		name  string
		ready bool
		err   error
		want  []string
	}{
		{name: "not ready", want: []string{"database", "redis", "connection refused", "not ready"}},
		{name: "ready", ready: true, want: []string{"ready"}},
		{name: "load error", err: errors.New("validate config: bad"), want: []string{"error:", "validate config: bad"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			printReport(&buf, false, tc.ready, results, tc.err)
			for _, w := range tc.want {
				if !strings.Contains(buf.String(), w) {
					t.Fatalf("expected %q in output:\n%s", w, buf.String())
				}
			}
		})
	}

	var buf bytes.Buffer
	printReport(&buf, true, false, nil, errors.New("boom"))
	var report ciReport
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Ready || report.Error != "boom" || report.Checks == nil {
		t.Fatalf("unexpected ci report: %+v", report)
	}
}

func TestLoadgenCommandReportsFailures(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))
	defer healthy.Close()
	out, err := execute(t, "loadgen", "--base-url", healthy.URL, "--profile", "public", "--duration", "200ms", "--rps", "50")
	if err != nil || !strings.Contains(out, "no failures") {
		t.Fatalf("expected clean run, err=%v out=%s", err, out)
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) }))
	defer broken.Close()
	out, err = execute(t, "loadgen", "--base-url", broken.URL, "--profile", "public", "--duration", "200ms", "--rps", "50")
	if err == nil || !strings.Contains(out, "failures") {
		t.Fatalf("expected failures, err=%v out=%s", err, out)
	}
}
