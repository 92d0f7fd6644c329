package loadgen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Config describes one load run against a running API.
type Config struct {
	BaseURL     string
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
	Client      *http.Client
}

type Result struct {
	TotalRequests int
	Failures      int
	StatusClasses map[string]int
	Endpoints     map[string]int
	Elapsed       time.Duration
}

type request struct {
	name   string
	method string
	path   string
	body   string
}

var profiles = map[string][]request{
	"public": {
		{name: "areas.list", method: http.MethodGet, path: "/areas?page=1&take=10"},
		{name: "property.list", method: http.MethodGet, path: "/property?page=1&take=10"},
		{name: "property.filter", method: http.MethodGet, path: "/property?saleType=rent&minPrice=100"},
		{name: "health.live", method: http.MethodGet, path: "/health/live"},
	},
	"auth": {
		{name: "auth.login.invalid", method: http.MethodPost, path: "/auth/login", body: `{"name":"loadgen","password":"not-the-password"}`},
		{name: "auth.refresh.missing", method: http.MethodGet, path: "/auth/refresh"},
		{name: "users.me.anonymous", method: http.MethodGet, path: "/users/me"},
	},
}

func init() {
	profiles["mixed"] = append(append([]request{}, profiles["public"]...), profiles["auth"]...)
}

// Run issues requests at roughly cfg.RPS until cfg.Duration elapses or ctx is
// cancelled. 4xx answers count as successes since the auth profile expects them.
func Run(ctx context.Context, cfg Config) (Result, error) {
	cfg.Profile = normalizeProfile(cfg.Profile)
	reqs, ok := profiles[cfg.Profile]
	if !ok {
		return Result{}, fmt.Errorf("unknown profile %q", cfg.Profile)
	}
	if cfg.BaseURL == "" {
		return Result{}, fmt.Errorf("base url is required")
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 10
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 5 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	jobs := make(chan request)
	res := Result{StatusClasses: map[string]int{}, Endpoints: map[string]int{}}
	var mu sync.Mutex
	record := func(name, class string) {
		mu.Lock()
		defer mu.Unlock()
		res.TotalRequests++
		res.Endpoints[name]++
		res.StatusClasses[class]++
		if class == "5xx" || class == "error" {
			res.Failures++
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for range cfg.Concurrency {
		g.Go(func() error {
			for req := range jobs {
				status, err := send(gctx, client, base, req)
				if err != nil {
					if gctx.Err() != nil {
						return nil
					}
					record(req.name, "error")
					continue
				}
				record(req.name, classifyStatusClass(status))
			}
			return nil
		})
	}

	start := time.Now()
	rng := rand.New(rand.NewSource(cfg.Seed))
	ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
	defer ticker.Stop()
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			select {
			case jobs <- reqs[rng.Intn(len(reqs))]:
			case <-ctx.Done():
				break loop
			}
		}
	}
	close(jobs)
	err := g.Wait()
	res.Elapsed = time.Since(start)
	return res, err
}

func send(ctx context.Context, client *http.Client, base string, r request) (int, error) {
	var body io.Reader
	if r.body != "" {
		body = bytes.NewBufferString(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, base+r.path, body)
	if err != nil {
		return 0, err
	}
	if r.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func classifyStatusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	default:
		return "other"
	}
}

func normalizeProfile(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return "mixed"
	}
	return p
}
