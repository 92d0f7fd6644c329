package integration

import (
	"net/http"
	"testing"
)

func TestHealthLiveAndReadyEndpoints(t *testing.T) {
	baseURL, client := newTestServer(t)

	t.Run("live endpoint stable 200 payload", func(t *testing.T) {
		resp, env := doJSON(t, client, http.MethodGet, baseURL+"/health/live", nil, "")
		if resp.StatusCode != http.StatusOK || !env.Success {
			t.Fatalf("health live failed: status=%d success=%v", resp.StatusCode, env.Success)
		}
		data := decodeData[map[string]any](t, env)
		if got, _ := data["status"].(string); got != "ok" {
			t.Fatalf("expected status=ok, got %+v", data)
		}
	})

	t.Run("ready endpoint reports each dependency", func(t *testing.T) {
		resp, env := doJSON(t, client, http.MethodGet, baseURL+"/health/ready", nil, "")
		if resp.StatusCode != http.StatusOK || !env.Success {
			t.Fatalf("health ready failed: status=%d success=%v", resp.StatusCode, env.Success)
		}
		data := decodeData[struct {
			Status string `json:"status"`
			Checks []struct {
				Name    string `json:"name"`
				Healthy bool   `json:"healthy"`
			} `json:"checks"`
		}](t, env)
		if data.Status != "ready" {
			t.Fatalf("expected status=ready, got %+v", data)
		}
		names := map[string]bool{}
		for _, c := range data.Checks {
			if !c.Healthy {
				t.Fatalf("expected healthy check, got %+v", c)
			}
			names[c.Name] = true
		}
		if !names["db"] || !names["object_store"] {
			t.Fatalf("expected db and object_store checks, got %+v", data.Checks)
		}
	})

	t.Run("unknown route uses error envelope", func(t *testing.T) {
		resp, env := doJSON(t, client, http.MethodGet, baseURL+"/nope", nil, "")
		if resp.StatusCode != http.StatusNotFound || env.Success || env.Error == nil || env.Error.Code != "NOT_FOUND" {
			t.Fatalf("expected 404 envelope, got status=%d env=%+v", resp.StatusCode, env)
		}
	})
}
