//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func TestBridge_ReadEndpoints(t *testing.T) {
	baseURL := strings.TrimRight(envOr("E2E_BASE_URL", "http://localhost:8090"), "/")
	client := &http.Client{Timeout: 20 * time.Second}

	t.Run("snapshot", func(t *testing.T) {
		status, body := mustRequest(t, client, http.MethodGet, baseURL+"/api/pet/snapshot", "")
		if status != http.StatusOK {
			t.Fatalf("snapshot status=%d body=%s", status, string(body))
		}
		var resp map[string]any
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("unmarshal snapshot: %v body=%s", err, string(body))
		}
		if _, ok := resp["snapshot"].(map[string]any); !ok {
			t.Fatalf("expected snapshot object, got %s", string(body))
		}
		switch resp["phase"] {
		case "ready", "dead":
		default:
			t.Fatalf("expected a loaded phase, got %v", resp["phase"])
		}
	})

	t.Run("balances", func(t *testing.T) {
		status, body := mustRequest(t, client, http.MethodGet, baseURL+"/api/pet/balances", "")
		if status != http.StatusOK {
			t.Fatalf("balances status=%d body=%s", status, string(body))
		}
		var resp map[string]any
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("unmarshal balances: %v", err)
		}
		all, _ := resp["balances"].(map[string]any)
		if _, ok := all["food"]; !ok {
			t.Fatalf("expected food balances, got %s", string(body))
		}
	})

	t.Run("kpi", func(t *testing.T) {
		status, body := mustRequest(t, client, http.MethodGet, baseURL+"/ops/kpi", "")
		if status != http.StatusOK {
			t.Fatalf("kpi status=%d body=%s", status, string(body))
		}
	})
}

func TestBridge_ActionsRequireCredentials(t *testing.T) {
	baseURL := strings.TrimRight(envOr("E2E_BASE_URL", "http://localhost:8090"), "/")
	client := &http.Client{Timeout: 20 * time.Second}

	status, body := mustRequest(t, client, http.MethodPost, baseURL+"/api/pet/tick", "")
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d body=%s", status, string(body))
	}

	status, body = mustRequest(t, client, http.MethodPost, baseURL+"/api/pet/clean", `[{"contract_name":"wallet","data":"c2ln"}]`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for a single credential, got %d body=%s", status, string(body))
	}
}

func mustRequest(t *testing.T, client *http.Client, method, url, body string) (int, []byte) {
	t.Helper()
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		var payload io.Reader
		if body != "" {
			payload = bytes.NewReader([]byte(body))
		}
		req, err := http.NewRequest(method, url, payload)
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return resp.StatusCode, respBody
	}
	t.Fatalf("%s %s request failed: %v", method, url, lastErr)
	return 0, nil
}

func envOr(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
