package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouter(t *testing.T) {
	rabbitUp := true
	r := NewRouter(map[string]Check{
		"kafka": func() error { return nil },
		"rabbitmq": func() error {
			if !rabbitUp {
				return errors.New("connection closed")
			}
			return nil
		},
	})

	serve := func(path string) (int, map[string]any) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		var body map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		return rec.Code, body
	}

	if code, _ := serve("/healthz"); code != http.StatusOK {
		t.Errorf("healthz: expected 200, got %d", code)
	}
	if code, _ := serve("/readyz"); code != http.StatusOK {
		t.Errorf("readyz: expected 200, got %d", code)
	}

	rabbitUp = false
	code, body := serve("/readyz")
	if code != http.StatusServiceUnavailable {
		t.Errorf("readyz: expected 503, got %d", code)
	}
	checks, _ := body["checks"].(map[string]any)
	if checks["rabbitmq"] != "connection closed" || checks["kafka"] != "ok" {
		t.Errorf("unexpected checks: %v", checks)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST healthz: expected 405, got %d", rec.Code)
	}
}
