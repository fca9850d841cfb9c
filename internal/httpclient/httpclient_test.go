package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/driftstream/driftstream-cli/internal/config"
	"github.com/driftstream/driftstream-cli/internal/logging"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "drift-httpclient-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	os.Setenv("DRIFTSTREAM_KEYRING_PATH", filepath.Join(dir, "keyring.json"))
	logging.Init(false)
	if err := config.Init(filepath.Join(dir, "config.yaml")); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestGetDecodesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing Accept header")
		}
		_, _ = w.Write([]byte(`{"success": true, "message": "ok", "data": {"id": 7}}`))
	}))
	defer server.Close()

	client := NewClient()
	var resp APIResponse
	if err := client.Get(context.Background(), server.URL, &resp, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success || resp.Message != "ok" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	var payload struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil || payload.ID != 7 {
		t.Fatalf("unexpected data: %s", resp.Data)
	}
}

func TestPostSendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("missing Content-Type header")
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["name"] != "pg" {
			t.Errorf("unexpected body: %v", body)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient()
	err := client.Post(context.Background(), server.URL, map[string]string{"name": "pg"}, nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	if err := config.StoreSession("tester", "stale-token"); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient()
	err := client.Get(context.Background(), server.URL, nil, true)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	if _, err := config.GetUsername(); err == nil {
		t.Fatalf("expected session to be cleared after 401")
	}
}

func TestErrorResponseDecoded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "name already taken", "code": "conflict"}`))
	}))
	defer server.Close()

	client := NewClient()
	err := client.Post(context.Background(), server.URL, map[string]string{}, nil, false)

	var apiErr APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "name already taken" {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
	if apiErr.Error() != "name already taken" {
		t.Fatalf("unexpected error string: %s", apiErr.Error())
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := NewClient()
	err := client.Get(context.Background(), server.URL, nil, false)
	if err == nil {
		t.Fatalf("expected error for 502")
	}
}

func TestDeleteIgnoresBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient()
	if err := client.Delete(context.Background(), server.URL, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthRequiresLogin(t *testing.T) {
	config.ClearCurrentSession()

	client := NewClient()
	err := client.Get(context.Background(), "http://localhost:0/never-reached", nil, true)
	if err == nil {
		t.Fatalf("expected error when no user is logged in")
	}
}

func TestAPIErrorFallbacks(t *testing.T) {
	err := APIError{Status: 503}
	if err.Error() != "HTTP 503 error" {
		t.Fatalf("unexpected fallback: %s", err.Error())
	}
	err = APIError{Status: 500, ErrorMsg: "boom"}
	if err.Error() != "boom" {
		t.Fatalf("expected error field fallback, got %s", err.Error())
	}
}
