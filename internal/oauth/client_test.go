package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetSessionData_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/auth/v1/env/oauth/session-data" {
			t.Fatalf("path = %s, want /auth/v1/env/oauth/session-data", r.URL.Path)
		}
		if got := r.Header.Get("X-Session-ID"); got != "ext-123" {
			t.Fatalf("X-Session-ID = %q, want %q", got, "ext-123")
		}

		resp := SessionData{
			Email:        "user@example.com",
			Name:         "User",
			SessionToken: "sess_abc",
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := client.GetSessionData(ctx, "ext-123")
	if err != nil {
		t.Fatalf("GetSessionData error: %v", err)
	}
	if res.Email != "user@example.com" || res.SessionToken != "sess_abc" {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestGetSessionData_Unauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := client.GetSessionData(ctx, "bad")
	if !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("err = %v, want ErrInvalidSession", err)
	}
}

func TestGetSessionData_EmptyEmail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"nobody"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := client.GetSessionData(ctx, "ext-123")
	if !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("err = %v, want ErrInvalidSession", err)
	}
}

func TestGetSessionData_NotConfigured(t *testing.T) {
	client := NewClient("")

	_, err := client.GetSessionData(context.Background(), "ext-123")
	if err == nil {
		t.Fatalf("expected error for unconfigured client")
	}
}
