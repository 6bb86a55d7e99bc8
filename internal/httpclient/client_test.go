package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient() *Client {
	c := NewClient(nil, 0)
	c.SetRetry(3, time.Millisecond)
	return c
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	body, err := newTestClient().Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("Unexpected body %s", body)
	}
}

func TestFetchRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("done"))
	}))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	body, err := newTestClient().Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(body) != "done" {
		t.Errorf("Unexpected body %s", body)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 calls, got %d", calls.Load())
	}
}

func TestFetchRewindsBody(t *testing.T) {
	var calls atomic.Int32
	var lastBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		lastBody = string(b)
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodPost, server.URL, strings.NewReader("grant_type=client_credentials"))
	if _, err := newTestClient().Fetch(context.Background(), req); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if lastBody != "grant_type=client_credentials" {
		t.Errorf("Expected body to be resent, got %q", lastBody)
	}
}

func TestFetchStatusError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/search?key=secret", nil)
	_, err := newTestClient().Fetch(context.Background(), req)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", se.StatusCode)
	}
	if strings.Contains(se.Error(), "secret") {
		t.Errorf("Query string leaked into error: %s", se.Error())
	}
	if calls.Load() != 1 {
		t.Errorf("Expected no retry on 403, got %d calls", calls.Load())
	}
}

func TestFetchExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	_, err := newTestClient().Fetch(context.Background(), req)

	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503 StatusError, got %v", err)
	}
}

func TestFetchCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	if _, err := newTestClient().Fetch(ctx, req); err == nil {
		t.Error("Expected error for canceled context")
	}
}

func TestParseRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	if parseRetryAfter(resp) != 0 {
		t.Error("Expected 0 without header")
	}
	resp.Header.Set("Retry-After", "2")
	if parseRetryAfter(resp) != 2*time.Second {
		t.Errorf("Expected 2s, got %v", parseRetryAfter(resp))
	}
}
