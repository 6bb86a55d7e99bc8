package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arinleviti/80sHorrorHub/internal/domain"
	"github.com/arinleviti/80sHorrorHub/internal/httpclient"
	"github.com/arinleviti/80sHorrorHub/internal/schema"
)

const theThing = `{
  "id": 1091,
  "title": "The Thing",
  "release_date": "1982-06-25",
  "overview": "In the winter of 1982, a twelve-man research team...",
  "poster_path": "/tzGY49kseSE9QAKk47uuDGwnSCu.jpg",
  "popularity": 41.2,
  "runtime": 109
}`

const configuration = `{
  "images": {
    "base_url": "http://image.tmdb.org/t/p/",
    "secure_base_url": "https://image.tmdb.org/t/p/",
    "poster_sizes": ["w92", "w500", "original"],
    "profile_sizes": ["w45", "w185"]
  },
  "change_keys": []
}`

const credits = `{
  "id": 1091,
  "cast": [
    {"cast_id": 1, "character": "MacReady", "name": "Kurt Russell", "profile_path": "/kurt.jpg"},
    {"cast_id": 2, "character": "Blair", "name": "Wilford Brimley", "profile_path": null}
  ],
  "crew": [{"job": "Director", "name": "John Carpenter"}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	hc := httpclient.NewClient(nil, 0)
	hc.SetRetry(1, time.Millisecond)
	return NewClient(hc, "tmdb-token", server.URL)
}

func TestClient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tmdb-token" {
			t.Errorf("Unexpected auth %q", r.Header.Get("Authorization"))
		}
		switch r.URL.Path {
		case "/movie/1091":
			w.Write([]byte(theThing))
		case "/configuration":
			w.Write([]byte(configuration))
		case "/movie/1091/credits":
			w.Write([]byte(credits))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	m, err := c.Movie(ctx, 1091)
	if err != nil {
		t.Fatalf("Movie failed: %v", err)
	}
	if m.Title != "The Thing" || m.Year() != "1982" || m.YearNumber() != 1982 {
		t.Errorf("Unexpected movie %+v", m)
	}

	cfg, err := c.Configuration(ctx)
	if err != nil {
		t.Fatalf("Configuration failed: %v", err)
	}
	if cfg.SecureBaseURL != "https://image.tmdb.org/t/p/" || len(cfg.PosterSizes) != 3 {
		t.Errorf("Unexpected configuration %+v", cfg)
	}
	if got := ImageURL(cfg, "w500", m.PosterPath); got != "https://image.tmdb.org/t/p/w500/tzGY49kseSE9QAKk47uuDGwnSCu.jpg" {
		t.Errorf("Unexpected poster url %s", got)
	}

	cr, err := c.Credits(ctx, 1091)
	if err != nil {
		t.Fatalf("Credits failed: %v", err)
	}
	if len(cr.Cast) != 2 || cr.Cast[1].ProfilePath != nil || cr.Crew[0].Job != "Director" {
		t.Errorf("Unexpected credits %+v", cr)
	}

	if _, err := c.Movie(ctx, 7); err == nil {
		t.Error("Expected error for unknown movie")
	}
}

func TestClientRejectsMalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
		call func(*Client) error
	}{
		{
			name: "movie without popularity",
			body: `{"title": "x", "release_date": "", "overview": "", "poster_path": null}`,
			call: func(c *Client) error { _, err := c.Movie(context.Background(), 1); return err },
		},
		{
			name: "cast member without name",
			body: `{"id": 1, "cast": [{"cast_id": 1, "character": "x", "profile_path": null}], "crew": []}`,
			call: func(c *Client) error { _, err := c.Credits(context.Background(), 1); return err },
		},
		{
			name: "configuration without images",
			body: `{"change_keys": []}`,
			call: func(c *Client) error { _, err := c.Configuration(context.Background()); return err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			var verrs schema.Errors
			if err := tt.call(c); !errors.As(err, &verrs) {
				t.Errorf("Expected validation errors, got %v", err)
			}
		})
	}
}

func TestImageURL(t *testing.T) {
	cfg := &domain.ImageConfig{SecureBaseURL: "https://img/"}
	path := "/p.jpg"
	empty := ""
	if got := ImageURL(cfg, "w185", &path); got != "https://img/w185/p.jpg" {
		t.Errorf("Unexpected url %s", got)
	}
	if ImageURL(cfg, "w185", nil) != "" || ImageURL(cfg, "w185", &empty) != "" || ImageURL(nil, "w185", &path) != "" {
		t.Error("Expected empty url")
	}
}
