package httpapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arinleviti/80sHorrorHub/internal/app"
	"github.com/arinleviti/80sHorrorHub/internal/domain"
	"github.com/arinleviti/80sHorrorHub/internal/logger"
)

type fakePages struct {
	page *app.MoviePage
	err  error
}

func (f fakePages) Assemble(_ context.Context, slug string) (*app.MoviePage, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := *f.page
	p.Slug = slug
	return &p, nil
}

func fullPage() *app.MoviePage {
	year := 1982
	return &app.MoviePage{
		Movie:     domain.Movie{ID: 1091, Title: "The Thing", Overview: "Antarctica, winter.", Popularity: 41.2},
		Year:      "1982",
		PosterURL: "https://ik.imagekit.io/x/poster_1091.jpg",
		Cast:      []app.CastEntry{{Name: "Kurt Russell", Character: "MacReady"}},
		Crew:      []domain.CrewMember{{Job: "Director", Name: "John Carpenter"}},
		Description: &domain.AiDescription{
			Synopsis: "An alien in the ice.",
		},
		Trailers:   []domain.Video{{YouTubeID: "abc", Title: "Official Trailer", URL: "https://www.youtube.com/watch?v=abc"}},
		Listings:   []domain.Listing{{Title: "Lobby card", Price: domain.Price{Value: "25.00", Currency: "USD"}, WebURL: "https://ebay.example/1"}},
		Vinyl:      []domain.VinylRelease{{Title: "Ennio Morricone - The Thing", Year: &year, Format: []string{"Vinyl", "LP"}, URI: "/release/1"}},
		Soundtrack: &domain.SoundtrackEmbed{ID: "alb", Name: "The Thing Soundtrack", EmbedURL: "https://open.spotify.com/embed/album/alb"},
		Streaming:  &domain.StreamingAvailability{Error: "No results found"},
		Suggestions: []domain.Suggestion{
			{Title: "The Fly", Year: "1986", MovieID: "9426", Slug: "the-fly"},
		},
	}
}

func TestMoviePage(t *testing.T) {
	h := NewHandler(fakePages{page: fullPage()}, logger.Discard())
	router := NewRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/movies/the-thing", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{
		"The Thing (1982)",
		"poster_1091.jpg",
		"MacReady",
		"John Carpenter",
		"An alien in the ice.",
		"Official Trailer",
		"Lobby card",
		"(1982)",
		"Vinyl, LP",
		"https://open.spotify.com/embed/album/alb",
		"No results found",
		`href="/movies/the-fly"`,
		"No videos found",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q", want)
		}
	}
}

func TestMoviePageEmptyBlocks(t *testing.T) {
	page := &app.MoviePage{Movie: domain.Movie{Title: "Chud"}, PosterURL: "/static/placeholder-poster.png"}
	router := NewRouter(NewHandler(fakePages{page: page}, logger.Discard()))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/movies/chud", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{
		"No cast information available",
		"No AI description available",
		"Listings unavailable",
		"Streaming availability unavailable",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q", want)
		}
	}
}

func TestMoviePageErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "not found", err: app.ErrNotFound, wantStatus: http.StatusNotFound, wantBody: "Movie not found"},
		{name: "upstream", err: fmt.Errorf("%w: %w", app.ErrUpstream, errors.New("tmdb 500")), wantStatus: http.StatusBadGateway, wantBody: "Failed to fetch movie data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(NewHandler(fakePages{err: tt.err}, logger.Discard()))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/movies/x", nil))

			if rr.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("Expected %q in body", tt.wantBody)
			}
			if strings.Contains(rr.Body.String(), "tmdb 500") {
				t.Error("Upstream error details must not reach the page")
			}
		})
	}
}

func TestIndexAndHealth(t *testing.T) {
	router := NewRouter(NewHandler(fakePages{}, logger.Discard()))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `href="/movies/the-fog"`) {
		t.Errorf("Unexpected index response %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Errorf("Unexpected health response %d %q", rr.Code, rr.Body.String())
	}
}

func TestStatic(t *testing.T) {
	router := NewRouter(NewHandler(fakePages{}, logger.Discard()))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/placeholder-poster.png", nil))
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "image/png" {
		t.Errorf("Unexpected static response %d %s", rr.Code, rr.Header().Get("Content-Type"))
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/missing.css", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rr.Code)
	}
}
