package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"

	"github.com/arinleviti/80sHorrorHub/internal/constants"
	"github.com/arinleviti/80sHorrorHub/internal/domain"
	"github.com/arinleviti/80sHorrorHub/internal/ebay"
	"github.com/arinleviti/80sHorrorHub/internal/logger"
	"github.com/arinleviti/80sHorrorHub/internal/tmdb"
	"github.com/arinleviti/80sHorrorHub/internal/youtube"
)

var (
	ErrNotFound = errors.New("movie not found")
	ErrUpstream = errors.New("failed to fetch movie data")
)

type VideoSearcher interface {
	Videos(ctx context.Context, query string) ([]domain.Video, error)
}

type ListingSearcher interface {
	Listings(ctx context.Context, query string) ([]domain.Listing, error)
}

type VinylSearcher interface {
	Releases(ctx context.Context, title, year string) ([]domain.VinylRelease, error)
}

type SoundtrackFinder interface {
	Soundtrack(ctx context.Context, title string) (*domain.SoundtrackEmbed, error)
}

type AvailabilityChecker interface {
	Availability(ctx context.Context, title string, year int) *domain.StreamingAvailability
}

type Suggester interface {
	Suggestions(ctx context.Context, movieID, title, year string) ([]domain.Suggestion, error)
}

// MovieStore is the local persistence page assembly writes movie records
// to and reads editorial content from.
type MovieStore interface {
	UpsertMovie(ctx context.Context, m *domain.MovieRecord) error
	GetMovie(ctx context.Context, id string) (*domain.MovieRecord, error)
	GetAiDescription(ctx context.Context, movieID string) (*domain.AiDescription, error)
}

// Providers groups the optional content sources. A nil source leaves its
// block empty.
type Providers struct {
	Videos      VideoSearcher
	Listings    ListingSearcher
	Vinyl       VinylSearcher
	Soundtrack  SoundtrackFinder
	Streaming   AvailabilityChecker
	Suggestions Suggester
}

type CastEntry struct {
	Name       string
	Character  string
	ProfileURL string
}

// MoviePage is everything the movie page renders. Optional blocks are nil
// when their provider had nothing to offer.
type MoviePage struct {
	Slug      string
	Movie     domain.Movie
	Year      string
	PosterURL string
	Cast      []CastEntry
	Crew      []domain.CrewMember

	Description     *domain.AiDescription
	Trailers        []domain.Video
	BehindTheScenes []domain.Video
	TopMoments      []domain.Video
	Listings        []domain.Listing
	Vinyl           []domain.VinylRelease
	Soundtrack      *domain.SoundtrackEmbed
	Streaming       *domain.StreamingAvailability
	Suggestions     []domain.Suggestion
}

type PageAssembler struct {
	tmdb      tmdb.API
	store     MovieStore
	providers Providers
	timeout   time.Duration
	logger    *logger.Logger
}

func NewPageAssembler(api tmdb.API, store MovieStore, providers Providers, timeout time.Duration, log *logger.Logger) *PageAssembler {
	if timeout <= 0 {
		timeout = constants.DefaultProviderTimeout
	}
	if log == nil {
		log = logger.Default()
	}
	return &PageAssembler{
		tmdb:      api,
		store:     store,
		providers: providers,
		timeout:   timeout,
		logger:    log.WithComponent("page"),
	}
}

// Assemble builds the page for slug. Metadata, configuration and credits
// are required; every other block degrades to empty on failure.
func (a *PageAssembler) Assemble(ctx context.Context, slug string) (*MoviePage, error) {
	tmdbID, ok := LookupSlug(slug)
	if !ok {
		return nil, ErrNotFound
	}

	var (
		movie   *domain.Movie
		cfg     *domain.ImageConfig
		credits *domain.Credits
	)
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) (err error) {
		movie, err = a.tmdb.Movie(ctx, tmdbID)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		cfg, err = a.tmdb.Configuration(ctx)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		credits, err = a.tmdb.Credits(ctx, tmdbID)
		return err
	})
	if err := p.Wait(); err != nil {
		a.logger.Error("Required metadata fetch failed", "slug", slug, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if movie.ID == 0 {
		movie.ID = tmdbID
	}

	movieID := domain.MovieID(tmdbID)
	log := a.logger.WithMovie(movieID, movie.Title)

	page := &MoviePage{
		Slug:  slug,
		Movie: *movie,
		Year:  movie.Year(),
		Crew:  credits.Crew,
	}
	for _, c := range credits.Cast {
		page.Cast = append(page.Cast, CastEntry{
			Name:       c.Name,
			Character:  c.Character,
			ProfileURL: tmdb.ImageURL(cfg, constants.ProfileSize, c.ProfilePath),
		})
	}

	record := a.saveRecord(ctx, movieID, slug, movie, log)
	page.PosterURL = posterURL(record, cfg, movie)

	a.fanOut(ctx, page, movieID, log)
	return page, nil
}

// saveRecord upserts the local movie record and returns the stored row.
// Store failures are logged; the page renders without the local data.
func (a *PageAssembler) saveRecord(ctx context.Context, movieID, slug string, movie *domain.Movie, log *logger.Logger) *domain.MovieRecord {
	rec := &domain.MovieRecord{
		ID:          movieID,
		TMDBID:      movie.ID,
		Title:       movie.Title,
		Slug:        slug,
		ReleaseDate: movie.ReleaseDate,
	}
	if movie.PosterPath != nil {
		rec.PosterPath = *movie.PosterPath
	}
	if err := a.store.UpsertMovie(ctx, rec); err != nil {
		log.Warn("Failed to save movie record", "error", err)
		return rec
	}
	stored, err := a.store.GetMovie(ctx, movieID)
	if err != nil || stored == nil {
		if err != nil {
			log.Warn("Failed to read movie record", "error", err)
		}
		return rec
	}
	return stored
}

func posterURL(rec *domain.MovieRecord, cfg *domain.ImageConfig, movie *domain.Movie) string {
	if rec != nil && rec.ImageKitPosterPath != "" {
		return rec.ImageKitPosterPath
	}
	if u := tmdb.ImageURL(cfg, constants.PosterSize, movie.PosterPath); u != "" {
		return u
	}
	return constants.PlaceholderPosterURL
}

// fanOut runs every optional block concurrently, each under its own
// deadline. Each goroutine writes a distinct page field.
func (a *PageAssembler) fanOut(ctx context.Context, page *MoviePage, movieID string, log *logger.Logger) {
	title, year := page.Movie.Title, page.Year
	var wg conc.WaitGroup

	run := func(block string, fn func(ctx context.Context) error) {
		wg.Go(func() {
			ctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()
			start := time.Now()
			if err := fn(ctx); err != nil {
				log.Warn("Block unavailable", "block", block, "error", err, "elapsed", time.Since(start))
			}
		})
	}

	if v := a.providers.Videos; v != nil {
		queries := youtube.Queries(title, year)
		targets := []*[]domain.Video{&page.Trailers, &page.BehindTheScenes, &page.TopMoments}
		for i, q := range queries {
			dst := targets[i]
			run("videos", func(ctx context.Context) (err error) {
				*dst, err = v.Videos(ctx, q)
				return err
			})
		}
	}
	if l := a.providers.Listings; l != nil {
		run("listings", func(ctx context.Context) (err error) {
			page.Listings, err = l.Listings(ctx, ebay.Query(title, year))
			return err
		})
	}
	if v := a.providers.Vinyl; v != nil {
		run("vinyl", func(ctx context.Context) (err error) {
			page.Vinyl, err = v.Releases(ctx, title, year)
			return err
		})
	}
	if s := a.providers.Soundtrack; s != nil {
		run("soundtrack", func(ctx context.Context) (err error) {
			page.Soundtrack, err = s.Soundtrack(ctx, title)
			return err
		})
	}
	if s := a.providers.Streaming; s != nil {
		run("streaming", func(ctx context.Context) error {
			page.Streaming = s.Availability(ctx, title, page.Movie.YearNumber())
			return nil
		})
	}
	if s := a.providers.Suggestions; s != nil {
		run("suggestions", func(ctx context.Context) (err error) {
			page.Suggestions, err = s.Suggestions(ctx, movieID, title, year)
			return err
		})
	}
	run("description", func(ctx context.Context) (err error) {
		page.Description, err = a.store.GetAiDescription(ctx, movieID)
		return err
	})

	if r := wg.WaitAndRecover(); r != nil {
		log.Error("Block panicked", "panic", r.Value, "stack", string(r.Stack))
	}
}
