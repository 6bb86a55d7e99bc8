package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/arinleviti/80sHorrorHub/internal/domain"
	"github.com/arinleviti/80sHorrorHub/internal/linker"
	"github.com/arinleviti/80sHorrorHub/internal/logger"
)

// DescriptionEntry is one record of the bundled AI description file.
type DescriptionEntry struct {
	Slug          string               `json:"slug"`
	AiDescription domain.AiDescription `json:"aiDescription"`
}

// LoadDescriptions reads a JSON array of description entries.
func LoadDescriptions(path string) ([]DescriptionEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptions: %w", err)
	}
	var entries []DescriptionEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse descriptions %s: %w", path, err)
	}
	return entries, nil
}

type DescriptionStore interface {
	ListMovies(ctx context.Context) ([]domain.MovieRecord, error)
	UpsertAiDescription(ctx context.Context, d *domain.AiDescription) error
}

type MigrationReport struct {
	Upserted  int
	Unmatched []string
}

// DescriptionMigrator links bundled descriptions to stored movies.
type DescriptionMigrator struct {
	store  DescriptionStore
	logger *logger.Logger
}

func NewDescriptionMigrator(store DescriptionStore, log *logger.Logger) *DescriptionMigrator {
	if log == nil {
		log = logger.Default()
	}
	return &DescriptionMigrator{store: store, logger: log.WithComponent("migrate-ai")}
}

// Run upserts a description for every entry whose slug matches a stored
// movie. Unmatched slugs are logged and reported; store failures abort.
func (m *DescriptionMigrator) Run(ctx context.Context, entries []DescriptionEntry) (*MigrationReport, error) {
	movies, err := m.store.ListMovies(ctx)
	if err != nil {
		return nil, err
	}

	report := &MigrationReport{}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		movie := linker.Match(e.Slug, movies)
		if movie == nil {
			m.logger.Warn("No matching movie found", "slug", e.Slug)
			report.Unmatched = append(report.Unmatched, e.Slug)
			continue
		}

		d := e.AiDescription
		d.MovieID = movie.ID
		if err := m.store.UpsertAiDescription(ctx, &d); err != nil {
			return report, fmt.Errorf("slug %s: %w", e.Slug, err)
		}
		report.Upserted++
		m.logger.Info("Upserted AI description", "slug", e.Slug, "movie_id", movie.ID, "title", movie.Title)
	}
	return report, nil
}
