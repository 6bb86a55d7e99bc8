package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arinleviti/80sHorrorHub/internal/domain"
)

const movieColumns = "id, tmdb_id, title, slug, release_date, poster_path, imagekit_poster_path"

// UpsertMovie writes the movie metadata. A hosted poster URL already on
// the row is kept.
func (db *DB) UpsertMovie(ctx context.Context, m *domain.MovieRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO movies (id, tmdb_id, title, slug, release_date, poster_path, imagekit_poster_path, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			slug = CASE WHEN excluded.slug != '' THEN excluded.slug ELSE movies.slug END,
			release_date = excluded.release_date,
			poster_path = excluded.poster_path,
			updated_at = excluded.updated_at
	`, m.ID, m.TMDBID, m.Title, m.Slug, m.ReleaseDate, m.PosterPath, m.ImageKitPosterPath, toMillis(db.now()))
	if err != nil {
		return fmt.Errorf("upsert movie: %w", err)
	}
	return nil
}

func (db *DB) GetMovie(ctx context.Context, id string) (*domain.MovieRecord, error) {
	var m domain.MovieRecord
	err := db.GetContext(ctx, &m, "SELECT "+movieColumns+" FROM movies WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	return &m, nil
}

// ListMovies returns every movie in insertion order.
func (db *DB) ListMovies(ctx context.Context) ([]domain.MovieRecord, error) {
	var movies []domain.MovieRecord
	if err := db.SelectContext(ctx, &movies, "SELECT "+movieColumns+" FROM movies ORDER BY rowid"); err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// FindMovieByTitle is an exact, case-sensitive title lookup.
func (db *DB) FindMovieByTitle(ctx context.Context, title string) (*domain.MovieRecord, error) {
	var m domain.MovieRecord
	err := db.GetContext(ctx, &m,
		"SELECT "+movieColumns+" FROM movies WHERE title = ? ORDER BY rowid LIMIT 1", title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find movie by title: %w", err)
	}
	return &m, nil
}

func (db *DB) SetMoviePoster(ctx context.Context, id, url string) error {
	res, err := db.ExecContext(ctx,
		"UPDATE movies SET imagekit_poster_path = ?, updated_at = ? WHERE id = ?",
		url, toMillis(db.now()), id)
	if err != nil {
		return fmt.Errorf("set movie poster: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set movie poster: movie %s not found", id)
	}
	return nil
}

// ListMoviesMissingPoster returns movies that have a TMDB poster but no
// hosted copy yet.
func (db *DB) ListMoviesMissingPoster(ctx context.Context) ([]domain.MovieRecord, error) {
	var movies []domain.MovieRecord
	err := db.SelectContext(ctx, &movies, "SELECT "+movieColumns+` FROM movies
		WHERE poster_path != '' AND imagekit_poster_path = '' ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list movies missing poster: %w", err)
	}
	return movies, nil
}
