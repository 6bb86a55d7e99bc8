package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arinleviti/80sHorrorHub/internal/domain"
)

type queryRow struct {
	ID        string `db:"id"`
	Provider  string `db:"provider"`
	QueryKey  string `db:"query_key"`
	UpdatedAt int64  `db:"updated_at"`
}

// FindQuery loads a cached query and its children in insertion order.
// It returns nil, nil when the row does not exist.
func (db *DB) FindQuery(ctx context.Context, provider, key string) (*domain.CachedQuery, error) {
	var row queryRow
	err := db.GetContext(ctx, &row, `
		SELECT id, provider, query_key, updated_at
		FROM cached_queries WHERE provider = ? AND query_key = ?
	`, provider, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find query: %w", err)
	}

	var data []string
	if err := db.SelectContext(ctx, &data,
		"SELECT data FROM cached_items WHERE query_id = ? ORDER BY position", row.ID); err != nil {
		return nil, fmt.Errorf("load cached items: %w", err)
	}

	items := make([]json.RawMessage, 0, len(data))
	for _, d := range data {
		items = append(items, json.RawMessage(d))
	}

	return &domain.CachedQuery{
		ID:        row.ID,
		Provider:  row.Provider,
		QueryKey:  row.QueryKey,
		UpdatedAt: fromMillis(row.UpdatedAt),
		Items:     items,
	}, nil
}

// UpsertQuery creates or refreshes a cached query. Every existing child is
// deleted before the new set is inserted, all in one transaction.
func (db *DB) UpsertQuery(ctx context.Context, provider, key string, items []json.RawMessage, updatedAt time.Time) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ts := toMillis(updatedAt)
	var id string
	err = tx.GetContext(ctx, &id, `
		INSERT INTO cached_queries (id, provider, query_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(provider, query_key) DO UPDATE SET updated_at = excluded.updated_at
		RETURNING id
	`, uuid.NewString(), provider, key, ts, ts)
	if err != nil {
		return fmt.Errorf("upsert query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM cached_items WHERE query_id = ?", id); err != nil {
		return fmt.Errorf("delete cached items: %w", err)
	}

	for i, item := range items {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO cached_items (query_id, position, data) VALUES (?, ?, ?)",
			id, i, string(item)); err != nil {
			return fmt.Errorf("insert cached item %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// DeleteQuery removes a cached query and its children.
func (db *DB) DeleteQuery(ctx context.Context, provider, key string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM cached_items WHERE query_id IN (
			SELECT id FROM cached_queries WHERE provider = ? AND query_key = ?
		)`, provider, key); err != nil {
		return fmt.Errorf("delete cached items: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM cached_queries WHERE provider = ? AND query_key = ?", provider, key); err != nil {
		return fmt.Errorf("delete query: %w", err)
	}
	return tx.Commit()
}

// DeleteProviderQueries drops every cached query of one provider and
// returns how many were removed.
func (db *DB) DeleteProviderQueries(ctx context.Context, provider string) (int64, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM cached_items WHERE query_id IN (
			SELECT id FROM cached_queries WHERE provider = ?
		)`, provider); err != nil {
		return 0, fmt.Errorf("delete cached items: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM cached_queries WHERE provider = ?", provider)
	if err != nil {
		return 0, fmt.Errorf("delete queries: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}
