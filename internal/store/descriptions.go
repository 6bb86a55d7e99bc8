package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arinleviti/80sHorrorHub/internal/domain"
)

// GetAiDescription returns nil, nil when the movie has no description.
func (db *DB) GetAiDescription(ctx context.Context, movieID string) (*domain.AiDescription, error) {
	var d domain.AiDescription
	err := db.GetContext(ctx, &d, `
		SELECT movie_id,
			COALESCE(synopsis, '') AS synopsis,
			COALESCE(fun_facts, '') AS fun_facts,
			COALESCE(production_context, '') AS production_context,
			COALESCE(reception, '') AS reception
		FROM ai_descriptions WHERE movie_id = ?
	`, movieID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ai description: %w", err)
	}
	return &d, nil
}

func (db *DB) UpsertAiDescription(ctx context.Context, d *domain.AiDescription) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO ai_descriptions (movie_id, synopsis, fun_facts, production_context, reception, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(movie_id) DO UPDATE SET
			synopsis = excluded.synopsis,
			fun_facts = excluded.fun_facts,
			production_context = excluded.production_context,
			reception = excluded.reception,
			updated_at = excluded.updated_at
	`, d.MovieID, d.Synopsis, d.FunFacts, d.ProductionContext, d.Reception, toMillis(db.now()))
	if err != nil {
		return fmt.Errorf("upsert ai description: %w", err)
	}
	return nil
}
