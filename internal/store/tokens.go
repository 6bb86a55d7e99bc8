package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arinleviti/80sHorrorHub/internal/domain"
)

func (db *DB) GetToken(ctx context.Context, provider string) (*domain.OAuthToken, error) {
	var row struct {
		Token     string `db:"token"`
		ExpiresAt int64  `db:"expires_at"`
	}
	err := db.GetContext(ctx, &row,
		"SELECT token, expires_at FROM oauth_tokens WHERE provider = ?", provider)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}
	return &domain.OAuthToken{
		Provider:  provider,
		Token:     row.Token,
		ExpiresAt: fromMillis(row.ExpiresAt),
	}, nil
}

// SaveToken keeps a single row per provider; the last writer wins.
func (db *DB) SaveToken(ctx context.Context, tok *domain.OAuthToken) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO oauth_tokens (provider, token, expires_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			token = excluded.token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, tok.Provider, tok.Token, toMillis(tok.ExpiresAt), toMillis(db.now()))
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}
