// Package tokens hands out OAuth client-credentials bearer tokens, persisted
// per provider and refreshed when they expire.
package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/arinleviti/80sHorrorHub/internal/constants"
	"github.com/arinleviti/80sHorrorHub/internal/domain"
	"github.com/arinleviti/80sHorrorHub/internal/logger"
	"github.com/arinleviti/80sHorrorHub/internal/schema"
)

// ErrTokenExchange wraps every failure to obtain a fresh token.
var ErrTokenExchange = errors.New("token exchange failed")

type Store interface {
	GetToken(ctx context.Context, provider string) (*domain.OAuthToken, error)
	SaveToken(ctx context.Context, tok *domain.OAuthToken) error
}

// Fetcher performs an HTTP request and returns the 2xx body.
type Fetcher interface {
	Fetch(ctx context.Context, req *http.Request) ([]byte, error)
}

// ClientCredentials describes one provider's token endpoint.
type ClientCredentials struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
}

var tokenSchema = schema.Schema{
	{Path: "access_token", Kind: schema.String},
	{Path: "expires_in", Kind: schema.Number},
}

type Manager struct {
	store   Store
	client  Fetcher
	logger  *logger.Logger
	now     func() time.Time
	margin  time.Duration
	timeout time.Duration
	group   singleflight.Group
	mu      sync.RWMutex
	clients map[string]ClientCredentials
}

func NewManager(store Store, client Fetcher, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{
		store:   store,
		client:  client,
		logger:  log.WithComponent("tokens"),
		now:     time.Now,
		margin:  constants.TokenSafetyMargin,
		timeout: constants.TokenExchangeTimeout,
		clients: make(map[string]ClientCredentials),
	}
}

// SetClock replaces the time source.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Register adds or replaces the credentials for provider.
func (m *Manager) Register(provider string, creds ClientCredentials) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[provider] = creds
}

// Token returns a usable bearer token for provider, exchanging new
// credentials when the persisted one is absent or expired. Concurrent
// refreshes for the same provider in this process share one exchange.
func (m *Manager) Token(ctx context.Context, provider string) (string, error) {
	m.mu.RLock()
	creds, ok := m.clients[provider]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: provider %q is not registered", ErrTokenExchange, provider)
	}

	tok, err := m.store.GetToken(ctx, provider)
	if err != nil {
		m.logger.Warn("Failed to read persisted token", "provider", provider, "error", err)
	}
	if tok.Usable(m.now()) {
		return tok.Token, nil
	}

	// The shared exchange outlives any single caller; each caller still
	// gives up at its own deadline.
	ch := m.group.DoChan(provider, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()
		return m.refresh(rctx, provider, creds)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %s: %w", ErrTokenExchange, provider, ctx.Err())
	}
}

func (m *Manager) refresh(ctx context.Context, provider string, creds ClientCredentials) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	if creds.Scope != "" {
		form.Set("scope", creds.Scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTokenExchange, provider, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(creds.ClientID, creds.ClientSecret)

	body, err := m.client.Fetch(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTokenExchange, provider, err)
	}
	if err := tokenSchema.ValidateJSON(body); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTokenExchange, provider, err)
	}

	var resp struct {
		AccessToken string  `json:"access_token"`
		ExpiresIn   float64 `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTokenExchange, provider, err)
	}

	now := m.now()
	tok := &domain.OAuthToken{
		Provider:  provider,
		Token:     resp.AccessToken,
		ExpiresAt: now.Add(time.Duration(resp.ExpiresIn * float64(time.Second))).Add(-m.margin),
	}
	if err := m.store.SaveToken(ctx, tok); err != nil {
		m.logger.Warn("Failed to persist token", "provider", provider, "error", err)
	}

	m.logger.Info("Refreshed access token", "provider", provider, "expires_at", tok.ExpiresAt)
	return tok.Token, nil
}
