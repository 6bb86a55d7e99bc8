// Package tmdb reads movie metadata, image configuration and credits from
// The Movie Database.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/arinleviti/80sHorrorHub/internal/constants"
	"github.com/arinleviti/80sHorrorHub/internal/domain"
	"github.com/arinleviti/80sHorrorHub/internal/httpclient"
	"github.com/arinleviti/80sHorrorHub/internal/schema"
)

// API is the metadata surface page assembly depends on.
type API interface {
	Movie(ctx context.Context, id int) (*domain.Movie, error)
	Configuration(ctx context.Context) (*domain.ImageConfig, error)
	Credits(ctx context.Context, id int) (*domain.Credits, error)
}

var movieSchema = schema.Schema{
	{Path: "title", Kind: schema.String},
	{Path: "release_date", Kind: schema.String},
	{Path: "overview", Kind: schema.String},
	{Path: "poster_path", Kind: schema.String, Nullable: true},
	{Path: "popularity", Kind: schema.Number},
}

var configurationSchema = schema.Schema{
	{Path: "images", Kind: schema.Object},
	{Path: "images.secure_base_url", Kind: schema.String},
	{Path: "images.poster_sizes", Kind: schema.Array},
	{Path: "images.poster_sizes[]", Kind: schema.String},
}

var creditsSchema = schema.Schema{
	{Path: "id", Kind: schema.Number},
	{Path: "cast", Kind: schema.Array},
	{Path: "cast[].cast_id", Kind: schema.Number},
	{Path: "cast[].character", Kind: schema.String},
	{Path: "cast[].name", Kind: schema.String},
	{Path: "cast[].profile_path", Kind: schema.String, Nullable: true},
	{Path: "crew", Kind: schema.Array},
	{Path: "crew[].job", Kind: schema.String},
	{Path: "crew[].name", Kind: schema.String},
}

type Client struct {
	http    httpclient.Fetcher
	token   string
	baseURL string
}

func NewClient(http httpclient.Fetcher, bearerToken, baseURL string) *Client {
	if baseURL == "" {
		baseURL = constants.TMDBBaseURL
	}
	return &Client{http: http, token: bearerToken, baseURL: baseURL}
}

func (c *Client) Movie(ctx context.Context, id int) (*domain.Movie, error) {
	var m domain.Movie
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), movieSchema, &m); err != nil {
		return nil, fmt.Errorf("movie %d: %w", id, err)
	}
	if m.ID == 0 {
		m.ID = id
	}
	return &m, nil
}

func (c *Client) Configuration(ctx context.Context) (*domain.ImageConfig, error) {
	var resp struct {
		Images domain.ImageConfig `json:"images"`
	}
	if err := c.get(ctx, "/configuration", configurationSchema, &resp); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	return &resp.Images, nil
}

func (c *Client) Credits(ctx context.Context, id int) (*domain.Credits, error) {
	var cr domain.Credits
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/credits", id), creditsSchema, &cr); err != nil {
		return nil, fmt.Errorf("credits %d: %w", id, err)
	}
	return &cr, nil
}

func (c *Client) get(ctx context.Context, path string, s schema.Schema, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	raw, err := c.http.Fetch(ctx, req)
	if err != nil {
		return err
	}
	if err := s.ValidateJSON(raw); err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// ImageURL joins an image path onto the configured base and size. It
// returns "" when path is unset.
func ImageURL(cfg *domain.ImageConfig, size string, path *string) string {
	if cfg == nil || path == nil || *path == "" {
		return ""
	}
	return cfg.SecureBaseURL + size + *path
}

var _ API = (*Client)(nil)
