// Package discogs looks up vinyl soundtrack releases on the music
// marketplace.
package discogs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/arinleviti/80sHorrorHub/internal/constants"
	"github.com/arinleviti/80sHorrorHub/internal/domain"
	"github.com/arinleviti/80sHorrorHub/internal/httpclient"
	"github.com/arinleviti/80sHorrorHub/internal/logger"
	"github.com/arinleviti/80sHorrorHub/internal/pipeline"
	"github.com/arinleviti/80sHorrorHub/internal/schema"
)

type Query struct {
	Title string
	Year  string
}

var searchSchema = schema.Schema{
	{Path: "pagination", Kind: schema.Object},
	{Path: "results", Kind: schema.Array},
	{Path: "results[]", Kind: schema.Object},
	{Path: "results[].title", Kind: schema.String},
	{Path: "results[].uri", Kind: schema.String},
	{Path: "results[].year", Kind: schema.StringOrNumber, Optional: true},
	{Path: "results[].format", Kind: schema.Array, Optional: true},
}

type rawResult struct {
	Title  string          `json:"title"`
	Year   json.RawMessage `json:"year"`
	Format []string        `json:"format"`
	Thumb  string          `json:"thumb"`
	URI    string          `json:"uri"`
}

type Client struct {
	http      httpclient.Fetcher
	token     string
	baseURL   string
	userAgent string
}

func NewClient(http httpclient.Fetcher, token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = constants.DiscogsBaseURL
	}
	return &Client{http: http, token: token, baseURL: baseURL, userAgent: constants.DefaultUserAgent}
}

func (c *Client) Search(ctx context.Context, q Query) ([]byte, error) {
	params := url.Values{
		"q":        {q.Title + " " + q.Year + " soundtrack"},
		"format":   {"vinyl"},
		"type":     {"release"},
		"per_page": {strconv.Itoa(constants.DiscogsPerPage)},
		"token":    {c.token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/database/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	return c.http.Fetch(ctx, req)
}

// Normalize maps releases, coercing the year to a nullable int.
func Normalize(raw []byte) ([]domain.VinylRelease, error) {
	var resp struct {
		Results []rawResult `json:"results"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	releases := make([]domain.VinylRelease, 0, len(resp.Results))
	for _, r := range resp.Results {
		format := r.Format
		if format == nil {
			format = []string{}
		}
		releases = append(releases, domain.VinylRelease{
			Title:  r.Title,
			Year:   coerceYear(r.Year),
			Format: format,
			Thumb:  r.Thumb,
			URI:    r.URI,
		})
	}
	return releases, nil
}

// coerceYear accepts 1982, "1982" or nothing. Zero and unparsable values
// become nil.
func coerceYear(raw json.RawMessage) *int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f == 0 {
		return nil
	}
	y := int(f)
	return &y
}

type Service struct {
	pipeline *pipeline.Pipeline[Query, domain.VinylRelease]
}

func NewService(client *Client, store pipeline.Store, log *logger.Logger) *Service {
	return &Service{
		pipeline: &pipeline.Pipeline[Query, domain.VinylRelease]{
			Provider: constants.ProviderDiscogs,
			TTL:      constants.VinylTTL,
			Store:    store,
			Key:      func(q Query) string { return q.Title + q.Year },
			Call:     client.Search,
			Schema:   searchSchema,
			Normalize: func(_ context.Context, _ Query, raw []byte) ([]domain.VinylRelease, error) {
				return Normalize(raw)
			},
			StaleOnFailure: true,
			RejectEmpty:    true,
			Logger:         log,
		},
	}
}

// Releases returns vinyl releases, or nil when the search found nothing
// or failed with nothing cached.
func (s *Service) Releases(ctx context.Context, title, year string) ([]domain.VinylRelease, error) {
	res, err := s.pipeline.Fetch(ctx, Query{Title: title, Year: year})
	if errors.Is(err, pipeline.ErrEmpty) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}
