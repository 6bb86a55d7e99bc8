// Package streaming reports where a movie can be watched in a country.
package streaming

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/arinleviti/80sHorrorHub/internal/constants"
	"github.com/arinleviti/80sHorrorHub/internal/domain"
	"github.com/arinleviti/80sHorrorHub/internal/httpclient"
	"github.com/arinleviti/80sHorrorHub/internal/logger"
	"github.com/arinleviti/80sHorrorHub/internal/pipeline"
	"github.com/arinleviti/80sHorrorHub/internal/schema"
)

const (
	ReasonNoResults   = "No results found"
	ReasonUnavailable = "Streaming availability unavailable"
)

// ErrNoMatch means the title search returned no shows.
var ErrNoMatch = errors.New("no matching show")

type Query struct {
	Title   string
	Country string
	Year    int
}

var showSchema = schema.Schema{
	{Path: "title", Kind: schema.String},
	{Path: "releaseYear", Kind: schema.Number, Optional: true},
	{Path: "streamingOptions", Kind: schema.Object, Optional: true},
}

type show struct {
	Title       string `json:"title"`
	ReleaseYear int    `json:"releaseYear"`
	IMDbID      string `json:"imdbId"`
	TMDBID      string `json:"tmdbId"`
}

type showDetails struct {
	Title            string                 `json:"title"`
	ReleaseYear      int                    `json:"releaseYear"`
	StreamingOptions map[string][]rawOption `json:"streamingOptions"`
}

type rawOption struct {
	Type    string `json:"type"`
	Quality string `json:"quality"`
	Link    string `json:"link"`
	Service struct {
		Name string `json:"name"`
	} `json:"service"`
}

type Client struct {
	http    httpclient.Fetcher
	apiKey  string
	baseURL string
	host    string
}

func NewClient(http httpclient.Fetcher, apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = constants.StreamingBaseURL
	}
	return &Client{http: http, apiKey: apiKey, baseURL: baseURL, host: constants.StreamingHost}
}

// Lookup searches by title, picks the show released in q.Year (or the
// first hit) and returns its detail payload.
func (c *Client) Lookup(ctx context.Context, q Query) ([]byte, error) {
	params := url.Values{"title": {q.Title}, "country": {q.Country}}
	raw, err := c.get(ctx, "/shows/search/title?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	doc, err := schema.Decode(raw)
	if err != nil {
		return nil, err
	}
	if _, ok := doc.([]any); !ok {
		return nil, &schema.ValidationError{Field: "$", Message: "must be an array"}
	}
	var shows []show
	if err := json.Unmarshal(raw, &shows); err != nil {
		return nil, err
	}
	if len(shows) == 0 {
		return nil, ErrNoMatch
	}

	pick := shows[0]
	if q.Year != 0 {
		for _, s := range shows {
			if s.ReleaseYear == q.Year {
				pick = s
				break
			}
		}
	}

	id := pick.IMDbID
	if id == "" {
		id = pick.TMDBID
	}
	if id == "" {
		return nil, &schema.ValidationError{Field: "imdbId", Message: "is required"}
	}
	return c.get(ctx, "/shows/"+id+"?"+url.Values{"country": {q.Country}}.Encode())
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)
	return c.http.Fetch(ctx, req)
}

// Normalize maps show details to the options offered in country.
func Normalize(raw []byte, country string) (domain.StreamingAvailability, error) {
	var d showDetails
	if err := json.Unmarshal(raw, &d); err != nil {
		return domain.StreamingAvailability{}, err
	}
	opts := d.StreamingOptions[country]
	out := make([]domain.StreamingOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, domain.StreamingOption{
			Type:        o.Type,
			Quality:     o.Quality,
			Link:        o.Link,
			ServiceName: o.Service.Name,
		})
	}
	return domain.StreamingAvailability{
		Title:            d.Title,
		ReleaseYear:      d.ReleaseYear,
		StreamingOptions: out,
	}, nil
}

type Service struct {
	pipeline *pipeline.Pipeline[Query, domain.StreamingAvailability]
	country  string
}

func NewService(client *Client, store pipeline.Store, country string, log *logger.Logger) *Service {
	if country == "" {
		country = constants.DefaultCountry
	}
	return &Service{
		country: country,
		pipeline: &pipeline.Pipeline[Query, domain.StreamingAvailability]{
			Provider: constants.ProviderStreaming,
			TTL:      constants.StreamingTTL,
			Store:    store,
			Key: func(q Query) string {
				return q.Title + q.Country + strconv.Itoa(q.Year)
			},
			Call:   client.Lookup,
			Schema: showSchema,
			Normalize: func(_ context.Context, q Query, raw []byte) ([]domain.StreamingAvailability, error) {
				a, err := Normalize(raw, q.Country)
				if err != nil {
					return nil, err
				}
				return []domain.StreamingAvailability{a}, nil
			},
			Logger: log,
		},
	}
}

// Availability always returns a record. Failures come back as a tagged
// error record; check IsError before reading the success fields.
func (s *Service) Availability(ctx context.Context, title string, year int) *domain.StreamingAvailability {
	res, err := s.pipeline.Fetch(ctx, Query{Title: title, Country: s.country, Year: year})
	switch {
	case errors.Is(err, ErrNoMatch):
		return &domain.StreamingAvailability{Error: ReasonNoResults}
	case err != nil || len(res.Items) == 0:
		return &domain.StreamingAvailability{Error: ReasonUnavailable}
	}
	return &res.Items[0]
}
