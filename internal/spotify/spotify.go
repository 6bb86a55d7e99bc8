// Package spotify finds an embeddable soundtrack album or playlist for a
// movie.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

// Filter is the relevance heuristic applied to search hits.
type Filter struct {
	MinAlbumTracks    int
	MinPlaylistTracks int
	Keyword           string
}

func DefaultFilter() Filter {
	return Filter{
		MinAlbumTracks:    constants.DefaultMinAlbumTracks,
		MinPlaylistTracks: constants.DefaultMinPlaylistTracks,
		Keyword:           constants.DefaultSoundtrackKeyword,
	}
}

// Each index is validated on its own so a malformed album hit does not hide
// the playlist tier.
var albumSchema = schema.Schema{
	{Path: "albums", Kind: schema.Object},
	{Path: "albums.items", Kind: schema.Array},
	{Path: "albums.items[].id", Kind: schema.String},
	{Path: "albums.items[].name", Kind: schema.String},
	{Path: "albums.items[].total_tracks", Kind: schema.Number},
	{Path: "albums.items[].images", Kind: schema.Array},
	{Path: "albums.items[].images[].url", Kind: schema.String},
}

// The playlist index returns null entries for removed playlists.
var playlistSchema = schema.Schema{
	{Path: "playlists", Kind: schema.Object},
	{Path: "playlists.items", Kind: schema.Array},
	{Path: "playlists.items[]", Kind: schema.Object, Nullable: true},
	{Path: "playlists.items[].id", Kind: schema.String},
	{Path: "playlists.items[].name", Kind: schema.String},
	{Path: "playlists.items[].tracks.total", Kind: schema.Number},
	{Path: "playlists.items[].images", Kind: schema.Array, Optional: true},
	{Path: "playlists.items[].images[].url", Kind: schema.String},
}

type image struct {
	URL string `json:"url"`
}

type rawAlbum struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	TotalTracks int     `json:"total_tracks"`
	Images      []image `json:"images"`
}

type rawPlaylist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
	Images []image `json:"images"`
}

type searchResponse struct {
	Albums    json.RawMessage `json:"albums"`
	Playlists json.RawMessage `json:"playlists"`
}

type albumPage struct {
	Items []rawAlbum `json:"items"`
}

type playlistPage struct {
	Items []*rawPlaylist `json:"items"`
}

// ErrNoValidTier is returned when neither search index passes validation.
var ErrNoValidTier = errors.New("no valid search tier")

// TokenSource issues bearer tokens per provider.
type TokenSource interface {
	Token(ctx context.Context, provider string) (string, error)
}

type Client struct {
	http     httpclient.Fetcher
	tokens   TokenSource
	baseURL  string
	embedURL string
}

func NewClient(http httpclient.Fetcher, tokens TokenSource, baseURL string) *Client {
	if baseURL == "" {
		baseURL = constants.SpotifyBaseURL
	}
	return &Client{http: http, tokens: tokens, baseURL: baseURL, embedURL: constants.SpotifyEmbedURL}
}

// Search queries the album and playlist indexes at once.
func (c *Client) Search(ctx context.Context, title string) ([]byte, error) {
	token, err := c.tokens.Token(ctx, constants.ProviderSpotify)
	if err != nil {
		return nil, err
	}

	sanitized := strings.TrimSpace(strings.ReplaceAll(title, ".", " "))
	params := url.Values{
		"q":      {sanitized + `" soundtrack`},
		"type":   {"playlist,album"},
		"limit":  {strconv.Itoa(constants.SoundtrackLimit)},
		"market": {"US"},
		"locale": {"en_US"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.http.Fetch(ctx, req)
}

// Pick applies the two-tier filter: the first album with enough tracks whose
// name contains both title and keyword, otherwise the first such playlist.
// It returns nil when neither tier matches.
func (f Filter) Pick(title, embedBase string, raw []byte) (*domain.SoundtrackEmbed, error) {
	embed, _, err := f.pick(title, embedBase, raw)
	return embed, err
}

// pick is Pick that also reports the tiers skipped as malformed.
func (f Filter) pick(title, embedBase string, raw []byte) (*domain.SoundtrackEmbed, []error, error) {
	doc, err := schema.Decode(raw)
	if err != nil {
		return nil, nil, err
	}
	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, nil, err
	}

	var skipped []error
	var albums albumPage
	if err := albumSchema.Validate(doc); err != nil {
		skipped = append(skipped, fmt.Errorf("albums: %w", err))
	} else if err := json.Unmarshal(resp.Albums, &albums); err != nil {
		skipped = append(skipped, fmt.Errorf("albums: %w", err))
	}
	var playlists playlistPage
	if err := playlistSchema.Validate(doc); err != nil {
		skipped = append(skipped, fmt.Errorf("playlists: %w", err))
	} else if err := json.Unmarshal(resp.Playlists, &playlists); err != nil {
		skipped = append(skipped, fmt.Errorf("playlists: %w", err))
	}
	if len(skipped) == 2 {
		return nil, nil, fmt.Errorf("%w: %w", ErrNoValidTier, errors.Join(skipped...))
	}

	for _, a := range albums.Items {
		if a.TotalTracks >= f.MinAlbumTracks && f.relevant(a.Name, title) {
			return &domain.SoundtrackEmbed{
				ID:       a.ID,
				Name:     a.Name,
				Kind:     domain.SoundtrackAlbum,
				EmbedURL: embedBase + "/album/" + a.ID,
				ImageURL: firstImage(a.Images),
			}, skipped, nil
		}
	}

	for _, p := range playlists.Items {
		if p == nil {
			continue
		}
		if p.Tracks.Total >= f.MinPlaylistTracks && f.relevant(p.Name, title) {
			return &domain.SoundtrackEmbed{
				ID:       p.ID,
				Name:     p.Name,
				Kind:     domain.SoundtrackPlaylist,
				EmbedURL: embedBase + "/playlist/" + p.ID,
				ImageURL: firstImage(p.Images),
			}, skipped, nil
		}
	}
	return nil, skipped, nil
}

func (f Filter) relevant(name, title string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, strings.ToLower(title)) && strings.Contains(n, strings.ToLower(f.Keyword))
}

func firstImage(images []image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

type Service struct {
	pipeline *pipeline.Pipeline[string, domain.SoundtrackEmbed]
}

// NewService builds the uncached soundtrack lookup.
func NewService(client *Client, filter Filter, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		pipeline: &pipeline.Pipeline[string, domain.SoundtrackEmbed]{
			Provider: constants.ProviderSpotify,
			Call:     client.Search,
			Normalize: func(_ context.Context, title string, raw []byte) ([]domain.SoundtrackEmbed, error) {
				embed, skipped, err := filter.pick(title, client.embedURL, raw)
				for _, e := range skipped {
					log.Warn("Skipping malformed search tier", "title", title, "error", e)
				}
				if err != nil || embed == nil {
					return nil, err
				}
				return []domain.SoundtrackEmbed{*embed}, nil
			},
			RejectEmpty: true,
			Logger:      log,
		},
	}
}

// Soundtrack returns the best embed for title, or nil when nothing
// relevant was found.
func (s *Service) Soundtrack(ctx context.Context, title string) (*domain.SoundtrackEmbed, error) {
	res, err := s.pipeline.Fetch(ctx, title)
	if errors.Is(err, pipeline.ErrEmpty) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res.Items[0], nil
}
