// Package youtube searches trailer and clip videos for a movie.
package youtube

import (
	"context"
	"encoding/json"
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

// ErrorVideo is served in place of results when the video search fails.
var ErrorVideo = domain.Video{
	YouTubeID: "error",
	Title:     "Unable to fetch videos (quota exceeded or API error)",
	Thumbnail: "",
	URL:       "#",
}

var searchSchema = schema.Schema{
	{Path: "items", Kind: schema.Array},
	{Path: "items[].id.videoId", Kind: schema.String},
	{Path: "items[].snippet.title", Kind: schema.String},
	{Path: "items[].snippet.thumbnails.medium.url", Kind: schema.String},
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type Client struct {
	http    httpclient.Fetcher
	apiKey  string
	baseURL string
}

func NewClient(http httpclient.Fetcher, apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = constants.YouTubeBaseURL
	}
	return &Client{http: http, apiKey: apiKey, baseURL: baseURL}
}

// Search returns the raw search payload for query.
func (c *Client) Search(ctx context.Context, query string) ([]byte, error) {
	params := url.Values{
		"part":       {"snippet"},
		"q":          {query},
		"type":       {"video"},
		"maxResults": {strconv.Itoa(constants.YouTubeMaxResults)},
		"key":        {c.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return c.http.Fetch(ctx, req)
}

// Normalize maps a validated search payload to videos.
func Normalize(raw []byte) ([]domain.Video, error) {
	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	videos := make([]domain.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		videos = append(videos, domain.Video{
			YouTubeID: item.ID.VideoID,
			Title:     item.Snippet.Title,
			Thumbnail: item.Snippet.Thumbnails.Medium.URL,
			URL:       "https://www.youtube.com/watch?v=" + item.ID.VideoID,
		})
	}
	return videos, nil
}

type Service struct {
	pipeline *pipeline.Pipeline[string, domain.Video]
}

func NewService(client *Client, store pipeline.Store, log *logger.Logger) *Service {
	return &Service{
		pipeline: &pipeline.Pipeline[string, domain.Video]{
			Provider: constants.ProviderYouTube,
			TTL:      constants.VideoTTL,
			Store:    store,
			Key:      func(q string) string { return q },
			Call:     client.Search,
			Schema:   searchSchema,
			Normalize: func(_ context.Context, _ string, raw []byte) ([]domain.Video, error) {
				return Normalize(raw)
			},
			Fallback: func(string) []domain.Video { return []domain.Video{ErrorVideo} },
			Logger:   log,
		},
	}
}

// Videos returns the videos for query. It never fails: a broken search
// yields the single ErrorVideo entry.
func (s *Service) Videos(ctx context.Context, query string) ([]domain.Video, error) {
	res, err := s.pipeline.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// Queries builds the three searches shown on a movie page.
func Queries(title, year string) []string {
	base := title
	if year != "" {
		base = fmt.Sprintf("%s %s", title, year)
	}
	return []string{
		base + " trailer",
		base + " behind the scenes interview",
		base + " top moments",
	}
}
