// Package suggest asks a hosted language model for similar movies and links
// the answers to local movie records.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/arinleviti/80sHorrorHub/internal/constants"
	"github.com/arinleviti/80sHorrorHub/internal/domain"
	"github.com/arinleviti/80sHorrorHub/internal/httpclient"
	"github.com/arinleviti/80sHorrorHub/internal/linker"
	"github.com/arinleviti/80sHorrorHub/internal/logger"
	"github.com/arinleviti/80sHorrorHub/internal/pipeline"
	"github.com/arinleviti/80sHorrorHub/internal/schema"
)

// ErrBadCompletion means the model answer was not a JSON array of movies.
var ErrBadCompletion = errors.New("model output is not a suggestion list")

type Query struct {
	MovieID string
	Title   string
	Year    string
}

var completionSchema = schema.Schema{
	{Path: "choices", Kind: schema.Array},
	{Path: "choices[].message.content", Kind: schema.String},
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type Client struct {
	http    httpclient.Fetcher
	apiKey  string
	baseURL string
	model   string
}

func NewClient(http httpclient.Fetcher, apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = constants.HuggingFaceBaseURL
	}
	if model == "" {
		model = constants.DefaultHFModel
	}
	return &Client{http: http, apiKey: apiKey, baseURL: baseURL, model: model}
}

// Prompt is the user message sent for a movie.
func Prompt(title, year string) string {
	if _, err := strconv.Atoi(year); err != nil {
		year = "unknown year"
	}
	return fmt.Sprintf(`Suggest exactly %d horror movies released between 1975 and 1995 that are similar in tone, style, and themes to "%s" (%s).
Return your answer as a valid JSON array with %d objects.
Each object must have two fields: "title" (string) and "year" (string).
Do not include any extra text or explanation.`, constants.SuggestionCount, title, year, constants.SuggestionCount)
}

func (c *Client) Complete(ctx context.Context, q Query) ([]byte, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: Prompt(q.Title, q.Year)}},
		MaxTokens:   constants.SuggestionMaxToken,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return c.http.Fetch(ctx, req)
}

// Candidate is one movie named by the model.
type Candidate struct {
	Title string
	Year  string
}

// ParseCompletion extracts {title, year} pairs from the first choice. The
// content is untrusted: anything other than a non-empty JSON array of
// objects is ErrBadCompletion. Entries without a string title are dropped
// and numeric years become strings.
func ParseCompletion(raw []byte) ([]Candidate, error) {
	var resp struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrBadCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	// Models like to wrap the array in prose or code fences.
	if start, end := strings.Index(content, "["), strings.LastIndex(content, "]"); start >= 0 && end > start {
		content = content[start : end+1]
	}

	doc, err := schema.Decode([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadCompletion, err)
	}
	arr, ok := doc.([]any)
	if !ok {
		return nil, ErrBadCompletion
	}

	out := make([]Candidate, 0, len(arr))
	for _, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		title, ok := obj["title"].(string)
		if !ok || strings.TrimSpace(title) == "" {
			continue
		}
		out = append(out, Candidate{Title: title, Year: yearString(obj["year"])})
	}
	if len(out) == 0 {
		return nil, ErrBadCompletion
	}
	return out, nil
}

func yearString(v any) string {
	switch y := v.(type) {
	case string:
		return y
	case json.Number:
		return y.String()
	default:
		return ""
	}
}

// MovieLister returns the local movie records suggestions link to.
type MovieLister interface {
	ListMovies(ctx context.Context) ([]domain.MovieRecord, error)
}

// Link keeps suggestions whose title exactly equals a stored movie title
// and drops the movie the suggestions were made for.
func Link(items []Candidate, movies []domain.MovieRecord, sourceID string) []domain.Suggestion {
	out := make([]domain.Suggestion, 0, len(items))
	for _, it := range items {
		m := linker.MatchExact(it.Title, movies)
		if m == nil || m.ID == sourceID {
			continue
		}
		out = append(out, domain.Suggestion{
			Title:     it.Title,
			Year:      it.Year,
			PosterURL: m.ImageKitPosterPath,
			MovieID:   m.ID,
			Slug:      m.Slug,
		})
	}
	return out
}

type Service struct {
	pipeline *pipeline.Pipeline[Query, domain.Suggestion]
}

func NewService(client *Client, store pipeline.Store, movies MovieLister, log *logger.Logger) *Service {
	return &Service{
		pipeline: &pipeline.Pipeline[Query, domain.Suggestion]{
			Provider: constants.ProviderSuggestion,
			TTL:      constants.SuggestionTTL,
			Store:    store,
			Key:      func(q Query) string { return q.MovieID },
			Call:     client.Complete,
			Schema:   completionSchema,
			Normalize: func(ctx context.Context, q Query, raw []byte) ([]domain.Suggestion, error) {
				items, err := ParseCompletion(raw)
				if err != nil {
					return nil, err
				}
				recs, err := movies.ListMovies(ctx)
				if err != nil {
					return nil, fmt.Errorf("list movies: %w", err)
				}
				return Link(items, recs, q.MovieID), nil
			},
			StaleOnFailure:     true,
			RequireCachedItems: true,
			Logger:             log,
		},
	}
}

// Suggestions returns linked suggestions for a movie. A failed or
// unparsable completion falls back to the cached set, even if stale.
func (s *Service) Suggestions(ctx context.Context, movieID, title, year string) ([]domain.Suggestion, error) {
	res, err := s.pipeline.Fetch(ctx, Query{MovieID: movieID, Title: title, Year: year})
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}
