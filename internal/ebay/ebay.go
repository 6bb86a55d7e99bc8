// Package ebay searches memorabilia listings on the auction marketplace.
package ebay

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

const endUserContext = "contextualLocation=country=US,zip=10001"

// MockListings is served verbatim whenever the marketplace cannot be reached.
var MockListings = []domain.Listing{
	{
		Title:    "The Matrix Neo Action Figure",
		Price:    domain.Price{Value: "19.99", Currency: "USD"},
		ImageURL: "https://via.placeholder.com/100x100.png?text=Action+Figure",
		WebURL:   "https://www.ebay.com/itm/1234567890",
	},
	{
		Title:    "The Matrix Poster 1999",
		Price:    domain.Price{Value: "9.99", Currency: "USD"},
		ImageURL: "https://via.placeholder.com/100x150.png?text=Poster",
		WebURL:   "https://www.ebay.com/itm/1234567891",
	},
}

// A search with no hits omits itemSummaries entirely.
var searchSchema = schema.Schema{
	{Path: "itemSummaries", Kind: schema.Array, Optional: true},
	{Path: "itemSummaries[].title", Kind: schema.String},
	{Path: "itemSummaries[].price.value", Kind: schema.String},
	{Path: "itemSummaries[].price.currency", Kind: schema.String},
	{Path: "itemSummaries[].itemWebUrl", Kind: schema.String},
	{Path: "itemSummaries[].thumbnailImages", Kind: schema.Array, Optional: true},
	{Path: "itemSummaries[].thumbnailImages[].imageUrl", Kind: schema.String, Optional: true},
}

type rawItem struct {
	Title           string       `json:"title"`
	Price           domain.Price `json:"price"`
	ThumbnailImages []struct {
		ImageURL string `json:"imageUrl"`
	} `json:"thumbnailImages"`
	ItemWebURL string `json:"itemWebUrl"`
}

// TokenSource issues bearer tokens per provider.
type TokenSource interface {
	Token(ctx context.Context, provider string) (string, error)
}

type Client struct {
	http    httpclient.Fetcher
	tokens  TokenSource
	baseURL string
}

func NewClient(http httpclient.Fetcher, tokens TokenSource, baseURL string) *Client {
	if baseURL == "" {
		baseURL = constants.EbayBaseURL
	}
	return &Client{http: http, tokens: tokens, baseURL: baseURL}
}

func (c *Client) Search(ctx context.Context, query string) ([]byte, error) {
	token, err := c.tokens.Token(ctx, constants.ProviderEbay)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(constants.EbayLimit)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/buy/browse/v1/item_summary/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-EBAY-C-ENDUSERCTX", endUserContext)
	return c.http.Fetch(ctx, req)
}

// Normalize copies price and currency verbatim and keeps only the first
// thumbnail, or "" when there is none.
func Normalize(raw []byte) ([]domain.Listing, error) {
	var resp struct {
		ItemSummaries []rawItem `json:"itemSummaries"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	listings := make([]domain.Listing, 0, len(resp.ItemSummaries))
	for _, item := range resp.ItemSummaries {
		image := ""
		if len(item.ThumbnailImages) > 0 {
			image = item.ThumbnailImages[0].ImageURL
		}
		listings = append(listings, domain.Listing{
			Title:    item.Title,
			Price:    item.Price,
			ImageURL: image,
			WebURL:   item.ItemWebURL,
		})
	}
	return listings, nil
}

type Service struct {
	pipeline *pipeline.Pipeline[string, domain.Listing]
}

func NewService(client *Client, store pipeline.Store, log *logger.Logger) *Service {
	return &Service{
		pipeline: &pipeline.Pipeline[string, domain.Listing]{
			Provider: constants.ProviderEbay,
			TTL:      constants.ListingTTL,
			Store:    store,
			Key:      func(q string) string { return q },
			Call:     client.Search,
			Schema:   searchSchema,
			Normalize: func(_ context.Context, _ string, raw []byte) ([]domain.Listing, error) {
				return Normalize(raw)
			},
			Fallback: func(string) []domain.Listing {
				return append([]domain.Listing(nil), MockListings...)
			},
			Logger: log,
		},
	}
}

// Listings returns marketplace listings for query, or MockListings when the
// token exchange, the search or the payload check fails.
func (s *Service) Listings(ctx context.Context, query string) ([]domain.Listing, error) {
	res, err := s.pipeline.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// Query builds the memorabilia search for a movie.
func Query(title, year string) string {
	if year == "" {
		return fmt.Sprintf("%s memorabilia collectible", title)
	}
	return fmt.Sprintf("%s %s memorabilia collectible", title, year)
}
