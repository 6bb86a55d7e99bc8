package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Video is a normalized video search hit.
type Video struct {
	YouTubeID string `json:"youtubeId"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`
}

// Price is copied verbatim from the marketplace.
type Price struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// Listing is a normalized auction marketplace item.
type Listing struct {
	Title    string `json:"title"`
	Price    Price  `json:"price"`
	ImageURL string `json:"imageUrl"`
	WebURL   string `json:"itemAffiliateWebUrl"`
}

// VinylRelease is a normalized music marketplace release.
type VinylRelease struct {
	Title  string   `json:"title"`
	Year   *int     `json:"year"`
	Format []string `json:"format"`
	Thumb  string   `json:"thumb,omitempty"`
	URI    string   `json:"uri"`
}

// StreamingOption is one way to watch a title in a country.
type StreamingOption struct {
	Type        string `json:"type"`
	Quality     string `json:"quality,omitempty"`
	Link        string `json:"link,omitempty"`
	ServiceName string `json:"serviceName,omitempty"`
}

// StreamingAvailability is either a success record or a tagged error record.
// Check IsError before reading the success fields.
type StreamingAvailability struct {
	Title            string            `json:"title,omitempty"`
	ReleaseYear      int               `json:"releaseYear,omitempty"`
	StreamingOptions []StreamingOption `json:"streamingOptions,omitempty"`
	Error            string            `json:"error,omitempty"`
}

func (s *StreamingAvailability) IsError() bool {
	return s == nil || s.Error != ""
}

// SoundtrackKind tells which search index produced an embed.
type SoundtrackKind string

const (
	SoundtrackAlbum    SoundtrackKind = "album"
	SoundtrackPlaylist SoundtrackKind = "playlist"
)

// SoundtrackEmbed is an embeddable soundtrack album or playlist.
type SoundtrackEmbed struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Kind     SoundtrackKind `json:"kind"`
	EmbedURL string         `json:"embedUrl"`
	ImageURL string         `json:"imageUrl,omitempty"`
}

// Suggestion is an AI-suggested movie linked to a local movie record.
type Suggestion struct {
	Title     string `json:"title"`
	Year      string `json:"year,omitempty"`
	PosterURL string `json:"posterUrl,omitempty"`
	MovieID   string `json:"movieId"`
	Slug      string `json:"slug,omitempty"`
}

// AiDescription holds the pre-generated editorial blurbs for one movie.
type AiDescription struct {
	MovieID           string `db:"movie_id" json:"-"`
	Synopsis          string `db:"synopsis" json:"synopsis"`
	FunFacts          string `db:"fun_facts" json:"funFacts"`
	ProductionContext string `db:"production_context" json:"productionContext"`
	Reception         string `db:"reception" json:"reception"`
}

// MovieRecord is the local reference record for a movie.
type MovieRecord struct {
	ID                 string `db:"id"`
	TMDBID             int    `db:"tmdb_id"`
	Title              string `db:"title"`
	Slug               string `db:"slug"`
	ReleaseDate        string `db:"release_date"`
	PosterPath         string `db:"poster_path"`
	ImageKitPosterPath string `db:"imagekit_poster_path"`
}

// OAuthToken is the single live bearer token of a provider.
type OAuthToken struct {
	Provider  string
	Token     string
	ExpiresAt time.Time
}

// Usable reports whether the token may still be sent at now.
func (t *OAuthToken) Usable(now time.Time) bool {
	return t != nil && t.Token != "" && now.Before(t.ExpiresAt)
}

// CachedQuery is a cached provider response with its ordered children.
type CachedQuery struct {
	ID        string
	Provider  string
	QueryKey  string
	UpdatedAt time.Time
	Items     []json.RawMessage
}

// MovieID formats a TMDB id as the local movie id.
func MovieID(tmdbID int) string {
	return strconv.Itoa(tmdbID)
}
