// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort            = "8080"
	DefaultDBPath          = "horrorhub.db"
	DefaultConfigFile      = ".env"
	DefaultProviderTimeout = 8 * time.Second
	DefaultHTTPTimeout     = 15 * time.Second
	ImageHTTPTimeout       = 30 * time.Second
	DefaultRetryCount      = 3
	DefaultRetryBase       = 1 * time.Second
	DefaultRequestsPerSec  = 5
	DefaultCacheTTL        = 12 * time.Hour
	DefaultCountry         = "us"
	DefaultAIDescriptions  = "data/aiMovieDescriptions.json"
	DefaultUserAgent       = "80sHorrorHub/1.0"
)

// Freshness windows per provider
const (
	VideoTTL      = 14 * 24 * time.Hour
	ListingTTL    = 12 * time.Hour
	VinylTTL      = 24 * time.Hour
	StreamingTTL  = 14 * 24 * time.Hour
	SuggestionTTL = 24 * time.Hour
)

// Provider identifiers, used as cache namespaces and token owners
const (
	ProviderYouTube    = "youtube"
	ProviderEbay       = "ebay"
	ProviderDiscogs    = "discogs"
	ProviderSpotify    = "spotify"
	ProviderStreaming  = "streaming"
	ProviderSuggestion = "huggingface"
	ProviderTMDB       = "tmdb"
)

// Token refresh
const (
	TokenSafetyMargin    = 60 * time.Second
	TokenExchangeTimeout = 15 * time.Second
)

// Remote endpoints
const (
	TMDBBaseURL          = "https://api.themoviedb.org/3"
	TMDBImageBaseURL     = "https://image.tmdb.org/t/p"
	YouTubeBaseURL       = "https://www.googleapis.com/youtube/v3"
	EbayBaseURL          = "https://api.ebay.com"
	EbayTokenURL         = "https://api.ebay.com/identity/v1/oauth2/token"
	EbayScope            = "https://api.ebay.com/oauth/api_scope"
	DiscogsBaseURL       = "https://api.discogs.com"
	SpotifyBaseURL       = "https://api.spotify.com/v1"
	SpotifyTokenURL      = "https://accounts.spotify.com/api/token"
	SpotifyEmbedURL      = "https://open.spotify.com/embed"
	StreamingBaseURL     = "https://streaming-availability.p.rapidapi.com"
	StreamingHost        = "streaming-availability.p.rapidapi.com"
	HuggingFaceBaseURL   = "https://router.huggingface.co/v1"
	DefaultHFModel       = "meta-llama/Llama-3.1-8B-Instruct"
	ImageKitUploadURL    = "https://upload.imagekit.io/api/v1/files/upload"
	PlaceholderPosterURL = "/static/placeholder-poster.png"
)

// Provider request shapes
const (
	YouTubeMaxResults  = 3
	EbayLimit          = 4
	DiscogsPerPage     = 5
	SoundtrackLimit    = 5
	SuggestionCount    = 5
	SuggestionMaxToken = 150
	PosterSize         = "w500"
	ProfileSize        = "w185"
)

// Soundtrack relevance filter defaults
const (
	DefaultMinAlbumTracks    = 5
	DefaultMinPlaylistTracks = 3
	DefaultSoundtrackKeyword = "soundtrack"
)

// Record linking
const (
	MinWordOverlap = 0.7
)

// Database
const (
	CachedQueriesTable  = "cached_queries"
	CachedItemsTable    = "cached_items"
	TokensTable         = "oauth_tokens"
	MoviesTable         = "movies"
	DescriptionsTable   = "ai_descriptions"
	CacheTable          = "cache"
	MaxResponseBodySize = 4 << 20
)

// HTTP Status Codes
const (
	StatusOK            = 200
	StatusNotFound      = 404
	StatusBadGateway    = 502
	StatusInternalError = 500
)
