package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/arinleviti/80sHorrorHub/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port            string
	DBPath          string
	LogLevel        string
	LogFormat       string
	LogFile         string
	ProviderTimeout time.Duration

	TMDB        TMDBConfig
	YouTube     YouTubeConfig
	Ebay        OAuthConfig
	Spotify     OAuthConfig
	Discogs     DiscogsConfig
	Streaming   StreamingConfig
	HuggingFace HuggingFaceConfig
	ImageKit    ImageKitConfig
	Soundtrack  SoundtrackConfig

	AIDescriptionsPath string
}

type TMDBConfig struct {
	BearerToken string
	BaseURL     string
	CacheTTL    time.Duration
}

type YouTubeConfig struct {
	APIKey  string
	BaseURL string
}

// OAuthConfig covers the client-credentials providers.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
}

type DiscogsConfig struct {
	Token   string
	BaseURL string
}

type StreamingConfig struct {
	APIKey  string
	BaseURL string
	Country string
}

type HuggingFaceConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type ImageKitConfig struct {
	PublicKey   string
	PrivateKey  string
	URLEndpoint string
	UploadURL   string
}

// SoundtrackConfig tunes the soundtrack relevance filter.
type SoundtrackConfig struct {
	MinAlbumTracks    int
	MinPlaylistTracks int
	Keyword           string
}

// Load loads configuration from an optional env/config file and environment
// variables, environment taking precedence.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	return &Config{
		Port:            v.GetString("PORT"),
		DBPath:          v.GetString("DB_PATH"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		LogFile:         v.GetString("LOG_FILE"),
		ProviderTimeout: v.GetDuration("PROVIDER_TIMEOUT"),
		TMDB: TMDBConfig{
			BearerToken: v.GetString("TMDB_BEARER_TOKEN"),
			BaseURL:     v.GetString("TMDB_BASE_URL"),
			CacheTTL:    v.GetDuration("TMDB_CACHE_TTL"),
		},
		YouTube: YouTubeConfig{
			APIKey:  v.GetString("YOUTUBE_API_KEY"),
			BaseURL: v.GetString("YOUTUBE_BASE_URL"),
		},
		Ebay: OAuthConfig{
			ClientID:     v.GetString("EBAY_CLIENT_ID"),
			ClientSecret: v.GetString("EBAY_CLIENT_SECRET"),
			BaseURL:      v.GetString("EBAY_BASE_URL"),
			TokenURL:     v.GetString("EBAY_TOKEN_URL"),
		},
		Spotify: OAuthConfig{
			ClientID:     v.GetString("SPOTIFY_CLIENT_ID"),
			ClientSecret: v.GetString("SPOTIFY_CLIENT_SECRET"),
			BaseURL:      v.GetString("SPOTIFY_BASE_URL"),
			TokenURL:     v.GetString("SPOTIFY_TOKEN_URL"),
		},
		Discogs: DiscogsConfig{
			Token:   v.GetString("DISCOGS_KEY"),
			BaseURL: v.GetString("DISCOGS_BASE_URL"),
		},
		Streaming: StreamingConfig{
			APIKey:  v.GetString("STREAMING_AVAILABILITY"),
			BaseURL: v.GetString("STREAMING_BASE_URL"),
			Country: v.GetString("STREAMING_COUNTRY"),
		},
		HuggingFace: HuggingFaceConfig{
			APIKey:  v.GetString("HUGGING_FACE_KEY"),
			BaseURL: v.GetString("HUGGING_FACE_BASE_URL"),
			Model:   v.GetString("HUGGING_FACE_MODEL"),
		},
		ImageKit: ImageKitConfig{
			PublicKey:   v.GetString("IMAGEKIT_PUBLIC_KEY"),
			PrivateKey:  v.GetString("IMAGEKIT_PRIVATE_KEY"),
			URLEndpoint: v.GetString("IMAGEKIT_URL_ENDPOINT"),
			UploadURL:   v.GetString("IMAGEKIT_UPLOAD_URL"),
		},
		Soundtrack: SoundtrackConfig{
			MinAlbumTracks:    v.GetInt("SOUNDTRACK_MIN_ALBUM_TRACKS"),
			MinPlaylistTracks: v.GetInt("SOUNDTRACK_MIN_PLAYLIST_TRACKS"),
			Keyword:           v.GetString("SOUNDTRACK_KEYWORD"),
		},
		AIDescriptionsPath: v.GetString("AI_DESCRIPTIONS_PATH"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", constants.DefaultPort)
	v.SetDefault("DB_PATH", constants.DefaultDBPath)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("PROVIDER_TIMEOUT", constants.DefaultProviderTimeout)

	v.SetDefault("TMDB_BEARER_TOKEN", "")
	v.SetDefault("TMDB_BASE_URL", constants.TMDBBaseURL)
	v.SetDefault("TMDB_CACHE_TTL", constants.DefaultCacheTTL)
	v.SetDefault("YOUTUBE_API_KEY", "")
	v.SetDefault("YOUTUBE_BASE_URL", constants.YouTubeBaseURL)
	v.SetDefault("EBAY_CLIENT_ID", "")
	v.SetDefault("EBAY_CLIENT_SECRET", "")
	v.SetDefault("EBAY_BASE_URL", constants.EbayBaseURL)
	v.SetDefault("EBAY_TOKEN_URL", constants.EbayTokenURL)
	v.SetDefault("SPOTIFY_CLIENT_ID", "")
	v.SetDefault("SPOTIFY_CLIENT_SECRET", "")
	v.SetDefault("SPOTIFY_BASE_URL", constants.SpotifyBaseURL)
	v.SetDefault("SPOTIFY_TOKEN_URL", constants.SpotifyTokenURL)
	v.SetDefault("DISCOGS_KEY", "")
	v.SetDefault("DISCOGS_BASE_URL", constants.DiscogsBaseURL)
	v.SetDefault("STREAMING_AVAILABILITY", "")
	v.SetDefault("STREAMING_BASE_URL", constants.StreamingBaseURL)
	v.SetDefault("STREAMING_COUNTRY", constants.DefaultCountry)
	v.SetDefault("HUGGING_FACE_KEY", "")
	v.SetDefault("HUGGING_FACE_BASE_URL", constants.HuggingFaceBaseURL)
	v.SetDefault("HUGGING_FACE_MODEL", constants.DefaultHFModel)
	v.SetDefault("IMAGEKIT_PUBLIC_KEY", "")
	v.SetDefault("IMAGEKIT_PRIVATE_KEY", "")
	v.SetDefault("IMAGEKIT_URL_ENDPOINT", "")
	v.SetDefault("IMAGEKIT_UPLOAD_URL", constants.ImageKitUploadURL)
	v.SetDefault("SOUNDTRACK_MIN_ALBUM_TRACKS", constants.DefaultMinAlbumTracks)
	v.SetDefault("SOUNDTRACK_MIN_PLAYLIST_TRACKS", constants.DefaultMinPlaylistTracks)
	v.SetDefault("SOUNDTRACK_KEYWORD", constants.DefaultSoundtrackKeyword)
	v.SetDefault("AI_DESCRIPTIONS_PATH", constants.DefaultAIDescriptions)
}

// readConfigFile reads CONFIG_FILE when set, otherwise a .env in the working
// directory if one exists. A missing default file is not an error.
func readConfigFile(v *viper.Viper) error {
	path, explicit := os.LookupEnv("CONFIG_FILE")
	if !explicit {
		path = constants.DefaultConfigFile
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}

	v.SetConfigFile(path)
	if strings.HasSuffix(path, ".env") {
		v.SetConfigType("env")
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Validate validates the configuration and returns detailed errors.
// Provider credentials are optional: a provider without credentials simply
// degrades to its fallback behaviour.
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.ProviderTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("PROVIDER_TIMEOUT must be positive, got: %s", c.ProviderTimeout))
	}

	if c.TMDB.BearerToken == "" {
		errors = append(errors, "TMDB_BEARER_TOKEN cannot be empty")
	}

	baseURLs := map[string]string{
		"TMDB_BASE_URL":         c.TMDB.BaseURL,
		"YOUTUBE_BASE_URL":      c.YouTube.BaseURL,
		"EBAY_BASE_URL":         c.Ebay.BaseURL,
		"EBAY_TOKEN_URL":        c.Ebay.TokenURL,
		"SPOTIFY_BASE_URL":      c.Spotify.BaseURL,
		"SPOTIFY_TOKEN_URL":     c.Spotify.TokenURL,
		"DISCOGS_BASE_URL":      c.Discogs.BaseURL,
		"STREAMING_BASE_URL":    c.Streaming.BaseURL,
		"HUGGING_FACE_BASE_URL": c.HuggingFace.BaseURL,
	}
	for _, name := range slices.Sorted(maps.Keys(baseURLs)) {
		if msg := validateURL(name, baseURLs[name]); msg != "" {
			errors = append(errors, msg)
		}
	}

	if c.Streaming.Country == "" {
		errors = append(errors, "STREAMING_COUNTRY cannot be empty")
	}

	if c.Soundtrack.MinAlbumTracks < 1 {
		errors = append(errors, fmt.Sprintf("SOUNDTRACK_MIN_ALBUM_TRACKS must be at least 1, got: %d", c.Soundtrack.MinAlbumTracks))
	}
	if c.Soundtrack.MinPlaylistTracks < 1 {
		errors = append(errors, fmt.Sprintf("SOUNDTRACK_MIN_PLAYLIST_TRACKS must be at least 1, got: %d", c.Soundtrack.MinPlaylistTracks))
	}
	if strings.TrimSpace(c.Soundtrack.Keyword) == "" {
		errors = append(errors, "SOUNDTRACK_KEYWORD cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func validateURL(name, raw string) string {
	if raw == "" {
		return name + " cannot be empty"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Sprintf("%s is not a valid URL: %s", name, raw)
	}
	return ""
}
