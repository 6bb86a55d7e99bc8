package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arinleviti/80sHorrorHub/internal/app"
	"github.com/arinleviti/80sHorrorHub/internal/config"
	"github.com/arinleviti/80sHorrorHub/internal/constants"
	"github.com/arinleviti/80sHorrorHub/internal/discogs"
	"github.com/arinleviti/80sHorrorHub/internal/ebay"
	httpapp "github.com/arinleviti/80sHorrorHub/internal/http"
	"github.com/arinleviti/80sHorrorHub/internal/httpclient"
	"github.com/arinleviti/80sHorrorHub/internal/logger"
	"github.com/arinleviti/80sHorrorHub/internal/spotify"
	"github.com/arinleviti/80sHorrorHub/internal/store"
	"github.com/arinleviti/80sHorrorHub/internal/streaming"
	"github.com/arinleviti/80sHorrorHub/internal/suggest"
	"github.com/arinleviti/80sHorrorHub/internal/tmdb"
	"github.com/arinleviti/80sHorrorHub/internal/tokens"
	"github.com/arinleviti/80sHorrorHub/internal/youtube"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Every provider gets its own client so throttling is per host.
	newHTTP := func() *httpclient.Client {
		return httpclient.NewClient(nil, constants.DefaultRequestsPerSec)
	}

	tokenManager := tokens.NewManager(db, newHTTP(), appLogger)
	tokenManager.Register(constants.ProviderEbay, tokens.ClientCredentials{
		TokenURL:     cfg.Ebay.TokenURL,
		ClientID:     cfg.Ebay.ClientID,
		ClientSecret: cfg.Ebay.ClientSecret,
		Scope:        constants.EbayScope,
	})
	tokenManager.Register(constants.ProviderSpotify, tokens.ClientCredentials{
		TokenURL:     cfg.Spotify.TokenURL,
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
	})

	// Initialize Services
	metadata := tmdb.NewCachedClient(
		tmdb.NewClient(newHTTP(), cfg.TMDB.BearerToken, cfg.TMDB.BaseURL),
		db,
		cfg.TMDB.CacheTTL,
		appLogger,
	)
	providers := app.Providers{
		Videos:   youtube.NewService(youtube.NewClient(newHTTP(), cfg.YouTube.APIKey, cfg.YouTube.BaseURL), db, appLogger),
		Listings: ebay.NewService(ebay.NewClient(newHTTP(), tokenManager, cfg.Ebay.BaseURL), db, appLogger),
		Vinyl:    discogs.NewService(discogs.NewClient(newHTTP(), cfg.Discogs.Token, cfg.Discogs.BaseURL), db, appLogger),
		Soundtrack: spotify.NewService(
			spotify.NewClient(newHTTP(), tokenManager, cfg.Spotify.BaseURL),
			spotify.Filter{
				MinAlbumTracks:    cfg.Soundtrack.MinAlbumTracks,
				MinPlaylistTracks: cfg.Soundtrack.MinPlaylistTracks,
				Keyword:           cfg.Soundtrack.Keyword,
			},
			appLogger,
		),
		Streaming: streaming.NewService(
			streaming.NewClient(newHTTP(), cfg.Streaming.APIKey, cfg.Streaming.BaseURL),
			db, cfg.Streaming.Country, appLogger,
		),
		Suggestions: suggest.NewService(
			suggest.NewClient(newHTTP(), cfg.HuggingFace.APIKey, cfg.HuggingFace.BaseURL, cfg.HuggingFace.Model),
			db, db, appLogger,
		),
	}
	pages := app.NewPageAssembler(metadata, db, providers, cfg.ProviderTimeout, appLogger)

	// Initialize Router
	h := httpapp.NewHandler(pages, appLogger)
	r := httpapp.NewRouter(h)

	// Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	appLogger.Info("Server exiting")
}
