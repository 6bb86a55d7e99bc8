// Command fill-images uploads TMDB posters to ImageKit for movies that do not
// have a hosted copy yet.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/arinleviti/80sHorrorHub/internal/app"
	"github.com/arinleviti/80sHorrorHub/internal/config"
	"github.com/arinleviti/80sHorrorHub/internal/constants"
	"github.com/arinleviti/80sHorrorHub/internal/httpclient"
	"github.com/arinleviti/80sHorrorHub/internal/imagekit"
	"github.com/arinleviti/80sHorrorHub/internal/logger"
	"github.com/arinleviti/80sHorrorHub/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.ImageKit.PrivateKey == "" {
		log.Fatalf("Configuration error: IMAGEKIT_PRIVATE_KEY cannot be empty")
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	hc := httpclient.NewClient(&http.Client{Timeout: constants.ImageHTTPTimeout}, constants.DefaultRequestsPerSec)
	uploader := imagekit.NewClient(hc, cfg.ImageKit.PrivateKey, cfg.ImageKit.UploadURL)

	report, err := app.NewPosterUploader(db, hc, uploader, appLogger).Run(ctx)
	if err != nil {
		appLogger.Error("Poster backfill failed", "error", err)
		os.Exit(1)
	}
	appLogger.Info("All done", "uploaded", report.Uploaded, "failed", report.Failed)
}
