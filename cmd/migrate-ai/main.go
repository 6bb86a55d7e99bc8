// Command migrate-ai loads the bundled AI descriptions and links them to
// stored movies.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/arinleviti/80sHorrorHub/internal/app"
	"github.com/arinleviti/80sHorrorHub/internal/config"
	"github.com/arinleviti/80sHorrorHub/internal/logger"
	"github.com/arinleviti/80sHorrorHub/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	path := flag.String("file", cfg.AIDescriptionsPath, "path to the AI descriptions JSON file")
	flag.Parse()

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})

	if err := run(appLogger, cfg.DBPath, *path); err != nil {
		appLogger.Error("Migration failed", "error", err)
		os.Exit(1)
	}
}

func run(appLogger *logger.Logger, dbPath, path string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	entries, err := app.LoadDescriptions(path)
	if err != nil {
		return err
	}

	db, err := store.NewSQLiteDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := app.NewDescriptionMigrator(db, appLogger).Run(ctx, entries)
	if err != nil {
		return err
	}
	appLogger.Info("Migration finished", "upserted", report.Upserted, "unmatched", len(report.Unmatched))
	return nil
}
