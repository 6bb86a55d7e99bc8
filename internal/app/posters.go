package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/arinleviti/80sHorrorHub/internal/constants"
	"github.com/arinleviti/80sHorrorHub/internal/domain"
	"github.com/arinleviti/80sHorrorHub/internal/httpclient"
	"github.com/arinleviti/80sHorrorHub/internal/imagekit"
	"github.com/arinleviti/80sHorrorHub/internal/logger"
)

const posterFolder = "/posters"

type PosterStore interface {
	ListMoviesMissingPoster(ctx context.Context) ([]domain.MovieRecord, error)
	SetMoviePoster(ctx context.Context, id, url string) error
}

type ImageUploader interface {
	Upload(ctx context.Context, file []byte, fileName, folder string) (*imagekit.UploadResult, error)
}

type UploadReport struct {
	Uploaded int
	Failed   int
}

// PosterUploader copies TMDB posters to the image host for movies that do
// not have a hosted poster yet.
type PosterUploader struct {
	store     PosterStore
	http      httpclient.Fetcher
	uploader  ImageUploader
	imageBase string
	logger    *logger.Logger
}

func NewPosterUploader(store PosterStore, http httpclient.Fetcher, uploader ImageUploader, log *logger.Logger) *PosterUploader {
	if log == nil {
		log = logger.Default()
	}
	return &PosterUploader{
		store:     store,
		http:      http,
		uploader:  uploader,
		imageBase: constants.TMDBImageBaseURL,
		logger:    log.WithComponent("fill-images"),
	}
}

// SetImageBase overrides the TMDB image host.
func (u *PosterUploader) SetImageBase(base string) {
	u.imageBase = base
}

// Run uploads every missing poster. A failed movie is logged and skipped.
func (u *PosterUploader) Run(ctx context.Context) (*UploadReport, error) {
	movies, err := u.store.ListMoviesMissingPoster(ctx)
	if err != nil {
		return nil, err
	}

	report := &UploadReport{}
	for _, m := range movies {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		url, err := u.upload(ctx, m)
		if err != nil {
			u.logger.Error("Failed to upload poster", "movie_id", m.ID, "title", m.Title, "error", err)
			report.Failed++
			continue
		}
		u.logger.Info("Uploaded poster", "movie_id", m.ID, "title", m.Title, "url", url)
		report.Uploaded++
	}
	return report, nil
}

func (u *PosterUploader) upload(ctx context.Context, m domain.MovieRecord) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.imageBase+"/"+constants.PosterSize+m.PosterPath, nil)
	if err != nil {
		return "", err
	}
	data, err := u.http.Fetch(ctx, req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}

	res, err := u.uploader.Upload(ctx, data, fmt.Sprintf("poster_%d.jpg", m.TMDBID), posterFolder)
	if err != nil {
		return "", err
	}
	if err := u.store.SetMoviePoster(ctx, m.ID, res.URL); err != nil {
		return "", err
	}
	return res.URL, nil
}
