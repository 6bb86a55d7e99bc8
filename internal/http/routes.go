package httpapp

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arinleviti/80sHorrorHub/internal/app"
)

func (h *Handler) IndexPage(w http.ResponseWriter, r *http.Request) {
	h.RenderPage(w, http.StatusOK, "index.html", map[string]any{
		"Slugs": app.Slugs(),
	})
}

func (h *Handler) MoviePage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := h.Pages.Assemble(r.Context(), slug)
	switch {
	case errors.Is(err, app.ErrNotFound):
		h.RenderPage(w, http.StatusNotFound, "error.html", map[string]any{
			"Message": "Movie not found",
		})
		return
	case err != nil:
		h.Logger.Error("Failed to assemble page", "slug", slug, "error", err)
		h.RenderPage(w, http.StatusBadGateway, "error.html", map[string]any{
			"Message": "Failed to fetch movie data",
		})
		return
	}

	h.RenderPage(w, http.StatusOK, "movie.html", map[string]any{
		"Page": page,
	})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}
