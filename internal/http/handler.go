package httpapp

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/arinleviti/80sHorrorHub/internal/app"
	"github.com/arinleviti/80sHorrorHub/internal/domain"
	"github.com/arinleviti/80sHorrorHub/internal/logger"
	"github.com/arinleviti/80sHorrorHub/web"
)

// PageBuilder assembles a movie page by slug.
type PageBuilder interface {
	Assemble(ctx context.Context, slug string) (*app.MoviePage, error)
}

type Handler struct {
	Pages  PageBuilder
	Logger *logger.Logger
}

func NewHandler(pages PageBuilder, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		Pages:  pages,
		Logger: log.WithComponent("http"),
	}
}

// NewRouter returns the full router with middleware and static assets.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/static/*", http.HandlerFunc(serveStatic))
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.IndexPage)
	r.Get("/movies/{slug}", h.MoviePage)
	r.Get("/healthz", h.Healthz)
}

type videoBlock struct {
	Title  string
	Videos []domain.Video
}

var funcs = template.FuncMap{
	"join": strings.Join,
	"videoBlock": func(title string, videos []domain.Video) videoBlock {
		return videoBlock{Title: title, Videos: videos}
	},
}

// RenderPage renders pageTmpl inside the base layout. The page is rendered
// to a buffer first so a template error never follows a partial body.
func (h *Handler) RenderPage(w http.ResponseWriter, status int, pageTmpl string, data any) {
	tmpl, err := template.New("base.html").Funcs(funcs).ParseFS(web.Files,
		"templates/base.html",
		"templates/"+pageTmpl,
	)
	if err != nil {
		h.Logger.Error("Failed to parse templates", "page", pageTmpl, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		h.Logger.Error("Failed to render page", "page", pageTmpl, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func serveStatic(w http.ResponseWriter, r *http.Request) {
	path := "static" + r.URL.Path[len("/static"):]
	data, err := web.Files.ReadFile(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(path, ".css"):
		contentType = "text/css"
	case strings.HasSuffix(path, ".js"):
		contentType = "application/javascript"
	case strings.HasSuffix(path, ".png"):
		contentType = "image/png"
	case strings.HasSuffix(path, ".jpg"), strings.HasSuffix(path, ".jpeg"):
		contentType = "image/jpeg"
	case strings.HasSuffix(path, ".svg"):
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(data)
}
