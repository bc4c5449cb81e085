package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-file-tree/internal/config"
	"go-file-tree/internal/handler"
	"go-file-tree/internal/metrics"
	"go-file-tree/internal/middleware"
	"go-file-tree/internal/websocket"
)

type Handlers struct {
	Folder *handler.FolderHandler
	File   *handler.FileHandler
	Health *handler.HealthHandler
}

func New(cfg *config.Config, handlers Handlers, m *metrics.Metrics, hub *websocket.Hub) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", handlers.Health.Health)
	r.Handle("/metrics", m.Handler())
	if hub != nil {
		r.Get("/events", websocket.Handler(hub, cfg.CORSOrigins))
	}

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/folders", func(folders chi.Router) {
			folders.Get("/", handlers.Folder.List)
			folders.Post("/", handlers.Folder.Create)
			folders.Patch("/{id}", handlers.Folder.Rename)
			folders.Delete("/{id}", handlers.Folder.Delete)
		})

		api.Route("/files", func(files chi.Router) {
			files.Get("/", handlers.File.List)
			files.Post("/", handlers.File.Create)
			files.Patch("/reorder", handlers.File.Reorder)
			files.Patch("/{id}", handlers.File.Update)
			files.Delete("/{id}", handlers.File.Delete)
		})
	})

	return r
}
