package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kdduha/sportsclass/internal/config"
	"github.com/kdduha/sportsclass/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/kdduha/sportsclass/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter wires the form page, the JSON API and the service endpoints.
func NewRouter(cfg config.ServerConfig, page *PageHandler, api *APIHandler) http.Handler {
	r := chi.NewRouter()
	r.Use([]func(http.Handler) http.Handler{
		middleware.Logger,
		middleware.Recoverer,
		middleware.Throttle(cfg.ThrottleLimit),
		middleware.Timeout(cfg.Timeout),
		metrics.Middleware,
	}...)

	r.Get("/", page.Index)
	r.Post("/select/file", page.SelectFile)
	r.Post("/select/url", page.SelectURL)
	r.Post("/submit", page.Submit)
	r.Post("/theme", page.Theme)

	r.Route("/api", func(r chi.Router) {
		r.Post("/classify", api.Classify)
		r.Get("/session", api.Session)
	})

	r.Get("/healthz", Health)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Handle("/metrics", promhttp.Handler())

	return r
}
