// Package http exposes the link service over HTTP: shortening, listing,
// deletion, redirects and access statistics.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter returns a chi router with the service middleware and routes.
func NewRouter(logger *httplog.Logger, links linkUseCase, recorder accessRecorder) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"POST", "GET", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	h := newLinkHandler(links, recorder, validator.New())

	r.Get("/s/{code}", h.redirect)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", handlePing)
		r.Get("/all", h.findAll)
		r.Post("/shorten", h.shorten)
		r.Delete("/short/{code}", h.remove)
		r.Get("/stats/{code}", h.stats)
	})

	return r
}
