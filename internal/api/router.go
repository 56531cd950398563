// Package api wires HTTP handlers and middleware into the server router.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentlink/matchengine/internal/api/handlers"
	"github.com/talentlink/matchengine/internal/api/middleware"
)

// RouterConfig carries the handlers and settings the router needs.
type RouterConfig struct {
	APIKey             string
	RateLimitPerSecond int

	Health     *handlers.HealthHandler
	Embeddings *handlers.EmbeddingsHandler
	Matches    *handlers.MatchHandler
	Pairs      *handlers.PairHandler
	Results    *handlers.ResultsHandler
	Vectors    *handlers.VectorsHandler
}

// NewRouter builds the full route tree. /health is public; everything under
// /v1 requires the API key. Request IDs, access logging, and the rate limit
// apply to all routes.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(cfg.RateLimitPerSecond))

	r.Get("/health", cfg.Health.Check)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.APIKey))

		r.Put("/embeddings/{kind}/{id}", cfg.Embeddings.Upsert)
		r.Delete("/embeddings/{kind}/{id}", cfg.Embeddings.Delete)

		r.Get("/matches/{kind}/{id}/top", cfg.Matches.Top)
		r.Get("/matches/{kind}/{id}", cfg.Matches.List)
		r.Post("/matches/pair", cfg.Pairs.Score)
		r.Post("/matches/exact", cfg.Pairs.Exact)

		r.Get("/match-results/talents/{user_id}", cfg.Results.ForTalent)
		r.Get("/match-results/job-postings/{id}", cfg.Results.ForJobPosting)
		r.Get("/match-results/companies/{user_id}", cfg.Results.ForCompany)

		r.Delete("/vectors/{id}", cfg.Vectors.Delete)
	})

	return r
}
