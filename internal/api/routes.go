package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/vytor/memora/internal/validation"
)

const requestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	if s.validator == nil {
		s.validator = validation.New()
	}

	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", learnerHeader, "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}).Handler)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(learnerMiddleware)
		r.Use(timeoutMiddleware(requestTimeout))

		r.Route("/srs", func(r chi.Router) {
			r.Post("/grade", s.handleGrade)
			r.Post("/next", s.handleNext)
			r.Post("/mode", s.handleSetMode)
			r.Put("/limit", s.handleSetLimit)
			r.Get("/state", s.handleState)
			r.Post("/sync", s.handleSync)
			r.Put("/items/{id}/suspended", s.handleSetSuspended)
			r.Get("/items/{id}/reviews", s.handleReviewHistory)
		})

		r.Get("/decks", s.handleListDecks)
		r.Post("/decks", s.handleCreateDeck)
	})
	return r
}
