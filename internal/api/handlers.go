package api

import (
	"context"
	"net/http"
	"time"

	"github.com/vytor/memora/internal/services"
	"github.com/vytor/memora/internal/validation"
)

// Pinger reports store connectivity for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Scheduler services.SchedulerService
	Items     services.ItemService
	Decks     services.DeckService
	DB        Pinger
	// Metrics serves /metrics when set.
	Metrics            http.Handler
	CORSAllowedOrigins []string
	// Now defaults to time.Now.
	Now func() time.Time

	validator *validation.Validator
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
