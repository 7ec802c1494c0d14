package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vytor/memora/internal/errors"
	"github.com/vytor/memora/internal/logger"
	"github.com/vytor/memora/internal/models"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type gradeRequest struct {
	ItemID *int64 `json:"item_id" validate:"required,gt=0"`
	Rating *int   `json:"rating" validate:"required,min=0,max=5"`
}

type modeRequest struct {
	DeckID int64  `json:"deck_id" validate:"gte=0"`
	Mode   string `json:"mode" validate:"required"`
}

type limitRequest struct {
	DeckID int64 `json:"deck_id" validate:"gte=0"`
	Limit  *int  `json:"limit" validate:"required,min=1,max=1000"`
}

type syncRequest struct {
	DeckID  int64              `json:"deck_id" validate:"gte=0"`
	Entries []models.ItemEntry `json:"entries" validate:"max=5000,dive"`
}

type suspendRequest struct {
	Suspended *bool `json:"suspended" validate:"required"`
}

// handleGrade records a rating and returns the rescheduled item.
func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	learnerID := learnerFromContext(r.Context())

	var req gradeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("grade: item_id=%d, rating=%d", *req.ItemID, *req.Rating)
	result, err := s.Scheduler.Grade(r.Context(), learnerID, *req.ItemID, *req.Rating, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// handleNext selects the next item for the learner, consuming new-item
// quota when the selection is a new item.
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	learnerID := learnerFromContext(r.Context())

	deckID, err := queryInt64(r, "deck_id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.Scheduler.Next(r.Context(), learnerID, deckID, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	learnerID := learnerFromContext(r.Context())

	var req modeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	summary, err := s.Scheduler.SetMode(r.Context(), learnerID, req.DeckID, mode, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleSetLimit(w http.ResponseWriter, r *http.Request) {
	learnerID := learnerFromContext(r.Context())

	var req limitRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	summary, err := s.Scheduler.SetLimit(r.Context(), learnerID, req.DeckID, *req.Limit, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	learnerID := learnerFromContext(r.Context())

	deckID, err := queryInt64(r, "deck_id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	summary, err := s.Scheduler.State(r.Context(), learnerID, deckID, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

// handleSync creates items for glossary entries the deck does not have yet.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	learnerID := learnerFromContext(r.Context())

	var req syncRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("syncing %d entries into deck %d", len(req.Entries), req.DeckID)
	result, err := s.Items.Sync(r.Context(), learnerID, req.DeckID, req.Entries, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleSetSuspended(w http.ResponseWriter, r *http.Request) {
	learnerID := learnerFromContext(r.Context())

	itemID, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req suspendRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	item, err := s.Items.SetSuspended(r.Context(), learnerID, itemID, *req.Suspended, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleReviewHistory(w http.ResponseWriter, r *http.Request) {
	learnerID := learnerFromContext(r.Context())

	itemID, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			handleError(w, r, errors.NewValidationError("limit", "must be between 1 and 500"))
			return
		}
		limit = n
	}

	entries, err := s.Scheduler.ReviewHistory(r.Context(), learnerID, itemID, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.ReviewLogEntry{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"reviews": entries})
}
