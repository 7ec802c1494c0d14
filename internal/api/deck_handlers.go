package api

import (
	"net/http"

	"github.com/vytor/memora/internal/models"
)

type deckRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.Decks.ListDecks(r.Context(), learnerFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if decks == nil {
		decks = []models.Deck{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"decks": decks})
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var req deckRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.Decks.CreateDeck(r.Context(), learnerFromContext(r.Context()), req.Name, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, deck)
}
