package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vytor/memora/internal/logger"
	"github.com/vytor/memora/internal/models"
	"github.com/vytor/memora/internal/repository"
)

type deckRepository struct {
	q Querier
}

// NewDeckRepository creates a new DeckRepository implementation
func NewDeckRepository(q Querier) repository.DeckRepository {
	return &deckRepository{q: q}
}

func (r *deckRepository) scanOne(row *sql.Row) (*models.Deck, error) {
	var d models.Deck
	err := row.Scan(&d.ID, &d.LearnerID, &d.Name, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deckRepository) Get(ctx context.Context, learnerID, id int64) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("getting deck: id=%d, learner_id=%d", id, learnerID)

	d, err := r.scanOne(r.q.QueryRowContext(ctx,
		`SELECT id, learner_id, name, created_at FROM decks WHERE id = ? AND learner_id = ?`, id, learnerID))
	if err != nil {
		log.Error("failed to get deck: %v", err)
	}
	return d, err
}

func (r *deckRepository) GetOrCreate(ctx context.Context, learnerID int64, name string, now time.Time) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("get or create deck: learner_id=%d, name=%s", learnerID, name)

	if _, err := r.q.ExecContext(ctx,
		`INSERT INTO decks (learner_id, name, created_at) VALUES (?, ?, ?) ON CONFLICT (learner_id, name) DO NOTHING`,
		learnerID, name, now.UTC()); err != nil {
		log.Error("failed to insert deck: %v", err)
		return nil, err
	}

	d, err := r.scanOne(r.q.QueryRowContext(ctx,
		`SELECT id, learner_id, name, created_at FROM decks WHERE learner_id = ? AND name = ?`, learnerID, name))
	if err != nil {
		log.Error("failed to load deck: %v", err)
		return nil, err
	}
	if d == nil {
		return nil, errors.New("deck vanished after insert")
	}
	return d, nil
}

func (r *deckRepository) List(ctx context.Context, learnerID int64) ([]models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("listing decks: learner_id=%d", learnerID)

	rows, err := r.q.QueryContext(ctx,
		`SELECT id, learner_id, name, created_at FROM decks WHERE learner_id = ? ORDER BY created_at, id`, learnerID)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, err
	}
	defer rows.Close()

	var decks []models.Deck
	for rows.Next() {
		var d models.Deck
		if err := rows.Scan(&d.ID, &d.LearnerID, &d.Name, &d.CreatedAt); err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}
