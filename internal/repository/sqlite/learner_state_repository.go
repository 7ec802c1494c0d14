package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/memora/internal/logger"
	"github.com/vytor/memora/internal/models"
	"github.com/vytor/memora/internal/repository"
)

type learnerStateRepository struct {
	q Querier
}

// NewLearnerStateRepository creates a new LearnerStateRepository implementation
func NewLearnerStateRepository(q Querier) repository.LearnerStateRepository {
	return &learnerStateRepository{q: q}
}

func (r *learnerStateRepository) Get(ctx context.Context, learnerID, deckID int64) (*models.LearnerDeckState, error) {
	log := logger.FromContext(ctx).WithPrefix("learner_state_repo")
	log.Debug("getting learner state: learner_id=%d, deck_id=%d", learnerID, deckID)

	var st models.LearnerDeckState
	var mode string
	err := r.q.QueryRowContext(ctx, `
SELECT learner_id, deck_id, ability, mode, new_item_daily_limit, new_items_shown_today, quota_reset_date, created_at, updated_at
FROM learner_deck_states
WHERE learner_id = ? AND deck_id = ?
`, learnerID, deckID).Scan(&st.LearnerID, &st.DeckID, &st.Ability, &mode, &st.NewItemDailyLimit,
		&st.NewItemsShownToday, &st.QuotaResetDate, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("learner state not found")
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get learner state: %v", err)
		return nil, err
	}
	st.Mode = models.Mode(mode)
	return &st, nil
}

func (r *learnerStateRepository) Upsert(ctx context.Context, st models.LearnerDeckState) error {
	log := logger.FromContext(ctx).WithPrefix("learner_state_repo")
	log.Debug("upserting learner state: learner_id=%d, deck_id=%d, mode=%s, limit=%d, shown=%d",
		st.LearnerID, st.DeckID, st.Mode, st.NewItemDailyLimit, st.NewItemsShownToday)

	_, err := r.q.ExecContext(ctx, `
INSERT INTO learner_deck_states (learner_id, deck_id, ability, mode, new_item_daily_limit, new_items_shown_today,
                                 quota_reset_date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (learner_id, deck_id) DO UPDATE SET
    ability = excluded.ability,
    mode = excluded.mode,
    new_item_daily_limit = excluded.new_item_daily_limit,
    new_items_shown_today = excluded.new_items_shown_today,
    quota_reset_date = excluded.quota_reset_date,
    updated_at = excluded.updated_at
`, st.LearnerID, st.DeckID, st.Ability, string(st.Mode), st.NewItemDailyLimit, st.NewItemsShownToday,
		st.QuotaResetDate, st.CreatedAt.UTC(), st.UpdatedAt.UTC())
	if err != nil {
		log.Error("failed to upsert learner state: %v", err)
	}
	return err
}
