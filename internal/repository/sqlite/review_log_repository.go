package sqlite

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/memora/internal/logger"
	"github.com/vytor/memora/internal/models"
	"github.com/vytor/memora/internal/repository"
)

type reviewLogRepository struct {
	q Querier
}

// NewReviewLogRepository creates a new ReviewLogRepository implementation
func NewReviewLogRepository(q Querier) repository.ReviewLogRepository {
	return &reviewLogRepository{q: q}
}

func (r *reviewLogRepository) Append(ctx context.Context, e models.ReviewLogEntry) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")
	log.Debug("appending review log: item_id=%d, rating=%d", e.ItemID, e.Rating)

	res, err := r.q.ExecContext(ctx, `
INSERT INTO review_logs (learner_id, deck_id, item_id, rating, interval_before, interval_after,
                         half_life_before, half_life_after, ease_factor_before, ease_factor_after,
                         predicted_mastery, reviewed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, e.LearnerID, e.DeckID, e.ItemID, e.Rating, e.IntervalBefore, e.IntervalAfter,
		e.HalfLifeBefore, e.HalfLifeAfter, e.EaseFactorBefore, e.EaseFactorAfter,
		e.PredictedMastery, e.ReviewedAt.UTC())
	if err != nil {
		log.Error("failed to append review log: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

// ListByItem returns the newest entries first. A non-positive limit
// returns every entry.
func (r *reviewLogRepository) ListByItem(ctx context.Context, learnerID, itemID int64, limit int) ([]models.ReviewLogEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")
	log.Debug("listing review logs: item_id=%d, limit=%d", itemID, limit)

	q := sqlBuilder.Select(
		"id", "learner_id", "deck_id", "item_id", "rating", "interval_before", "interval_after",
		"half_life_before", "half_life_after", "ease_factor_before", "ease_factor_after",
		"predicted_mastery", "reviewed_at",
	).From("review_logs").
		Where(squirrel.Eq{"learner_id": learnerID, "item_id": itemID}).
		OrderBy("reviewed_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review logs: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.ReviewLogEntry
	for rows.Next() {
		var e models.ReviewLogEntry
		if err := rows.Scan(&e.ID, &e.LearnerID, &e.DeckID, &e.ItemID, &e.Rating, &e.IntervalBefore, &e.IntervalAfter,
			&e.HalfLifeBefore, &e.HalfLifeAfter, &e.EaseFactorBefore, &e.EaseFactorAfter,
			&e.PredictedMastery, &e.ReviewedAt); err != nil {
			log.Error("failed to scan review log: %v", err)
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
