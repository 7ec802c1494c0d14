package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/memora/internal/logger"
	"github.com/vytor/memora/internal/models"
	"github.com/vytor/memora/internal/repository"
)

var itemColumns = []string{
	"id", "learner_id", "deck_id", "front_text", "back_text", "notes",
	"interval_days", "due_at", "ease_factor", "repetitions", "lapses", "suspended",
	"difficulty", "half_life_days", "created_at", "updated_at",
}

type itemRepository struct {
	q Querier
}

// NewItemRepository creates a new ItemRepository implementation
func NewItemRepository(q Querier) repository.ItemRepository {
	return &itemRepository{q: q}
}

func scanItem(row rowScanner) (*models.Item, error) {
	var it models.Item
	err := row.Scan(&it.ID, &it.LearnerID, &it.DeckID, &it.FrontText, &it.BackText, &it.Notes,
		&it.IntervalDays, &it.DueAt, &it.EaseFactor, &it.Repetitions, &it.Lapses, &it.Suspended,
		&it.Difficulty, &it.HalfLifeDays, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// duePredicate selects items waiting for review. Lapsed items have
// repetitions reset to zero but still belong here.
func duePredicate(learnerID, deckID int64, now time.Time) squirrel.And {
	return squirrel.And{
		squirrel.Eq{"learner_id": learnerID, "deck_id": deckID, "suspended": false},
		squirrel.LtOrEq{"due_at": now.UTC()},
		squirrel.Or{squirrel.Gt{"repetitions": 0}, squirrel.Gt{"lapses": 0}},
	}
}

func newPredicate(learnerID, deckID int64) squirrel.Eq {
	return squirrel.Eq{"learner_id": learnerID, "deck_id": deckID, "suspended": false, "repetitions": 0, "lapses": 0}
}

func (r *itemRepository) queryOne(ctx context.Context, log *logger.Logger, q squirrel.SelectBuilder) (*models.Item, error) {
	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	it, err := scanItem(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to query item: %v", err)
		return nil, err
	}
	return it, nil
}

func (r *itemRepository) count(ctx context.Context, log *logger.Logger, pred squirrel.Sqlizer) (int, error) {
	query, args, err := sqlBuilder.Select("COUNT(*)").From("items").Where(pred).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}
	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		log.Error("failed to count items: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *itemRepository) Get(ctx context.Context, learnerID, id int64) (*models.Item, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("getting item: id=%d, learner_id=%d", id, learnerID)

	it, err := r.queryOne(ctx, log, sqlBuilder.Select(itemColumns...).From("items").
		Where(squirrel.Eq{"id": id, "learner_id": learnerID}))
	if err == nil && it == nil {
		log.Debug("item not found: id=%d", id)
	}
	return it, err
}

func (r *itemRepository) InsertIfAbsent(ctx context.Context, it models.Item) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("inserting item: learner_id=%d, deck_id=%d", it.LearnerID, it.DeckID)

	res, err := r.q.ExecContext(ctx, `
INSERT INTO items (learner_id, deck_id, front_text, back_text, notes, interval_days, due_at, ease_factor,
                   repetitions, lapses, suspended, difficulty, half_life_days, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (learner_id, deck_id, front_text, back_text) DO NOTHING
`, it.LearnerID, it.DeckID, it.FrontText, it.BackText, it.Notes, it.IntervalDays, it.DueAt.UTC(), it.EaseFactor,
		it.Repetitions, it.Lapses, it.Suspended, it.Difficulty, it.HalfLifeDays, it.CreatedAt.UTC(), it.UpdatedAt.UTC())
	if err != nil {
		log.Error("failed to insert item: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		log.Error("failed to read rows affected: %v", err)
		return false, err
	}
	return n > 0, nil
}

func (r *itemRepository) UpdateSchedule(ctx context.Context, it models.Item) error {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("updating item schedule: id=%d, interval=%d, half_life=%.2f", it.ID, it.IntervalDays, it.HalfLifeDays)

	_, err := r.q.ExecContext(ctx, `
UPDATE items
SET interval_days = ?, due_at = ?, repetitions = ?, lapses = ?, difficulty = ?, half_life_days = ?, updated_at = ?
WHERE id = ? AND learner_id = ?
`, it.IntervalDays, it.DueAt.UTC(), it.Repetitions, it.Lapses, it.Difficulty, it.HalfLifeDays, it.UpdatedAt.UTC(),
		it.ID, it.LearnerID)
	if err != nil {
		log.Error("failed to update item: %v", err)
	}
	return err
}

func (r *itemRepository) SetSuspended(ctx context.Context, learnerID, id int64, suspended bool, now time.Time) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("setting suspended: id=%d, suspended=%t", id, suspended)

	res, err := r.q.ExecContext(ctx, `UPDATE items SET suspended = ?, updated_at = ? WHERE id = ? AND learner_id = ?`,
		suspended, now.UTC(), id, learnerID)
	if err != nil {
		log.Error("failed to update suspended flag: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *itemRepository) NextDueReview(ctx context.Context, learnerID, deckID int64, now time.Time) (*models.Item, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("fetching next due review: learner_id=%d, deck_id=%d", learnerID, deckID)

	return r.queryOne(ctx, log, sqlBuilder.Select(itemColumns...).From("items").
		Where(duePredicate(learnerID, deckID, now)).
		OrderBy("due_at ASC", "id ASC").
		Limit(1))
}

func (r *itemRepository) NextNewItem(ctx context.Context, learnerID, deckID int64) (*models.Item, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("fetching next new item: learner_id=%d, deck_id=%d", learnerID, deckID)

	return r.queryOne(ctx, log, sqlBuilder.Select(itemColumns...).From("items").
		Where(newPredicate(learnerID, deckID)).
		OrderBy("created_at ASC", "id ASC").
		Limit(1))
}

func (r *itemRepository) CountDueReviews(ctx context.Context, learnerID, deckID int64, now time.Time) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	return r.count(ctx, log, duePredicate(learnerID, deckID, now))
}

func (r *itemRepository) CountNew(ctx context.Context, learnerID, deckID int64) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	return r.count(ctx, log, newPredicate(learnerID, deckID))
}
