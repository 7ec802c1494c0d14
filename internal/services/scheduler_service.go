package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/vytor/memora/internal/errors"
	"github.com/vytor/memora/internal/events"
	"github.com/vytor/memora/internal/jobs"
	"github.com/vytor/memora/internal/logger"
	"github.com/vytor/memora/internal/memory"
	"github.com/vytor/memora/internal/metrics"
	"github.com/vytor/memora/internal/models"
	"github.com/vytor/memora/internal/repository"
)

const (
	MinRating   = 0
	MaxRating   = 5
	MinNewLimit = 1
	MaxNewLimit = 1000
)

// SchedulerService decides which item a learner sees next and reschedules
// items after grading. Every call takes the caller's notion of now.
type SchedulerService interface {
	Grade(ctx context.Context, learnerID, itemID int64, rating int, now time.Time) (*models.GradeResult, error)
	Next(ctx context.Context, learnerID, deckID int64, now time.Time) (*models.NextResult, error)
	SetMode(ctx context.Context, learnerID, deckID int64, mode string, now time.Time) (*models.ScheduleSummary, error)
	SetLimit(ctx context.Context, learnerID, deckID int64, limit int, now time.Time) (*models.ScheduleSummary, error)
	State(ctx context.Context, learnerID, deckID int64, now time.Time) (*models.ScheduleSummary, error)
	ReviewHistory(ctx context.Context, learnerID, itemID int64, limit int) ([]models.ReviewLogEntry, error)
}

// SchedulerSettings are fixed for the lifetime of the service.
type SchedulerSettings struct {
	Memory      memory.Config
	Location    *time.Location
	DefaultDeck string
}

type schedulerService struct {
	store    repository.Store
	settings SchedulerSettings
	metrics  *metrics.Metrics
	queue    jobs.EventQueue
}

// NewSchedulerService creates a new SchedulerService. m and queue may be nil.
func NewSchedulerService(store repository.Store, settings SchedulerSettings, m *metrics.Metrics, queue jobs.EventQueue) SchedulerService {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &schedulerService{store: store, settings: settings, metrics: m, queue: queue}
}

func (s *schedulerService) today(now time.Time) string {
	return now.In(s.settings.Location).Format(models.DateLayout)
}

// storeError maps repository failures onto application errors.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	if stderrors.Is(err, repository.ErrContention) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewUnavailableError(err)
	}
	return errors.NewInternalError(err)
}

// loadState returns the learner-deck state with the daily reset applied,
// creating it on first use. dirty reports whether it must be written back.
func (s *schedulerService) loadState(ctx context.Context, repos repository.Repositories, learnerID, deckID int64, now time.Time) (*models.LearnerDeckState, bool, error) {
	st, err := repos.States.Get(ctx, learnerID, deckID)
	if err != nil {
		return nil, false, err
	}
	dirty := false
	if st == nil {
		logger.FromContext(ctx).Debug("creating learner state: learner_id=%d, deck_id=%d", learnerID, deckID)
		st = &models.LearnerDeckState{
			LearnerID:         learnerID,
			DeckID:            deckID,
			Mode:              models.DefaultMode,
			NewItemDailyLimit: models.DefaultMode.DefaultNewLimit(),
			CreatedAt:         now,
		}
		dirty = true
	}
	if st.ResetIfStale(s.today(now)) {
		dirty = true
	}
	return st, dirty, nil
}

func (s *schedulerService) saveState(ctx context.Context, repos repository.Repositories, st *models.LearnerDeckState, now time.Time) error {
	st.UpdatedAt = now
	return repos.States.Upsert(ctx, *st)
}

func (s *schedulerService) Grade(ctx context.Context, learnerID, itemID int64, rating int, now time.Time) (*models.GradeResult, error) {
	log := logger.FromContext(ctx).WithPrefix("scheduler")
	log.Debug("grading item: learner_id=%d, item_id=%d, rating=%d", learnerID, itemID, rating)

	if rating < MinRating || rating > MaxRating {
		return nil, errors.NewValidationError("rating", "must be between 0 and 5")
	}

	var (
		result models.GradeResult
		event  events.ReviewEvent
		res    memory.Result
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		item, err := repos.Items.Get(ctx, learnerID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return errors.NewNotFoundError("item", itemID)
		}

		st, _, err := s.loadState(ctx, repos, learnerID, item.DeckID, now)
		if err != nil {
			return err
		}

		res = memory.Update(s.settings.Memory, memory.State{
			Ability:      st.Ability,
			Difficulty:   item.Difficulty,
			HalfLifeDays: item.HalfLifeDays,
		}, rating, now)

		before := *item
		item.Difficulty = res.Difficulty
		item.HalfLifeDays = res.HalfLifeDays
		item.IntervalDays = res.IntervalDays
		item.DueAt = res.DueAt
		item.UpdatedAt = now
		if res.Recalled {
			item.Repetitions++
		} else {
			item.Repetitions = 0
			item.Lapses++
		}
		if err := repos.Items.UpdateSchedule(ctx, *item); err != nil {
			return err
		}

		st.Ability = res.Ability
		if err := s.saveState(ctx, repos, st, now); err != nil {
			return err
		}

		if _, err := repos.Reviews.Append(ctx, models.ReviewLogEntry{
			LearnerID:        learnerID,
			DeckID:           item.DeckID,
			ItemID:           item.ID,
			Rating:           rating,
			IntervalBefore:   before.IntervalDays,
			IntervalAfter:    item.IntervalDays,
			HalfLifeBefore:   before.HalfLifeDays,
			HalfLifeAfter:    item.HalfLifeDays,
			EaseFactorBefore: before.EaseFactor,
			EaseFactorAfter:  item.EaseFactor,
			PredictedMastery: res.PredictedMastery,
			ReviewedAt:       now,
		}); err != nil {
			return err
		}

		result = models.GradeResult{
			ItemID:           item.ID,
			IntervalDays:     item.IntervalDays,
			HalfLifeDays:     item.HalfLifeDays,
			PredictedMastery: res.PredictedMastery,
			NextDue:          item.DueAt,
			Ability:          st.Ability,
			Difficulty:       item.Difficulty,
		}
		event = events.ReviewEvent{
			LearnerID:        learnerID,
			DeckID:           item.DeckID,
			ItemID:           item.ID,
			Rating:           rating,
			Recalled:         res.Recalled,
			IntervalBefore:   before.IntervalDays,
			IntervalAfter:    item.IntervalDays,
			HalfLifeDays:     item.HalfLifeDays,
			PredictedMastery: res.PredictedMastery,
			ReviewedAt:       now,
		}
		return nil
	})
	if err != nil {
		if !errors.HasCode(err, errors.ErrCodeNotFound) {
			log.Error("failed to grade item %d: %v", itemID, err)
		}
		return nil, storeError(err)
	}

	log.Debug("graded item %d: interval=%d, half_life=%.2f, p0=%.3f", itemID, result.IntervalDays, result.HalfLifeDays, result.PredictedMastery)
	s.metrics.ObserveGrade(res.Recalled, res.PredictedMastery, result.IntervalDays)
	if s.queue != nil {
		if err := s.queue.EnqueueReview(event); err != nil {
			log.Warn("failed to enqueue review event for item %d: %v", itemID, err)
		}
	}
	return &result, nil
}

func (s *schedulerService) Next(ctx context.Context, learnerID, deckID int64, now time.Time) (*models.NextResult, error) {
	log := logger.FromContext(ctx).WithPrefix("scheduler")
	log.Debug("selecting next item: learner_id=%d, deck_id=%d", learnerID, deckID)

	var result models.NextResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		deckID, err := resolveDeck(ctx, repos, learnerID, deckID, s.settings.DefaultDeck, now)
		if err != nil {
			return err
		}
		st, dirty, err := s.loadState(ctx, repos, learnerID, deckID, now)
		if err != nil {
			return err
		}

		result, err = s.selectItem(ctx, repos, st, now)
		if err != nil {
			return err
		}
		if result.IsNew {
			st.NewItemsShownToday++
			st.QuotaResetDate = s.today(now)
			dirty = true
		}
		if dirty {
			return s.saveState(ctx, repos, st, now)
		}
		return nil
	})
	if err != nil {
		if !errors.HasCode(err, errors.ErrCodeNotFound) {
			log.Error("failed to select next item: %v", err)
		}
		return nil, storeError(err)
	}

	switch {
	case result.Item == nil:
		s.metrics.ObserveNext(string(result.Reason))
		log.Debug("no item selected: %s", result.Reason)
	case result.IsNew:
		s.metrics.ObserveNext(metrics.NextNew)
	default:
		s.metrics.ObserveNext(metrics.NextReview)
	}
	return &result, nil
}

// selectItem applies the selection policy: due reviews first, then new
// items while the daily quota allows.
func (s *schedulerService) selectItem(ctx context.Context, repos repository.Repositories, st *models.LearnerDeckState, now time.Time) (models.NextResult, error) {
	review, err := repos.Items.NextDueReview(ctx, st.LearnerID, st.DeckID, now)
	if err != nil {
		return models.NextResult{}, err
	}
	if review != nil {
		return models.NextResult{Item: review}, nil
	}

	if st.NewItemsShownToday >= st.EffectiveLimit() {
		return models.NextResult{Reason: models.ReasonNewCapReached}, nil
	}

	fresh, err := repos.Items.NextNewItem(ctx, st.LearnerID, st.DeckID)
	if err != nil {
		return models.NextResult{}, err
	}
	if fresh == nil {
		return models.NextResult{Reason: models.ReasonNoCards}, nil
	}
	return models.NextResult{Item: fresh, IsNew: true}, nil
}

func (s *schedulerService) SetMode(ctx context.Context, learnerID, deckID int64, mode string, now time.Time) (*models.ScheduleSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("scheduler")
	log.Debug("setting mode: learner_id=%d, deck_id=%d, mode=%s", learnerID, deckID, mode)

	m, ok := models.ParseMode(mode)
	if !ok {
		return nil, errors.NewValidationError("mode", "must be one of beginner, comfortable, aggressive")
	}
	return s.updateState(ctx, learnerID, deckID, now, func(st *models.LearnerDeckState) {
		st.Mode = m
		st.NewItemDailyLimit = m.DefaultNewLimit()
	})
}

func (s *schedulerService) SetLimit(ctx context.Context, learnerID, deckID int64, limit int, now time.Time) (*models.ScheduleSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("scheduler")
	log.Debug("setting new-item limit: learner_id=%d, deck_id=%d, limit=%d", learnerID, deckID, limit)

	if limit < MinNewLimit || limit > MaxNewLimit {
		return nil, errors.NewValidationError("limit", "must be between 1 and 1000")
	}
	return s.updateState(ctx, learnerID, deckID, now, func(st *models.LearnerDeckState) {
		st.NewItemDailyLimit = limit
	})
}

func (s *schedulerService) State(ctx context.Context, learnerID, deckID int64, now time.Time) (*models.ScheduleSummary, error) {
	return s.updateState(ctx, learnerID, deckID, now, nil)
}

// updateState runs mutate (if any) on the reset learner state, persists it
// when changed and returns the summary, all in one transaction.
func (s *schedulerService) updateState(ctx context.Context, learnerID, deckID int64, now time.Time, mutate func(*models.LearnerDeckState)) (*models.ScheduleSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("scheduler")

	var summary models.ScheduleSummary
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		deckID, err := resolveDeck(ctx, repos, learnerID, deckID, s.settings.DefaultDeck, now)
		if err != nil {
			return err
		}
		st, dirty, err := s.loadState(ctx, repos, learnerID, deckID, now)
		if err != nil {
			return err
		}
		if mutate != nil {
			mutate(st)
			dirty = true
		}
		if dirty {
			if err := s.saveState(ctx, repos, st, now); err != nil {
				return err
			}
		}

		due, err := repos.Items.CountDueReviews(ctx, learnerID, deckID, now)
		if err != nil {
			return err
		}
		fresh, err := repos.Items.CountNew(ctx, learnerID, deckID)
		if err != nil {
			return err
		}
		summary = models.ScheduleSummary{
			DeckID:            deckID,
			Mode:              st.Mode,
			NewLimit:          st.EffectiveLimit(),
			NewShownToday:     st.NewItemsShownToday,
			AllowedNewToday:   st.AllowedNewToday(),
			DueReviewCount:    due,
			NewAvailableCount: fresh,
		}
		return nil
	})
	if err != nil {
		if !errors.HasCode(err, errors.ErrCodeNotFound) {
			log.Error("failed to load schedule state: %v", err)
		}
		return nil, storeError(err)
	}
	return &summary, nil
}

func (s *schedulerService) ReviewHistory(ctx context.Context, learnerID, itemID int64, limit int) ([]models.ReviewLogEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("scheduler")
	log.Debug("listing review history: learner_id=%d, item_id=%d", learnerID, itemID)

	repos := s.store.Repositories()
	item, err := repos.Items.Get(ctx, learnerID, itemID)
	if err != nil {
		log.Error("failed to get item: %v", err)
		return nil, storeError(err)
	}
	if item == nil {
		return nil, errors.NewNotFoundError("item", itemID)
	}

	entries, err := repos.Reviews.ListByItem(ctx, learnerID, itemID, limit)
	if err != nil {
		log.Error("failed to list review logs: %v", err)
		return nil, storeError(err)
	}
	if entries == nil {
		entries = []models.ReviewLogEntry{}
	}
	return entries, nil
}
