package models

import "time"

// Mode controls how many new items a learner is shown per day.
type Mode string

const (
	ModeBeginner    Mode = "beginner"
	ModeComfortable Mode = "comfortable"
	ModeAggressive  Mode = "aggressive"
)

// DefaultMode is used for learner states created lazily.
const DefaultMode = ModeComfortable

// DateLayout is the layout of QuotaResetDate.
const DateLayout = "2006-01-02"

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(s); m {
	case ModeBeginner, ModeComfortable, ModeAggressive:
		return m, true
	}
	return "", false
}

// DefaultNewLimit returns the canonical daily new-item cap for a mode.
func (m Mode) DefaultNewLimit() int {
	switch m {
	case ModeBeginner:
		return 10
	case ModeAggressive:
		return 25
	default:
		return 15
	}
}

type LearnerDeckState struct {
	LearnerID          int64     `json:"learner_id"`
	DeckID             int64     `json:"deck_id"`
	Ability            float64   `json:"ability"`
	Mode               Mode      `json:"mode"`
	NewItemDailyLimit  int       `json:"new_item_daily_limit"`
	NewItemsShownToday int       `json:"new_items_shown_today"`
	QuotaResetDate     string    `json:"quota_reset_date"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// EffectiveLimit is the configured limit, or the mode default when unset.
func (s LearnerDeckState) EffectiveLimit() int {
	if s.NewItemDailyLimit > 0 {
		return s.NewItemDailyLimit
	}
	return s.Mode.DefaultNewLimit()
}

// AllowedNewToday is the remaining new-item quota, never negative.
func (s LearnerDeckState) AllowedNewToday() int {
	if n := s.EffectiveLimit() - s.NewItemsShownToday; n > 0 {
		return n
	}
	return 0
}

// ResetIfStale zeroes the daily counter when today differs from the stored
// reset date. It reports whether the state changed.
func (s *LearnerDeckState) ResetIfStale(today string) bool {
	if s.QuotaResetDate == today {
		return false
	}
	s.QuotaResetDate = today
	s.NewItemsShownToday = 0
	if s.NewItemDailyLimit <= 0 {
		s.NewItemDailyLimit = s.Mode.DefaultNewLimit()
	}
	return true
}

// ScheduleSummary is the learner-facing view of a deck's schedule.
type ScheduleSummary struct {
	DeckID            int64 `json:"deck_id"`
	Mode              Mode  `json:"mode"`
	NewLimit          int   `json:"new_limit"`
	NewShownToday     int   `json:"new_shown_today"`
	AllowedNewToday   int   `json:"allowed_new_today"`
	DueReviewCount    int   `json:"due_review_count"`
	NewAvailableCount int   `json:"new_available_count"`
}
