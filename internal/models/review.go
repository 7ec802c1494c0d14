package models

import "time"

// ReviewLogEntry is written once per grading event and never updated.
type ReviewLogEntry struct {
	ID               int64     `json:"id"`
	LearnerID        int64     `json:"learner_id"`
	DeckID           int64     `json:"deck_id"`
	ItemID           int64     `json:"item_id"`
	Rating           int       `json:"rating"`
	IntervalBefore   int       `json:"interval_before"`
	IntervalAfter    int       `json:"interval_after"`
	HalfLifeBefore   float64   `json:"half_life_before"`
	HalfLifeAfter    float64   `json:"half_life_after"`
	EaseFactorBefore float64   `json:"ease_factor_before"`
	EaseFactorAfter  float64   `json:"ease_factor_after"`
	PredictedMastery float64   `json:"predicted_mastery"`
	ReviewedAt       time.Time `json:"reviewed_at"`
}

// GradeResult is returned to the caller after a grading event.
type GradeResult struct {
	ItemID           int64     `json:"item_id"`
	IntervalDays     int       `json:"interval_days"`
	HalfLifeDays     float64   `json:"half_life_days"`
	PredictedMastery float64   `json:"predicted_mastery"`
	NextDue          time.Time `json:"next_due"`
	Ability          float64   `json:"ability"`
	Difficulty       float64   `json:"difficulty"`
}

// NoneReason explains why no item was selected.
type NoneReason string

const (
	ReasonNoCards       NoneReason = "no_cards"
	ReasonNewCapReached NoneReason = "new_cap_reached"
)

// NextResult carries either the selected item or the reason there is none.
type NextResult struct {
	Item   *Item      `json:"item,omitempty"`
	Reason NoneReason `json:"reason,omitempty"`
	// IsNew reports whether the item came from the new-item quota.
	IsNew bool `json:"is_new,omitempty"`
}
