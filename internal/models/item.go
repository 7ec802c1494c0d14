package models

import "time"

type Item struct {
	ID           int64     `json:"id"`
	LearnerID    int64     `json:"learner_id"`
	DeckID       int64     `json:"deck_id"`
	FrontText    string    `json:"front_text"`
	BackText     string    `json:"back_text"`
	Notes        string    `json:"notes"`
	IntervalDays int       `json:"interval_days"`
	DueAt        time.Time `json:"due_at"`
	EaseFactor   float64   `json:"ease_factor"`
	Repetitions  int       `json:"repetitions"`
	Lapses       int       `json:"lapses"`
	Suspended    bool      `json:"suspended"`
	Difficulty   float64   `json:"difficulty"`
	HalfLifeDays float64   `json:"half_life_days"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsNew reports whether the item has never been recalled successfully and
// has never lapsed. Lapsed items are scheduled as reviews.
func (i Item) IsNew() bool {
	return i.Repetitions == 0 && i.Lapses == 0
}

// ItemEntry is one front/back pair offered by the item feed. Blank sides
// are allowed here; sync skips them.
type ItemEntry struct {
	Front string `json:"front" yaml:"front" validate:"max=255"`
	Back  string `json:"back" yaml:"back" validate:"max=255"`
	Notes string `json:"notes" yaml:"notes"`
}

// ItemDefaults are the scheduling fields a freshly synced item starts with.
type ItemDefaults struct {
	HalfLifeDays float64
	EaseFactor   float64
}
