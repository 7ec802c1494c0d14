// Package memory implements the forgetting-curve math and the online
// ability/difficulty update used to schedule reviews. Everything here is
// pure: callers own the state and the clock.
package memory

import (
	"fmt"
	"math"
	"time"
)

// SuccessRating is the lowest rating counted as a successful recall.
const SuccessRating = 4

const (
	sigmoidLimit = 12.0
	sigmoidHigh  = 0.999994
	sigmoidLow   = 0.000006
)

// Config holds the tunables of the model. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// AbilityLearningRate scales the learner ability step per review.
	AbilityLearningRate float64
	// DifficultyLearningRate scales the item difficulty step per review.
	DifficultyLearningRate float64
	// TargetRecall is the recall probability the next review aims for.
	TargetRecall float64
	// MinHalfLife and MaxHalfLife bound the half-life, in days.
	MinHalfLife float64
	MaxHalfLife float64
	// MinInterval and MaxInterval bound the scheduled interval, in days.
	MinInterval int
	MaxInterval int
	// WeakMastery is the predicted mastery below which the next review is
	// forced to MinInterval.
	WeakMastery float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		AbilityLearningRate:    0.15,
		DifficultyLearningRate: 0.10,
		TargetRecall:           0.85,
		MinHalfLife:            0.5,
		MaxHalfLife:            365,
		MinInterval:            1,
		MaxInterval:            90,
		WeakMastery:            0.6,
	}
}

// Validate reports the first inconsistent tunable.
func (c Config) Validate() error {
	switch {
	case c.AbilityLearningRate <= 0:
		return fmt.Errorf("memory: ability learning rate %v must be positive", c.AbilityLearningRate)
	case c.DifficultyLearningRate <= 0:
		return fmt.Errorf("memory: difficulty learning rate %v must be positive", c.DifficultyLearningRate)
	case c.TargetRecall <= 0 || c.TargetRecall >= 1:
		return fmt.Errorf("memory: target recall %v out of range (0, 1)", c.TargetRecall)
	case c.MinHalfLife <= 0:
		return fmt.Errorf("memory: min half-life %v must be positive", c.MinHalfLife)
	case c.MaxHalfLife < c.MinHalfLife:
		return fmt.Errorf("memory: max half-life %v below min half-life %v", c.MaxHalfLife, c.MinHalfLife)
	case c.MinInterval < 1:
		return fmt.Errorf("memory: min interval %d must be at least 1 day", c.MinInterval)
	case c.MaxInterval < c.MinInterval:
		return fmt.Errorf("memory: max interval %d below min interval %d", c.MaxInterval, c.MinInterval)
	case c.WeakMastery < 0 || c.WeakMastery > 1:
		return fmt.Errorf("memory: weak mastery threshold %v out of range [0, 1]", c.WeakMastery)
	}
	return nil
}

// State is the scheduling input for one learner/item pair.
type State struct {
	Ability      float64
	Difficulty   float64
	HalfLifeDays float64
}

// Result is the outcome of one review.
type Result struct {
	Ability      float64
	Difficulty   float64
	HalfLifeDays float64
	IntervalDays int
	DueAt        time.Time
	// PredictedMastery is the recall probability estimated before the
	// update. It is reported, not stored.
	PredictedMastery float64
	Recalled         bool
}

// Sigmoid is the logistic function, saturating beyond ±12.
func Sigmoid(x float64) float64 {
	if x > sigmoidLimit {
		return sigmoidHigh
	}
	if x < -sigmoidLimit {
		return sigmoidLow
	}
	return 1.0 / (1.0 + math.Exp(-x))
}

// Recall returns the probability of recalling an item with the given
// half-life after the given number of days: 2^(-days/halfLife).
func Recall(halfLifeDays, days float64) float64 {
	if halfLifeDays <= 0 {
		return 0
	}
	return math.Exp2(-days / halfLifeDays)
}

// Recalled reports whether a rating counts as a successful recall.
func Recalled(rating int) bool {
	return rating >= SuccessRating
}

// Update applies one review with the given rating (0..5) and returns the
// new parameters and schedule. Ratings are assumed validated.
func Update(cfg Config, st State, rating int, now time.Time) Result {
	recalled := Recalled(rating)
	y := 0.0
	if recalled {
		y = 1.0
	}

	h := st.HalfLifeDays
	if h <= 0 {
		h = cfg.MinHalfLife
	}

	p0 := Sigmoid(st.Ability - st.Difficulty)

	// single SGD step on the log-loss
	errTerm := y - p0
	ability := st.Ability + cfg.AbilityLearningRate*errTerm
	difficulty := st.Difficulty - cfg.DifficultyLearningRate*errTerm

	if recalled {
		factor := 1.0 + 0.25*math.Max(0, float64(rating-3))
		h = math.Min(cfg.MaxHalfLife, h*factor)
	} else {
		h = math.Max(cfg.MinHalfLife, h*0.5)
	}
	// an out-of-range incoming half-life must not leak through
	h = clampFloat(h, cfg.MinHalfLife, cfg.MaxHalfLife)

	interval := IntervalFor(cfg, h)
	if p0 < cfg.WeakMastery {
		interval = cfg.MinInterval
	}

	return Result{
		Ability:          ability,
		Difficulty:       difficulty,
		HalfLifeDays:     h,
		IntervalDays:     interval,
		DueAt:            now.Add(time.Duration(interval) * 24 * time.Hour),
		PredictedMastery: p0,
		Recalled:         recalled,
	}
}

// IntervalFor returns the number of days after which recall decays to the
// target probability, clamped to the configured interval bounds.
func IntervalFor(cfg Config, halfLifeDays float64) int {
	t := int(math.Round(-halfLifeDays * math.Log(cfg.TargetRecall) / math.Ln2))
	if t < cfg.MinInterval {
		return cfg.MinInterval
	}
	if t > cfg.MaxInterval {
		return cfg.MaxInterval
	}
	return t
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
