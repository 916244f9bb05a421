package srs

import (
	"math"
	"time"
)

// Classification is the derived, never-stored view of a state.
type Classification struct {
	Maturity           Maturity
	EstimatedRetention float64
}

// Classify derives maturity and estimated retention for a state at now.
// It is a pure function of (repetitions, intervalDays, time since last
// review) and is idempotent for fixed inputs.
func Classify(s State, now time.Time, p Params) Classification {
	p = p.withDefaults()
	return Classification{
		Maturity:           maturityOf(s.Repetitions, s.IntervalDays, p),
		EstimatedRetention: estimatedRetention(s, now),
	}
}

func maturityOf(repetitions, intervalDays int, p Params) Maturity {
	switch {
	case repetitions == 0:
		return MaturityNew
	case intervalDays < p.YoungIntervalDays:
		return MaturityLearning
	case intervalDays < p.MatureIntervalDays:
		return MaturityYoung
	default:
		return MaturityMature
	}
}

// estimatedRetention models exponential forgetting: exp(-t/stability) with
// t in days since the last review and stability = max(1, intervalDays).
// Retention is 1 immediately after a review and decays toward 0, slower
// for longer-interval (more consolidated) cards.
func estimatedRetention(s State, now time.Time) float64 {
	days := now.Sub(s.reviewAnchor()).Hours() / 24
	if days < 0 {
		days = 0
	}
	stability := float64(s.IntervalDays)
	if stability < 1 {
		stability = 1
	}
	r := math.Exp(-days / stability)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
