package srs

import (
	"math"
	"time"
)

// Advance applies one review to a state and returns the successor state.
// It never mutates its input and performs no I/O.
//
// A lapse (again) resets repetitions and interval and costs ease. Any
// passing grade grows the interval along the SM-2 ladder (1 day, then
// 6 days, then round(interval * ease)), scales it by the rating
// multiplier (hard 0.8, good 1.0, easy 1.3), and floors it at one day.
// Ease is clamped at MinEase on every write.
func Advance(s State, r Rating, now time.Time, p Params) (State, error) {
	if !r.IsValid() {
		return State{}, ErrInvalidRating
	}
	if err := s.Validate(); err != nil {
		return State{}, err
	}
	p = p.withDefaults()

	next := s
	if r == RatingAgain {
		next.Repetitions = 0
		next.IntervalDays = p.LapseIntervalDays
		next.EaseFactor = clampEase(s.EaseFactor-p.LapseEasePenalty, p.MinEase)
	} else {
		next.Repetitions = s.Repetitions + 1
		grown := growthIntervalDays(next.Repetitions, s.IntervalDays, s.EaseFactor, p)
		next.IntervalDays = scaleIntervalDays(grown, r, p)
		next.EaseFactor = clampEase(s.EaseFactor+easeDelta(r, p), p.MinEase)
	}

	reviewedAt := now
	next.LastReviewedAt = &reviewedAt
	next.DueDate = now.AddDate(0, 0, next.IntervalDays)
	next.TimesReviewed = s.TimesReviewed + 1
	if r.IsCorrect() {
		next.TimesCorrect = s.TimesCorrect + 1
	}
	return next, nil
}

// growthIntervalDays is the pre-multiplier SM-2 step for the repetition
// count the card is moving to.
func growthIntervalDays(repetitions, intervalDays int, ease float64, p Params) int {
	switch {
	case repetitions <= 1:
		return p.FirstIntervalDays
	case repetitions == 2:
		return p.SecondIntervalDays
	default:
		return int(math.Round(float64(intervalDays) * ease))
	}
}

func scaleIntervalDays(days int, r Rating, p Params) int {
	scale := 1.0
	switch r {
	case RatingHard:
		scale = p.HardIntervalScale
	case RatingEasy:
		scale = p.EasyIntervalScale
	}
	scaled := int(math.Round(float64(days) * scale))
	if scaled < 1 {
		return 1
	}
	return scaled
}

func easeDelta(r Rating, p Params) float64 {
	switch r {
	case RatingHard:
		return -p.HardEasePenalty
	case RatingEasy:
		return p.EasyEaseBonus
	default:
		return 0
	}
}

func clampEase(ease, floor float64) float64 {
	if ease < floor {
		return floor
	}
	return ease
}
