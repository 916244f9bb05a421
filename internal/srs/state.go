package srs

import (
	"fmt"
	"time"
)

// State is the memory-strength record of one (user, flashcard) pair.
// DueDate always equals LastReviewedAt plus IntervalDays days; for a card
// that has never been reviewed it is the creation instant.
type State struct {
	EaseFactor     float64
	IntervalDays   int
	Repetitions    int
	DueDate        time.Time
	LastReviewedAt *time.Time
	TimesReviewed  int
	TimesCorrect   int
}

// NewState returns the default never-reviewed state, due immediately.
func NewState(now time.Time) State {
	return State{
		EaseFactor:   DefaultEase,
		IntervalDays: 0,
		Repetitions:  0,
		DueDate:      now,
	}
}

// Validate rejects states that break the package invariants. Advance
// runs it on input; stored rows that fail here were corrupted outside
// this package.
func (s State) Validate() error {
	if s.IntervalDays < 0 {
		return fmt.Errorf("%w: negative interval %d", ErrInvalidState, s.IntervalDays)
	}
	if s.Repetitions < 0 {
		return fmt.Errorf("%w: negative repetitions %d", ErrInvalidState, s.Repetitions)
	}
	if s.Repetitions > 0 && s.IntervalDays < 1 {
		return fmt.Errorf("%w: interval %d after %d repetitions", ErrInvalidState, s.IntervalDays, s.Repetitions)
	}
	if s.EaseFactor < 0 {
		return fmt.Errorf("%w: negative ease factor %v", ErrInvalidState, s.EaseFactor)
	}
	if s.TimesCorrect < 0 || s.TimesCorrect > s.TimesReviewed {
		return fmt.Errorf("%w: %d correct of %d reviewed", ErrInvalidState, s.TimesCorrect, s.TimesReviewed)
	}
	if s.DueDate.IsZero() {
		return fmt.Errorf("%w: zero due date", ErrInvalidState)
	}
	return nil
}

// IsDue reports whether the card is eligible for review at now. A card is
// never shown early.
func (s State) IsDue(now time.Time) bool {
	return !s.DueDate.After(now)
}

// DaysOverdue returns max(0, now - DueDate) in whole days.
func (s State) DaysOverdue(now time.Time) int {
	if s.DueDate.After(now) {
		return 0
	}
	return int(now.Sub(s.DueDate).Hours() / 24)
}

// SuccessRate returns TimesCorrect/TimesReviewed, or 0 before any review.
func (s State) SuccessRate() float64 {
	if s.TimesReviewed <= 0 {
		return 0
	}
	return float64(s.TimesCorrect) / float64(s.TimesReviewed)
}

// reviewAnchor is the instant retention decay is measured from: the last
// review, or the creation-time due date for never-reviewed cards.
func (s State) reviewAnchor() time.Time {
	if s.LastReviewedAt != nil {
		return *s.LastReviewedAt
	}
	return s.DueDate.AddDate(0, 0, -s.IntervalDays)
}
