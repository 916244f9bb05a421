package srs

import "errors"

var (
	// ErrInvalidRating reports a rating outside the four allowed grades.
	ErrInvalidRating = errors.New("srs: invalid rating")
	// ErrInvalidState reports scheduling state that violates the package
	// invariants (negative interval, zero interval after a review, ...).
	ErrInvalidState = errors.New("srs: invalid state")
)
