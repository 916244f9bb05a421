package srs

import (
	"encoding"
	"encoding/json"
	"fmt"
	"strings"
)

// Rating is the learner's recall grade for a single review.
type Rating int

const (
	// RatingAgain marks a lapse: the card was forgotten.
	RatingAgain Rating = iota + 1
	// RatingHard marks recall with significant difficulty.
	RatingHard
	// RatingGood marks recall with some effort.
	RatingGood
	// RatingEasy marks effortless recall.
	RatingEasy
)

var ratingNames = [...]string{"again", "hard", "good", "easy"}

var (
	_ fmt.Stringer             = RatingGood
	_ encoding.TextMarshaler   = RatingGood
	_ encoding.TextUnmarshaler = (*Rating)(nil)
	_ json.Marshaler           = RatingGood
	_ json.Unmarshaler         = (*Rating)(nil)
)

func (r Rating) String() string {
	if !r.IsValid() {
		return fmt.Sprintf("Rating(%d)", int(r))
	}
	return ratingNames[r-1]
}

func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// IsCorrect reports whether the rating counts as a successful recall.
// Every grade except again does.
func (r Rating) IsCorrect() bool {
	return r.IsValid() && r != RatingAgain
}

// ParseRating converts the wire form ("again", "hard", "good", "easy")
// into a Rating.
func ParseRating(s string) (Rating, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range ratingNames {
		if n == name {
			return Rating(i + 1), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
}

func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return []byte(r.String()), nil
}

func (r *Rating) UnmarshalText(text []byte) error {
	parsed, err := ParseRating(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Rating) MarshalJSON() ([]byte, error) {
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

func (r *Rating) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return r.UnmarshalText([]byte(s))
}
