package srs

// Default tuning values. Override through Params, not by editing here.
const (
	DefaultEase = 2.5
	// MinEase floors the ease factor on every write.
	MinEase = 1.3

	LapseEasePenalty = 0.20
	HardEasePenalty  = 0.15
	EasyEaseBonus    = 0.15

	HardIntervalScale = 0.8
	EasyIntervalScale = 1.3

	FirstIntervalDays  = 1
	SecondIntervalDays = 6
	LapseIntervalDays  = 1

	YoungIntervalDays  = 7
	MatureIntervalDays = 21

	DefaultQueueSize = 50
)

// Params tunes the scheduling algorithm. The zero value resolves to the
// package defaults, so callers only set what they want to change.
type Params struct {
	// DefaultEase seeds the ease factor of never-reviewed cards.
	DefaultEase float64
	// MinEase floors the ease factor on every write.
	MinEase float64

	// LapseEasePenalty is subtracted from ease on an "again" review.
	LapseEasePenalty float64
	// HardEasePenalty is subtracted from ease on a "hard" review.
	HardEasePenalty float64
	// EasyEaseBonus is added to ease on an "easy" review.
	EasyEaseBonus float64

	// HardIntervalScale shrinks the grown interval on a "hard" review.
	HardIntervalScale float64
	// EasyIntervalScale stretches the grown interval on an "easy" review.
	EasyIntervalScale float64

	// FirstIntervalDays and SecondIntervalDays fix the first two steps of
	// the growth ladder; later steps multiply the prior interval by ease.
	FirstIntervalDays  int
	SecondIntervalDays int
	// LapseIntervalDays is the interval a lapsed card restarts at.
	LapseIntervalDays int

	// YoungIntervalDays and MatureIntervalDays bound the maturity buckets.
	YoungIntervalDays  int
	MatureIntervalDays int
}

// DefaultParams returns the package defaults fully populated.
func DefaultParams() Params {
	return Params{}.withDefaults()
}

func (p Params) withDefaults() Params {
	if p.DefaultEase == 0 {
		p.DefaultEase = DefaultEase
	}
	if p.MinEase == 0 {
		p.MinEase = MinEase
	}
	if p.LapseEasePenalty == 0 {
		p.LapseEasePenalty = LapseEasePenalty
	}
	if p.HardEasePenalty == 0 {
		p.HardEasePenalty = HardEasePenalty
	}
	if p.EasyEaseBonus == 0 {
		p.EasyEaseBonus = EasyEaseBonus
	}
	if p.HardIntervalScale == 0 {
		p.HardIntervalScale = HardIntervalScale
	}
	if p.EasyIntervalScale == 0 {
		p.EasyIntervalScale = EasyIntervalScale
	}
	if p.FirstIntervalDays == 0 {
		p.FirstIntervalDays = FirstIntervalDays
	}
	if p.SecondIntervalDays == 0 {
		p.SecondIntervalDays = SecondIntervalDays
	}
	if p.LapseIntervalDays == 0 {
		p.LapseIntervalDays = LapseIntervalDays
	}
	if p.YoungIntervalDays == 0 {
		p.YoungIntervalDays = YoungIntervalDays
	}
	if p.MatureIntervalDays == 0 {
		p.MatureIntervalDays = MatureIntervalDays
	}
	return p
}
