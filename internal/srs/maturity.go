package srs

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Maturity is a coarse classification of how consolidated a card's memory
// is, derived from repetitions and interval length.
type Maturity int

const (
	// MaturityNew marks a card that has never been reviewed.
	MaturityNew Maturity = iota + 1
	// MaturityLearning marks a reviewed card still on sub-week intervals.
	MaturityLearning
	// MaturityYoung marks a card on intervals of one to three weeks.
	MaturityYoung
	// MaturityMature marks a card on intervals of three weeks or more.
	MaturityMature
)

var maturityNames = [...]string{"new", "learning", "young", "mature"}

var (
	_ fmt.Stringer           = MaturityNew
	_ encoding.TextMarshaler = MaturityNew
	_ json.Marshaler         = MaturityNew
)

func (m Maturity) String() string {
	if !m.IsValid() {
		return fmt.Sprintf("Maturity(%d)", int(m))
	}
	return maturityNames[m-1]
}

func (m Maturity) IsValid() bool {
	return m >= MaturityNew && m <= MaturityMature
}

func (m Maturity) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("srs: invalid maturity %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m Maturity) MarshalJSON() ([]byte, error) {
	text, err := m.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}
