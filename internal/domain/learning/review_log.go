package learning

import (
	"time"

	"github.com/EndaleK/Synaptic-sub012/internal/domain/user"
	"github.com/google/uuid"
)

// ReviewLog is the append-only history of graded reviews. Rows are never
// updated after insert.
type ReviewLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	FlashcardID uuid.UUID  `gorm:"type:uuid;not null;index" json:"flashcard_id"`
	Flashcard   *Flashcard `gorm:"constraint:OnDelete:CASCADE;foreignKey:FlashcardID;references:ID" json:"flashcard,omitempty"`

	// again|hard|good|easy
	Rating string `gorm:"column:rating;not null" json:"rating"`
	// new|learning|young|mature, classified after the review applied
	Maturity string `gorm:"column:maturity;not null" json:"maturity"`

	IntervalDays int       `gorm:"column:interval_days;not null" json:"interval_days"`
	EaseFactor   float64   `gorm:"column:ease_factor;not null" json:"ease_factor"`
	DueDate      time.Time `gorm:"column:due_date;not null" json:"due_date"`
	ReviewedAt   time.Time `gorm:"column:reviewed_at;not null;index" json:"reviewed_at"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ReviewLog) TableName() string { return "review_log" }
