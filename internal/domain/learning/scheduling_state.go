package learning

import (
	"time"

	"github.com/EndaleK/Synaptic-sub012/internal/domain/user"
	"github.com/EndaleK/Synaptic-sub012/internal/srs"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SchedulingState is the durable memory-strength row for one
// (user, flashcard) pair. Version is the optimistic-concurrency token:
// every write must match the version it read and bump it by one.
type SchedulingState struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	FlashcardID uuid.UUID  `gorm:"type:uuid;not null;index" json:"flashcard_id"`
	Flashcard   *Flashcard `gorm:"constraint:OnDelete:CASCADE;foreignKey:FlashcardID;references:ID" json:"flashcard,omitempty"`

	EaseFactor     float64    `gorm:"column:ease_factor;not null" json:"ease_factor"`
	IntervalDays   int        `gorm:"column:interval_days;not null" json:"interval_days"`
	Repetitions    int        `gorm:"column:repetitions;not null" json:"repetitions"`
	DueDate        time.Time  `gorm:"column:due_date;not null;index" json:"due_date"`
	LastReviewedAt *time.Time `gorm:"column:last_reviewed_at" json:"last_reviewed_at,omitempty"`
	TimesReviewed  int        `gorm:"column:times_reviewed;not null" json:"times_reviewed"`
	TimesCorrect   int        `gorm:"column:times_correct;not null" json:"times_correct"`

	Version int `gorm:"column:version;not null;default:1" json:"version"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Uniqueness of the live (user_id, flashcard_id) pair is enforced by a
// partial index created in data/db, scoped to deleted_at IS NULL so a
// reset card can be scheduled again.

func (SchedulingState) TableName() string { return "scheduling_state" }

// SRSState projects the row into the scheduling core's value type.
func (s *SchedulingState) SRSState() srs.State {
	return srs.State{
		EaseFactor:     s.EaseFactor,
		IntervalDays:   s.IntervalDays,
		Repetitions:    s.Repetitions,
		DueDate:        s.DueDate,
		LastReviewedAt: s.LastReviewedAt,
		TimesReviewed:  s.TimesReviewed,
		TimesCorrect:   s.TimesCorrect,
	}
}
