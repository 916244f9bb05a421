package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ReviewOutbox is the durable event ledger for review completions.
// Rows are appended inside the same DB transaction that commits the
// scheduling write; a background dispatcher publishes and marks them.
// Delivery is at least once.
type ReviewOutbox struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	// review.completed
	Kind    string         `gorm:"column:kind;not null;index" json:"kind"`
	Payload datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`

	// pending|dispatched|failed
	Status       string     `gorm:"column:status;not null;index" json:"status"`
	Attempts     int        `gorm:"column:attempts;not null" json:"attempts"`
	LastError    string     `gorm:"column:last_error" json:"last_error,omitempty"`
	DispatchedAt *time.Time `gorm:"column:dispatched_at" json:"dispatched_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ReviewOutbox) TableName() string { return "review_outbox" }
