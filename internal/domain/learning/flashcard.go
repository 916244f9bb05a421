package learning

import (
	"time"

	"github.com/EndaleK/Synaptic-sub012/internal/domain/user"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Flashcard struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User     *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Front    string         `gorm:"column:front;not null" json:"front"`
	Back     string         `gorm:"column:back;not null" json:"back"`
	Deck     string         `gorm:"column:deck;index" json:"deck"`
	Metadata datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Flashcard) TableName() string { return "flashcard" }
