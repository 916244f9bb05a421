package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/EndaleK/Synaptic-sub012/internal/domain/auth"
	"github.com/EndaleK/Synaptic-sub012/internal/domain/learning"
	"github.com/EndaleK/Synaptic-sub012/internal/domain/user"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Identity + auth
		// =========================
		&user.User{},
		&auth.UserToken{},

		// =========================
		// Cards + scheduling
		// =========================
		&learning.Flashcard{},
		&learning.SchedulingState{},
		&learning.ReviewLog{},
		&learning.ReviewOutbox{},
	)
}

// EnsureLearningIndexes creates the indexes AutoMigrate cannot express.
// All statements run on both Postgres and SQLite.
func EnsureLearningIndexes(db *gorm.DB) error {
	// scheduling_state: one live row per (user, card). Scoped to
	// deleted_at IS NULL so a reset card can be scheduled again.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_scheduling_state_user_card
		ON scheduling_state(user_id, flashcard_id)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_scheduling_state_user_card: %w", err)
	}

	// Due-queue scan: everything due for a user, ordered by due date.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_scheduling_state_user_due
		ON scheduling_state(user_id, due_date)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_scheduling_state_user_due: %w", err)
	}

	// Review history pagination, newest first.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_review_log_user_reviewed_at
		ON review_log(user_id, reviewed_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_review_log_user_reviewed_at: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_review_log_user_card_reviewed_at
		ON review_log(user_id, flashcard_id, reviewed_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_review_log_user_card_reviewed_at: %w", err)
	}

	// Dispatcher poll: pending/failed rows in insertion order.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_review_outbox_status_created_at
		ON review_outbox(status, created_at);
	`).Error; err != nil {
		return fmt.Errorf("create idx_review_outbox_status_created_at: %w", err)
	}

	return nil
}
