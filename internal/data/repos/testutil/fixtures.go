package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/EndaleK/Synaptic-sub012/internal/domain/learning"
	"github.com/EndaleK/Synaptic-sub012/internal/domain/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *user.User {
	tb.Helper()
	u := &user.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedFlashcard(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *learning.Flashcard {
	tb.Helper()
	f := &learning.Flashcard{
		ID:     uuid.New(),
		UserID: userID,
		Front:  "front",
		Back:   "back",
		Deck:   "default",
	}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed flashcard: %v", err)
	}
	return f
}

func SeedSchedulingState(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, flashcardID uuid.UUID, intervalDays int, dueDate time.Time) *learning.SchedulingState {
	tb.Helper()
	reps := 0
	var reviewedAt *time.Time
	if intervalDays > 0 {
		reps = 1
		at := dueDate.AddDate(0, 0, -intervalDays)
		reviewedAt = &at
	}
	s := &learning.SchedulingState{
		ID:             uuid.New(),
		UserID:         userID,
		FlashcardID:    flashcardID,
		EaseFactor:     2.5,
		IntervalDays:   intervalDays,
		Repetitions:    reps,
		DueDate:        dueDate,
		LastReviewedAt: reviewedAt,
		TimesReviewed:  reps,
		TimesCorrect:   reps,
		Version:        1,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed scheduling state: %v", err)
	}
	return s
}
