package learning

import (
	"fmt"
	"time"

	"github.com/EndaleK/Synaptic-sub012/internal/domain/learning"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SchedulingStateRepo interface {
	Create(dbc dbctx.Context, rows []*learning.SchedulingState) ([]*learning.SchedulingState, error)
	GetByUserAndCard(dbc dbctx.Context, userID, flashcardID uuid.UUID) (*learning.SchedulingState, error)
	ListByUserAndCards(dbc dbctx.Context, userID uuid.UUID, flashcardIDs []uuid.UUID) ([]*learning.SchedulingState, error)
	ListDueByUser(dbc dbctx.Context, userID uuid.UUID, asOf time.Time) ([]*learning.SchedulingState, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	DeleteByUserAndCard(dbc dbctx.Context, userID, flashcardID uuid.UUID) (bool, error)
}

type schedulingStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSchedulingStateRepo(db *gorm.DB, baseLog *logger.Logger) SchedulingStateRepo {
	return &schedulingStateRepo{db: db, log: baseLog.With("repo", "SchedulingStateRepo")}
}

func (r *schedulingStateRepo) Create(dbc dbctx.Context, rows []*learning.SchedulingState) ([]*learning.SchedulingState, error) {
	if len(rows) == 0 {
		return []*learning.SchedulingState{}, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByUserAndCard returns nil, nil when no state row exists yet.
func (r *schedulingStateRepo) GetByUserAndCard(dbc dbctx.Context, userID, flashcardID uuid.UUID) (*learning.SchedulingState, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if flashcardID == uuid.Nil {
		return nil, fmt.Errorf("missing flashcard_id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*learning.SchedulingState
	if err := transaction.WithContext(dbc.Ctx).
		Model(&learning.SchedulingState{}).
		Where("user_id = ? AND flashcard_id = ?", userID, flashcardID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *schedulingStateRepo) ListByUserAndCards(dbc dbctx.Context, userID uuid.UUID, flashcardIDs []uuid.UUID) ([]*learning.SchedulingState, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if len(flashcardIDs) == 0 {
		return []*learning.SchedulingState{}, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*learning.SchedulingState
	if err := transaction.WithContext(dbc.Ctx).
		Model(&learning.SchedulingState{}).
		Where("user_id = ? AND flashcard_id IN ?", userID, flashcardIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListDueByUser returns every state with due_date <= asOf, unbounded:
// queue ranking and truncation happen in the scheduling core, stats need
// the full set.
func (r *schedulingStateRepo) ListDueByUser(dbc dbctx.Context, userID uuid.UUID, asOf time.Time) ([]*learning.SchedulingState, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*learning.SchedulingState
	if err := transaction.WithContext(dbc.Ctx).
		Model(&learning.SchedulingState{}).
		Where("user_id = ? AND due_date <= ?", userID, asOf).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *schedulingStateRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, fmt.Errorf("missing user_id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&learning.SchedulingState{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *schedulingStateRepo) DeleteByUserAndCard(dbc dbctx.Context, userID, flashcardID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, fmt.Errorf("missing user_id")
	}
	if flashcardID == uuid.Nil {
		return false, fmt.Errorf("missing flashcard_id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND flashcard_id = ?", userID, flashcardID).
		Delete(&learning.SchedulingState{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
