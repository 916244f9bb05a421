package learning

import (
	"fmt"

	"github.com/EndaleK/Synaptic-sub012/internal/domain/learning"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewLogRepo interface {
	Create(dbc dbctx.Context, rows []*learning.ReviewLog) ([]*learning.ReviewLog, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*learning.ReviewLog, error)
	ListByUserAndCard(dbc dbctx.Context, userID, flashcardID uuid.UUID, limit int) ([]*learning.ReviewLog, error)
}

type reviewLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewLogRepo(db *gorm.DB, baseLog *logger.Logger) ReviewLogRepo {
	return &reviewLogRepo{db: db, log: baseLog.With("repo", "ReviewLogRepo")}
}

func (r *reviewLogRepo) Create(dbc dbctx.Context, rows []*learning.ReviewLog) ([]*learning.ReviewLog, error) {
	if len(rows) == 0 {
		return []*learning.ReviewLog{}, nil
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

func (r *reviewLogRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*learning.ReviewLog, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*learning.ReviewLog
	if err := transaction.WithContext(dbc.Ctx).
		Model(&learning.ReviewLog{}).
		Where("user_id = ?", userID).
		Order("reviewed_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reviewLogRepo) ListByUserAndCard(dbc dbctx.Context, userID, flashcardID uuid.UUID, limit int) ([]*learning.ReviewLog, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if flashcardID == uuid.Nil {
		return nil, fmt.Errorf("missing flashcard_id")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*learning.ReviewLog
	if err := transaction.WithContext(dbc.Ctx).
		Model(&learning.ReviewLog{}).
		Where("user_id = ? AND flashcard_id = ?", userID, flashcardID).
		Order("reviewed_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
