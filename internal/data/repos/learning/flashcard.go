package learning

import (
	"fmt"
	"strings"

	"github.com/EndaleK/Synaptic-sub012/internal/domain/learning"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FlashcardRepo interface {
	Create(dbc dbctx.Context, rows []*learning.Flashcard) ([]*learning.Flashcard, error)
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*learning.Flashcard, error)
	GetByIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID) ([]*learning.Flashcard, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, deck string, limit int) ([]*learning.Flashcard, error)
	Delete(dbc dbctx.Context, userID, id uuid.UUID) (bool, error)
}

type flashcardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlashcardRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardRepo {
	return &flashcardRepo{db: db, log: baseLog.With("repo", "FlashcardRepo")}
}

func (r *flashcardRepo) Create(dbc dbctx.Context, rows []*learning.Flashcard) ([]*learning.Flashcard, error) {
	if len(rows) == 0 {
		return []*learning.Flashcard{}, nil
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

func (r *flashcardRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*learning.Flashcard, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out learning.Flashcard
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *flashcardRepo) GetByIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID) ([]*learning.Flashcard, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if len(ids) == 0 {
		return []*learning.Flashcard{}, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*learning.Flashcard
	if err := transaction.WithContext(dbc.Ctx).
		Model(&learning.Flashcard{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *flashcardRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, deck string, limit int) ([]*learning.Flashcard, error) {
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
	q := transaction.WithContext(dbc.Ctx).
		Model(&learning.Flashcard{}).
		Where("user_id = ?", userID)
	if deck = strings.TrimSpace(deck); deck != "" {
		q = q.Where("deck = ?", deck)
	}
	var out []*learning.Flashcard
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *flashcardRepo) Delete(dbc dbctx.Context, userID, id uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, fmt.Errorf("missing user_id")
	}
	if id == uuid.Nil {
		return false, fmt.Errorf("missing id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&learning.Flashcard{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
