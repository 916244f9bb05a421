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

const (
	OutboxStatusPending    = "pending"
	OutboxStatusDispatched = "dispatched"
	OutboxStatusFailed     = "failed"
)

type ReviewOutboxRepo interface {
	Create(dbc dbctx.Context, rows []*learning.ReviewOutbox) ([]*learning.ReviewOutbox, error)
	ListPending(dbc dbctx.Context, limit int) ([]*learning.ReviewOutbox, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*learning.ReviewOutbox, error)
	MarkDispatched(dbc dbctx.Context, id uuid.UUID) (bool, error)
	MarkFailed(dbc dbctx.Context, id uuid.UUID, lastError string) (bool, error)
}

type reviewOutboxRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewOutboxRepo(db *gorm.DB, baseLog *logger.Logger) ReviewOutboxRepo {
	return &reviewOutboxRepo{db: db, log: baseLog.With("repo", "ReviewOutboxRepo")}
}

func (r *reviewOutboxRepo) Create(dbc dbctx.Context, rows []*learning.ReviewOutbox) ([]*learning.ReviewOutbox, error) {
	if len(rows) == 0 {
		return []*learning.ReviewOutbox{}, nil
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

// ListPending returns undispatched rows. Failed rows are included so the
// dispatcher retries them; delivery is at least once. Rows with fewer
// attempts go first so a repeatedly failing row cannot starve fresh ones.
func (r *reviewOutboxRepo) ListPending(dbc dbctx.Context, limit int) ([]*learning.ReviewOutbox, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*learning.ReviewOutbox
	if err := transaction.WithContext(dbc.Ctx).
		Model(&learning.ReviewOutbox{}).
		Where("status IN ?", []string{OutboxStatusPending, OutboxStatusFailed}).
		Order("attempts ASC, created_at ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MarkDispatched settles a row after a successful publish. A false return
// means another dispatcher already settled it.
func (r *reviewOutboxRepo) MarkDispatched(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, fmt.Errorf("missing id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	res := transaction.WithContext(dbc.Ctx).
		Model(&learning.ReviewOutbox{}).
		Where("id = ? AND status IN ?", id, []string{OutboxStatusPending, OutboxStatusFailed}).
		Updates(map[string]any{
			"status":        OutboxStatusDispatched,
			"attempts":      gorm.Expr("attempts + 1"),
			"last_error":    "",
			"dispatched_at": now,
			"updated_at":    now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *reviewOutboxRepo) MarkFailed(dbc dbctx.Context, id uuid.UUID, lastError string) (bool, error) {
	if id == uuid.Nil {
		return false, fmt.Errorf("missing id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&learning.ReviewOutbox{}).
		Where("id = ? AND status IN ?", id, []string{OutboxStatusPending, OutboxStatusFailed}).
		Updates(map[string]any{
			"status":     OutboxStatusFailed,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": lastError,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *reviewOutboxRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*learning.ReviewOutbox, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out learning.ReviewOutbox
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
