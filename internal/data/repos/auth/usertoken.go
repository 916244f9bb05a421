package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/EndaleK/Synaptic-sub012/internal/domain/auth"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, rows []*auth.UserToken) ([]*auth.UserToken, error)
	// GetByRefreshToken returns nil when no row holds the token.
	GetByRefreshToken(dbc dbctx.Context, refreshToken string) (*auth.UserToken, error)
	UpdateRefreshToken(dbc dbctx.Context, id uuid.UUID, refreshToken string, expiresAt time.Time) error
	// DeleteByUserAndToken removes one token scoped to its owner. False
	// means no row matched, which a logout treats as already done.
	DeleteByUserAndToken(dbc dbctx.Context, userID uuid.UUID, refreshToken string) (bool, error)
	DeleteExpired(dbc dbctx.Context, before time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: baseLog.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) Create(dbc dbctx.Context, rows []*auth.UserToken) ([]*auth.UserToken, error) {
	if len(rows) == 0 {
		return []*auth.UserToken{}, nil
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

func (r *userTokenRepo) GetByRefreshToken(dbc dbctx.Context, refreshToken string) (*auth.UserToken, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, fmt.Errorf("missing refresh_token")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row auth.UserToken
	err := transaction.WithContext(dbc.Ctx).
		Where("refresh_token = ?", refreshToken).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *userTokenRepo) UpdateRefreshToken(dbc dbctx.Context, id uuid.UUID, refreshToken string, expiresAt time.Time) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return fmt.Errorf("missing refresh_token")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&auth.UserToken{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"refresh_token": refreshToken,
			"expires_at":    expiresAt,
			"updated_at":    time.Now().UTC(),
		}).Error
}

func (r *userTokenRepo) DeleteByUserAndToken(dbc dbctx.Context, userID uuid.UUID, refreshToken string) (bool, error) {
	if userID == uuid.Nil {
		return false, fmt.Errorf("missing user_id")
	}
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return false, fmt.Errorf("missing refresh_token")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Unscoped().
		Where("user_id = ? AND refresh_token = ?", userID, refreshToken).
		Delete(&auth.UserToken{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userTokenRepo) DeleteExpired(dbc dbctx.Context, before time.Time) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Unscoped().
		Where("expires_at < ?", before).
		Delete(&auth.UserToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
