package user

import (
	"fmt"
	"strings"

	"github.com/EndaleK/Synaptic-sub012/internal/domain/user"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepo interface {
	Create(dbc dbctx.Context, rows []*user.User) ([]*user.User, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*user.User, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, rows []*user.User) ([]*user.User, error) {
	if len(rows) == 0 {
		return []*user.User{}, nil
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

func (r *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*user.User, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out user.User
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("missing email")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out user.User
	if err := transaction.WithContext(dbc.Ctx).
		Where("email = ?", email).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, fmt.Errorf("missing email")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&user.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
