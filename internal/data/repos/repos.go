package repos

import (
	"github.com/EndaleK/Synaptic-sub012/internal/data/repos/auth"
	"github.com/EndaleK/Synaptic-sub012/internal/data/repos/learning"
	"github.com/EndaleK/Synaptic-sub012/internal/data/repos/user"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type FlashcardRepo = learning.FlashcardRepo
type SchedulingStateRepo = learning.SchedulingStateRepo
type ReviewLogRepo = learning.ReviewLogRepo
type ReviewOutboxRepo = learning.ReviewOutboxRepo

const (
	OutboxStatusPending    = learning.OutboxStatusPending
	OutboxStatusDispatched = learning.OutboxStatusDispatched
	OutboxStatusFailed     = learning.OutboxStatusFailed
)

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewFlashcardRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardRepo {
	return learning.NewFlashcardRepo(db, baseLog)
}
func NewSchedulingStateRepo(db *gorm.DB, baseLog *logger.Logger) SchedulingStateRepo {
	return learning.NewSchedulingStateRepo(db, baseLog)
}
func NewReviewLogRepo(db *gorm.DB, baseLog *logger.Logger) ReviewLogRepo {
	return learning.NewReviewLogRepo(db, baseLog)
}
func NewReviewOutboxRepo(db *gorm.DB, baseLog *logger.Logger) ReviewOutboxRepo {
	return learning.NewReviewOutboxRepo(db, baseLog)
}
