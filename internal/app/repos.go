package app

import (
	"gorm.io/gorm"

	"github.com/EndaleK/Synaptic-sub012/internal/data/repos"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
)

type Repos struct {
	User      repos.UserRepo
	UserToken repos.UserTokenRepo

	Flashcard       repos.FlashcardRepo
	SchedulingState repos.SchedulingStateRepo
	ReviewLog       repos.ReviewLogRepo
	ReviewOutbox    repos.ReviewOutboxRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		UserToken: repos.NewUserTokenRepo(db, log),

		Flashcard:       repos.NewFlashcardRepo(db, log),
		SchedulingState: repos.NewSchedulingStateRepo(db, log),
		ReviewLog:       repos.NewReviewLogRepo(db, log),
		ReviewOutbox:    repos.NewReviewOutboxRepo(db, log),
	}
}
