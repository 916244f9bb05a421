package app

import (
	"gorm.io/gorm"

	dataagg "github.com/EndaleK/Synaptic-sub012/internal/data/aggregates"
	"github.com/EndaleK/Synaptic-sub012/internal/observability"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
	"github.com/EndaleK/Synaptic-sub012/internal/services"
)

type Services struct {
	Auth services.AuthService
	User services.UserService

	Flashcard services.FlashcardService
	Review    services.ReviewService
	Queue     services.QueueService

	// OutboxDispatcher drains review events to the bus in the background.
	OutboxDispatcher *services.OutboxDispatcher
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	authService := services.NewAuthService(
		db, log,
		repos.User,
		repos.UserToken,
		cfg.JWTSecretKey,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)
	userService := services.NewUserService(db, log, repos.User)

	reviewAggregate := dataagg.NewReviewAggregate(dataagg.ReviewAggregateDeps{
		Base: dataagg.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: dataagg.NewObservabilityHooks(metrics),
		},
		Flashcards: repos.Flashcard,
		States:     repos.SchedulingState,
		Logs:       repos.ReviewLog,
		Outbox:     repos.ReviewOutbox,
		Params:     cfg.Tuning,
	})

	flashcardService := services.NewFlashcardService(db, log, repos.Flashcard, repos.SchedulingState, cfg.Tuning)
	reviewService := services.NewReviewService(db, log, reviewAggregate, repos.Flashcard, repos.SchedulingState, repos.ReviewLog, cfg.Tuning)
	queueService := services.NewQueueService(db, log, repos.Flashcard, repos.SchedulingState, cfg.Tuning)

	dispatcher := services.NewOutboxDispatcher(log, repos.ReviewOutbox, clients.Bus)

	return Services{
		Auth:             authService,
		User:             userService,
		Flashcard:        flashcardService,
		Review:           reviewService,
		Queue:            queueService,
		OutboxDispatcher: dispatcher,
	}, nil
}
