package app

import (
	"github.com/EndaleK/Synaptic-sub012/internal/data/db"
	httpsrv "github.com/EndaleK/Synaptic-sub012/internal/http"
	httpH "github.com/EndaleK/Synaptic-sub012/internal/http/handlers"
	httpMW "github.com/EndaleK/Synaptic-sub012/internal/http/middleware"
	"github.com/EndaleK/Synaptic-sub012/internal/observability"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Auth      *httpH.AuthHandler
	User      *httpH.UserHandler
	Flashcard *httpH.FlashcardHandler
	Review    *httpH.ReviewHandler
	Queue     *httpH.QueueHandler
}

func wireHandlers(log *logger.Logger, services Services, dbService *db.Service, clients Clients) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(dbService, clients.Bus),
		Auth:      httpH.NewAuthHandler(services.Auth),
		User:      httpH.NewUserHandler(services.User),
		Flashcard: httpH.NewFlashcardHandler(services.Flashcard),
		Review:    httpH.NewReviewHandler(services.Review),
		Queue:     httpH.NewQueueHandler(services.Queue),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *httpsrv.Server {
	return httpsrv.NewServer(log, httpsrv.RouterConfig{
		Log:         log,
		Metrics:     metrics,
		ServiceName: cfg.ServiceName,

		AuthHandler:    handlers.Auth,
		AuthMiddleware: middleware.Auth,

		UserHandler:      handlers.User,
		FlashcardHandler: handlers.Flashcard,
		ReviewHandler:    handlers.Review,
		QueueHandler:     handlers.Queue,

		HealthHandler: handlers.Health,
	})
}
