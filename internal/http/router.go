package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/EndaleK/Synaptic-sub012/internal/http/handlers"
	httpMW "github.com/EndaleK/Synaptic-sub012/internal/http/middleware"
	"github.com/EndaleK/Synaptic-sub012/internal/observability"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	UserHandler      *httpH.UserHandler
	FlashcardHandler *httpH.FlashcardHandler
	ReviewHandler    *httpH.ReviewHandler
	QueueHandler     *httpH.QueueHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "synaptic"
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Ops surface
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Healthz)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// User
		if cfg.UserHandler != nil {
			protected.GET("/users/me", cfg.UserHandler.GetMe)
		}

		// Flashcards
		if cfg.FlashcardHandler != nil {
			protected.POST("/flashcards", cfg.FlashcardHandler.Create)
			protected.GET("/flashcards", cfg.FlashcardHandler.List)
			protected.GET("/flashcards/:id", cfg.FlashcardHandler.Get)
			protected.GET("/flashcards/:id/schedule", cfg.FlashcardHandler.GetSchedule)
			protected.DELETE("/flashcards/:id", cfg.FlashcardHandler.Delete)
		}

		// Reviews
		if cfg.ReviewHandler != nil {
			protected.POST("/reviews", cfg.ReviewHandler.Submit)
			protected.GET("/reviews/preview", cfg.ReviewHandler.Preview)
			protected.GET("/reviews/history", cfg.ReviewHandler.History)
		}
		if cfg.QueueHandler != nil {
			protected.GET("/reviews/queue", cfg.QueueHandler.GetQueue)
		}
	}

	return r
}
