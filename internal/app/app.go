package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/EndaleK/Synaptic-sub012/internal/data/db"
	httpsrv "github.com/EndaleK/Synaptic-sub012/internal/http"
	"github.com/EndaleK/Synaptic-sub012/internal/observability"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Metrics  *observability.Metrics
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *httpsrv.Server

	cancel       context.CancelFunc
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	dbService, err := db.NewService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	theDB := dbService.DB()

	metrics := observability.Init(log)

	clients, err := wireClients(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, metrics)
	if err != nil {
		clients.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset, dbService, clients)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:      log,
		Cfg:      cfg,
		DB:       dbService,
		Metrics:  metrics,
		Clients:  clients,
		Repos:    reposet,
		Services: serviceset,
		Server:   server,
	}, nil
}

// Start launches the background workers. It is idempotent; a second call
// is a no-op until Close.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.otelShutdown = observability.InitOTel(ctx, a.Log, observability.OtelConfig{
		ServiceName: a.Cfg.ServiceName,
	})

	if a.Services.OutboxDispatcher != nil {
		a.Services.OutboxDispatcher.Start(ctx)
	}

	if a.Metrics != nil {
		if addr := strings.TrimSpace(os.Getenv("METRICS_ADDR")); addr != "" {
			a.Metrics.StartServer(ctx, a.Log, addr)
		}
		a.Metrics.StartDBStatsCollector(ctx, a.Log, a.DB.DB())
		a.Metrics.StartOutboxCollector(ctx, a.Log, a.DB.DB())
		if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" {
			a.Metrics.StartRedisCollector(ctx, a.Log, addr)
		}
	}
}

// Run blocks serving HTTP until the listener stops.
func (a *App) Run(addr string) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(addr)
}

// Shutdown drains in-flight requests, then stops the workers.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var firstErr error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		a.otelShutdown = nil
	}
	return firstErr
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
