package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/EndaleK/Synaptic-sub012/internal/platform/env"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
)

// Service owns the process-wide gorm handle. DB_DRIVER selects the
// backing store: "postgres" (default) for real deployments, "sqlite"
// for local runs without a database server. Row IDs are always
// generated in code, so both drivers share one schema.
type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewService(logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DBService")

	driver := strings.ToLower(strings.TrimSpace(env.Get("DB_DRIVER", "postgres", logg)))

	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "postgres":
		db, err = openPostgres(logg)
	case "sqlite":
		db, err = openSQLite(logg)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
	if err != nil {
		return nil, err
	}

	serviceLog.Info("Database connected", "driver", driver)
	return &Service{db: db, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureLearningIndexes(s.db); err != nil {
		s.log.Error("Learning index migration failed", "error", err)
		return err
	}
	return nil
}

func gormConfig() *gorm.Config {
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}
}
