package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/EndaleK/Synaptic-sub012/internal/platform/env"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
)

func openPostgres(logg *logger.Logger) (*gorm.DB, error) {
	dsn := env.Get("POSTGRES_DSN", "", logg)
	if dsn == "" {
		postgresHost := env.Get("POSTGRES_HOST", "localhost", logg)
		postgresPort := env.Get("POSTGRES_PORT", "5432", logg)
		postgresUser := env.Get("POSTGRES_USER", "postgres", logg)
		postgresPassword := env.Get("POSTGRES_PASSWORD", "", logg)
		postgresName := env.Get("POSTGRES_NAME", "synaptic", logg)
		postgresSSLMode := env.Get("POSTGRES_SSLMODE", "disable", logg)

		dsn = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s",
			postgresUser,
			postgresPassword,
			postgresHost,
			postgresPort,
			postgresName,
			postgresSSLMode,
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return db, nil
}
