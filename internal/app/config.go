package app

import (
	"time"

	"github.com/EndaleK/Synaptic-sub012/internal/platform/env"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
	"github.com/EndaleK/Synaptic-sub012/internal/srs"
)

type Config struct {
	ServiceName     string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Tuning carries the scheduler parameters resolved from the embedded
	// tuning file (or SRS_TUNING_PATH).
	Tuning srs.Params
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := env.Get("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := env.GetAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := env.GetAsInt("REFRESH_TOKEN_TTL", 86400, log)
	return Config{
		ServiceName:     env.Get("SERVICE_NAME", "synaptic", log),
		JWTSecretKey:    jwtSecretKey,
		AccessTokenTTL:  time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTokenTTLSeconds) * time.Second,
		Tuning:          loadTuning(log),
	}
}
