package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/EndaleK/Synaptic-sub012/internal/app"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/env"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	port := env.Get("PORT", "8080", a.Log)
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(":" + port)
	}()

	select {
	case <-ctx.Done():
		a.Log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Shutdown(shutdownCtx); err != nil {
			a.Log.Warn("shutdown error", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Error("server exited", "error", err)
		}
	}
}
