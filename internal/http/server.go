package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
)

type Server struct {
	log    *logger.Logger
	Engine *gin.Engine
	srv    *http.Server
}

func NewServer(log *logger.Logger, cfg RouterConfig) *Server {
	return &Server{
		log:    log.With("component", "HTTPServer"),
		Engine: NewRouter(cfg),
	}
}

// Run blocks until the listener fails or Shutdown is called.
func (s *Server) Run(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("http server listening", "addr", addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
