package bus

import (
	"context"

	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
	"github.com/EndaleK/Synaptic-sub012/internal/realtime"
)

type noopBus struct {
	log *logger.Logger
}

// NewNoopBus returns a bus that drops every message. Used when
// REDIS_ADDR is unset so single-process deployments run without redis.
func NewNoopBus(log *logger.Logger) Bus {
	return &noopBus{log: log.With("service", "NoopReviewBus")}
}

func (b *noopBus) Publish(_ context.Context, msg realtime.Message) error {
	if b != nil && b.log != nil {
		b.log.Debug("dropping realtime message", "event", string(msg.Event))
	}
	return nil
}

func (b *noopBus) StartForwarder(context.Context, func(m realtime.Message)) error {
	return nil
}

func (b *noopBus) Ping(context.Context) error { return nil }

func (b *noopBus) Close() error { return nil }
