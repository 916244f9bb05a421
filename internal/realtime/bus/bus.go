package bus

import (
	"context"

	"github.com/EndaleK/Synaptic-sub012/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Ping(ctx context.Context) error
	Close() error
}
