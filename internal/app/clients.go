package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
	"github.com/EndaleK/Synaptic-sub012/internal/realtime/bus"
)

type Clients struct {
	Bus bus.Bus
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	var b bus.Bus
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		rb, err := bus.NewRedisBus(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis review bus: %w", err)
		}
		b = rb
	} else {
		b = bus.NewNoopBus(log)
	}

	return Clients{Bus: b}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
}
