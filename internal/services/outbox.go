package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/EndaleK/Synaptic-sub012/internal/data/repos"
	"github.com/EndaleK/Synaptic-sub012/internal/domain/learning"
	"github.com/EndaleK/Synaptic-sub012/internal/observability"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/env"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
	"github.com/EndaleK/Synaptic-sub012/internal/realtime"
	"github.com/EndaleK/Synaptic-sub012/internal/realtime/bus"
)

// OutboxDispatcher drains the review outbox onto the realtime bus. Rows
// are written in the same transaction as the review itself; this worker
// publishes them afterwards and marks the result. Delivery is at least
// once: a crash between publish and mark replays the row.
type OutboxDispatcher struct {
	log        *logger.Logger
	outboxRepo repos.ReviewOutboxRepo
	bus        bus.Bus

	interval  time.Duration
	batchSize int
}

func NewOutboxDispatcher(baseLog *logger.Logger, outboxRepo repos.ReviewOutboxRepo, b bus.Bus) *OutboxDispatcher {
	log := baseLog.With("component", "OutboxDispatcher")
	intervalMS := env.GetAsInt("OUTBOX_DISPATCH_INTERVAL_MS", 500, log)
	if intervalMS < 50 {
		intervalMS = 50
	}
	batchSize := env.GetAsInt("OUTBOX_DISPATCH_BATCH_SIZE", 100, log)
	if batchSize < 1 {
		batchSize = 1
	}
	return &OutboxDispatcher{
		log:        log,
		outboxRepo: outboxRepo,
		bus:        b,
		interval:   time.Duration(intervalMS) * time.Millisecond,
		batchSize:  batchSize,
	}
}

func (d *OutboxDispatcher) Start(ctx context.Context) {
	d.log.Info("Starting outbox dispatcher",
		"interval", d.interval.String(),
		"batch_size", d.batchSize,
	)
	go d.runLoop(ctx)
}

func (d *OutboxDispatcher) runLoop(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Info("Outbox dispatcher stopped")
			return
		case <-ticker.C:
			d.dispatchOnce(ctx)
		}
	}
}

// dispatchOnce drains one batch. Each row settles independently: a publish
// failure marks that row failed and moves on.
func (d *OutboxDispatcher) dispatchOnce(ctx context.Context) {
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := d.outboxRepo.ListPending(dbc, d.batchSize)
	if err != nil {
		d.log.Warn("Outbox list pending failed", "error", err)
		return
	}

	for _, row := range rows {
		if ctx.Err() != nil {
			return
		}
		started := time.Now()
		if err := d.publish(ctx, row); err != nil {
			d.log.Warn("Outbox publish failed",
				"outbox_id", row.ID,
				"attempts", row.Attempts+1,
				"error", err,
			)
			if _, mErr := d.outboxRepo.MarkFailed(dbc, row.ID, err.Error()); mErr != nil {
				d.log.Warn("Outbox mark failed error", "outbox_id", row.ID, "error", mErr)
			}
			d.observe("error", started)
			continue
		}
		if _, mErr := d.outboxRepo.MarkDispatched(dbc, row.ID); mErr != nil {
			d.log.Warn("Outbox mark dispatched error", "outbox_id", row.ID, "error", mErr)
			d.observe("error", started)
			continue
		}
		d.observe("ok", started)
	}
}

func (d *OutboxDispatcher) publish(ctx context.Context, row *learning.ReviewOutbox) error {
	msg := realtime.Message{
		Channel: row.UserID.String(),
		Event:   eventForKind(row.Kind),
		Data:    json.RawMessage(row.Payload),
	}
	return d.bus.Publish(ctx, msg)
}

func (d *OutboxDispatcher) observe(status string, started time.Time) {
	if m := observability.Current(); m != nil {
		m.ObserveOutboxDispatch(status, time.Since(started))
	}
}

func eventForKind(kind string) realtime.Event {
	switch kind {
	case "review.completed":
		return realtime.EventReviewCompleted
	default:
		return realtime.Event(kind)
	}
}
