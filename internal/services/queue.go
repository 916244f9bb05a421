package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	dataagg "github.com/EndaleK/Synaptic-sub012/internal/data/aggregates"
	"github.com/EndaleK/Synaptic-sub012/internal/data/repos"
	"github.com/EndaleK/Synaptic-sub012/internal/domain/learning"
	"github.com/EndaleK/Synaptic-sub012/internal/observability"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/ctxutil"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
	"github.com/EndaleK/Synaptic-sub012/internal/srs"
)

// QueueItemView is one due card in a review batch, ranked most overdue
// first. Front and Deck are joined in so the client can render the prompt
// without a second round trip.
type QueueItemView struct {
	FlashcardID        uuid.UUID    `json:"flashcard_id"`
	Front              string       `json:"front"`
	Deck               string       `json:"deck,omitempty"`
	Maturity           srs.Maturity `json:"maturity"`
	DaysOverdue        int          `json:"days_overdue"`
	EstimatedRetention float64      `json:"estimated_retention"`
	IntervalDays       int          `json:"interval_days"`
	EaseFactor         float64      `json:"ease_factor"`
	Repetitions        int          `json:"repetitions"`
	DueDate            time.Time    `json:"due_date"`
	TimesReviewed      int          `json:"times_reviewed"`
	SuccessRate        float64      `json:"success_rate"`
}

// QueueStatsView covers the full due set, not just the returned batch.
type QueueStatsView struct {
	TotalDue      int     `json:"total_due"`
	NewDue        int     `json:"new_due"`
	LearningDue   int     `json:"learning_due"`
	YoungDue      int     `json:"young_due"`
	MatureDue     int     `json:"mature_due"`
	MeanRetention float64 `json:"mean_retention"`
	TotalCards    int64   `json:"total_cards"`
}

type QueueView struct {
	Items []QueueItemView `json:"items"`
	Stats QueueStatsView  `json:"stats"`
}

type QueueService interface {
	// Build assembles the caller's review queue as of now. Read-only:
	// it never writes and never blocks a concurrent submission.
	Build(dbc dbctx.Context, maxSize int) (*QueueView, error)
}

type queueService struct {
	db        *gorm.DB
	log       *logger.Logger
	cardRepo  repos.FlashcardRepo
	stateRepo repos.SchedulingStateRepo
	params    srs.Params
}

func NewQueueService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cardRepo repos.FlashcardRepo,
	stateRepo repos.SchedulingStateRepo,
	params srs.Params,
) QueueService {
	return &queueService{
		db:        db,
		log:       baseLog.With("service", "QueueService"),
		cardRepo:  cardRepo,
		stateRepo: stateRepo,
		params:    params,
	}
}

func (qs *queueService) Build(dbc dbctx.Context, maxSize int) (*QueueView, error) {
	const op = "Learning.Queue.Build"
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	started := time.Now()
	now := time.Now().UTC()

	// A gorm transaction is not safe for concurrent use, so the fan-out
	// always reads from the pool. A slightly stale snapshot is fine here.
	var (
		states     []*learning.SchedulingState
		totalCards int64
	)
	g, gctx := errgroup.WithContext(dbc.Ctx)
	g.Go(func() error {
		rows, err := qs.stateRepo.ListDueByUser(dbctx.Context{Ctx: gctx}, rd.UserID, now)
		if err != nil {
			return err
		}
		states = rows
		return nil
	})
	g.Go(func() error {
		n, err := qs.stateRepo.CountByUser(dbctx.Context{Ctx: gctx}, rd.UserID)
		if err != nil {
			return err
		}
		totalCards = n
		return nil
	})
	if err := g.Wait(); err != nil {
		qs.observeBuild("error", started, 0)
		return nil, dataagg.MapError(op, err)
	}

	entries := make([]srs.QueueEntry, 0, len(states))
	for _, row := range states {
		entries = append(entries, srs.QueueEntry{
			FlashcardID: row.FlashcardID,
			State:       row.SRSState(),
		})
	}
	queue := srs.BuildQueue(entries, now, maxSize, qs.params)

	items, err := qs.joinFronts(dbctx.Context{Ctx: dbc.Ctx}, rd.UserID, queue.Items)
	if err != nil {
		qs.observeBuild("error", started, queue.Stats.TotalDue)
		return nil, dataagg.MapError(op, err)
	}

	qs.observeBuild("ok", started, queue.Stats.TotalDue)
	return &QueueView{
		Items: items,
		Stats: QueueStatsView{
			TotalDue:      queue.Stats.TotalDue,
			NewDue:        queue.Stats.NewDue,
			LearningDue:   queue.Stats.LearningDue,
			YoungDue:      queue.Stats.YoungDue,
			MatureDue:     queue.Stats.MatureDue,
			MeanRetention: queue.Stats.MeanRetention,
			TotalCards:    totalCards,
		},
	}, nil
}

// joinFronts loads card text for the truncated batch only: the full due
// set can be large, the batch is bounded.
func (qs *queueService) joinFronts(dbc dbctx.Context, userID uuid.UUID, items []srs.QueueItem) ([]QueueItemView, error) {
	out := make([]QueueItemView, 0, len(items))
	if len(items) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.FlashcardID)
	}
	cards, err := qs.cardRepo.GetByIDs(dbc, userID, ids)
	if err != nil {
		return nil, err
	}
	cardByID := make(map[uuid.UUID]*learning.Flashcard, len(cards))
	for _, card := range cards {
		cardByID[card.ID] = card
	}

	for _, item := range items {
		view := QueueItemView{
			FlashcardID:        item.FlashcardID,
			Maturity:           item.Maturity,
			DaysOverdue:        item.DaysOverdue,
			EstimatedRetention: item.EstimatedRetention,
			IntervalDays:       item.State.IntervalDays,
			EaseFactor:         item.State.EaseFactor,
			Repetitions:        item.State.Repetitions,
			DueDate:            item.State.DueDate,
			TimesReviewed:      item.State.TimesReviewed,
			SuccessRate:        item.State.SuccessRate(),
		}
		card, ok := cardByID[item.FlashcardID]
		if !ok {
			// The card was deleted between the two reads. Its state row
			// goes with it, so skip rather than serve an orphan.
			continue
		}
		view.Front = card.Front
		view.Deck = card.Deck
		out = append(out, view)
	}
	return out, nil
}

func (qs *queueService) observeBuild(status string, started time.Time, dueCards int) {
	if m := observability.Current(); m != nil {
		m.ObserveQueueBuild(status, time.Since(started), dueCards)
	}
}
