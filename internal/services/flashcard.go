package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	dataagg "github.com/EndaleK/Synaptic-sub012/internal/data/aggregates"
	"github.com/EndaleK/Synaptic-sub012/internal/data/repos"
	domainagg "github.com/EndaleK/Synaptic-sub012/internal/domain/aggregates"
	"github.com/EndaleK/Synaptic-sub012/internal/domain/learning"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/ctxutil"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
	"github.com/EndaleK/Synaptic-sub012/internal/srs"
)

const (
	maxCardTextBytes = 10 << 10
	maxCardMetaBytes = 16 << 10
)

type CreateFlashcardInput struct {
	Front    string          `json:"front"`
	Back     string          `json:"back"`
	Deck     string          `json:"deck"`
	Metadata json.RawMessage `json:"metadata"`
}

// ScheduleView is the read shape for one card's scheduling state plus its
// derived classification at the time of the request.
type ScheduleView struct {
	FlashcardID        uuid.UUID    `json:"flashcard_id"`
	EaseFactor         float64      `json:"ease_factor"`
	IntervalDays       int          `json:"interval_days"`
	Repetitions        int          `json:"repetitions"`
	DueDate            time.Time    `json:"due_date"`
	LastReviewedAt     *time.Time   `json:"last_reviewed_at,omitempty"`
	TimesReviewed      int          `json:"times_reviewed"`
	TimesCorrect       int          `json:"times_correct"`
	Maturity           srs.Maturity `json:"maturity"`
	Due                bool         `json:"due"`
	DaysOverdue        int          `json:"days_overdue"`
	EstimatedRetention float64      `json:"estimated_retention"`
	SuccessRate        float64      `json:"success_rate"`
}

type FlashcardWithSchedule struct {
	Flashcard *learning.Flashcard `json:"flashcard"`
	Schedule  *ScheduleView       `json:"schedule,omitempty"`
}

type FlashcardService interface {
	Create(dbc dbctx.Context, in CreateFlashcardInput) (*learning.Flashcard, error)
	List(dbc dbctx.Context, deck string, limit int) ([]*FlashcardWithSchedule, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*learning.Flashcard, error)
	GetSchedule(dbc dbctx.Context, id uuid.UUID) (*ScheduleView, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type flashcardService struct {
	db        *gorm.DB
	log       *logger.Logger
	cardRepo  repos.FlashcardRepo
	stateRepo repos.SchedulingStateRepo
	params    srs.Params
}

func NewFlashcardService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cardRepo repos.FlashcardRepo,
	stateRepo repos.SchedulingStateRepo,
	params srs.Params,
) FlashcardService {
	return &flashcardService{
		db:        db,
		log:       baseLog.With("service", "FlashcardService"),
		cardRepo:  cardRepo,
		stateRepo: stateRepo,
		params:    params,
	}
}

// Create inserts the card together with its default scheduling state in one
// transaction: a card is reviewable from the moment it exists.
func (fs *flashcardService) Create(dbc dbctx.Context, in CreateFlashcardInput) (*learning.Flashcard, error) {
	const op = "Learning.Flashcard.Create"
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	front := strings.TrimSpace(in.Front)
	back := strings.TrimSpace(in.Back)
	if front == "" || back == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "front and back required", nil)
	}
	if len(front) > maxCardTextBytes || len(back) > maxCardTextBytes {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "card text too large", nil)
	}
	if len(in.Metadata) > 0 {
		if len(in.Metadata) > maxCardMetaBytes {
			return nil, domainagg.NewError(domainagg.CodeValidation, op, "metadata too large", nil)
		}
		if !json.Valid(in.Metadata) {
			return nil, domainagg.NewError(domainagg.CodeValidation, op, "metadata is not valid json", nil)
		}
	}

	now := time.Now().UTC()
	seed := srs.NewState(now)

	card := &learning.Flashcard{
		ID:     uuid.New(),
		UserID: rd.UserID,
		Front:  front,
		Back:   back,
		Deck:   strings.TrimSpace(in.Deck),
	}
	if len(in.Metadata) > 0 {
		card.Metadata = datatypes.JSON(in.Metadata)
	}

	run := func(inner dbctx.Context) error {
		if _, err := fs.cardRepo.Create(inner, []*learning.Flashcard{card}); err != nil {
			return dataagg.MapError(op, err)
		}
		state := &learning.SchedulingState{
			ID:            uuid.New(),
			UserID:        rd.UserID,
			FlashcardID:   card.ID,
			EaseFactor:    seed.EaseFactor,
			IntervalDays:  seed.IntervalDays,
			Repetitions:   seed.Repetitions,
			DueDate:       seed.DueDate,
			TimesReviewed: seed.TimesReviewed,
			TimesCorrect:  seed.TimesCorrect,
			Version:       1,
		}
		if _, err := fs.stateRepo.Create(inner, []*learning.SchedulingState{state}); err != nil {
			return dataagg.MapError(op, err)
		}
		return nil
	}

	if dbc.Tx != nil {
		if err := run(dbc); err != nil {
			return nil, err
		}
		return card, nil
	}
	if err := fs.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return run(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	}); err != nil {
		fs.log.Warn("Create transaction error", "error", err)
		return nil, err
	}
	return card, nil
}

func (fs *flashcardService) List(dbc dbctx.Context, deck string, limit int) ([]*FlashcardWithSchedule, error) {
	const op = "Learning.Flashcard.List"
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	cards, err := fs.cardRepo.ListByUser(dbc, rd.UserID, deck, limit)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	if len(cards) == 0 {
		return []*FlashcardWithSchedule{}, nil
	}

	ids := make([]uuid.UUID, 0, len(cards))
	for _, card := range cards {
		ids = append(ids, card.ID)
	}
	states, err := fs.stateRepo.ListByUserAndCards(dbc, rd.UserID, ids)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	stateByCard := make(map[uuid.UUID]*learning.SchedulingState, len(states))
	for _, row := range states {
		stateByCard[row.FlashcardID] = row
	}

	now := time.Now().UTC()
	out := make([]*FlashcardWithSchedule, 0, len(cards))
	for _, card := range cards {
		item := &FlashcardWithSchedule{Flashcard: card}
		if row, ok := stateByCard[card.ID]; ok {
			item.Schedule = fs.scheduleViewOf(card.ID, row.SRSState(), now)
		}
		out = append(out, item)
	}
	return out, nil
}

func (fs *flashcardService) Get(dbc dbctx.Context, id uuid.UUID) (*learning.Flashcard, error) {
	const op = "Learning.Flashcard.Get"
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if id == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing flashcard id", nil)
	}
	card, err := fs.cardRepo.GetByID(dbc, rd.UserID, id)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	return card, nil
}

// GetSchedule reports the card's current state. A card that has never been
// reviewed and somehow lacks a row reads as the default state rather than
// an error, matching the lazy-creation behavior of review submission.
func (fs *flashcardService) GetSchedule(dbc dbctx.Context, id uuid.UUID) (*ScheduleView, error) {
	const op = "Learning.Flashcard.GetSchedule"
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if id == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing flashcard id", nil)
	}

	card, err := fs.cardRepo.GetByID(dbc, rd.UserID, id)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}

	row, err := fs.stateRepo.GetByUserAndCard(dbc, rd.UserID, card.ID)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	now := time.Now().UTC()
	s := srs.NewState(now)
	if row != nil {
		s = row.SRSState()
	}
	return fs.scheduleViewOf(card.ID, s, now), nil
}

// Delete removes the card and its scheduling state together. Pending outbox
// rows for the card are left alone; consumers tolerate events for cards
// that no longer exist.
func (fs *flashcardService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	const op = "Learning.Flashcard.Delete"
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("unauthorized")
	}
	if id == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing flashcard id", nil)
	}

	run := func(inner dbctx.Context) error {
		removed, err := fs.cardRepo.Delete(inner, rd.UserID, id)
		if err != nil {
			return dataagg.MapError(op, err)
		}
		if !removed {
			return domainagg.NewError(domainagg.CodeNotFound, op, "flashcard not found", nil)
		}
		// The state row may already be gone; only a real error matters.
		if _, err := fs.stateRepo.DeleteByUserAndCard(inner, rd.UserID, id); err != nil {
			return dataagg.MapError(op, err)
		}
		return nil
	}

	if dbc.Tx != nil {
		return run(dbc)
	}
	if err := fs.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return run(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	}); err != nil {
		fs.log.Warn("Delete transaction error", "error", err)
		return err
	}
	return nil
}

func (fs *flashcardService) scheduleViewOf(flashcardID uuid.UUID, s srs.State, now time.Time) *ScheduleView {
	cls := srs.Classify(s, now, fs.params)
	return &ScheduleView{
		FlashcardID:        flashcardID,
		EaseFactor:         s.EaseFactor,
		IntervalDays:       s.IntervalDays,
		Repetitions:        s.Repetitions,
		DueDate:            s.DueDate,
		LastReviewedAt:     s.LastReviewedAt,
		TimesReviewed:      s.TimesReviewed,
		TimesCorrect:       s.TimesCorrect,
		Maturity:           cls.Maturity,
		Due:                s.IsDue(now),
		DaysOverdue:        s.DaysOverdue(now),
		EstimatedRetention: cls.EstimatedRetention,
		SuccessRate:        s.SuccessRate(),
	}
}
