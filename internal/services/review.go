package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dataagg "github.com/EndaleK/Synaptic-sub012/internal/data/aggregates"
	"github.com/EndaleK/Synaptic-sub012/internal/data/repos"
	domainagg "github.com/EndaleK/Synaptic-sub012/internal/domain/aggregates"
	"github.com/EndaleK/Synaptic-sub012/internal/domain/learning"
	"github.com/EndaleK/Synaptic-sub012/internal/observability"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/ctxutil"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
	"github.com/EndaleK/Synaptic-sub012/internal/srs"
)

// ReviewResult is the response shape for one accepted review.
type ReviewResult struct {
	NewIntervalDays int          `json:"new_interval_days"`
	NewDueDate      time.Time    `json:"new_due_date"`
	NewEaseFactor   float64      `json:"new_ease_factor"`
	NewMaturity     srs.Maturity `json:"new_maturity"`
	TimesReviewed   int          `json:"times_reviewed"`
	SuccessRate     float64      `json:"success_rate"`
}

// RatingPreview is the dry-run outcome for a single rating.
type RatingPreview struct {
	Rating       srs.Rating   `json:"rating"`
	IntervalDays int          `json:"interval_days"`
	DueDate      time.Time    `json:"due_date"`
	EaseFactor   float64      `json:"ease_factor"`
	Maturity     srs.Maturity `json:"maturity"`
}

type ReviewPreview struct {
	FlashcardID uuid.UUID       `json:"flashcard_id"`
	Previews    []RatingPreview `json:"previews"`
}

type ReviewService interface {
	// Submit applies one graded review through the review aggregate.
	// All writes for the review commit or roll back together.
	Submit(ctx context.Context, flashcardID uuid.UUID, rating srs.Rating) (*ReviewResult, error)

	// Preview computes what each rating would do to the card right now.
	// Pure read; nothing is persisted.
	Preview(dbc dbctx.Context, flashcardID uuid.UUID, ratings []srs.Rating) (*ReviewPreview, error)

	// History lists recent review log rows, newest first. A nil flashcard
	// ID means all of the caller's cards.
	History(dbc dbctx.Context, flashcardID uuid.UUID, limit int) ([]*learning.ReviewLog, error)
}

type reviewService struct {
	db        *gorm.DB
	log       *logger.Logger
	aggregate domainagg.ReviewAggregate
	cardRepo  repos.FlashcardRepo
	stateRepo repos.SchedulingStateRepo
	logRepo   repos.ReviewLogRepo
	params    srs.Params
}

func NewReviewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	aggregate domainagg.ReviewAggregate,
	cardRepo repos.FlashcardRepo,
	stateRepo repos.SchedulingStateRepo,
	logRepo repos.ReviewLogRepo,
	params srs.Params,
) ReviewService {
	return &reviewService{
		db:        db,
		log:       baseLog.With("service", "ReviewService"),
		aggregate: aggregate,
		cardRepo:  cardRepo,
		stateRepo: stateRepo,
		logRepo:   logRepo,
		params:    params,
	}
}

func (rs *reviewService) Submit(ctx context.Context, flashcardID uuid.UUID, rating srs.Rating) (*ReviewResult, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if rs.aggregate == nil {
		return nil, fmt.Errorf("review aggregate not configured")
	}

	out, err := rs.aggregate.SubmitReview(ctx, domainagg.SubmitReviewInput{
		UserID:      rd.UserID,
		FlashcardID: flashcardID,
		Rating:      rating,
	})
	if err != nil {
		rs.log.Warn("Submit review error", "flashcard_id", flashcardID, "error", err)
		return nil, err
	}

	if out.Attempts > 1 {
		rs.log.Info("Review applied after contention",
			"flashcard_id", flashcardID,
			"attempts", out.Attempts,
		)
	}
	if m := observability.Current(); m != nil {
		m.IncReviewCompleted(rating.String(), out.Maturity.String())
	}

	return &ReviewResult{
		NewIntervalDays: out.State.IntervalDays,
		NewDueDate:      out.State.DueDate,
		NewEaseFactor:   out.State.EaseFactor,
		NewMaturity:     out.Maturity,
		TimesReviewed:   out.State.TimesReviewed,
		SuccessRate:     out.State.SuccessRate(),
	}, nil
}

func (rs *reviewService) Preview(dbc dbctx.Context, flashcardID uuid.UUID, ratings []srs.Rating) (*ReviewPreview, error) {
	const op = "Learning.Review.Preview"
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if flashcardID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing flashcard_id", nil)
	}
	if len(ratings) == 0 {
		ratings = []srs.Rating{srs.RatingAgain, srs.RatingHard, srs.RatingGood, srs.RatingEasy}
	}
	for _, r := range ratings {
		if !r.IsValid() {
			return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("invalid rating %d", int(r)), nil)
		}
	}

	card, err := rs.cardRepo.GetByID(dbc, rd.UserID, flashcardID)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	row, err := rs.stateRepo.GetByUserAndCard(dbc, rd.UserID, card.ID)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}

	now := time.Now().UTC()
	cur := srs.NewState(now)
	if row != nil {
		cur = row.SRSState()
	}

	out := &ReviewPreview{
		FlashcardID: card.ID,
		Previews:    make([]RatingPreview, 0, len(ratings)),
	}
	for _, r := range ratings {
		next, err := srs.Advance(cur, r, now, rs.params)
		if err != nil {
			return nil, domainagg.NewError(domainagg.CodeInvariantViolation, op, err.Error(), err)
		}
		cls := srs.Classify(next, now, rs.params)
		out.Previews = append(out.Previews, RatingPreview{
			Rating:       r,
			IntervalDays: next.IntervalDays,
			DueDate:      next.DueDate,
			EaseFactor:   next.EaseFactor,
			Maturity:     cls.Maturity,
		})
	}
	return out, nil
}

func (rs *reviewService) History(dbc dbctx.Context, flashcardID uuid.UUID, limit int) ([]*learning.ReviewLog, error) {
	const op = "Learning.Review.History"
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	var (
		rows []*learning.ReviewLog
		err  error
	)
	if flashcardID == uuid.Nil {
		rows, err = rs.logRepo.ListByUser(dbc, rd.UserID, limit)
	} else {
		rows, err = rs.logRepo.ListByUserAndCard(dbc, rd.UserID, flashcardID, limit)
	}
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	return rows, nil
}
