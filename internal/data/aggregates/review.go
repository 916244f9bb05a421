package aggregates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/EndaleK/Synaptic-sub012/internal/data/repos"
	domainagg "github.com/EndaleK/Synaptic-sub012/internal/domain/aggregates"
	"github.com/EndaleK/Synaptic-sub012/internal/domain/learning"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/realtime"
	"github.com/EndaleK/Synaptic-sub012/internal/srs"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// submitReviewAttempts bounds the optimistic-concurrency retry loop.
// Each attempt recomputes the advance from freshly loaded state.
const submitReviewAttempts = 3

const outboxKindReviewCompleted = "review.completed"

type ReviewAggregateDeps struct {
	Base BaseDeps

	Flashcards repos.FlashcardRepo
	States     repos.SchedulingStateRepo
	Logs       repos.ReviewLogRepo
	Outbox     repos.ReviewOutboxRepo

	Params srs.Params
}

type reviewAggregate struct {
	deps ReviewAggregateDeps
}

func NewReviewAggregate(deps ReviewAggregateDeps) domainagg.ReviewAggregate {
	deps.Base = deps.Base.withDefaults()
	return &reviewAggregate{deps: deps}
}

func (a *reviewAggregate) Contract() domainagg.Contract {
	return domainagg.ReviewAggregateContract
}

func (a *reviewAggregate) SubmitReview(ctx context.Context, in domainagg.SubmitReviewInput) (domainagg.SubmitReviewResult, error) {
	const op = "Learning.Review.SubmitReview"
	var out domainagg.SubmitReviewResult
	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.FlashcardID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing flashcard_id", nil)
	}
	if !in.Rating.IsValid() {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("invalid rating %d", int(in.Rating)), nil)
	}
	if a.deps.Flashcards == nil || a.deps.States == nil || a.deps.Logs == nil || a.deps.Outbox == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "review aggregate repos not configured", nil)
	}

	reviewedAt := in.ReviewedAt.UTC()
	if reviewedAt.IsZero() {
		reviewedAt = time.Now().UTC()
	}

	var err error
	for attempt := 1; attempt <= submitReviewAttempts; attempt++ {
		out, err = a.submitOnce(ctx, op, in, reviewedAt, attempt)
		if err == nil {
			return out, nil
		}
		if !domainagg.IsCode(err, domainagg.CodeConflict) {
			return domainagg.SubmitReviewResult{}, err
		}
	}
	return domainagg.SubmitReviewResult{}, err
}

// submitOnce runs one full attempt: load, advance, compare-and-set, log,
// outbox. A lost race surfaces as CodeConflict and the caller retries the
// whole computation against the committed state.
func (a *reviewAggregate) submitOnce(ctx context.Context, op string, in domainagg.SubmitReviewInput, reviewedAt time.Time, attempt int) (domainagg.SubmitReviewResult, error) {
	var out domainagg.SubmitReviewResult
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		card, err := a.deps.Flashcards.GetByID(dbc, in.UserID, in.FlashcardID)
		if err != nil {
			return err
		}

		row, err := a.deps.States.GetByUserAndCard(dbc, in.UserID, in.FlashcardID)
		if err != nil {
			return err
		}

		var cur srs.State
		if row == nil {
			cur = srs.NewState(reviewedAt)
		} else {
			cur = row.SRSState()
		}

		next, err := srs.Advance(cur, in.Rating, reviewedAt, a.deps.Params)
		if err != nil {
			if errors.Is(err, srs.ErrInvalidRating) {
				return ValidationError(err.Error())
			}
			return InvariantError(err.Error())
		}
		cls := srs.Classify(next, reviewedAt, a.deps.Params)

		var stateID uuid.UUID
		if row == nil {
			// First review of this card. A concurrent first review hits
			// the (user_id, flashcard_id) unique index and comes back as
			// a conflict, which re-enters the retry loop.
			fresh := newSchedulingStateRow(in.UserID, card.ID, next)
			if _, err := a.deps.States.Create(dbc, []*learning.SchedulingState{fresh}); err != nil {
				return err
			}
			stateID = fresh.ID
		} else {
			ok, err := a.deps.Base.CASGuard.UpdateByVersion(
				dbc, "scheduling_state", row.ID, row.Version,
				schedulingStateUpdates(next, row.Version+1, reviewedAt),
			)
			if err != nil {
				return err
			}
			if err := RequireCASSuccess(ok, "scheduling state changed while applying review"); err != nil {
				return err
			}
			stateID = row.ID
		}

		logRow := &learning.ReviewLog{
			ID:           uuid.New(),
			UserID:       in.UserID,
			FlashcardID:  card.ID,
			Rating:       in.Rating.String(),
			Maturity:     cls.Maturity.String(),
			IntervalDays: next.IntervalDays,
			EaseFactor:   next.EaseFactor,
			DueDate:      next.DueDate,
			ReviewedAt:   reviewedAt,
		}
		if _, err := a.deps.Logs.Create(dbc, []*learning.ReviewLog{logRow}); err != nil {
			return err
		}

		payload, _ := json.Marshal(realtime.ReviewEvent{
			UserID:         in.UserID,
			FlashcardID:    card.ID,
			Rating:         in.Rating.String(),
			Maturity:       cls.Maturity.String(),
			StreakRelevant: in.Rating.IsCorrect(),
			Timestamp:      reviewedAt,
		})
		outboxRow := &learning.ReviewOutbox{
			ID:      uuid.New(),
			UserID:  in.UserID,
			Kind:    outboxKindReviewCompleted,
			Payload: datatypes.JSON(payload),
			Status:  repos.OutboxStatusPending,
		}
		if _, err := a.deps.Outbox.Create(dbc, []*learning.ReviewOutbox{outboxRow}); err != nil {
			return err
		}

		out = domainagg.SubmitReviewResult{
			SchedulingStateID: stateID,
			ReviewLogID:       logRow.ID,
			OutboxID:          outboxRow.ID,
			State:             next,
			Maturity:          cls.Maturity,
			Attempts:          attempt,
			AppliedAt:         reviewedAt,
		}
		return nil
	})
	return out, err
}

func newSchedulingStateRow(userID, flashcardID uuid.UUID, s srs.State) *learning.SchedulingState {
	return &learning.SchedulingState{
		ID:             uuid.New(),
		UserID:         userID,
		FlashcardID:    flashcardID,
		EaseFactor:     s.EaseFactor,
		IntervalDays:   s.IntervalDays,
		Repetitions:    s.Repetitions,
		DueDate:        s.DueDate,
		LastReviewedAt: s.LastReviewedAt,
		TimesReviewed:  s.TimesReviewed,
		TimesCorrect:   s.TimesCorrect,
		Version:        1,
	}
}

func schedulingStateUpdates(s srs.State, nextVersion int, at time.Time) map[string]any {
	return map[string]any{
		"ease_factor":      s.EaseFactor,
		"interval_days":    s.IntervalDays,
		"repetitions":      s.Repetitions,
		"due_date":         s.DueDate,
		"last_reviewed_at": s.LastReviewedAt,
		"times_reviewed":   s.TimesReviewed,
		"times_correct":    s.TimesCorrect,
		"version":          nextVersion,
		"updated_at":       at,
	}
}
