package aggregates

import (
	"context"
	"time"

	"github.com/EndaleK/Synaptic-sub012/internal/srs"
	"github.com/google/uuid"
)

var ReviewAggregateContract = Contract{
	Name:             "Learning.ReviewAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes: "Owns the review write boundary: scheduling-state advance, review log append, " +
		"and outbox append commit atomically under optimistic concurrency.",
}

// ReviewAggregate owns graded-review invariant writes.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeInvariantViolation, CodeRetryable, CodeInternal.
type ReviewAggregate interface {
	Aggregate

	// SubmitReview atomically applies one graded review to the caller's
	// scheduling state, appends the history row, and stages the
	// completion event. Concurrent submissions for the same card never
	// lose reviews: the losing writer recomputes from the committed
	// state and retries.
	SubmitReview(ctx context.Context, in SubmitReviewInput) (SubmitReviewResult, error)
}

type SubmitReviewInput struct {
	UserID      uuid.UUID
	FlashcardID uuid.UUID
	Rating      srs.Rating

	// ReviewedAt pins the review instant; zero means the wall clock.
	ReviewedAt time.Time
}

type SubmitReviewResult struct {
	SchedulingStateID uuid.UUID
	ReviewLogID       uuid.UUID
	OutboxID          uuid.UUID

	// State is the committed post-review scheduling state.
	State    srs.State
	Maturity srs.Maturity

	// Attempts counts optimistic-concurrency tries, 1 when uncontended.
	Attempts  int
	AppliedAt time.Time
}
