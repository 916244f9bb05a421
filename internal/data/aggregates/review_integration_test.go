package aggregates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	learningrepos "github.com/EndaleK/Synaptic-sub012/internal/data/repos/learning"
	repotest "github.com/EndaleK/Synaptic-sub012/internal/data/repos/testutil"
	domainagg "github.com/EndaleK/Synaptic-sub012/internal/domain/aggregates"
	"github.com/EndaleK/Synaptic-sub012/internal/domain/learning"
	"github.com/EndaleK/Synaptic-sub012/internal/domain/user"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/realtime"
	"github.com/EndaleK/Synaptic-sub012/internal/srs"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@test.local", prefix, uuid.NewString()[:8])
}

func TestReviewAggregateFirstReviewCreatesState(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)

	log := repotest.Logger(t)
	cards := learningrepos.NewFlashcardRepo(tx, log)
	states := learningrepos.NewSchedulingStateRepo(tx, log)
	logs := learningrepos.NewReviewLogRepo(tx, log)
	outbox := learningrepos.NewReviewOutboxRepo(tx, log)

	agg := NewReviewAggregate(ReviewAggregateDeps{
		Base: BaseDeps{
			DB:       tx,
			Runner:   NewGormTxRunner(tx),
			CASGuard: NewCASGuard(tx),
		},
		Flashcards: cards,
		States:     states,
		Logs:       logs,
		Outbox:     outbox,
	})

	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, tx, uniqueEmail("review-first"))
	card := repotest.SeedFlashcard(t, ctx, tx, u.ID)

	now := time.Date(2025, time.July, 4, 10, 0, 0, 0, time.UTC)
	res, err := agg.SubmitReview(ctx, domainagg.SubmitReviewInput{
		UserID:      u.ID,
		FlashcardID: card.ID,
		Rating:      srs.RatingGood,
		ReviewedAt:  now,
	})
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
	if res.Attempts != 1 {
		t.Fatalf("attempts: want=1 got=%d", res.Attempts)
	}
	if res.State.IntervalDays != 1 || res.State.Repetitions != 1 {
		t.Fatalf("first review schedule: got interval=%d reps=%d", res.State.IntervalDays, res.State.Repetitions)
	}
	if res.State.EaseFactor != srs.DefaultEase {
		t.Fatalf("first review ease: want=%v got=%v", srs.DefaultEase, res.State.EaseFactor)
	}
	if !res.State.DueDate.Equal(now.AddDate(0, 0, 1)) {
		t.Fatalf("first review due date: got %v", res.State.DueDate)
	}
	if res.Maturity != srs.MaturityLearning {
		t.Fatalf("first review maturity: want=%v got=%v", srs.MaturityLearning, res.Maturity)
	}

	row, err := states.GetByUserAndCard(dbctx.Context{Ctx: ctx}, u.ID, card.ID)
	if err != nil {
		t.Fatalf("GetByUserAndCard: %v", err)
	}
	if row == nil {
		t.Fatalf("expected a persisted scheduling state")
	}
	if row.ID != res.SchedulingStateID {
		t.Fatalf("state id: want=%s got=%s", res.SchedulingStateID, row.ID)
	}
	if row.Version != 1 {
		t.Fatalf("state version: want=1 got=%d", row.Version)
	}
	if row.TimesReviewed != 1 || row.TimesCorrect != 1 {
		t.Fatalf("state counters: got reviewed=%d correct=%d", row.TimesReviewed, row.TimesCorrect)
	}

	history, err := logs.ListByUserAndCard(dbctx.Context{Ctx: ctx}, u.ID, card.ID, 10)
	if err != nil {
		t.Fatalf("ListByUserAndCard: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("review logs: want=1 got=%d", len(history))
	}
	if history[0].Rating != "good" || history[0].Maturity != "learning" {
		t.Fatalf("review log row: got rating=%q maturity=%q", history[0].Rating, history[0].Maturity)
	}

	event, err := outbox.GetByID(dbctx.Context{Ctx: ctx}, res.OutboxID)
	if err != nil {
		t.Fatalf("outbox GetByID: %v", err)
	}
	if event.Status != learningrepos.OutboxStatusPending {
		t.Fatalf("outbox status: want=%q got=%q", learningrepos.OutboxStatusPending, event.Status)
	}
	if event.Kind != outboxKindReviewCompleted {
		t.Fatalf("outbox kind: want=%q got=%q", outboxKindReviewCompleted, event.Kind)
	}
	var payload realtime.ReviewEvent
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		t.Fatalf("unmarshal outbox payload: %v", err)
	}
	if payload.UserID != u.ID || payload.FlashcardID != card.ID {
		t.Fatalf("payload ownership: got %+v", payload)
	}
	if payload.Rating != "good" || !payload.StreakRelevant {
		t.Fatalf("payload review fields: got %+v", payload)
	}
}

func TestReviewAggregateLapseResetsSchedule(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)

	log := repotest.Logger(t)
	cards := learningrepos.NewFlashcardRepo(tx, log)
	states := learningrepos.NewSchedulingStateRepo(tx, log)
	logs := learningrepos.NewReviewLogRepo(tx, log)
	outbox := learningrepos.NewReviewOutboxRepo(tx, log)

	agg := NewReviewAggregate(ReviewAggregateDeps{
		Base: BaseDeps{
			DB:       tx,
			Runner:   NewGormTxRunner(tx),
			CASGuard: NewCASGuard(tx),
		},
		Flashcards: cards,
		States:     states,
		Logs:       logs,
		Outbox:     outbox,
	})

	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, tx, uniqueEmail("review-lapse"))
	card := repotest.SeedFlashcard(t, ctx, tx, u.ID)

	now := time.Date(2025, time.July, 4, 10, 0, 0, 0, time.UTC)
	repotest.SeedSchedulingState(t, ctx, tx, u.ID, card.ID, 10, now)

	res, err := agg.SubmitReview(ctx, domainagg.SubmitReviewInput{
		UserID:      u.ID,
		FlashcardID: card.ID,
		Rating:      srs.RatingAgain,
		ReviewedAt:  now,
	})
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
	if res.State.IntervalDays != 1 || res.State.Repetitions != 0 {
		t.Fatalf("lapse schedule: got interval=%d reps=%d", res.State.IntervalDays, res.State.Repetitions)
	}
	if math.Abs(res.State.EaseFactor-2.3) > 1e-9 {
		t.Fatalf("lapse ease: want=2.3 got=%v", res.State.EaseFactor)
	}
	if res.Maturity != srs.MaturityNew {
		t.Fatalf("lapse maturity: want=%v got=%v", srs.MaturityNew, res.Maturity)
	}

	row, err := states.GetByUserAndCard(dbctx.Context{Ctx: ctx}, u.ID, card.ID)
	if err != nil {
		t.Fatalf("GetByUserAndCard: %v", err)
	}
	if row == nil {
		t.Fatalf("expected the seeded scheduling state")
	}
	if row.Version != 2 {
		t.Fatalf("state version: want=2 got=%d", row.Version)
	}
	if row.TimesReviewed != 2 {
		t.Fatalf("times reviewed: want=2 got=%d", row.TimesReviewed)
	}
	// A lapse still records the review, but not as correct.
	if row.TimesCorrect != 1 {
		t.Fatalf("times correct: want=1 got=%d", row.TimesCorrect)
	}
}

func TestReviewAggregateForeignCardNotFound(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)

	log := repotest.Logger(t)
	cards := learningrepos.NewFlashcardRepo(tx, log)
	states := learningrepos.NewSchedulingStateRepo(tx, log)
	logs := learningrepos.NewReviewLogRepo(tx, log)
	outbox := learningrepos.NewReviewOutboxRepo(tx, log)

	agg := NewReviewAggregate(ReviewAggregateDeps{
		Base: BaseDeps{
			DB:       tx,
			Runner:   NewGormTxRunner(tx),
			CASGuard: NewCASGuard(tx),
		},
		Flashcards: cards,
		States:     states,
		Logs:       logs,
		Outbox:     outbox,
	})

	ctx := context.Background()
	owner := repotest.SeedUser(t, ctx, tx, uniqueEmail("review-owner"))
	other := repotest.SeedUser(t, ctx, tx, uniqueEmail("review-other"))
	card := repotest.SeedFlashcard(t, ctx, tx, owner.ID)

	_, err := agg.SubmitReview(ctx, domainagg.SubmitReviewInput{
		UserID:      owner.ID,
		FlashcardID: uuid.New(),
		Rating:      srs.RatingGood,
	})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown card: expected not_found, got %v", err)
	}

	// Another user's card is indistinguishable from a missing one.
	_, err = agg.SubmitReview(ctx, domainagg.SubmitReviewInput{
		UserID:      other.ID,
		FlashcardID: card.ID,
		Rating:      srs.RatingGood,
	})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("foreign card: expected not_found, got %v", err)
	}
}

func TestReviewAggregateRollbackOnInjectedFailure(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)

	log := repotest.Logger(t)
	cards := learningrepos.NewFlashcardRepo(tx, log)
	states := learningrepos.NewSchedulingStateRepo(tx, log)
	logs := learningrepos.NewReviewLogRepo(tx, log)
	outbox := learningrepos.NewReviewOutboxRepo(tx, log)

	agg := NewReviewAggregate(ReviewAggregateDeps{
		Base: BaseDeps{
			DB:       tx,
			Runner:   rollbackAfterBodyRunner{db: tx, err: errors.New("injected aggregate failure")},
			CASGuard: NewCASGuard(tx),
		},
		Flashcards: cards,
		States:     states,
		Logs:       logs,
		Outbox:     outbox,
	})

	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, tx, uniqueEmail("review-rollback"))
	card := repotest.SeedFlashcard(t, ctx, tx, u.ID)

	_, err := agg.SubmitReview(ctx, domainagg.SubmitReviewInput{
		UserID:      u.ID,
		FlashcardID: card.ID,
		Rating:      srs.RatingGood,
	})
	if err == nil {
		t.Fatalf("expected injected failure")
	}

	row, getErr := states.GetByUserAndCard(dbctx.Context{Ctx: ctx}, u.ID, card.ID)
	if getErr != nil {
		t.Fatalf("GetByUserAndCard: %v", getErr)
	}
	if row != nil {
		t.Fatalf("expected rollback with no persisted state, got %+v", row)
	}
	history, listErr := logs.ListByUserAndCard(dbctx.Context{Ctx: ctx}, u.ID, card.ID, 10)
	if listErr != nil {
		t.Fatalf("ListByUserAndCard: %v", listErr)
	}
	if len(history) != 0 {
		t.Fatalf("expected rollback with no persisted logs, got=%d", len(history))
	}
}

func TestReviewAggregateConcurrentReviewsBothApply(t *testing.T) {
	db := repotest.DB(t)

	log := repotest.Logger(t)
	cards := learningrepos.NewFlashcardRepo(db, log)
	states := learningrepos.NewSchedulingStateRepo(db, log)
	logs := learningrepos.NewReviewLogRepo(db, log)
	outbox := learningrepos.NewReviewOutboxRepo(db, log)

	agg := NewReviewAggregate(ReviewAggregateDeps{
		Base: BaseDeps{
			DB:       db,
			Runner:   NewGormTxRunner(db),
			CASGuard: NewCASGuard(db),
		},
		Flashcards: cards,
		States:     states,
		Logs:       logs,
		Outbox:     outbox,
	})

	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, db, uniqueEmail("review-concurrent"))
	card := repotest.SeedFlashcard(t, ctx, db, u.ID)
	repotest.SeedSchedulingState(t, ctx, db, u.ID, card.ID, 10, time.Now().UTC().Add(-time.Hour))
	cleanupReviewRows(t, ctx, db, u.ID, card.ID)

	start := make(chan struct{})
	outcomes := make(chan submitOutcome, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			<-start
			res, err := agg.SubmitReview(ctx, domainagg.SubmitReviewInput{
				UserID:      u.ID,
				FlashcardID: card.ID,
				Rating:      srs.RatingGood,
			})
			outcomes <- submitOutcome{res: res, err: err}
		}()
	}

	close(start)
	wg.Wait()
	close(outcomes)

	for outcome := range outcomes {
		if outcome.err != nil {
			t.Fatalf("concurrent review failed: %v", outcome.err)
		}
		if outcome.res.Attempts < 1 || outcome.res.Attempts > submitReviewAttempts {
			t.Fatalf("attempts out of range: got=%d", outcome.res.Attempts)
		}
	}

	row, err := states.GetByUserAndCard(dbctx.Context{Ctx: ctx}, u.ID, card.ID)
	if err != nil {
		t.Fatalf("GetByUserAndCard: %v", err)
	}
	if row == nil {
		t.Fatalf("expected the scheduling state to survive")
	}
	// Seeded at version 1, each applied review bumps it once.
	if row.Version != 3 {
		t.Fatalf("state version: want=3 got=%d", row.Version)
	}
	if row.TimesReviewed != 3 || row.TimesCorrect != 3 {
		t.Fatalf("state counters: got reviewed=%d correct=%d", row.TimesReviewed, row.TimesCorrect)
	}
	if row.Repetitions != 3 || row.IntervalDays != 15 {
		t.Fatalf("state schedule: got reps=%d interval=%d", row.Repetitions, row.IntervalDays)
	}

	history, err := logs.ListByUserAndCard(dbctx.Context{Ctx: ctx}, u.ID, card.ID, 10)
	if err != nil {
		t.Fatalf("ListByUserAndCard: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("review logs: want=2 got=%d", len(history))
	}

	var events int64
	if err := db.WithContext(ctx).
		Model(&learning.ReviewOutbox{}).
		Where("user_id = ?", u.ID).
		Count(&events).Error; err != nil {
		t.Fatalf("count outbox rows: %v", err)
	}
	if events != 2 {
		t.Fatalf("outbox rows: want=2 got=%d", events)
	}
}

func TestReviewAggregateConcurrentFirstReviewSingleState(t *testing.T) {
	db := repotest.DB(t)

	log := repotest.Logger(t)
	cards := learningrepos.NewFlashcardRepo(db, log)
	states := learningrepos.NewSchedulingStateRepo(db, log)
	logs := learningrepos.NewReviewLogRepo(db, log)
	outbox := learningrepos.NewReviewOutboxRepo(db, log)

	agg := NewReviewAggregate(ReviewAggregateDeps{
		Base: BaseDeps{
			DB:       db,
			Runner:   NewGormTxRunner(db),
			CASGuard: NewCASGuard(db),
		},
		Flashcards: cards,
		States:     states,
		Logs:       logs,
		Outbox:     outbox,
	})

	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, db, uniqueEmail("review-first-race"))
	card := repotest.SeedFlashcard(t, ctx, db, u.ID)
	cleanupReviewRows(t, ctx, db, u.ID, card.ID)

	start := make(chan struct{})
	outcomes := make(chan submitOutcome, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			<-start
			res, err := agg.SubmitReview(ctx, domainagg.SubmitReviewInput{
				UserID:      u.ID,
				FlashcardID: card.ID,
				Rating:      srs.RatingGood,
			})
			outcomes <- submitOutcome{res: res, err: err}
		}()
	}

	close(start)
	wg.Wait()
	close(outcomes)

	for outcome := range outcomes {
		if outcome.err != nil {
			t.Fatalf("concurrent first review failed: %v", outcome.err)
		}
	}

	var stateRows int64
	if err := db.WithContext(ctx).
		Model(&learning.SchedulingState{}).
		Where("user_id = ? AND flashcard_id = ?", u.ID, card.ID).
		Count(&stateRows).Error; err != nil {
		t.Fatalf("count state rows: %v", err)
	}
	if stateRows != 1 {
		t.Fatalf("state rows: want=1 got=%d", stateRows)
	}

	row, err := states.GetByUserAndCard(dbctx.Context{Ctx: ctx}, u.ID, card.ID)
	if err != nil {
		t.Fatalf("GetByUserAndCard: %v", err)
	}
	if row == nil {
		t.Fatalf("expected a single scheduling state")
	}
	if row.Version != 2 {
		t.Fatalf("state version: want=2 got=%d", row.Version)
	}
	if row.TimesReviewed != 2 || row.Repetitions != 2 || row.IntervalDays != 6 {
		t.Fatalf("state schedule: got reviewed=%d reps=%d interval=%d", row.TimesReviewed, row.Repetitions, row.IntervalDays)
	}
}

type submitOutcome struct {
	res domainagg.SubmitReviewResult
	err error
}

type rollbackAfterBodyRunner struct {
	db  *gorm.DB
	err error
}

func (r rollbackAfterBodyRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if r.db == nil {
		return errors.New("missing db")
	}
	injected := r.err
	if injected == nil {
		injected = errors.New("forced rollback")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if fn == nil {
			return injected
		}
		if err := fn(dbctx.Context{Ctx: ctx, Tx: tx}); err != nil {
			return err
		}
		return injected
	})
}

// cleanupReviewRows removes committed rows from tests that run against the
// shared handle instead of a rolled-back transaction.
func cleanupReviewRows(t *testing.T, ctx context.Context, db *gorm.DB, userID, flashcardID uuid.UUID) {
	t.Helper()
	t.Cleanup(func() {
		_ = db.WithContext(ctx).Where("user_id = ?", userID).Delete(&learning.ReviewOutbox{}).Error
		_ = db.WithContext(ctx).Where("user_id = ?", userID).Delete(&learning.ReviewLog{}).Error
		_ = db.WithContext(ctx).Unscoped().Where("user_id = ?", userID).Delete(&learning.SchedulingState{}).Error
		_ = db.WithContext(ctx).Unscoped().Where("id = ?", flashcardID).Delete(&learning.Flashcard{}).Error
		_ = db.WithContext(ctx).Unscoped().Where("id = ?", userID).Delete(&user.User{}).Error
	})
}
