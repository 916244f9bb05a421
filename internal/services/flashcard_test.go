package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/EndaleK/Synaptic-sub012/internal/data/repos"
	"github.com/EndaleK/Synaptic-sub012/internal/data/repos/testutil"
	domainagg "github.com/EndaleK/Synaptic-sub012/internal/domain/aggregates"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/ctxutil"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/srs"
)

func TestFlashcardServiceLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	baseCtx := context.Background()
	owner := testutil.SeedUser(t, baseCtx, tx, "cardsvc@example.com")
	ctx := ctxutil.WithRequestData(baseCtx, &ctxutil.RequestData{UserID: owner.ID})
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	cardRepo := repos.NewFlashcardRepo(db, log)
	stateRepo := repos.NewSchedulingStateRepo(db, log)
	svc := NewFlashcardService(db, log, cardRepo, stateRepo, srs.Params{})

	created, err := svc.Create(dbc, CreateFlashcardInput{
		Front:    "  What is the capital of Australia?  ",
		Back:     "Canberra",
		Deck:     "geography",
		Metadata: json.RawMessage(`{"source":"import"}`),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Front != "What is the capital of Australia?" {
		t.Fatalf("front not trimmed: %q", created.Front)
	}

	// The card is born with a default scheduling state.
	state, err := stateRepo.GetByUserAndCard(dbc, owner.ID, created.ID)
	if err != nil {
		t.Fatalf("GetByUserAndCard: %v", err)
	}
	if state == nil {
		t.Fatalf("expected a scheduling state for the new card")
	}
	if state.EaseFactor != srs.DefaultEase || state.IntervalDays != 0 || state.Repetitions != 0 {
		t.Fatalf("default state wrong: %+v", state)
	}
	if state.Version != 1 {
		t.Fatalf("state version: want=1 got=%d", state.Version)
	}
	if time.Since(state.DueDate) > time.Minute {
		t.Fatalf("new card should be due now, due=%s", state.DueDate)
	}

	sched, err := svc.GetSchedule(dbc, created.ID)
	if err != nil {
		t.Fatalf("GetSchedule: %v", err)
	}
	if sched.Maturity != srs.MaturityNew || !sched.Due {
		t.Fatalf("new card schedule: %+v", sched)
	}
	if sched.EstimatedRetention < 0.99 {
		t.Fatalf("fresh card retention: want ~1 got=%v", sched.EstimatedRetention)
	}

	// A second card without Deck, then list both.
	other, err := svc.Create(dbc, CreateFlashcardInput{Front: "2+2", Back: "4"})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	listed, err := svc.List(dbc, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("List: want=2 got=%d", len(listed))
	}
	for _, item := range listed {
		if item.Schedule == nil {
			t.Fatalf("card %s listed without schedule", item.Flashcard.ID)
		}
		if item.Schedule.FlashcardID != item.Flashcard.ID {
			t.Fatalf("schedule attached to wrong card")
		}
	}

	deckOnly, err := svc.List(dbc, "geography", 0)
	if err != nil {
		t.Fatalf("List deck: %v", err)
	}
	if len(deckOnly) != 1 || deckOnly[0].Flashcard.ID != created.ID {
		t.Fatalf("deck filter: got %d cards", len(deckOnly))
	}

	got, err := svc.Get(dbc, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Back != "Canberra" {
		t.Fatalf("Get back: %q", got.Back)
	}

	if err := svc.Delete(dbc, other.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Both the card and its state are gone.
	if _, err := svc.Get(dbc, other.ID); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("Get after delete: want not_found got %v", err)
	}
	if state, err := stateRepo.GetByUserAndCard(dbc, owner.ID, other.ID); err != nil || state != nil {
		t.Fatalf("state survived delete: state=%v err=%v", state, err)
	}
	if err := svc.Delete(dbc, other.ID); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("repeat delete: want not_found got %v", err)
	}
}

func TestFlashcardServiceValidationAndOwnership(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	baseCtx := context.Background()
	owner := testutil.SeedUser(t, baseCtx, tx, "cardsvc-owner@example.com")
	stranger := testutil.SeedUser(t, baseCtx, tx, "cardsvc-stranger@example.com")

	ownerDbc := dbctx.Context{
		Ctx: ctxutil.WithRequestData(baseCtx, &ctxutil.RequestData{UserID: owner.ID}),
		Tx:  tx,
	}
	strangerDbc := dbctx.Context{
		Ctx: ctxutil.WithRequestData(baseCtx, &ctxutil.RequestData{UserID: stranger.ID}),
		Tx:  tx,
	}

	svc := NewFlashcardService(db, log,
		repos.NewFlashcardRepo(db, log),
		repos.NewSchedulingStateRepo(db, log),
		srs.Params{},
	)

	// No identity on the context.
	if _, err := svc.Create(dbctx.Context{Ctx: baseCtx, Tx: tx}, CreateFlashcardInput{Front: "q", Back: "a"}); err == nil {
		t.Fatalf("expected create without identity to fail")
	}

	if _, err := svc.Create(ownerDbc, CreateFlashcardInput{Front: " ", Back: "a"}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("blank front: want validation got %v", err)
	}
	if _, err := svc.Create(ownerDbc, CreateFlashcardInput{Front: "q", Back: "a", Metadata: json.RawMessage("{nope")}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("bad metadata: want validation got %v", err)
	}

	card, err := svc.Create(ownerDbc, CreateFlashcardInput{Front: "owned", Back: "card"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Another user's card reads as absent, not forbidden.
	if _, err := svc.Get(strangerDbc, card.ID); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("foreign get: want not_found got %v", err)
	}
	if _, err := svc.GetSchedule(strangerDbc, card.ID); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("foreign schedule: want not_found got %v", err)
	}
	if err := svc.Delete(strangerDbc, card.ID); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("foreign delete: want not_found got %v", err)
	}

	// The owner still sees it.
	if _, err := svc.Get(ownerDbc, card.ID); err != nil {
		t.Fatalf("owner get after foreign delete attempt: %v", err)
	}
}
