package learning

import (
	"context"
	"testing"

	"github.com/EndaleK/Synaptic-sub012/internal/data/repos/testutil"
	learningdomain "github.com/EndaleK/Synaptic-sub012/internal/domain/learning"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func TestReviewOutboxRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewReviewOutboxRepo(db, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "outboxrepo@example.com")

	e1 := &learningdomain.ReviewOutbox{ID: uuid.New(), UserID: owner.ID, Kind: "review.completed", Payload: datatypes.JSON(`{"n":1}`), Status: OutboxStatusPending}
	e2 := &learningdomain.ReviewOutbox{ID: uuid.New(), UserID: owner.ID, Kind: "review.completed", Payload: datatypes.JSON(`{"n":2}`), Status: OutboxStatusPending}
	e3 := &learningdomain.ReviewOutbox{ID: uuid.New(), UserID: owner.ID, Kind: "review.completed", Payload: datatypes.JSON(`{"n":3}`), Status: OutboxStatusDispatched}
	if _, err := repo.Create(dbc, []*learningdomain.ReviewOutbox{e1, e2, e3}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	pending, err := repo.ListPending(dbc, 10)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if !containsOutboxID(pending, e1.ID) || !containsOutboxID(pending, e2.ID) {
		t.Fatalf("ListPending: missing pending rows, got %d", len(pending))
	}
	if containsOutboxID(pending, e3.ID) {
		t.Fatalf("ListPending: dispatched row leaked into the pending set")
	}

	claimed, err := repo.MarkDispatched(dbc, e1.ID)
	if err != nil {
		t.Fatalf("MarkDispatched: %v", err)
	}
	if !claimed {
		t.Fatalf("MarkDispatched: expected to settle the row")
	}
	row, err := repo.GetByID(dbc, e1.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if row.Status != OutboxStatusDispatched || row.Attempts != 1 || row.DispatchedAt == nil {
		t.Fatalf("dispatched row: got %+v", row)
	}
	// Settling an already-dispatched row is a no-op.
	if claimed, err := repo.MarkDispatched(dbc, e1.ID); err != nil || claimed {
		t.Fatalf("MarkDispatched twice: claimed=%v err=%v", claimed, err)
	}

	failed, err := repo.MarkFailed(dbc, e2.ID, "publish: connection refused")
	if err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if !failed {
		t.Fatalf("MarkFailed: expected to mark the row")
	}
	row, err = repo.GetByID(dbc, e2.ID)
	if err != nil {
		t.Fatalf("GetByID failed row: %v", err)
	}
	if row.Status != OutboxStatusFailed || row.Attempts != 1 || row.LastError == "" {
		t.Fatalf("failed row: got %+v", row)
	}

	// Failed rows stay in the dispatch set so delivery is retried.
	pending, err = repo.ListPending(dbc, 10)
	if err != nil {
		t.Fatalf("ListPending after fail: %v", err)
	}
	if !containsOutboxID(pending, e2.ID) {
		t.Fatalf("ListPending after fail: failed row missing")
	}

	// A retried failure keeps counting attempts.
	if _, err := repo.MarkFailed(dbc, e2.ID, "publish: still down"); err != nil {
		t.Fatalf("MarkFailed again: %v", err)
	}
	if claimed, err := repo.MarkDispatched(dbc, e2.ID); err != nil || !claimed {
		t.Fatalf("MarkDispatched after failures: claimed=%v err=%v", claimed, err)
	}
	row, err = repo.GetByID(dbc, e2.ID)
	if err != nil {
		t.Fatalf("GetByID settled row: %v", err)
	}
	if row.Status != OutboxStatusDispatched || row.Attempts != 3 || row.LastError != "" {
		t.Fatalf("settled row: got %+v", row)
	}
}

func containsOutboxID(rows []*learningdomain.ReviewOutbox, id uuid.UUID) bool {
	for _, row := range rows {
		if row != nil && row.ID == id {
			return true
		}
	}
	return false
}
