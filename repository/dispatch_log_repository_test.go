package repository

import (
	"context"
	"testing"

	"foodDeliveryAdmin/internal/testutil"
	"foodDeliveryAdmin/models"
)

func TestDispatchLogRepository_AppendAndList(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "dispatch_log")
	repo := NewDispatchLogRepository(d)
	ctx := context.Background()

	first, err := repo.Append(ctx, &models.DispatchRecord{Action: models.DispatchAssign, OrderID: "o1", AgentID: "a1", Actor: "u1"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first.ID == 0 || first.CreatedAt == "" {
		t.Fatalf("expected id and created_at to be set: %+v", first)
	}
	if first.Outcome != models.DispatchOK {
		t.Fatalf("default outcome = %q, want ok", first.Outcome)
	}
	if _, err := repo.Append(ctx, &models.DispatchRecord{Action: models.DispatchComplete, OrderID: "o1", AgentID: "a1", Actor: "u1", Outcome: models.DispatchFailed, Detail: "agent busy"}); err != nil {
		t.Fatalf("append failed outcome: %v", err)
	}
	if _, err := repo.Append(ctx, &models.DispatchRecord{Action: models.DispatchCreateOrder, OrderID: "o2", Actor: "u1"}); err != nil {
		t.Fatalf("append create: %v", err)
	}

	recent, err := repo.ListRecent(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 2 || recent[0].OrderID != "o2" || recent[1].Outcome != models.DispatchFailed {
		t.Fatalf("unexpected recent records: %+v", recent)
	}
	next, err := repo.ListRecent(ctx, 2, recent[1].ID)
	if err != nil {
		t.Fatalf("list next page: %v", err)
	}
	if len(next) != 1 || next[0].ID != first.ID {
		t.Fatalf("unexpected next page: %+v", next)
	}

	byOrder, err := repo.ListByOrder(ctx, "o1")
	if err != nil {
		t.Fatalf("list by order: %v", err)
	}
	if len(byOrder) != 2 || byOrder[0].Action != models.DispatchAssign || byOrder[1].Detail != "agent busy" {
		t.Fatalf("unexpected order records: %+v", byOrder)
	}
}

func TestDispatchLogRepository_RejectsUnknownAction(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "dispatch_log_check")
	repo := NewDispatchLogRepository(d)
	if _, err := repo.Append(context.Background(), &models.DispatchRecord{Action: "teleport", Actor: "u1"}); err == nil {
		t.Fatalf("expected CHECK constraint failure for unknown action")
	}
	if _, err := repo.Append(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil record")
	}
}
