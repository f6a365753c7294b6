package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"hyligotchi/internal/app/ports"
	"hyligotchi/internal/domain/pet"
)

func TestActionLogRepo_NewestFirstWithRetention(t *testing.T) {
	repo := NewActionLogRepo(NewStore(2))
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	actions := []pet.ActionType{pet.ActionFeed, pet.ActionClean, pet.ActionUseMedicine}
	for i, a := range actions {
		if err := repo.Append(ctx, ports.ActionLogRecord{
			Identity:  "bob@wallet",
			Action:    a,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.ListByIdentity(ctx, "bob@wallet", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Action != pet.ActionUseMedicine || got[1].Action != pet.ActionClean {
		t.Fatalf("expected newest first, got %s then %s", got[0].Action, got[1].Action)
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Fatalf("expected distinct generated ids, got %q and %q", got[0].ID, got[1].ID)
	}

	limited, err := repo.ListByIdentity(ctx, "bob@wallet", 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("expected 1 row with limit, got %d err=%v", len(limited), err)
	}
}

func TestActionLogRepo_UnknownIdentity(t *testing.T) {
	repo := NewActionLogRepo(NewStore(0))
	if _, err := repo.ListByIdentity(context.Background(), "nobody", 5); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestActionLogRepo_ListReturnsCopy(t *testing.T) {
	repo := NewActionLogRepo(NewStore(0))
	ctx := context.Background()
	_ = repo.Append(ctx, ports.ActionLogRecord{ID: "a1", Identity: "bob", Message: "Fed orange!"})
	got, _ := repo.ListByIdentity(ctx, "bob", 0)
	got[0].Message = "mutated"
	again, _ := repo.ListByIdentity(ctx, "bob", 0)
	if again[0].Message != "Fed orange!" {
		t.Fatalf("expected stored row untouched, got %q", again[0].Message)
	}
}
