package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"hyligotchi/internal/app/ports"
)

type ActionLogRepo struct {
	store *Store
}

func NewActionLogRepo(store *Store) ActionLogRepo {
	return ActionLogRepo{store: store}
}

func (r ActionLogRepo) Append(_ context.Context, record ports.ActionLogRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rows := append(r.store.journal[record.Identity], record)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].StartedAt.After(rows[j].StartedAt)
	})
	if r.store.retain > 0 && len(rows) > r.store.retain {
		rows = rows[:r.store.retain]
	}
	r.store.journal[record.Identity] = rows
	return nil
}

func (r ActionLogRepo) ListByIdentity(_ context.Context, identity string, limit int) ([]ports.ActionLogRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rows := r.store.journal[identity]
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]ports.ActionLogRecord, len(rows))
	copy(out, rows)
	return out, nil
}
