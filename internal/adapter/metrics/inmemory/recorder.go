package inmemory

import (
	"sync"

	"hyligotchi/internal/domain/pet"
)

type Snapshot struct {
	ActionTotal     uint64            `json:"action_total"`
	ActionSuccess   uint64            `json:"action_success"`
	ActionSkipped   uint64            `json:"action_skipped"`
	ActionFailure   uint64            `json:"action_failure"`
	ActionRollbacks uint64            `json:"action_rollbacks"`
	ByAction        map[string]uint64 `json:"by_action"`
	ByErrorCode     map[string]uint64 `json:"by_error_code"`
}

type Recorder struct {
	mu        sync.Mutex
	success   uint64
	skipped   uint64
	failure   uint64
	rollbacks uint64
	byAction  map[string]uint64
	byError   map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byAction: map[string]uint64{},
		byError:  map[string]uint64{},
	}
}

func (r *Recorder) RecordSuccess(action pet.ActionType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success++
	r.byAction[string(action)]++
}

func (r *Recorder) RecordSkipped(action pet.ActionType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped++
	r.byAction[string(action)]++
}

func (r *Recorder) RecordFailure(action pet.ActionType, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure++
	if action != "" {
		r.byAction[string(action)]++
	}
	r.byError[code]++
}

func (r *Recorder) RecordRollback(pet.ActionType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollbacks++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		ActionSuccess:   r.success,
		ActionSkipped:   r.skipped,
		ActionFailure:   r.failure,
		ActionRollbacks: r.rollbacks,
		ActionTotal:     r.success + r.skipped + r.failure,
		ByAction:        make(map[string]uint64, len(r.byAction)),
		ByErrorCode:     make(map[string]uint64, len(r.byError)),
	}
	for k, v := range r.byAction {
		out.ByAction[k] = v
	}
	for k, v := range r.byError {
		out.ByErrorCode[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
