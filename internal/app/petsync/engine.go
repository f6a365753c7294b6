package petsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"hyligotchi/internal/app/ports"
	"hyligotchi/internal/domain/pet"
)

type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseLoading       Phase = "loading"
	PhaseReady         Phase = "ready"
	PhaseDead          Phase = "dead"
)

const DefaultPollInterval = 30 * time.Second

var (
	ErrAlreadyLoaded = errors.New("sync engine already loaded")
	ErrNotLoaded     = errors.New("sync engine not loaded")
	ErrStopped       = errors.New("sync engine stopped")
	// ErrMutationInFlight reports a fetch discarded because an optimistic
	// mutation began before it resolved.
	ErrMutationInFlight = errors.New("sync engine mutation in flight")
)

// BalanceRefresher is a balance cache the poll loop keeps fresh.
type BalanceRefresher interface {
	Name() string
	Fetch(ctx context.Context, identity string) error
}

type Listener func(snapshot pet.Snapshot, phase Phase)

type Options struct {
	PollInterval time.Duration
	Now          func() time.Time
	Balances     []BalanceRefresher
}

// Engine owns the local view of one identity's pet and keeps it in step with
// the backend.
type Engine struct {
	client   ports.PetClient
	identity string
	interval time.Duration
	now      func() time.Time
	balances []BalanceRefresher

	mu        sync.Mutex
	phase     Phase
	snapshot  pet.Snapshot
	epoch     uint64
	inFlight  int
	alive     bool
	listeners map[int]Listener
	nextID    int
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewEngine(client ports.PetClient, identity string, opts Options) *Engine {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		client:    client,
		identity:  identity,
		interval:  interval,
		now:       now,
		balances:  append([]BalanceRefresher(nil), opts.Balances...),
		phase:     PhaseUninitialized,
		snapshot:  pet.EmptySnapshot(),
		alive:     true,
		listeners: map[int]Listener{},
	}
}

func (e *Engine) Identity() string {
	return e.identity
}

func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

func (e *Engine) Snapshot() pet.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot.Clone()
}

// State returns the snapshot and phase read under one lock.
func (e *Engine) State() (pet.Snapshot, Phase) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot.Clone(), e.phase
}

// Subscribe registers fn to run after every applied change. The returned
// func removes it.
func (e *Engine) Subscribe(fn Listener) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

// Load performs the first fetch. On failure the engine returns to
// uninitialized so Load can be retried.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return ErrStopped
	}
	if e.phase != PhaseUninitialized {
		e.mu.Unlock()
		return ErrAlreadyLoaded
	}
	e.phase = PhaseLoading
	e.mu.Unlock()

	rec, err := e.client.GetState(ctx)

	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return ErrStopped
	}
	if err != nil {
		e.phase = PhaseUninitialized
		e.mu.Unlock()
		return err
	}
	e.mergeLocked(rec)
	notify := e.notificationLocked()
	e.mu.Unlock()
	notify()
	return nil
}

// Refresh re-fetches and merges. Errors reach the caller, including
// ErrMutationInFlight when the result was discarded.
func (e *Engine) Refresh(ctx context.Context) error {
	_, err := e.fetchAndMerge(ctx)
	return err
}

// PollOnce runs one poll tick. Failures are logged and never returned.
func (e *Engine) PollOnce(ctx context.Context) {
	snap, phase := e.State()
	if phase == PhaseDead || (phase == PhaseReady && snap.Exists) {
		_, err := e.fetchAndMerge(ctx)
		switch {
		case err == nil, errors.Is(err, ErrStopped):
		case errors.Is(err, ErrMutationInFlight):
			hlog.CtxDebugf(ctx, "petsync: poll for %s skipped: %v", e.identity, err)
		default:
			hlog.CtxWarnf(ctx, "petsync: poll for %s failed: %v", e.identity, err)
		}
	}
	if phase == PhaseUninitialized || phase == PhaseLoading {
		return
	}
	for _, b := range e.balances {
		if err := b.Fetch(ctx, e.identity); err != nil {
			hlog.CtxWarnf(ctx, "petsync: %s balance refresh for %s failed: %v", b.Name(), e.identity, err)
		}
	}
}

// Start launches the poll loop. Each tick is scheduled after the previous one
// completes, so slow responses stretch the interval instead of overlapping.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if !e.alive || e.cancel != nil {
		e.mu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})
	done := e.done
	e.mu.Unlock()

	go e.loop(pollCtx, done)
}

func (e *Engine) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	timer := time.NewTimer(e.interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			e.PollOnce(ctx)
			timer.Reset(e.interval)
		}
	}
}

// Stop cancels the poll loop. Nothing is applied to the snapshot afterwards.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.alive = false
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done is closed once the poll loop has exited. It is nil before Start.
func (e *Engine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// BeginMutation marks an optimistic mutation as in flight. Fetches that
// started before it are discarded.
func (e *Engine) BeginMutation() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return ErrStopped
	}
	e.inFlight++
	e.epoch++
	return nil
}

func (e *Engine) EndMutation() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight > 0 {
		e.inFlight--
	}
}

// Mutate applies an optimistic change to the snapshot.
func (e *Engine) Mutate(fn func(s *pet.Snapshot)) error {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return ErrStopped
	}
	fn(&e.snapshot)
	e.snapshot.UpdatedAt = e.now()
	notify := e.notificationLocked()
	e.mu.Unlock()
	notify()
	return nil
}

// ApplyRecord merges a record confirmed by a mutation response.
func (e *Engine) ApplyRecord(rec *pet.RawRecord) error {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return ErrStopped
	}
	e.mergeLocked(rec)
	notify := e.notificationLocked()
	e.mu.Unlock()
	notify()
	return nil
}

func (e *Engine) fetchAndMerge(ctx context.Context) (bool, error) {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return false, ErrStopped
	}
	if e.phase == PhaseUninitialized || e.phase == PhaseLoading {
		e.mu.Unlock()
		return false, ErrNotLoaded
	}
	start := e.epoch
	e.mu.Unlock()

	rec, err := e.client.GetState(ctx)
	if err != nil {
		return false, err
	}

	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return false, ErrStopped
	}
	if e.inFlight > 0 || e.epoch != start {
		e.mu.Unlock()
		hlog.CtxDebugf(ctx, "petsync: discarding stale fetch for %s", e.identity)
		return false, ErrMutationInFlight
	}
	e.mergeLocked(rec)
	notify := e.notificationLocked()
	e.mu.Unlock()
	notify()
	return true, nil
}

// mergeLocked replaces every translated field. Callers hold e.mu.
func (e *Engine) mergeLocked(rec *pet.RawRecord) {
	t := pet.Translate(rec)
	e.snapshot = t.Snapshot(e.now())
	if t.IsDead {
		e.phase = PhaseDead
		return
	}
	e.phase = PhaseReady
}

func (e *Engine) notificationLocked() func() {
	if len(e.listeners) == 0 {
		return func() {}
	}
	snap := e.snapshot.Clone()
	phase := e.phase
	listeners := make([]Listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	return func() {
		for _, l := range listeners {
			l(snap.Clone(), phase)
		}
	}
}
