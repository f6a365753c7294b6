package action

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"hyligotchi/internal/app/petsync"
	"hyligotchi/internal/app/ports"
	"hyligotchi/internal/domain/pet"
)

var (
	ErrInvalidRequest       = errors.New("invalid action request")
	ErrActionInProgress     = errors.New("action in progress")
	ErrInsufficientResource = errors.New("insufficient resource")
	ErrNoPet                = errors.New("no pet")
	ErrPetExists            = errors.New("pet already exists")
	ErrPetDead              = errors.New("pet is dead")
	ErrPetNotDead           = errors.New("pet is not dead")
)

type InsufficientResourceError struct {
	Item      pet.ItemKey
	Requested int
	Available int
}

func (e *InsufficientResourceError) Error() string {
	return fmt.Sprintf("%s: %s requested %d, available %d", ErrInsufficientResource.Error(), e.Item, e.Requested, e.Available)
}

func (e *InsufficientResourceError) Unwrap() error {
	return ErrInsufficientResource
}

// SyncEngine is the part of the sync engine the orchestrator drives.
type SyncEngine interface {
	Identity() string
	State() (pet.Snapshot, petsync.Phase)
	BeginMutation() error
	EndMutation()
	Mutate(fn func(s *pet.Snapshot)) error
	ApplyRecord(rec *pet.RawRecord) error
	Refresh(ctx context.Context) error
}

type BalanceCache interface {
	Get(key pet.ItemKey) int
	HasBalance(key pet.ItemKey, amount int) bool
	OptimisticDecrement(key pet.ItemKey, amount int) int
	RollbackIfUnchanged(key pet.ItemKey, decremented, prior int) bool
}

// UseCase runs user intents against one pet. Mutating actions are
// serialized: a second action while one is running fails fast.
type UseCase struct {
	Engine   SyncEngine
	Client   ports.PetClient
	Food     BalanceCache
	Medicine BalanceCache
	Metrics  ports.ActionMetrics
	Journal  ports.ActionLogRepository
	Now      func() time.Time

	busy atomic.Bool
}

func (u *UseCase) Execute(ctx context.Context, req Request) (Outcome, error) {
	ac, err := u.ValidateRequest(req)
	if err != nil {
		return u.finish(ctx, &ac, err)
	}
	if !u.busy.CompareAndSwap(false, true) {
		return u.finish(ctx, &ac, ErrActionInProgress)
	}
	defer u.busy.Store(false)

	if err := u.ResolveSpec(&ac); err != nil {
		return u.finish(ctx, &ac, err)
	}
	if err := u.LoadState(&ac); err != nil {
		return u.finish(ctx, &ac, err)
	}
	if err := u.RunPrechecks(ctx, &ac); err != nil {
		return u.finish(ctx, &ac, err)
	}
	if ac.Tmp.Skipped {
		return u.finish(ctx, &ac, nil)
	}
	if err := u.ProduceCredentials(&ac); err != nil {
		return u.finish(ctx, &ac, err)
	}
	err = u.ExecuteActionAndReconcile(ctx, &ac)
	return u.finish(ctx, &ac, err)
}

func (u *UseCase) Initialize(ctx context.Context, name string, proof pet.ProofProducer) (Outcome, error) {
	return u.Execute(ctx, Request{Action: pet.ActionInitialize, Name: name, Proof: proof})
}

func (u *UseCase) Feed(ctx context.Context, kind pet.FeedKind, amount int, proof pet.ProofProducer) (Outcome, error) {
	return u.Execute(ctx, Request{Action: pet.ActionFeed, Feed: kind, Amount: amount, Proof: proof})
}

func (u *UseCase) UseMedicine(ctx context.Context, amount int, proof pet.ProofProducer) (Outcome, error) {
	return u.Execute(ctx, Request{Action: pet.ActionUseMedicine, Amount: amount, Proof: proof})
}

func (u *UseCase) Clean(ctx context.Context, proof pet.ProofProducer) (Outcome, error) {
	return u.Execute(ctx, Request{Action: pet.ActionClean, Proof: proof})
}

func (u *UseCase) Resurrect(ctx context.Context, proof pet.ProofProducer) (Outcome, error) {
	return u.Execute(ctx, Request{Action: pet.ActionResurrect, Proof: proof})
}

func (u *UseCase) AdvanceTime(ctx context.Context, proof pet.ProofProducer) (Outcome, error) {
	return u.Execute(ctx, Request{Action: pet.ActionAdvanceTime, Proof: proof})
}

func (u *UseCase) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}
