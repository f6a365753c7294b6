package action

import (
	"context"

	"hyligotchi/internal/app/ports"
)

type optimisticAction struct {
	Precondition func() error
	Optimistic   func() error
	Remote       func(ctx context.Context) (ports.MutationResult, error)
	OnSuccess    func(ctx context.Context, res ports.MutationResult)
	OnFailure    func(ctx context.Context, err error)
}

// runOptimistic applies the local change strictly before the remote call and
// reconciles strictly after it resolves. A confirmed record is merged while
// the mutation is still marked in flight; the hooks run once it is released.
func runOptimistic(ctx context.Context, engine SyncEngine, a optimisticAction) (ports.MutationResult, error) {
	if a.Precondition != nil {
		if err := a.Precondition(); err != nil {
			return ports.MutationResult{}, err
		}
	}
	if err := engine.BeginMutation(); err != nil {
		return ports.MutationResult{}, err
	}
	released := false
	release := func() {
		if !released {
			released = true
			engine.EndMutation()
		}
	}
	defer release()

	if a.Optimistic != nil {
		if err := a.Optimistic(); err != nil {
			return ports.MutationResult{}, err
		}
	}

	res, err := a.Remote(ctx)
	if err != nil {
		release()
		if a.OnFailure != nil {
			a.OnFailure(ctx, err)
		}
		return res, err
	}

	if res.Record != nil {
		if err := engine.ApplyRecord(res.Record); err != nil {
			return res, err
		}
	}
	release()
	if a.OnSuccess != nil {
		a.OnSuccess(ctx, res)
	}
	return res, nil
}
