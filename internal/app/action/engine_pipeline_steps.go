package action

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"hyligotchi/internal/app/petsync"
	"hyligotchi/internal/app/ports"
	"hyligotchi/internal/domain/pet"
)

func (u *UseCase) ValidateRequest(req Request) (ActionContext, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Action == pet.ActionFeed || req.Action == pet.ActionUseMedicine {
		req.Amount = pet.NormalizeAmount(req.Amount)
	}

	ac := ActionContext{In: ActionInput{Req: req, StartedAt: u.now()}}
	if u.Engine == nil || u.Client == nil {
		return ac, ErrInvalidRequest
	}
	ac.In.Identity = u.Engine.Identity()

	if !isSupportedActionType(req.Action) {
		return ac, ErrInvalidRequest
	}
	if req.Action == pet.ActionFeed && !req.Feed.Valid() {
		return ac, ErrInvalidRequest
	}
	if req.Action == pet.ActionInitialize && req.Name == "" {
		return ac, ErrInvalidRequest
	}
	return ac, nil
}

func (u *UseCase) ResolveSpec(ac *ActionContext) error {
	spec, ok := actionRegistry()[ac.In.Req.Action]
	if !ok {
		return ErrInvalidRequest
	}
	ac.View.Spec = spec
	return nil
}

func (u *UseCase) ProduceCredentials(ac *ActionContext) error {
	creds, err := pet.ProduceCredentials(ac.In.Req.Proof)
	if err != nil {
		return err
	}
	ac.In.Credentials = creds
	return nil
}

func (u *UseCase) LoadState(ac *ActionContext) error {
	snap, phase := u.Engine.State()
	ac.View.Before = snap
	ac.View.Phase = phase

	if phase == petsync.PhaseUninitialized || phase == petsync.PhaseLoading {
		return petsync.ErrNotLoaded
	}
	switch ac.View.Spec.Needs {
	case RequireNoPet:
		if snap.Exists {
			return ErrPetExists
		}
	case RequireDeadPet:
		if !snap.Exists {
			return ErrNoPet
		}
		if !snap.IsDead() {
			return ErrPetNotDead
		}
	default:
		if !snap.Exists {
			return ErrNoPet
		}
		if snap.IsDead() || phase == petsync.PhaseDead {
			return ErrPetDead
		}
	}
	return nil
}

func (u *UseCase) RunPrechecks(ctx context.Context, ac *ActionContext) error {
	if ac.View.Spec.Handler == nil {
		return nil
	}
	return ac.View.Spec.Handler.Precheck(ctx, u, ac)
}

// ExecuteActionAndReconcile runs the handler through the optimistic
// primitive: reserve and mutate locally, call the backend, then merge the
// confirmed record or roll back and resync.
func (u *UseCase) ExecuteActionAndReconcile(ctx context.Context, ac *ActionContext) error {
	h := ac.View.Spec.Handler
	res, err := runOptimistic(ctx, u.Engine, optimisticAction{
		Optimistic: func() error {
			u.reserveBalance(ac)
			if err := u.Engine.Mutate(func(s *pet.Snapshot) { h.Optimistic(ac, s) }); err != nil {
				u.releaseBalance(ac)
				return err
			}
			return nil
		},
		Remote: func(ctx context.Context) (ports.MutationResult, error) {
			return h.Remote(ctx, u, ac)
		},
		OnSuccess: func(ctx context.Context, res ports.MutationResult) {
			if res.Record != nil {
				return
			}
			u.resync(ctx, ac)
		},
		OnFailure: func(ctx context.Context, err error) {
			if u.releaseBalance(ac) && u.Metrics != nil {
				u.Metrics.RecordRollback(ac.In.Req.Action)
			}
			hlog.CtxWarnf(ctx, "action %s for %s failed, resyncing: %v", ac.In.Req.Action, ac.In.Identity, err)
			u.resync(ctx, ac)
		},
	})
	ac.Tmp.Result = res
	return err
}

func (u *UseCase) reserveBalance(ac *ActionContext) {
	if ac.Plan.Cache == nil {
		return
	}
	ac.Plan.Prior = ac.Plan.Cache.OptimisticDecrement(ac.Plan.Item, ac.Plan.Amount)
	ac.Plan.After = ac.Plan.Prior - ac.Plan.Amount
	if ac.Plan.After < 0 {
		ac.Plan.After = 0
	}
	ac.Plan.Decremented = true
}

// releaseBalance undoes the reservation unless a balance fetch replaced the
// decremented value while the call was out.
func (u *UseCase) releaseBalance(ac *ActionContext) bool {
	if !ac.Plan.Decremented {
		return false
	}
	ac.Plan.Decremented = false
	if !ac.Plan.Cache.RollbackIfUnchanged(ac.Plan.Item, ac.Plan.After, ac.Plan.Prior) {
		return false
	}
	ac.Tmp.RolledBack = true
	return true
}

func (u *UseCase) resync(ctx context.Context, ac *ActionContext) {
	if err := u.Engine.Refresh(ctx); err != nil {
		hlog.CtxWarnf(ctx, "action %s for %s: refresh failed, keeping local state: %v", ac.In.Req.Action, ac.In.Identity, err)
		ac.Tmp.Stale = true
	}
}

func (u *UseCase) finish(ctx context.Context, ac *ActionContext, err error) (Outcome, error) {
	out := Outcome{
		Action:  ac.In.Req.Action,
		Message: messageFor(ac, err),
		Skipped: err == nil && ac.Tmp.Skipped,
		Stale:   ac.Tmp.Stale,
		TxHash:  ac.Tmp.Result.TxHash,
	}
	if u.Engine != nil {
		out.Snapshot, out.Phase = u.Engine.State()
	}
	ac.Tmp.Outcome = out

	if u.Metrics != nil {
		switch {
		case err != nil:
			u.Metrics.RecordFailure(ac.In.Req.Action, ErrorCode(err))
		case out.Skipped:
			u.Metrics.RecordSkipped(ac.In.Req.Action)
		default:
			u.Metrics.RecordSuccess(ac.In.Req.Action)
		}
	}
	u.journal(ctx, ac, err)
	return out, err
}

func (u *UseCase) journal(ctx context.Context, ac *ActionContext, err error) {
	if u.Journal == nil {
		return
	}
	record := ports.ActionLogRecord{
		Identity:   ac.In.Identity,
		Action:     ac.In.Req.Action,
		Amount:     ac.In.Req.Amount,
		Outcome:    outcomeLabel(ac, err),
		Message:    ac.Tmp.Outcome.Message,
		RolledBack: ac.Tmp.RolledBack,
		TxHash:     ac.Tmp.Result.TxHash,
		StartedAt:  ac.In.StartedAt,
		FinishedAt: u.now(),
	}
	if err != nil {
		record.ErrorCode = ErrorCode(err)
	}
	if jerr := u.Journal.Append(ctx, record); jerr != nil {
		hlog.CtxErrorf(ctx, "action %s for %s: journal append failed: %v", ac.In.Req.Action, ac.In.Identity, jerr)
	}
}

func outcomeLabel(ac *ActionContext, err error) string {
	switch {
	case err != nil:
		return "failed"
	case ac.Tmp.Skipped:
		return "skipped"
	default:
		return "succeeded"
	}
}
