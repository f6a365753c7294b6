package action

import (
	"context"

	"hyligotchi/internal/app/ports"
	"hyligotchi/internal/domain/pet"
)

type initializeActionHandler struct{ BaseHandler }

func (initializeActionHandler) Optimistic(ac *ActionContext, s *pet.Snapshot) {
	s.Username = ac.In.Req.Name
}

func (initializeActionHandler) Remote(ctx context.Context, uc *UseCase, ac *ActionContext) (ports.MutationResult, error) {
	return uc.Client.Initialize(ctx, ac.In.Req.Name, pet.StaticProof(ac.In.Credentials))
}

func (initializeActionHandler) Messages(*ActionContext) MessageSet {
	return MessageSet{
		Success: "Pet created!",
		Failure: "Failed to create pet!",
		ByError: []errorMessage{{Err: ErrPetExists, Message: "Pet already exists!"}},
	}
}

type feedActionHandler struct{ BaseHandler }

func (feedActionHandler) Precheck(_ context.Context, uc *UseCase, ac *ActionContext) error {
	return reserveItem(ac, uc.Food, ac.In.Req.Feed.Item())
}

func (feedActionHandler) Optimistic(ac *ActionContext, s *pet.Snapshot) {
	s.ApplyFeed(ac.In.Req.Feed, ac.In.Req.Amount)
}

func (feedActionHandler) Remote(ctx context.Context, uc *UseCase, ac *ActionContext) (ports.MutationResult, error) {
	return uc.Client.Feed(ctx, ac.In.Req.Feed, ac.In.Req.Amount, pet.StaticProof(ac.In.Credentials))
}

func (feedActionHandler) Messages(ac *ActionContext) MessageSet {
	food := "orange"
	if ac.In.Req.Feed == pet.FeedSweets {
		food = "sweets"
	}
	return MessageSet{
		Success:      "Fed " + food + "!",
		Failure:      "Failed to feed!",
		Insufficient: "No " + food + " available!",
		ByError:      []errorMessage{{Err: ErrPetDead, Message: "Cannot feed a dead pet!"}},
		ByReason: []reasonMessage{
			{Contains: "already dead", Message: "Cannot feed a dead pet!"},
			{Contains: "too full", Message: "Pet is too full!"},
		},
	}
}

type medicineActionHandler struct{ BaseHandler }

func (medicineActionHandler) Precheck(_ context.Context, uc *UseCase, ac *ActionContext) error {
	return reserveItem(ac, uc.Medicine, pet.ItemVitamin)
}

func (medicineActionHandler) Optimistic(ac *ActionContext, s *pet.Snapshot) {
	s.ApplyMedicine(ac.In.Req.Amount)
}

func (medicineActionHandler) Remote(ctx context.Context, uc *UseCase, ac *ActionContext) (ports.MutationResult, error) {
	return uc.Client.UseMedicine(ctx, ac.In.Req.Amount, pet.StaticProof(ac.In.Credentials))
}

func (medicineActionHandler) Messages(*ActionContext) MessageSet {
	return MessageSet{
		Success:      "Used medicine!",
		Failure:      "Failed to use item!",
		Insufficient: "No medicine available!",
		ByReason:     []reasonMessage{{Contains: "not sick", Message: "Pet is not sick!"}},
	}
}

type cleanActionHandler struct{ BaseHandler }

func (cleanActionHandler) Precheck(_ context.Context, _ *UseCase, ac *ActionContext) error {
	if !ac.View.Before.NeedsCleaning {
		ac.Tmp.Skipped = true
	}
	return nil
}

func (cleanActionHandler) Optimistic(_ *ActionContext, s *pet.Snapshot) {
	s.ApplyClean()
}

func (cleanActionHandler) Remote(ctx context.Context, uc *UseCase, ac *ActionContext) (ports.MutationResult, error) {
	return uc.Client.Clean(ctx, pet.StaticProof(ac.In.Credentials))
}

func (cleanActionHandler) Messages(*ActionContext) MessageSet {
	return MessageSet{
		Success: "Cleaned poo!",
		Failure: "Failed to clean!",
		Skipped: "Nothing to clean!",
	}
}

type resurrectActionHandler struct{ BaseHandler }

func (resurrectActionHandler) Optimistic(_ *ActionContext, s *pet.Snapshot) {
	s.ApplyResurrect()
}

func (resurrectActionHandler) Remote(ctx context.Context, uc *UseCase, ac *ActionContext) (ports.MutationResult, error) {
	return uc.Client.Resurrect(ctx, pet.StaticProof(ac.In.Credentials))
}

func (resurrectActionHandler) Messages(*ActionContext) MessageSet {
	return MessageSet{
		Success: "Resurrected!",
		Failure: "Failed to resurrect!",
		ByError: []errorMessage{
			{Err: pet.ErrMissingCredential, Message: "Cannot resurrect without identity!"},
			{Err: ErrPetNotDead, Message: "Pet is not dead!"},
		},
	}
}

type advanceTimeActionHandler struct{ BaseHandler }

func (advanceTimeActionHandler) Remote(ctx context.Context, uc *UseCase, ac *ActionContext) (ports.MutationResult, error) {
	return uc.Client.AdvanceTime(ctx, pet.StaticProof(ac.In.Credentials))
}

func (advanceTimeActionHandler) Messages(*ActionContext) MessageSet {
	return MessageSet{
		Success: "Time advanced!",
		Failure: "Failed to advance time!",
	}
}

// reserveItem checks the balance and records which cache to decrement once
// the optimistic step runs.
func reserveItem(ac *ActionContext, cache BalanceCache, item pet.ItemKey) error {
	amount := pet.NormalizeAmount(ac.In.Req.Amount)
	if cache == nil || !cache.HasBalance(item, amount) {
		available := 0
		if cache != nil {
			available = cache.Get(item)
		}
		return &InsufficientResourceError{Item: item, Requested: amount, Available: available}
	}
	ac.Plan = ActionPlan{Cache: cache, Item: item, Amount: amount}
	return nil
}
