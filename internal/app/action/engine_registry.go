package action

import (
	"context"
	"time"

	"hyligotchi/internal/app/petsync"
	"hyligotchi/internal/app/ports"
	"hyligotchi/internal/domain/pet"
)

// PetRequirement is the local state an action needs before it may run.
type PetRequirement int

const (
	RequireAlivePet PetRequirement = iota
	RequireNoPet
	RequireDeadPet
)

type ActionSpec struct {
	Type    pet.ActionType
	Needs   PetRequirement
	Handler ActionHandler
}

type ActionHandler interface {
	Precheck(ctx context.Context, uc *UseCase, ac *ActionContext) error
	Optimistic(ac *ActionContext, s *pet.Snapshot)
	Remote(ctx context.Context, uc *UseCase, ac *ActionContext) (ports.MutationResult, error)
	Messages(ac *ActionContext) MessageSet
}

type BaseHandler struct{}

func (BaseHandler) Precheck(context.Context, *UseCase, *ActionContext) error { return nil }
func (BaseHandler) Optimistic(*ActionContext, *pet.Snapshot)                 {}

// MessageSet holds the user-facing strings of one action.
type MessageSet struct {
	Success      string
	Failure      string
	Insufficient string
	Skipped      string
	ByError      []errorMessage
	ByReason     []reasonMessage
}

type ActionInput struct {
	Req         Request
	StartedAt   time.Time
	Identity    string
	Credentials [2]pet.Credential
}

type ActionView struct {
	Spec   ActionSpec
	Before pet.Snapshot
	Phase  petsync.Phase
}

// ActionPlan is the balance reservation taken before the remote call.
type ActionPlan struct {
	Cache       BalanceCache
	Item        pet.ItemKey
	Amount      int
	Prior       int
	After       int
	Decremented bool
}

type ActionTmp struct {
	Result     ports.MutationResult
	Skipped    bool
	RolledBack bool
	Stale      bool
	Outcome    Outcome
}

type ActionContext struct {
	In   ActionInput
	View ActionView
	Plan ActionPlan
	Tmp  ActionTmp
}

func actionRegistry() map[pet.ActionType]ActionSpec {
	return map[pet.ActionType]ActionSpec{
		pet.ActionInitialize:  {Type: pet.ActionInitialize, Needs: RequireNoPet, Handler: initializeActionHandler{}},
		pet.ActionFeed:        {Type: pet.ActionFeed, Needs: RequireAlivePet, Handler: feedActionHandler{}},
		pet.ActionUseMedicine: {Type: pet.ActionUseMedicine, Needs: RequireAlivePet, Handler: medicineActionHandler{}},
		pet.ActionClean:       {Type: pet.ActionClean, Needs: RequireAlivePet, Handler: cleanActionHandler{}},
		pet.ActionResurrect:   {Type: pet.ActionResurrect, Needs: RequireDeadPet, Handler: resurrectActionHandler{}},
		pet.ActionAdvanceTime: {Type: pet.ActionAdvanceTime, Needs: RequireAlivePet, Handler: advanceTimeActionHandler{}},
	}
}

func supportedActionTypes() []pet.ActionType {
	return []pet.ActionType{
		pet.ActionInitialize,
		pet.ActionFeed,
		pet.ActionUseMedicine,
		pet.ActionClean,
		pet.ActionResurrect,
		pet.ActionAdvanceTime,
	}
}

func isSupportedActionType(t pet.ActionType) bool {
	for _, actionType := range supportedActionTypes() {
		if t == actionType {
			return true
		}
	}
	return false
}
