package ports

import "hyligotchi/internal/domain/pet"

type ActionMetrics interface {
	RecordSuccess(action pet.ActionType)
	RecordSkipped(action pet.ActionType)
	RecordFailure(action pet.ActionType, code string)
	RecordRollback(action pet.ActionType)
}
