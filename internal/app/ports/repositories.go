package ports

import (
	"context"
	"time"

	"hyligotchi/internal/domain/pet"
)

type ActionLogRecord struct {
	ID         string
	Identity   string
	Action     pet.ActionType
	Amount     int
	Outcome    string
	ErrorCode  string
	Message    string
	RolledBack bool
	TxHash     string
	StartedAt  time.Time
	FinishedAt time.Time
}

type ActionLogRepository interface {
	Append(ctx context.Context, record ActionLogRecord) error
	ListByIdentity(ctx context.Context, identity string, limit int) ([]ActionLogRecord, error)
}
