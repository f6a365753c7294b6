package action

import (
	"time"

	"hyligotchi/internal/app/petsync"
	"hyligotchi/internal/app/ports"
	"hyligotchi/internal/domain/pet"
)

type Request struct {
	Action pet.ActionType
	Feed   pet.FeedKind
	Amount int
	Name   string
	Proof  pet.ProofProducer
}

// Outcome is what the presentation layer shows after an action. It is filled
// for failures too so the message can be displayed.
type Outcome struct {
	Action   pet.ActionType `json:"action"`
	Message  string         `json:"message"`
	Snapshot pet.Snapshot   `json:"snapshot"`
	Phase    petsync.Phase  `json:"phase"`
	Skipped  bool           `json:"skipped,omitempty"`
	Stale    bool           `json:"stale,omitempty"`
	TxHash   string         `json:"tx_hash,omitempty"`
}

type HistoryEntry struct {
	ID         string         `json:"id"`
	Action     pet.ActionType `json:"action"`
	Amount     int            `json:"amount,omitempty"`
	Outcome    string         `json:"outcome"`
	ErrorCode  string         `json:"error_code,omitempty"`
	Message    string         `json:"message"`
	RolledBack bool           `json:"rolled_back"`
	TxHash     string         `json:"tx_hash,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

type HistoryResponse struct {
	Identity string         `json:"identity"`
	Entries  []HistoryEntry `json:"entries"`
}

func NewHistoryResponse(identity string, records []ports.ActionLogRecord) HistoryResponse {
	out := HistoryResponse{Identity: identity, Entries: make([]HistoryEntry, 0, len(records))}
	for _, r := range records {
		out.Entries = append(out.Entries, HistoryEntry{
			ID:         r.ID,
			Action:     r.Action,
			Amount:     r.Amount,
			Outcome:    r.Outcome,
			ErrorCode:  r.ErrorCode,
			Message:    r.Message,
			RolledBack: r.RolledBack,
			TxHash:     r.TxHash,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
		})
	}
	return out
}
