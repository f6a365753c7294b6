package ports

import (
	"context"

	"hyligotchi/internal/domain/pet"
)

// MutationResult is what the backend answered to a mutation. Record is nil
// when the server only acknowledged the transaction.
type MutationResult struct {
	Record *pet.RawRecord
	TxHash string
}

type ServerConfig struct {
	ContractName string
	Raw          []byte
}

type PetClient interface {
	Initialize(ctx context.Context, name string, proof pet.ProofProducer) (MutationResult, error)
	GetState(ctx context.Context) (*pet.RawRecord, error)
	Feed(ctx context.Context, kind pet.FeedKind, amount int, proof pet.ProofProducer) (MutationResult, error)
	UseMedicine(ctx context.Context, amount int, proof pet.ProofProducer) (MutationResult, error)
	Clean(ctx context.Context, proof pet.ProofProducer) (MutationResult, error)
	Resurrect(ctx context.Context, proof pet.ProofProducer) (MutationResult, error)
	AdvanceTime(ctx context.Context, proof pet.ProofProducer) (MutationResult, error)
	GetConfig(ctx context.Context) (ServerConfig, error)
}

type BalanceIndexer interface {
	Balance(ctx context.Context, contract, identity string) (int, error)
}
