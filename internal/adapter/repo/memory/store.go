package memory

import (
	"sync"

	"hyligotchi/internal/app/ports"
)

// Store keeps the action journal in process. It is the default when no
// database is configured.
type Store struct {
	mu      sync.RWMutex
	journal map[string][]ports.ActionLogRecord
	retain  int
}

func NewStore(retain int) *Store {
	return &Store{
		journal: make(map[string][]ports.ActionLogRecord),
		retain:  retain,
	}
}
