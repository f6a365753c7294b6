package action

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"hyligotchi/internal/app/balance"
	"hyligotchi/internal/app/petsync"
	"hyligotchi/internal/app/ports"
	"hyligotchi/internal/domain/pet"
)

type mutationReply struct {
	res ports.MutationResult
	err error
}

type scriptedClient struct {
	mu        sync.Mutex
	states    []*pet.RawRecord
	stateErrs []error
	mutation  mutationReply
	calls     []string
	onRemote  func()
}

func (c *scriptedClient) GetState(context.Context) (*pet.RawRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "get_state")
	var err error
	if len(c.stateErrs) > 0 {
		err = c.stateErrs[0]
		c.stateErrs = c.stateErrs[1:]
	}
	if err != nil {
		return nil, err
	}
	if len(c.states) == 0 {
		return nil, nil
	}
	rec := c.states[0]
	if len(c.states) > 1 {
		c.states = c.states[1:]
	}
	return rec, nil
}

func (c *scriptedClient) mutate(name string, proof pet.ProofProducer) (ports.MutationResult, error) {
	if _, err := pet.ProduceCredentials(proof); err != nil {
		return ports.MutationResult{}, err
	}
	c.mu.Lock()
	c.calls = append(c.calls, name)
	hook := c.onRemote
	reply := c.mutation
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	return reply.res, reply.err
}

func (c *scriptedClient) Initialize(_ context.Context, _ string, proof pet.ProofProducer) (ports.MutationResult, error) {
	return c.mutate("initialize", proof)
}
func (c *scriptedClient) Feed(_ context.Context, kind pet.FeedKind, _ int, proof pet.ProofProducer) (ports.MutationResult, error) {
	return c.mutate("feed_"+string(kind), proof)
}
func (c *scriptedClient) UseMedicine(_ context.Context, _ int, proof pet.ProofProducer) (ports.MutationResult, error) {
	return c.mutate("use_medicine", proof)
}
func (c *scriptedClient) Clean(_ context.Context, proof pet.ProofProducer) (ports.MutationResult, error) {
	return c.mutate("clean", proof)
}
func (c *scriptedClient) Resurrect(_ context.Context, proof pet.ProofProducer) (ports.MutationResult, error) {
	return c.mutate("resurrect", proof)
}
func (c *scriptedClient) AdvanceTime(_ context.Context, proof pet.ProofProducer) (ports.MutationResult, error) {
	return c.mutate("advance_time", proof)
}
func (c *scriptedClient) GetConfig(context.Context) (ports.ServerConfig, error) {
	return ports.ServerConfig{ContractName: "hyligotchi"}, nil
}

func (c *scriptedClient) remoteCalls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.calls))
	for _, call := range c.calls {
		if call != "get_state" {
			out = append(out, call)
		}
	}
	return out
}

func (c *scriptedClient) setStates(recs ...*pet.RawRecord) {
	c.mu.Lock()
	c.states = recs
	c.mu.Unlock()
}

type stubIndexer map[string]int

func (s stubIndexer) Balance(_ context.Context, contract, _ string) (int, error) {
	return s[contract], nil
}

type spyMetrics struct {
	mu        sync.Mutex
	success   map[pet.ActionType]int
	skipped   map[pet.ActionType]int
	failures  map[string]int
	rollbacks int
}

func newSpyMetrics() *spyMetrics {
	return &spyMetrics{success: map[pet.ActionType]int{}, skipped: map[pet.ActionType]int{}, failures: map[string]int{}}
}

func (m *spyMetrics) RecordSuccess(a pet.ActionType) {
	m.mu.Lock()
	m.success[a]++
	m.mu.Unlock()
}
func (m *spyMetrics) RecordSkipped(a pet.ActionType) {
	m.mu.Lock()
	m.skipped[a]++
	m.mu.Unlock()
}
func (m *spyMetrics) RecordFailure(_ pet.ActionType, code string) {
	m.mu.Lock()
	m.failures[code]++
	m.mu.Unlock()
}
func (m *spyMetrics) RecordRollback(pet.ActionType) {
	m.mu.Lock()
	m.rollbacks++
	m.mu.Unlock()
}

type spyJournal struct {
	mu      sync.Mutex
	records []ports.ActionLogRecord
}

func (j *spyJournal) Append(_ context.Context, r ports.ActionLogRecord) error {
	j.mu.Lock()
	j.records = append(j.records, r)
	j.mu.Unlock()
	return nil
}

func (j *spyJournal) ListByIdentity(context.Context, string, int) ([]ports.ActionLogRecord, error) {
	return nil, nil
}

type harness struct {
	uc       *UseCase
	client   *scriptedClient
	engine   *petsync.Engine
	food     *balance.Cache
	medicine *balance.Cache
	metrics  *spyMetrics
	journal  *spyJournal
}

func testNow() time.Time {
	return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
}

// newHarness loads the engine with initial and fills the balance caches.
func newHarness(t *testing.T, initial *pet.RawRecord, balances stubIndexer) *harness {
	t.Helper()
	client := &scriptedClient{states: []*pet.RawRecord{initial}}
	engine := petsync.NewEngine(client, "bob@wallet", petsync.Options{PollInterval: time.Hour, Now: testNow})
	if err := engine.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	food := balance.NewFoodCache(balances)
	medicine := balance.NewMedicineCache(balances)
	if err := food.Fetch(context.Background(), "bob@wallet"); err != nil {
		t.Fatalf("fetch food: %v", err)
	}
	if err := medicine.Fetch(context.Background(), "bob@wallet"); err != nil {
		t.Fatalf("fetch medicine: %v", err)
	}
	h := &harness{
		client:   client,
		engine:   engine,
		food:     food,
		medicine: medicine,
		metrics:  newSpyMetrics(),
		journal:  &spyJournal{},
	}
	h.uc = &UseCase{
		Engine:   engine,
		Client:   client,
		Food:     food,
		Medicine: medicine,
		Metrics:  h.metrics,
		Journal:  h.journal,
		Now:      testNow,
	}
	return h
}

func gotchi(hunger, happiness, vitamins float64, health string) *pet.RawRecord {
	return &pet.RawRecord{Name: "Orange", Health: pet.PlainHealth(health), Food: hunger, Sweets: happiness, Vitamins: vitamins}
}

func validProof() pet.ProofProducer {
	return pet.StaticProof([2]pet.Credential{
		{ContractName: "wallet", Data: json.RawMessage(`"c2ln"`)},
		{ContractName: "hyligotchi", Data: json.RawMessage(`"YmxvYg=="`)},
	})
}
