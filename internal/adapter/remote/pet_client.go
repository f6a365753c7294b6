package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/tidwall/gjson"

	"hyligotchi/internal/app/ports"
	"hyligotchi/internal/domain/pet"
)

const (
	pathInit        = "/api/init"
	pathState       = "/v1/indexer/contract/hyligotchi/state"
	pathFeedFood    = "/api/feed/food"
	pathFeedSweets  = "/api/feed/sweets"
	pathFeedVitamin = "/api/feed/vitamins"
	pathClean       = "/api/poop/clean"
	pathResurrect   = "/api/resurrect"
	pathTick        = "/api/tick"
	pathConfig      = "/api/config"
)

// PetClient talks to the pet backend on behalf of one identity.
type PetClient struct {
	t transport
}

var _ ports.PetClient = (*PetClient)(nil)

func NewPetClient(doer Doer, baseURL, identity string, opts Options) *PetClient {
	return &PetClient{t: newTransport(doer, baseURL, identity, opts)}
}

func (c *PetClient) Identity() string {
	return c.t.identity
}

func (c *PetClient) Initialize(ctx context.Context, name string, proof pet.ProofProducer) (ports.MutationResult, error) {
	return c.mutate(ctx, "pet.initialize", pathInit, url.Values{"name": {name}}, proof)
}

// GetState returns nil when the backend has no pet for the identity.
func (c *PetClient) GetState(ctx context.Context) (*pet.RawRecord, error) {
	r, err := c.t.read(ctx, "pet.get_state", pathState, consts.StatusNotFound)
	if err != nil {
		return nil, err
	}
	if r.status == consts.StatusNotFound {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(r.body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	return decodeRecord(trimmed)
}

func (c *PetClient) Feed(ctx context.Context, kind pet.FeedKind, amount int, proof pet.ProofProducer) (ports.MutationResult, error) {
	path := pathFeedFood
	if kind == pet.FeedSweets {
		path = pathFeedSweets
	}
	return c.mutate(ctx, "pet.feed_"+string(kind), path, amountQuery(amount), proof)
}

func (c *PetClient) UseMedicine(ctx context.Context, amount int, proof pet.ProofProducer) (ports.MutationResult, error) {
	return c.mutate(ctx, "pet.use_medicine", pathFeedVitamin, amountQuery(amount), proof)
}

func (c *PetClient) Clean(ctx context.Context, proof pet.ProofProducer) (ports.MutationResult, error) {
	return c.mutate(ctx, "pet.clean", pathClean, nil, proof)
}

func (c *PetClient) Resurrect(ctx context.Context, proof pet.ProofProducer) (ports.MutationResult, error) {
	return c.mutate(ctx, "pet.resurrect", pathResurrect, nil, proof)
}

func (c *PetClient) AdvanceTime(ctx context.Context, proof pet.ProofProducer) (ports.MutationResult, error) {
	return c.mutate(ctx, "pet.advance_time", pathTick, nil, proof)
}

func (c *PetClient) GetConfig(ctx context.Context) (ports.ServerConfig, error) {
	r, err := c.t.read(ctx, "pet.get_config", pathConfig)
	if err != nil {
		return ports.ServerConfig{}, err
	}
	if !gjson.ValidBytes(r.body) {
		return ports.ServerConfig{}, malformed("config body is not json", nil)
	}
	return ports.ServerConfig{
		ContractName: gjson.GetBytes(r.body, "contract_name").String(),
		Raw:          r.body,
	}, nil
}

func (c *PetClient) mutate(ctx context.Context, op, path string, query url.Values, proof pet.ProofProducer) (ports.MutationResult, error) {
	creds, err := pet.ProduceCredentials(proof)
	if err != nil {
		return ports.MutationResult{}, err
	}
	body, err := json.Marshal(creds)
	if err != nil {
		return ports.MutationResult{}, err
	}
	r, err := c.t.write(ctx, op, path, query, body)
	if err != nil {
		return ports.MutationResult{}, err
	}
	return decodeMutation(r.body)
}

func amountQuery(amount int) url.Values {
	return url.Values{"amount": {strconv.Itoa(pet.NormalizeAmount(amount))}}
}

// decodeMutation accepts the pet record, a {gotchi, tx_hash} envelope, or a
// bare transaction hash string.
func decodeMutation(body []byte) (ports.MutationResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ports.MutationResult{}, nil
	}
	if !gjson.ValidBytes(trimmed) {
		return ports.MutationResult{}, malformed("mutation body is not json", nil)
	}
	root := gjson.ParseBytes(trimmed)
	switch {
	case root.Type == gjson.Null:
		return ports.MutationResult{}, nil
	case root.Type == gjson.String:
		return ports.MutationResult{TxHash: root.String()}, nil
	case !root.IsObject():
		return ports.MutationResult{}, malformed("unexpected mutation body", nil)
	}

	txHash := root.Get("tx_hash").String()
	if gotchi := root.Get("gotchi"); gotchi.Exists() {
		if gotchi.Type == gjson.Null {
			return ports.MutationResult{TxHash: txHash}, nil
		}
		rec, err := decodeRecord([]byte(gotchi.Raw))
		if err != nil {
			return ports.MutationResult{}, err
		}
		return ports.MutationResult{Record: rec, TxHash: txHash}, nil
	}
	if root.Get("tx_hash").Exists() && !root.Get("name").Exists() {
		return ports.MutationResult{TxHash: txHash}, nil
	}
	rec, err := decodeRecord(trimmed)
	if err != nil {
		return ports.MutationResult{}, err
	}
	return ports.MutationResult{Record: rec}, nil
}

func decodeRecord(body []byte) (*pet.RawRecord, error) {
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return nil, malformed("pet record is not an object", nil)
	}
	var rec pet.RawRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, malformed("pet record", err)
	}
	return &rec, nil
}
