package remote

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"hyligotchi/internal/app/ports"
)

// IndexerClient reads item balances from the ledger indexer.
type IndexerClient struct {
	t transport
}

var _ ports.BalanceIndexer = (*IndexerClient)(nil)

func NewIndexerClient(doer Doer, baseURL string, opts Options) *IndexerClient {
	return &IndexerClient{t: newTransport(doer, baseURL, "", opts)}
}

func (c *IndexerClient) Balance(ctx context.Context, contract, identity string) (int, error) {
	path := "/v1/indexer/contract/" + url.PathEscape(contract) + "/balance/" + url.PathEscape(identity)
	r, err := c.t.read(ctx, "indexer.balance", path)
	if err != nil {
		return 0, err
	}
	return parseBalance(r.body)
}

// parseBalance accepts the balance as a string-encoded or plain number.
func parseBalance(body []byte) (int, error) {
	if !gjson.ValidBytes(body) {
		return 0, malformed("balance body is not json", nil)
	}
	field := gjson.GetBytes(body, "balance")
	var n float64
	switch field.Type {
	case gjson.Number:
		n = field.Num
	case gjson.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(field.Str), 64)
		if err != nil {
			return 0, malformed("balance value", err)
		}
		n = v
	default:
		return 0, malformed("balance field missing", nil)
	}
	if math.IsNaN(n) || n <= 0 {
		return 0, nil
	}
	if n >= math.MaxInt32 {
		return math.MaxInt32, nil
	}
	return int(n), nil
}
