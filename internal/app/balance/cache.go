package balance

import (
	"context"
	"strings"
	"sync"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"golang.org/x/sync/errgroup"

	"hyligotchi/internal/app/ports"
	"hyligotchi/internal/domain/pet"
)

// Cache holds the last fetched item counts for one identity. It is a UX
// smoothing layer; the indexer stays the system of record.
type Cache struct {
	name    string
	indexer ports.BalanceIndexer
	items   []pet.ItemKey

	mu       sync.RWMutex
	balances map[pet.ItemKey]int
}

func New(name string, indexer ports.BalanceIndexer, items ...pet.ItemKey) *Cache {
	return &Cache{
		name:     name,
		indexer:  indexer,
		items:    append([]pet.ItemKey(nil), items...),
		balances: map[pet.ItemKey]int{},
	}
}

func NewFoodCache(indexer ports.BalanceIndexer) *Cache {
	return New("food", indexer, pet.ItemOranj, pet.ItemHyllar)
}

func NewMedicineCache(indexer ports.BalanceIndexer) *Cache {
	return New("medicine", indexer, pet.ItemVitamin)
}

func (c *Cache) Name() string {
	return c.name
}

func (c *Cache) Tracks(key pet.ItemKey) bool {
	for _, item := range c.items {
		if item == key {
			return true
		}
	}
	return false
}

// Fetch replaces the whole set. A key whose lookup fails reads as zero.
func (c *Cache) Fetch(ctx context.Context, identity string) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return ports.ErrMissingIdentity
	}

	counts := make([]int, len(c.items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range c.items {
		g.Go(func() error {
			n, err := c.indexer.Balance(gctx, item.IndexerContract(), identity)
			if err != nil {
				hlog.CtxWarnf(ctx, "balance %s: fetch %s for %s failed, defaulting to 0: %v", c.name, item, identity, err)
				return nil
			}
			if n < 0 {
				n = 0
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	next := make(map[pet.ItemKey]int, len(c.items))
	for i, item := range c.items {
		next[item] = counts[i]
	}
	c.mu.Lock()
	c.balances = next
	c.mu.Unlock()
	return nil
}

func (c *Cache) Get(key pet.ItemKey) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.balances[key]
}

func (c *Cache) HasBalance(key pet.ItemKey, amount int) bool {
	return c.Get(key) >= pet.NormalizeAmount(amount)
}

// OptimisticDecrement lowers a key by amount, never below zero, and returns
// the value it held before.
func (c *Cache) OptimisticDecrement(key pet.ItemKey, amount int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	prior := c.balances[key]
	next := prior - pet.NormalizeAmount(amount)
	if next < 0 {
		next = 0
	}
	c.balances[key] = next
	return prior
}

func (c *Cache) Rollback(key pet.ItemKey, prior int) {
	if prior < 0 {
		prior = 0
	}
	c.mu.Lock()
	c.balances[key] = prior
	c.mu.Unlock()
}

// RollbackIfUnchanged restores prior only while the key still holds the
// decremented value. A fetch that landed in between wins.
func (c *Cache) RollbackIfUnchanged(key pet.ItemKey, decremented, prior int) bool {
	if prior < 0 {
		prior = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balances[key] != decremented {
		return false
	}
	c.balances[key] = prior
	return true
}

func (c *Cache) Balances() map[pet.ItemKey]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[pet.ItemKey]int, len(c.balances))
	for k, v := range c.balances {
		out[k] = v
	}
	return out
}
