package receipts

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Chain is an in-memory append-only receipt log.
type Chain struct {
	mu       sync.RWMutex
	entries  []Receipt
	headHash string
}

func NewChain() *Chain {
	return &Chain{headHash: "genesis"}
}

func (c *Chain) Record(ctx context.Context, r Receipt) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.Seq = uint64(len(c.entries)) + 1
	r.PrevHash = c.headHash

	hash, err := computeHash(r)
	if err != nil {
		return err
	}
	r.Hash = hash

	c.entries = append(c.entries, r)
	c.headHash = hash
	return nil
}

// Head returns the current head hash.
func (c *Chain) Head() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headHash
}

// Len returns the number of recorded receipts.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries returns a copy of every receipt in order.
func (c *Chain) Entries() []Receipt {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Receipt, len(c.entries))
	copy(out, c.entries)
	return out
}

// Verify checks the integrity of the whole chain.
func (c *Chain) Verify() (bool, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	prevHash := "genesis"
	for i, r := range c.entries {
		if r.PrevHash != prevHash {
			return false, fmt.Sprintf("chain broken at entry %d: expected prev %s, got %s", i+1, prevHash, r.PrevHash)
		}
		expected, err := computeHash(r)
		if err != nil {
			return false, fmt.Sprintf("entry %d unhashable: %v", i+1, err)
		}
		if r.Hash != expected {
			return false, fmt.Sprintf("entry %d hash mismatch", i+1)
		}
		prevHash = r.Hash
	}
	return true, ""
}
