// Package receipts records the outcome of every withdrawal attempt as a
// hash-chained, append-only log. Each entry is hashed over its
// JCS-canonicalized JSON form and chained to its predecessor, so a host can
// later prove the sequence of authorization decisions was not rewritten.
package receipts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Outcome of one attempt.
const (
	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
)

// Receipt is one recorded authorization decision.
type Receipt struct {
	ID       string `json:"id"`
	Op       string `json:"op"`
	Outcome  string `json:"outcome"`
	Reason   string `json:"reason,omitempty"`
	Asset    string `json:"asset,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Amount   string `json:"amount,omitempty"`
	At       int64  `json:"at"`
	Seq      uint64 `json:"seq"`
	PrevHash string `json:"prev_hash"`
	Hash     string `json:"hash"`
}

// Recorder is the sink the engine hands receipts to. Implementations fill
// Seq, PrevHash and Hash.
type Recorder interface {
	Record(ctx context.Context, r Receipt) error
}

// computeHash hashes the receipt's canonical JSON form, excluding the Hash
// field itself.
func computeHash(r Receipt) (string, error) {
	r.Hash = ""
	raw, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal receipt: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize receipt: %w", err)
	}
	h := sha256.Sum256(canonical)
	return "sha256:" + hex.EncodeToString(h[:]), nil
}
