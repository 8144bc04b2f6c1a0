package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"ngoledger/internal/domain"
	"ngoledger/internal/infra"
)

// HashChain is a local append-only SHA-256 chain. Each hash commits to the
// previous one, so rewriting an entry invalidates every later hash. With a
// source the head is re-read on every Record, so an entry that was hashed but
// never stored leaves no gap; callers serialize Record with the matching
// append.
type HashChain struct {
	mu     sync.Mutex
	source HashSource
	prev   string
	logger *infra.Logger
	now    func() time.Time
	nonce  func() string
}

// NewHashChain builds a chain that continues from the latest hash in source.
// A nil source keeps the head in memory.
func NewHashChain(source HashSource, logger *infra.Logger) *HashChain {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &HashChain{
		source: source,
		logger: logger,
		now:    time.Now,
		nonce:  func() string { return uuid.NewString() },
	}
}

// Record links entry onto the chain and returns the new head.
func (c *HashChain) Record(ctx context.Context, entry Entry) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source != nil {
		head, err := c.source.LatestHash(ctx)
		if err != nil {
			return "", fmt.Errorf("ledger: load chain head: %w: %v", domain.ErrLedgerFailure, err)
		}
		c.prev = head
	}
	at := entry.At
	if at.IsZero() {
		at = c.now()
	}
	hash := Link(c.prev, entry, at, c.nonce())
	c.prev = hash
	c.logger.Debug().
		Int64("ngo_id", entry.NGOID).
		Str("type", string(entry.Type)).
		Str("hash", hash).
		Msg("ledger: chained entry")
	return hash, nil
}

// Head returns the head produced by the last Record.
func (c *HashChain) Head() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prev
}

// Link computes the hash of entry placed after prev.
func Link(prev string, entry Entry, at time.Time, nonce string) string {
	h := sha256.New()
	for _, part := range []string{
		prev,
		strconv.FormatInt(entry.NGOID, 10),
		string(entry.Type),
		strconv.FormatInt(entry.AmountMinor, 10),
		entry.Reference,
		at.UTC().Format(time.RFC3339Nano),
		nonce,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
