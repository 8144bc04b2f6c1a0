package ledger

import (
	"context"
	"regexp"
	"time"

	"ngoledger/internal/domain"
)

// Entry is the ledger-relevant part of a transaction about to be persisted.
type Entry struct {
	NGOID       int64
	Type        domain.TransactionType
	AmountMinor int64
	// Reference ties the entry to its origin: the gateway order for
	// donations, the proof URL for expenses.
	Reference string
	At        time.Time
}

// Recorder writes an entry to the integrity ledger and returns its hash.
type Recorder interface {
	Record(ctx context.Context, entry Entry) (string, error)
}

// HashSource yields the most recent recorded hash, "" for an empty ledger.
type HashSource interface {
	LatestHash(ctx context.Context) (string, error)
}

var hashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// ValidHash reports whether h has the 0x-prefixed 32-byte hex form.
func ValidHash(h string) bool {
	return hashPattern.MatchString(h)
}
