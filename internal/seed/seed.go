// Package seed loads the demo dataset: donors, NGO administrators, NGOs and
// a batch of random ledger entries.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"golang.org/x/crypto/bcrypt"

	"ngoledger/internal/adapter"
	"ngoledger/internal/domain"
	"ngoledger/internal/infra"
	"ngoledger/internal/ledger"
)

// DefaultPassword is shared by every seeded account.
const DefaultPassword = "password123"

var usernames = []string{"john_doe", "jane_doe", "ngo_admin_1", "ngo_admin_2", "ngo_admin_3"}

var ngos = []struct {
	name, description, certificate, logo, admin string
}{
	{"Help the Earth", "Environmental NGO", "https://example.com/certificates/cert123", "https://example.com/logos/help-the-earth.png", "ngo_admin_1"},
	{"Food for All", "Hunger relief NGO", "https://example.com/certificates/cert456", "https://example.com/logos/food-for-all.png", "ngo_admin_2"},
	{"Healthcare for Everyone", "Healthcare support NGO", "https://example.com/certificates/cert789", "https://example.com/logos/healthcare-for-everyone.png", "ngo_admin_3"},
	{"Education First", "Educational support NGO", "https://example.com/certificates/cert101", "https://example.com/logos/education-first.png", "ngo_admin_1"},
	{"Shelter for All", "Homeless support NGO", "https://example.com/certificates/cert112", "https://example.com/logos/shelter-for-all.png", "ngo_admin_2"},
}

// Options tunes a seed run.
type Options struct {
	// Transactions is the number of random entries; zero means 20 and a
	// negative value skips them.
	Transactions int
	Rand         *rand.Rand
	Logger       *infra.Logger
	// HashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
	HashCost int
}

// Summary counts what a run created.
type Summary struct {
	Users        int
	NGOs         int
	Transactions int
}

// Run seeds repos. Every step skips what already exists, so running twice
// is harmless.
func Run(ctx context.Context, repos *adapter.Repositories, recorder ledger.Recorder, opts Options) (Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if opts.Transactions == 0 {
		opts.Transactions = 20
	}
	cost := opts.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	var sum Summary

	users := make(map[string]*domain.User, len(usernames))
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return sum, fmt.Errorf("seed: hash password: %w", err)
	}
	for _, name := range usernames {
		u, err := repos.Users.GetByUsername(ctx, name)
		if errors.Is(err, domain.ErrNotFound) {
			u = &domain.User{Username: name, PasswordHash: string(hash)}
			if err = repos.Users.Create(ctx, u); err == nil {
				sum.Users++
				logger.Info().Str("username", name).Msg("seed: created user")
			}
		}
		if err != nil {
			return sum, fmt.Errorf("seed: user %s: %w", name, err)
		}
		users[name] = u
	}

	existing, err := repos.NGOs.List(ctx)
	if err != nil {
		return sum, fmt.Errorf("seed: list ngos: %w", err)
	}
	if len(existing) == 0 {
		for _, n := range ngos {
			ngo := domain.NGO{
				Name:           n.name,
				Description:    n.description,
				CertificateURL: n.certificate,
				LogoURL:        n.logo,
				AdminID:        users[n.admin].ID,
			}
			if err := repos.NGOs.Create(ctx, &ngo); err != nil {
				return sum, fmt.Errorf("seed: ngo %s: %w", n.name, err)
			}
			existing = append(existing, ngo)
			sum.NGOs++
			logger.Info().Str("ngo", ngo.Name).Int64("ngo_id", ngo.ID).Msg("seed: created ngo")
		}
	}

	head, err := repos.Transactions.LatestHash(ctx)
	if err != nil {
		return sum, fmt.Errorf("seed: ledger head: %w", err)
	}
	if head != "" {
		logger.Info().Msg("seed: transactions already seeded")
		return sum, nil
	}
	donors := []*domain.User{users["john_doe"], users["jane_doe"]}
	for i := 0; i < opts.Transactions; i++ {
		ngo := existing[rng.Intn(len(existing))]
		donor := donors[rng.Intn(len(donors))]
		tx := &domain.Transaction{
			NGOID:       ngo.ID,
			AmountMinor: int64(50+rng.Intn(1951)) * 100,
			UserID:      &donor.ID,
			Status:      domain.TransactionCompleted,
		}
		reference := fmt.Sprintf("seed-%d", i)
		if rng.Intn(2) == 0 {
			tx.Type = domain.TransactionDonation
			tx.Description = "Donation"
		} else {
			tx.Type = domain.TransactionExpense
			tx.Description = "Expense for services"
			tx.ProofURL = fmt.Sprintf("https://example.com/receipts/%d", i+1)
			tx.UserID = &ngo.AdminID
			reference = tx.ProofURL
		}
		hash, err := recorder.Record(ctx, ledger.Entry{NGOID: tx.NGOID, Type: tx.Type, AmountMinor: tx.AmountMinor, Reference: reference})
		if err != nil {
			logger.Warn().Err(err).Int("index", i).Msg("seed: ledger record failed, skipping")
			continue
		}
		tx.BlockchainHash = hash
		if err := repos.Transactions.Append(ctx, tx); err != nil {
			return sum, fmt.Errorf("seed: transaction %d: %w", i, err)
		}
		sum.Transactions++
	}
	logger.Info().Int("count", sum.Transactions).Msg("seed: created transactions")
	return sum, nil
}
