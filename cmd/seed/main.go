package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ngoledger/internal/adapter"
	"ngoledger/internal/infra"
	"ngoledger/internal/ledger"
	"ngoledger/internal/seed"
)

func main() {
	_ = godotenv.Load()

	var (
		dbURLFlag string
		countFlag int
		seedFlag  int64
	)
	flag.StringVar(&dbURLFlag, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	flag.IntVar(&countFlag, "transactions", 20, "number of random ledger entries to create")
	flag.Int64Var(&seedFlag, "seed", time.Now().UnixNano(), "random seed for generated transactions")
	flag.Parse()

	cfg := &infra.Config{DatabaseURL: strings.TrimSpace(dbURLFlag), Store: infra.StorePostgres}
	if cfg.DatabaseURL == "" {
		exitWithError(errors.New("DATABASE_URL or -database-url is required"))
	}
	if countFlag < 0 {
		exitWithError(errors.New("-transactions must not be negative"))
	}

	logger := infra.NewLogger(os.Getenv("APP_ENV")).With().Str("cmd", "seed").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repos, closeStore, err := adapter.Open(ctx, cfg, logger)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer closeStore()

	var recorder ledger.Recorder = ledger.NewHashChain(repos.Transactions, &logger)
	if rpcURL := os.Getenv("LEDGER_RPC_URL"); rpcURL != "" {
		recorder, err = ledger.NewRPCRecorder(ledger.RPCOptions{URL: rpcURL, Account: os.Getenv("LEDGER_ACCOUNT"), Logger: &logger})
		if err != nil {
			exitWithError(err)
		}
	}

	opts := seed.Options{Transactions: countFlag, Rand: rand.New(rand.NewSource(seedFlag)), Logger: &logger}
	if countFlag == 0 {
		opts.Transactions = -1
	}
	sum, err := seed.Run(ctx, repos, recorder, opts)
	if err != nil {
		exitWithError(err)
	}
	fmt.Printf("seeded %d users, %d NGOs, %d transactions\n", sum.Users, sum.NGOs, sum.Transactions)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
