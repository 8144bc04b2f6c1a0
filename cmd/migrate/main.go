package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"ngoledger/internal/db"
	"ngoledger/internal/infra"
)

func main() {
	_ = godotenv.Load()

	var (
		dbURLFlag string
		printFlag bool
	)
	flag.StringVar(&dbURLFlag, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	flag.BoolVar(&printFlag, "print", false, "print the schema instead of applying it")
	flag.Parse()

	if printFlag {
		fmt.Print(db.Schema())
		return
	}

	dbURL := strings.TrimSpace(dbURLFlag)
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL or -database-url is required"))
	}

	logger := infra.NewLogger(os.Getenv("APP_ENV")).With().Str("cmd", "migrate").Logger()

	conn, err := sql.Open("postgres", dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("open database: %w", err))
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		exitWithError(fmt.Errorf("ping database: %w", err))
	}
	if err := db.Migrate(ctx, conn); err != nil {
		exitWithError(err)
	}
	logger.Info().Int("statements", len(db.Statements())).Msg("schema applied")
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
