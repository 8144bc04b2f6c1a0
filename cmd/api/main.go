package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ngoledger/internal/adapter"
	"ngoledger/internal/gateway/razorpay"
	"ngoledger/internal/http/handlers"
	httpapi "ngoledger/internal/http/httpapi"
	"ngoledger/internal/infra"
	"ngoledger/internal/ledger"
	"ngoledger/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	repos, closeStore, err := adapter.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.Store).Msg("failed to open store")
	}
	defer closeStore()

	var gateway razorpay.Gateway
	if cfg.SandboxGateway() {
		logger.Warn().Msg("razorpay credentials missing, using local sandbox gateway")
		gateway = razorpay.NewSandbox(cfg.RazorpayKeySecret)
	} else {
		gateway, err = razorpay.NewClient(razorpay.Options{
			KeyID:     cfg.RazorpayKeyID,
			KeySecret: cfg.RazorpayKeySecret,
			BaseURL:   cfg.RazorpayBaseURL,
			Logger:    &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure razorpay")
		}
	}

	var recorder ledger.Recorder = ledger.NewHashChain(repos.Transactions, &logger)
	if cfg.LedgerRPCURL != "" {
		recorder, err = ledger.NewRPCRecorder(ledger.RPCOptions{URL: cfg.LedgerRPCURL, Account: cfg.LedgerAccount, Logger: &logger})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure ledger rpc")
		}
	}

	if cfg.Store == infra.StoreMemory {
		sum, err := seed.Run(ctx, repos, recorder, seed.Options{Logger: &logger})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to seed memory store")
		}
		logger.Info().Int("users", sum.Users).Int("ngos", sum.NGOs).Int("transactions", sum.Transactions).Msg("memory store seeded")
	}

	app := &handlers.App{
		Users:        repos.Users,
		NGOs:         repos.NGOs,
		Transactions: repos.Transactions,
		Orders:       repos.Orders,
		Gateway:      gateway,
		Ledger:       recorder,
		Currency:     cfg.PaymentCurrency,
		Logger:       &logger,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		LoginPerMinute: cfg.LoginRateLimit,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("store", cfg.Store).Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
