package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	Store              string
	DatabaseURL        string
	RazorpayKeyID      string
	RazorpayKeySecret  string
	RazorpayBaseURL    string
	PaymentCurrency    string
	LedgerRPCURL       string
	LedgerAccount      string
	CORSAllowedOrigins []string
	LoginRateLimit     int
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8000"),
		Store:              strings.ToLower(os.Getenv("STORE")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RazorpayKeyID:      os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:  os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:    getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		PaymentCurrency:    strings.ToUpper(getEnv("PAYMENT_CURRENCY", "INR")),
		LedgerRPCURL:       os.Getenv("LEDGER_RPC_URL"),
		LedgerAccount:      os.Getenv("LEDGER_ACCOUNT"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		LoginRateLimit:     getEnvInt("LOGIN_RATE_LIMIT_PER_MINUTE", 20),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.Store == "" {
		if cfg.DatabaseURL != "" {
			cfg.Store = StorePostgres
		} else {
			cfg.Store = StoreMemory
		}
	}
	switch cfg.Store {
	case StoreMemory:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE=postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported STORE %q", cfg.Store)
	}

	if !cfg.SandboxGateway() && (cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "") {
		return nil, fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
	}
	if cfg.LedgerRPCURL != "" && cfg.LedgerAccount == "" {
		return nil, fmt.Errorf("LEDGER_ACCOUNT is required when LEDGER_RPC_URL is set")
	}

	return cfg, nil
}

// SandboxGateway reports whether the local development gateway should be used
// instead of Razorpay.
func (c *Config) SandboxGateway() bool {
	return c.AppEnv == "development" && (c.RazorpayKeyID == "" || c.RazorpayKeySecret == "")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
