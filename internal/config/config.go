// Package config holds the ngoctl profile: a YAML file with environment
// overrides on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		URL            string `yaml:"url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"api"`
	Session struct {
		Path string `yaml:"path"`
	} `yaml:"session"`
	Imgur struct {
		ClientID string `yaml:"client_id"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"imgur"`
	// Images is a local image directory published at PublicURL, used when
	// no Imgur client id is set.
	Images struct {
		Dir       string `yaml:"dir"`
		PublicURL string `yaml:"public_url"`
	} `yaml:"images"`
	Checkout struct {
		Addr      string `yaml:"addr"`
		ScriptURL string `yaml:"script_url"`
		// TimeoutMinutes bounds how long a donation waits for the widget.
		TimeoutMinutes int `yaml:"timeout_minutes"`
	} `yaml:"checkout"`
	Currency string `yaml:"currency"`
}

// Dir is the profile directory under home.
func Dir(home string) string {
	return filepath.Join(home, ".ngoledger")
}

// DefaultPath is the profile file under home.
func DefaultPath(home string) string {
	return filepath.Join(Dir(home), "config.yaml")
}

func Default(home string) Config {
	cfg := Config{}
	cfg.API.URL = "http://localhost:8000/api"
	cfg.API.TimeoutSeconds = 30
	cfg.Session.Path = filepath.Join(Dir(home), "session.db")
	cfg.Imgur.ClientID = ""
	cfg.Imgur.BaseURL = "https://api.imgur.com/3"
	cfg.Checkout.Addr = "127.0.0.1:0"
	cfg.Checkout.ScriptURL = "https://checkout.razorpay.com/v1/checkout.js"
	cfg.Checkout.TimeoutMinutes = 15
	cfg.Currency = "INR"
	return cfg
}

// Load reads path over the defaults. A missing file is not an error. The
// .env file and NGOLEDGER_* variables override file values.
func Load(path, home string) (Config, error) {
	cfg := Default(home)
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	_ = godotenv.Load(".env", ".env.local")
	cfg.API.URL = getenv("NGOLEDGER_API_URL", cfg.API.URL)
	cfg.Imgur.ClientID = getenv("NGOLEDGER_IMGUR_CLIENT_ID", cfg.Imgur.ClientID)
	cfg.Session.Path = getenv("NGOLEDGER_SESSION_PATH", cfg.Session.Path)
	return cfg, nil
}

// Write stores cfg at path, creating the directory.
func Write(path string, cfg Config) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func (c Config) APITimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c Config) CheckoutTimeout() time.Duration {
	if c.Checkout.TimeoutMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.Checkout.TimeoutMinutes) * time.Minute
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
