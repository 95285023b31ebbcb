package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AminKei/real-chees/internal/engine"
	"github.com/AminKei/real-chees/internal/game"
	"github.com/AminKei/real-chees/internal/session"
	yaml "gopkg.in/yaml.v3"
)

type AppConfig struct {
	HTTPAddr    string `yaml:"http_addr"`
	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`

	SessionTTL    time.Duration  `yaml:"-"`
	ComputerColor engine.Color   `yaml:"-"`
	ComputerDelay time.Duration  `yaml:"-"`
	EndPolicy     game.EndPolicy `yaml:"-"`

	NotifyURL   string `yaml:"notify_url"`
	NotifyToken string `yaml:"notify_token"`
	MessagesDir string `yaml:"messages_dir"`

	ShutdownTimeout time.Duration `yaml:"-"`
}

// fileConfig mirrors the optional CONFIG_FILE. Durations are plain numbers
// in the same units as their environment variables.
type fileConfig struct {
	AppConfig       `yaml:",inline"`
	SessionTTLSec   int    `yaml:"session_ttl"`
	ComputerColor   string `yaml:"computer_color"`
	ComputerDelayMS *int   `yaml:"computer_delay_ms"`
	EndPolicy       string `yaml:"end_policy"`
}

func defaults() *AppConfig {
	return &AppConfig{
		HTTPAddr:        ":8080",
		SessionTTL:      24 * time.Hour,
		ComputerColor:   engine.Black,
		ComputerDelay:   500 * time.Millisecond,
		EndPolicy:       game.CheckEndsGame,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds the configuration from CONFIG_FILE (optional YAML) and then the
// environment, which wins. Malformed optional values keep their defaults.
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.NotifyURL, "NOTIFY_URL")
	setString(&cfg.NotifyToken, "NOTIFY_TOKEN")
	setString(&cfg.MessagesDir, "MESSAGES_DIR")

	if n, ok := positiveInt("SESSION_TTL"); ok {
		cfg.SessionTTL = time.Duration(n) * time.Second
	}
	if v := strings.TrimSpace(os.Getenv("COMPUTER_COLOR")); v != "" {
		if c, ok := session.ParseComputer(v); ok {
			cfg.ComputerColor = c
		}
	}
	if v := strings.TrimSpace(os.Getenv("COMPUTER_DELAY_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ComputerDelay = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("END_POLICY")); v != "" {
		if p, err := game.ParsePolicy(v); err == nil {
			cfg.EndPolicy = p
		}
	}
	if n, ok := positiveInt("SHUTDOWN_TIMEOUT"); ok {
		cfg.ShutdownTimeout = time.Duration(n) * time.Second
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	return cfg, nil
}

func applyFile(cfg *AppConfig, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	fc := fileConfig{AppConfig: *cfg}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	*cfg = fc.AppConfig
	if fc.SessionTTLSec > 0 {
		cfg.SessionTTL = time.Duration(fc.SessionTTLSec) * time.Second
	}
	if c, ok := session.ParseComputer(fc.ComputerColor); ok && fc.ComputerColor != "" {
		cfg.ComputerColor = c
	}
	if fc.ComputerDelayMS != nil && *fc.ComputerDelayMS >= 0 {
		cfg.ComputerDelay = time.Duration(*fc.ComputerDelayMS) * time.Millisecond
	}
	if p, err := game.ParsePolicy(fc.EndPolicy); err == nil && fc.EndPolicy != "" {
		cfg.EndPolicy = p
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func positiveInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
