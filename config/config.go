// Package config holds runtime configuration for the catalog scraper.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/rajtiwarikmw/aethyrtech/models"
)

// Config holds engine configuration.
type Config struct {
	// Store selects the catalog backend: postgres or memory.
	Store string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	TargetsFile string

	MaxRunDuration  time.Duration
	Timeout         time.Duration
	MaxRetries      int
	RetryBase       float64
	RetryJitterLow  float64
	RetryJitterHigh float64
	RetryBackoffMax time.Duration

	MinContentBytes int
	RequestDelay    time.Duration
	RequestJitter   time.Duration
	PageDelayMin    time.Duration
	PageDelayMax    time.Duration

	DefaultMaxPages      int
	DefaultMaxConsErrors int
	DedupeMaxSize        int

	MetricsAddr string
	ReportURL   string
	ChromeBin   string
	Verbose     bool
}

// DefaultConfig returns conservative defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: "postgres",

		PostgresHost:     "localhost",
		PostgresPort:     "5432",
		PostgresUser:     "catalog",
		PostgresPassword: "catalog",
		PostgresDB:       "catalog_db",
		PostgresSSLMode:  "disable",

		TargetsFile: "targets.json",

		MaxRunDuration:  30 * time.Minute,
		Timeout:         20 * time.Second,
		MaxRetries:      3,
		RetryBase:       2.0,
		RetryJitterLow:  0.5,
		RetryJitterHigh: 1.5,
		RetryBackoffMax: 60 * time.Second,

		MinContentBytes: 512,
		RequestDelay:    500 * time.Millisecond,
		RequestJitter:   1500 * time.Millisecond,
		PageDelayMin:    1 * time.Second,
		PageDelayMax:    4 * time.Second,

		DefaultMaxPages:      50,
		DefaultMaxConsErrors: 3,
		DedupeMaxSize:        100_000,

		MetricsAddr: "",
		ReportURL:   "",
		ChromeBin:   "",
		Verbose:     false,
	}
}

// Load reads an optional .env file, then applies environment overrides on
// top of the defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using system env vars")
	}

	cfg := DefaultConfig()
	if v, ok := EnvString("CATALOG_STORE"); ok {
		cfg.Store = v
	}
	if v, ok := EnvString("POSTGRES_HOST"); ok {
		cfg.PostgresHost = v
	}
	if v, ok := EnvString("POSTGRES_PORT"); ok {
		cfg.PostgresPort = v
	}
	if v, ok := EnvString("POSTGRES_USER"); ok {
		cfg.PostgresUser = v
	}
	if v, ok := EnvString("POSTGRES_PASSWORD"); ok {
		cfg.PostgresPassword = v
	}
	if v, ok := EnvString("POSTGRES_DB"); ok {
		cfg.PostgresDB = v
	}
	if v, ok := EnvString("POSTGRES_SSLMODE"); ok {
		cfg.PostgresSSLMode = v
	}
	if v, ok := EnvString("CATALOG_TARGETS"); ok {
		cfg.TargetsFile = v
	}
	if v, ok, err := EnvDuration("CATALOG_RUN_BUDGET"); err == nil && ok {
		cfg.MaxRunDuration = v
	}
	if v, ok, err := EnvInt("CATALOG_MAX_RETRIES"); err == nil && ok {
		cfg.MaxRetries = v
	}
	if v, ok := EnvString("CATALOG_METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := EnvString("CATALOG_REPORT_URL"); ok {
		cfg.ReportURL = v
	}
	if v, ok := EnvString("CHROME_BIN"); ok {
		cfg.ChromeBin = v
	}
	return cfg
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.Store != "postgres" && c.Store != "memory" {
		return fmt.Errorf("store must be postgres or memory")
	}
	if c.TargetsFile == "" {
		return fmt.Errorf("targets file cannot be empty")
	}
	if c.MaxRunDuration < 0 {
		return fmt.Errorf("run budget cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max retries must be positive")
	}
	if c.RetryBase <= 1 {
		return fmt.Errorf("retry base must be greater than 1")
	}
	if c.RetryJitterLow <= 0 || c.RetryJitterHigh < c.RetryJitterLow {
		return fmt.Errorf("retry jitter range [%v, %v] is invalid", c.RetryJitterLow, c.RetryJitterHigh)
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.MinContentBytes < 0 {
		return fmt.Errorf("min content bytes cannot be negative")
	}
	if c.RequestDelay < 0 || c.RequestJitter < 0 {
		return fmt.Errorf("request delay values cannot be negative")
	}
	if c.PageDelayMin < 0 || c.PageDelayMax < c.PageDelayMin {
		return fmt.Errorf("page delay range [%v, %v] is invalid", c.PageDelayMin, c.PageDelayMax)
	}
	if c.DefaultMaxPages <= 0 {
		return fmt.Errorf("default max pages must be positive")
	}
	if c.DefaultMaxConsErrors <= 0 {
		return fmt.Errorf("default consecutive error limit must be positive")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}
	return nil
}

// LoadTargets reads the JSON targets file listing category URLs per platform.
func LoadTargets(path string) ([]models.CategoryTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}

	var targets []models.CategoryTarget
	if err := json.Unmarshal(data, &targets); err != nil {
		return nil, fmt.Errorf("parse targets file: %w", err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("targets file %q is empty", path)
	}
	for i, t := range targets {
		if t.Platform == "" {
			return nil, fmt.Errorf("target %d: platform cannot be empty", i)
		}
		if t.URL == "" {
			return nil, fmt.Errorf("target %d: url cannot be empty", i)
		}
	}
	return targets, nil
}
