package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "unknown store",
			mutate: func(cfg *Config) {
				cfg.Store = "redis"
			},
			wantErr: "store",
		},
		{
			name: "empty targets file",
			mutate: func(cfg *Config) {
				cfg.TargetsFile = ""
			},
			wantErr: "targets",
		},
		{
			name: "zero retries",
			mutate: func(cfg *Config) {
				cfg.MaxRetries = 0
			},
			wantErr: "max retries",
		},
		{
			name: "retry base too small",
			mutate: func(cfg *Config) {
				cfg.RetryBase = 1.0
			},
			wantErr: "retry base",
		},
		{
			name: "inverted jitter range",
			mutate: func(cfg *Config) {
				cfg.RetryJitterLow = 2.0
				cfg.RetryJitterHigh = 0.5
			},
			wantErr: "jitter",
		},
		{
			name: "inverted page delay range",
			mutate: func(cfg *Config) {
				cfg.PageDelayMin = 5 * time.Second
				cfg.PageDelayMax = 1 * time.Second
			},
			wantErr: "page delay",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "zero max pages",
			mutate: func(cfg *Config) {
				cfg.DefaultMaxPages = 0
			},
			wantErr: "max pages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadTargets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.json")
	content := `[
		{"platform": "shopmart", "name": "laptops", "url": "http://shopmart.test/laptops"},
		{"platform": "shopmart", "name": "phones", "url": "http://shopmart.test/phones"}
	]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write targets: %v", err)
	}

	targets, err := LoadTargets(path)
	if err != nil {
		t.Fatalf("load targets: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("targets=%d, want 2", len(targets))
	}
	if targets[0].Platform != "shopmart" || targets[1].Name != "phones" {
		t.Fatalf("unexpected targets: %+v", targets)
	}
}

func TestLoadTargetsRejectsMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.json")
	if err := os.WriteFile(path, []byte(`[{"name": "laptops", "url": "http://x.test"}]`), 0o644); err != nil {
		t.Fatalf("write targets: %v", err)
	}

	if _, err := LoadTargets(path); err == nil || !strings.Contains(err.Error(), "platform") {
		t.Fatalf("expected platform error, got %v", err)
	}
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("TEST_BUDGET", "90s")
	d, ok, err := EnvDuration("TEST_BUDGET")
	if err != nil || !ok {
		t.Fatalf("EnvDuration: ok=%v err=%v", ok, err)
	}
	if d != 90*time.Second {
		t.Fatalf("duration=%v, want 90s", d)
	}

	if _, ok, _ := EnvDuration("TEST_BUDGET_UNSET"); ok {
		t.Fatalf("unset variable should not report ok")
	}
}
