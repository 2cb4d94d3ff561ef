package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return configPath
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
telegram:
  token: "123:abc"
  allowlist:
    - -1001
    - 42
  broadcast_chat: -1001
spotify:
  client_id: "cid"
  client_secret: "secret"
chart:
  timeout: 5s
storage:
  sqlite_path: "/tmp/chartbot.db"
x:
  poll_interval: 2m
log_file: "/tmp/test.log"
language: fr
debug: true
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Telegram.Allowlist) != 2 {
		t.Errorf("Allowlist length = %d, want 2", len(cfg.Telegram.Allowlist))
	}
	if cfg.Telegram.Allowlist[0] != -1001 {
		t.Errorf("Allowlist[0] = %d, want %d", cfg.Telegram.Allowlist[0], -1001)
	}
	if cfg.Chart.Timeout != 5*time.Second {
		t.Errorf("Chart.Timeout = %v, want 5s", cfg.Chart.Timeout)
	}
	if cfg.X.PollInterval != 2*time.Minute {
		t.Errorf("X.PollInterval = %v, want 2m", cfg.X.PollInterval)
	}
	if cfg.LogFile != "/tmp/test.log" {
		t.Errorf("LogFile = %q, want %q", cfg.LogFile, "/tmp/test.log")
	}
	if cfg.Language != "fr" {
		t.Errorf("Language = %q, want %q", cfg.Language, "fr")
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}

	// Unset fields keep their defaults
	if cfg.Storage.LedgerDir != "ledger" {
		t.Errorf("Storage.LedgerDir = %q, want %q", cfg.Storage.LedgerDir, "ledger")
	}
	if cfg.Jobs.NumberOneAttempts != 5 {
		t.Errorf("Jobs.NumberOneAttempts = %d, want 5", cfg.Jobs.NumberOneAttempts)
	}
	if !cfg.Telegram.Enabled {
		t.Error("Telegram.Enabled = false, want true")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	configPath := writeConfig(t, `
telegram:
  token: "from-file"
spotify:
  client_id: "file-cid"
  client_secret: "file-secret"
`)
	t.Setenv("TELEGRAM_TOKEN", "from-env")
	t.Setenv("SPOTIFY_SECRET", "env-secret")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Telegram.Token != "from-env" {
		t.Errorf("Telegram.Token = %q, want %q", cfg.Telegram.Token, "from-env")
	}
	if cfg.Spotify.ClientSecret != "env-secret" {
		t.Errorf("Spotify.ClientSecret = %q, want %q", cfg.Spotify.ClientSecret, "env-secret")
	}
	if cfg.Spotify.ClientID != "file-cid" {
		t.Errorf("Spotify.ClientID = %q, want %q", cfg.Spotify.ClientID, "file-cid")
	}
}

func TestLoadMissingToken(t *testing.T) {
	configPath := writeConfig(t, `
spotify:
  client_id: "cid"
  client_secret: "secret"
`)
	t.Setenv("TELEGRAM_TOKEN", "")

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() should error when telegram is enabled without a token")
	}
	if !strings.Contains(err.Error(), "Token") {
		t.Errorf("Load() error = %v, want it to name Token", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() should error on a missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.Telegram.Token = "123:abc"
		cfg.Spotify = SpotifyConfig{ClientID: "cid", ClientSecret: "secret"}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with credentials", func(*Config) {}, false},
		{"no platform enabled", func(c *Config) { c.Telegram.Enabled = false }, true},
		{"x without keys", func(c *Config) { c.X.Enabled = true; c.X.UserID = "42" }, true},
		{"x complete", func(c *Config) {
			c.X = XConfig{
				Enabled: true, UserID: "42", PollInterval: time.Minute,
				APIKey: "k", APISecret: "s", AccessToken: "t", AccessSecret: "a",
			}
		}, false},
		{"x without interval", func(c *Config) {
			c.X = XConfig{
				Enabled: true, UserID: "42",
				APIKey: "k", APISecret: "s", AccessToken: "t", AccessSecret: "a",
			}
		}, true},
		{"missing spotify", func(c *Config) { c.Spotify = SpotifyConfig{} }, true},
		{"zero attempts", func(c *Config) { c.Jobs.NumberOneAttempts = 0 }, true},
		{"bad chart url", func(c *Config) { c.Chart.BaseURL = "not a url" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
