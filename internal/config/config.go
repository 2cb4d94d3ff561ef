package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram-specific settings
type TelegramConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Token         string  `yaml:"token" validate:"required_if=Enabled true"` // Bot token from @BotFather
	Allowlist     []int64 `yaml:"allowlist"`                                 // chat IDs the bot answers in, empty means all
	BroadcastChat int64   `yaml:"broadcast_chat"`                            // chat that receives scheduled posts
}

// XConfig holds X (Twitter) settings
type XConfig struct {
	Enabled      bool          `yaml:"enabled"`
	UserID       string        `yaml:"user_id" validate:"required_if=Enabled true"`
	BaseURL      string        `yaml:"base_url" validate:"omitempty,url"` // API host, endpoint paths add /2
	PollInterval time.Duration `yaml:"poll_interval"`
	Lookback     time.Duration `yaml:"lookback"`
	APIKey       string        `yaml:"api_key" validate:"required_if=Enabled true"`
	APISecret    string        `yaml:"api_secret" validate:"required_if=Enabled true"`
	AccessToken  string        `yaml:"access_token" validate:"required_if=Enabled true"`
	AccessSecret string        `yaml:"access_secret" validate:"required_if=Enabled true"`
}

// SpotifyConfig holds the client-credentials pair for the catalog
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id" validate:"required"`
	ClientSecret string `yaml:"client_secret" validate:"required"`
}

// ChartConfig points at the chart archive
type ChartConfig struct {
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout"`
}

// StorageConfig holds on-disk paths
type StorageConfig struct {
	SQLitePath      string        `yaml:"sqlite_path" validate:"required"`
	LedgerDir       string        `yaml:"ledger_dir" validate:"required"`
	LedgerRetention time.Duration `yaml:"ledger_retention"`
}

// HTTPConfig holds the ops server settings. An empty address disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// JobsConfig tunes the scheduled posts
type JobsConfig struct {
	NumberOneAttempts int `yaml:"number_one_attempts" validate:"min=1,max=50"`
}

// Config holds the chartbot configuration
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	X        XConfig        `yaml:"x"`
	Spotify  SpotifyConfig  `yaml:"spotify"`
	Chart    ChartConfig    `yaml:"chart"`
	Storage  StorageConfig  `yaml:"storage"`
	HTTP     HTTPConfig     `yaml:"http"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Language string         `yaml:"language" validate:"omitempty,bcp47_language_tag"`
	LogFile  string         `yaml:"log_file"` // path to log file
	Debug    bool           `yaml:"debug"`    // enable debug logging
}

// Secrets are read from the environment and override the file
type Secrets struct {
	TelegramToken string `env:"TELEGRAM_TOKEN"`
	SpotifyID     string `env:"SPOTIFY_CID"`
	SpotifySecret string `env:"SPOTIFY_SECRET"`
	XAPIKey       string `env:"TWITTER_API_KEY"`
	XAPISecret    string `env:"TWITTER_API_SECRET"`
	XAccessToken  string `env:"TWITTER_ACCESS_TOKEN"`
	XAccessSecret string `env:"TWITTER_ACCESS_SECRET"`
	XUserID       string `env:"TWITTER_USER_ID"`
	LogFile       string `env:"CHARTBOT_LOG_FILE"`
}

// Default returns the configuration used for unset fields
func Default() Config {
	return Config{
		Telegram: TelegramConfig{Enabled: true},
		X: XConfig{
			PollInterval: time.Minute,
			Lookback:     time.Hour,
		},
		Chart: ChartConfig{Timeout: 15 * time.Second},
		Storage: StorageConfig{
			SQLitePath:      "chartbot.db",
			LedgerDir:       "ledger",
			LedgerRetention: 30 * 24 * time.Hour,
		},
		Jobs:     JobsConfig{NumberOneAttempts: 5},
		Language: "en",
	}
}

// Load reads the config file from the given path (if any), loads a .env file
// from the working directory and overlays secrets from the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// A missing .env is fine; variables may come from the process environment
	_ = godotenv.Load()

	var secrets Secrets
	if _, err := env.UnmarshalFromEnviron(&secrets); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	cfg.Apply(secrets)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Apply overrides file values with the non-empty secrets
func (c *Config) Apply(s Secrets) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Telegram.Token, s.TelegramToken)
	set(&c.Spotify.ClientID, s.SpotifyID)
	set(&c.Spotify.ClientSecret, s.SpotifySecret)
	set(&c.X.APIKey, s.XAPIKey)
	set(&c.X.APISecret, s.XAPISecret)
	set(&c.X.AccessToken, s.XAccessToken)
	set(&c.X.AccessSecret, s.XAccessSecret)
	set(&c.X.UserID, s.XUserID)
	set(&c.LogFile, s.LogFile)
}

// Validate checks the struct tags and the cross-field rules
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !c.Telegram.Enabled && !c.X.Enabled {
		return fmt.Errorf("invalid config: at least one of telegram or x must be enabled")
	}
	if c.X.Enabled && c.X.PollInterval <= 0 {
		return fmt.Errorf("invalid config: x.poll_interval must be positive")
	}
	return nil
}
