// Package config loads alifbata configuration from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Default service configuration.
const (
	DefaultAddr         = ":8080"
	DefaultQuranBaseURL = "https://equran.id/api/v2"
	DefaultSampleRate   = 24000
)

// ErrNoCredential is returned when neither an API key nor ADC is configured.
var ErrNoCredential = errors.New("config: GEMINI_API_KEY or GOOGLE_APPLICATION_CREDENTIALS required")

// Config is the full service configuration.
type Config struct {
	Addr     string `env:"ALIFBATA_ADDR, default=:8080"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Gemini GeminiConfig
	Retry  RetryConfig
	Quran  QuranConfig

	SessionTTL time.Duration `env:"SESSION_TTL, default=2h"`
}

// GeminiConfig configures the content-generation client.
type GeminiConfig struct {
	APIKey          string        `env:"GEMINI_API_KEY"`
	CredentialsFile string        `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	BaseURL         string        `env:"GEMINI_BASE_URL, default=https://generativelanguage.googleapis.com/v1beta"`
	TextModel       string        `env:"GEMINI_TEXT_MODEL, default=gemini-3-flash-preview"`
	ImageModel      string        `env:"GEMINI_IMAGE_MODEL, default=gemini-2.5-flash-image"`
	SpeechModel     string        `env:"GEMINI_SPEECH_MODEL, default=gemini-2.5-flash-preview-tts"`
	Voice           string        `env:"GEMINI_VOICE, default=Kore"`
	Timeout         time.Duration `env:"GEMINI_TIMEOUT, default=60s"`
}

// UseADC reports whether application default credentials should be used.
func (g GeminiConfig) UseADC() bool {
	return g.APIKey == "" && g.CredentialsFile != ""
}

// RetryConfig is the retry policy applied to outbound API calls.
type RetryConfig struct {
	MaxRetries     int           `env:"RETRY_MAX, default=3"`
	InitialDelay   time.Duration `env:"RETRY_INITIAL_DELAY, default=1s"`
	MaxDelay       time.Duration `env:"RETRY_MAX_DELAY, default=30s"`
	AttemptTimeout time.Duration `env:"RETRY_ATTEMPT_TIMEOUT, default=45s"`
}

// QuranConfig configures the Quran REST client.
type QuranConfig struct {
	BaseURL string        `env:"QURAN_BASE_URL, default=https://equran.id/api/v2"`
	Timeout time.Duration `env:"QURAN_TIMEOUT, default=15s"`
}

// LoadEnv loads a .env file into the process environment if present.
// A missing file is reported with an error satisfying os.IsNotExist.
func LoadEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from a map, for tests and tooling.
func LoadFrom(ctx context.Context, env map[string]string) (*Config, error) {
	return load(ctx, envconfig.MapLookuper(env))
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that required configuration is present and sane.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" && c.Gemini.CredentialsFile == "" {
		return ErrNoCredential
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("config: RETRY_MAX must be >= 0, got %d", c.Retry.MaxRetries)
	}
	if c.Retry.InitialDelay <= 0 {
		return fmt.Errorf("config: RETRY_INITIAL_DELAY must be positive, got %s", c.Retry.InitialDelay)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// IsNotExist reports whether err came from a missing .env file.
func IsNotExist(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, os.ErrNotExist)
}
