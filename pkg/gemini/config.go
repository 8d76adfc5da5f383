package gemini

import (
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/teslashibe/alifbata/pkg/retry"
)

// Config holds client configuration.
type Config struct {
	// Credentials. Exactly one of APIKey or TokenSource is used; APIKey wins.
	APIKey      string
	TokenSource oauth2.TokenSource

	BaseURL string

	// Models
	TextModel   string
	ImageModel  string
	SpeechModel string

	// Voice is the prebuilt voice name for speech synthesis.
	Voice string

	// QuestionCount is how many questions to request per quiz.
	QuestionCount int

	Timeout time.Duration
	Retry   retry.Policy
	Sleeper retry.Sleeper

	Logger *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*Config)

// WithAPIKey sets the API key credential.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithTokenSource sets an OAuth2 token source credential.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Config) { c.TokenSource = ts }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithModels sets the text, image, and speech models. Empty values keep the default.
func WithModels(text, image, speech string) Option {
	return func(c *Config) {
		if text != "" {
			c.TextModel = text
		}
		if image != "" {
			c.ImageModel = image
		}
		if speech != "" {
			c.SpeechModel = speech
		}
	}
}

// WithVoice sets the prebuilt speech voice.
func WithVoice(voice string) Option {
	return func(c *Config) { c.Voice = voice }
}

// WithQuestionCount sets how many questions a quiz requests.
func WithQuestionCount(n int) Option {
	return func(c *Config) { c.QuestionCount = n }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithRetry sets the retry policy for every request.
func WithRetry(p retry.Policy) Option {
	return func(c *Config) { c.Retry = p }
}

// WithSleeper replaces the backoff timer.
func WithSleeper(s retry.Sleeper) Option {
	return func(c *Config) { c.Sleeper = s }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultQuestionCount is used when QuestionCount is not positive.
const DefaultQuestionCount = 5

// DefaultConfig returns the models and voice used by the app.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "https://generativelanguage.googleapis.com/v1beta",
		TextModel:     "gemini-3-flash-preview",
		ImageModel:    "gemini-2.5-flash-image",
		SpeechModel:   "gemini-2.5-flash-preview-tts",
		Voice:         "Kore",
		QuestionCount: DefaultQuestionCount,
		Timeout:       60 * time.Second,
		Retry:         retry.DefaultPolicy(),
		Logger:        slog.Default(),
	}
}

// Apply applies functional options to the config. A non-positive
// QuestionCount falls back to DefaultQuestionCount.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
	if c.QuestionCount <= 0 {
		c.QuestionCount = DefaultQuestionCount
	}
}

// Validate checks that a credential is present.
func (c *Config) Validate() error {
	if c.APIKey == "" && c.TokenSource == nil {
		return ErrNoCredential
	}
	return c.Retry.Validate()
}
