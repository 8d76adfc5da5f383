package quran

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/alifbata/internal/httpc"
	"github.com/teslashibe/alifbata/pkg/retry"
)

// DefaultBaseURL is the public equran.id v2 API.
const DefaultBaseURL = "https://equran.id/api/v2"

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Retry   retry.Policy
	Sleeper retry.Sleeper
	Logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Config)

// WithBaseURL overrides the API root.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithRetry sets the retry policy.
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

// Client reads surahs from the API.
type Client struct {
	baseURL string
	http    *http.Client
	invoker *retry.Invoker
}

// envelope is the common response wrapper: {"code":200,"message":"...","data":...}.
type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// NewClient creates a Client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := &Config{
		BaseURL: DefaultBaseURL,
		Timeout: 15 * time.Second,
		Retry:   retry.DefaultPolicy(),
		Logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	retryOpts := []retry.Option{retry.WithLogger(cfg.Logger.With("component", "quran"))}
	if cfg.Sleeper != nil {
		retryOpts = append(retryOpts, retry.WithSleeper(cfg.Sleeper))
	}
	inv, err := retry.New(cfg.Retry, retryOpts...)
	if err != nil {
		return nil, fmt.Errorf("quran: %w", err)
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    httpc.NewClient(cfg.Timeout),
		invoker: inv,
	}, nil
}

// Surahs lists all 114 surahs.
func (c *Client) Surahs(ctx context.Context) ([]Surah, error) {
	return get[[]Surah](ctx, c, "/surat")
}

// Juz30 lists the surahs of Juz 30 (78 through 114).
func (c *Client) Juz30(ctx context.Context) ([]Surah, error) {
	all, err := c.Surahs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Surah, 0, LastSurah-Juz30Start+1)
	for _, s := range all {
		if s.Number >= Juz30Start && s.Number <= LastSurah {
			out = append(out, s)
		}
	}
	return out, nil
}

// Surah fetches surah n with its verses.
func (c *Client) Surah(ctx context.Context, n int) (*SurahDetail, error) {
	if !ValidNumber(n) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSurah, n)
	}
	detail, err := get[SurahDetail](ctx, c, fmt.Sprintf("/surat/%d", n))
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func get[T any](ctx context.Context, c *Client, path string) (T, error) {
	v, err := retry.Do(ctx, c.invoker, func(ctx context.Context) (T, error) {
		var zero T
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return zero, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return zero, fmt.Errorf("quran: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return zero, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		}

		var env envelope[T]
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return zero, fmt.Errorf("quran: decode %s: %w", path, err)
		}
		return env.Data, nil
	})
	return v, upstreamError(err)
}

// upstreamError strips the permission wrapper retry adds for 401/403/404.
// The API is keyless, so those never call for a different credential.
func upstreamError(err error) error {
	var perm *retry.PermissionError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
