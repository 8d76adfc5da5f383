package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"

	"github.com/teslashibe/alifbata/internal/httpc"
	"github.com/teslashibe/alifbata/pkg/metrics"
	"github.com/teslashibe/alifbata/pkg/retry"
)

// Scope is the OAuth2 scope for the Generative Language API.
const Scope = "https://www.googleapis.com/auth/generative-language"

// Client implements Generator against the Gemini REST API.
type Client struct {
	config  *Config
	http    *http.Client
	invoker *retry.Invoker
	logger  *slog.Logger
}

// NewClient creates a Gemini client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, WrapError(providerGemini, err)
	}

	httpClient := httpc.NewClient(cfg.Timeout)
	if cfg.APIKey == "" {
		httpClient.Transport = &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, cfg.TokenSource),
			Base:   httpClient.Transport,
		}
	}

	logger := cfg.Logger.With("component", "gemini")
	retryOpts := []retry.Option{retry.WithLogger(logger)}
	if cfg.Sleeper != nil {
		retryOpts = append(retryOpts, retry.WithSleeper(cfg.Sleeper))
	}
	inv, err := retry.New(cfg.Retry, retryOpts...)
	if err != nil {
		return nil, WrapError(providerGemini, err)
	}

	return &Client{
		config:  cfg,
		http:    httpClient,
		invoker: inv,
		logger:  logger,
	}, nil
}

// FromADC creates a client authenticated with Google application default
// credentials.
func FromADC(ctx context.Context, opts ...Option) (*Client, error) {
	creds, err := google.FindDefaultCredentials(ctx, Scope)
	if err != nil {
		return nil, WrapError(providerGemini, fmt.Errorf("find default credentials: %w", err))
	}
	return NewClient(append([]Option{WithTokenSource(creds.TokenSource)}, opts...)...)
}

// Questions generates vocabulary questions for category. Malformed records
// are dropped; if none remain, ErrNoQuestions is returned.
func (c *Client) Questions(ctx context.Context, category string) ([]QuizQuestion, error) {
	if strings.TrimSpace(category) == "" {
		return nil, WrapError(providerGemini, ErrEmptyInput)
	}
	defer observe("questions", time.Now())

	req := &generateRequest{
		Contents: textContent(questionsPrompt(category, c.config.QuestionCount)),
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   questionsSchema(),
		},
	}
	resp, err := c.generate(ctx, c.config.TextModel, req)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(resp.text())
	if text == "" {
		text = "[]"
	}
	var raw []QuizQuestion
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, WrapError(providerGemini, fmt.Errorf("decode questions: %w", err))
	}

	questions := make([]QuizQuestion, 0, len(raw))
	for i, q := range raw {
		if !q.Valid() {
			c.logger.Warn("dropping malformed question", "index", i, "category", category)
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, WrapError(providerGemini, ErrNoQuestions)
	}
	return questions, nil
}

// Image generates a square illustration for prompt.
func (c *Client) Image(ctx context.Context, prompt string) (Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return Image{}, WrapError(providerGemini, ErrEmptyInput)
	}
	defer observe("image", time.Now())

	req := &generateRequest{
		Contents: textContent(imagePrompt(prompt)),
		GenerationConfig: &generationConfig{
			ImageConfig: &imageConfig{AspectRatio: "1:1"},
		},
	}
	resp, err := c.generate(ctx, c.config.ImageModel, req)
	if err != nil {
		return Image{}, err
	}
	data := resp.inline()
	if data == nil {
		return Image{}, WrapError(providerGemini, ErrNoImage)
	}
	return Image{MimeType: data.MimeType, Data: data.Data}, nil
}

// Speech synthesizes text with the configured voice. The result is base64
// PCM16 LE at 24 kHz mono, ready for pcm.Decode.
func (c *Client) Speech(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", WrapError(providerGemini, ErrEmptyInput)
	}
	defer observe("speech", time.Now())

	req := &generateRequest{
		Contents: textContent(text),
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoice{VoiceName: c.config.Voice},
				},
			},
		},
	}
	resp, err := c.generate(ctx, c.config.SpeechModel, req)
	if err != nil {
		return "", err
	}
	data := resp.inline()
	if data == nil {
		return "", WrapError(providerGemini, ErrNoAudio)
	}
	return data.Data, nil
}

// Lesson returns a two-sentence lesson of the surah for children.
func (c *Client) Lesson(ctx context.Context, surahName string) (string, error) {
	if strings.TrimSpace(surahName) == "" {
		return "", WrapError(providerGemini, ErrEmptyInput)
	}
	defer observe("lesson", time.Now())

	resp, err := c.generate(ctx, c.config.TextModel, &generateRequest{
		Contents: textContent(lessonPrompt(surahName)),
	})
	if err != nil {
		return "", err
	}
	if text := strings.TrimSpace(resp.text()); text != "" {
		return text, nil
	}
	return DefaultLesson, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// generate posts req to model under the retry policy.
func (c *Client) generate(ctx context.Context, model string, req *generateRequest) (*generateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, WrapError(providerGemini, err)
	}
	resp, err := retry.Do(ctx, c.invoker, func(ctx context.Context) (*generateResponse, error) {
		return c.post(ctx, model, body)
	})
	if err != nil {
		return nil, err
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, WrapError(providerGemini, fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason))
	}
	return resp, nil
}

// post performs a single generateContent call.
func (c *Client) post(ctx context.Context, model string, body []byte) (*generateResponse, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimSuffix(c.config.BaseURL, "/"), model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(providerGemini, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("x-goog-api-key", c.config.APIKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, WrapError(providerGemini, err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		if ge, ok := err.(*googleapi.Error); ok {
			return nil, newAPIError(ge)
		}
		return nil, WrapError(providerGemini, err)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, WrapError(providerGemini, fmt.Errorf("decode response: %w", err))
	}
	return &result, nil
}

func observe(kind string, start time.Time) {
	metrics.GenerationLatency.WithLabelValues(kind).Observe(float64(time.Since(start).Milliseconds()))
}

// Verify Client implements Generator at compile time.
var _ Generator = (*Client)(nil)
