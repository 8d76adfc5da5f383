// Package gemini generates quiz content, illustrations, speech, and short
// lessons through Google's Gemini REST API.
//
// Credentials are injected explicitly, either as an API key or an OAuth2 token
// source. Every request runs through retry.Do, so rate limiting is absorbed
// and credential failures surface as *retry.PermissionError.
//
// Example usage:
//
//	client, _ := gemini.NewClient(
//	    gemini.WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	    gemini.WithVoice("Kore"),
//	)
//	defer client.Close()
//
//	questions, _ := client.Questions(ctx, "Hewan Lucu")
//	audio, _ := client.Speech(ctx, questions[0].ArabicWord)
//	buf, _ := pcm.Decode(audio, pcm.DefaultSampleRate, pcm.DefaultChannels)
package gemini

import (
	"context"
	"strings"
)

// Generator is the content-generation surface used by the quiz session layer.
type Generator interface {
	// Questions generates multiple-choice vocabulary questions for a category.
	Questions(ctx context.Context, category string) ([]QuizQuestion, error)

	// Image generates an illustration.
	Image(ctx context.Context, prompt string) (Image, error)

	// Speech synthesizes text and returns base64 PCM16 at 24 kHz mono.
	Speech(ctx context.Context, text string) (string, error)

	// Lesson returns a short moral lesson of a surah for children.
	Lesson(ctx context.Context, surahName string) (string, error)
}

// OptionsPerQuestion is the number of answer choices per question.
const OptionsPerQuestion = 4

// QuizQuestion is one generated vocabulary question.
type QuizQuestion struct {
	Question      string   `json:"question"`
	ArabicWord    string   `json:"arabicWord"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	ImagePrompt   string   `json:"imagePrompt"`
}

// Valid reports whether the question is complete and answerable.
func (q QuizQuestion) Valid() bool {
	if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.ArabicWord) == "" {
		return false
	}
	if len(q.Options) != OptionsPerQuestion {
		return false
	}
	for _, o := range q.Options {
		if o == q.CorrectAnswer {
			return true
		}
	}
	return false
}

// DefaultImageType is assumed when a response omits the image MIME type.
const DefaultImageType = "image/png"

// Image is generated image data as returned inline by the API.
type Image struct {
	MimeType string
	Data     string // base64
}

// Empty reports whether no image data is present.
func (i Image) Empty() bool {
	return i.Data == ""
}

// DataURL returns the image as a data: URL, or "" when empty.
func (i Image) DataURL() string {
	if i.Empty() {
		return ""
	}
	mime := i.MimeType
	if mime == "" {
		mime = DefaultImageType
	}
	return "data:" + mime + ";base64," + i.Data
}

// IsCorrect reports whether option is the right answer.
func (q QuizQuestion) IsCorrect(option string) bool {
	return option == q.CorrectAnswer
}
