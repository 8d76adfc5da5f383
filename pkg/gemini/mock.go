package gemini

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/teslashibe/alifbata/pkg/pcm"
)

// Mock implements Generator for testing.
// All methods can be customized via function fields.
type Mock struct {
	QuestionsFunc func(ctx context.Context, category string) ([]QuizQuestion, error)
	ImageFunc     func(ctx context.Context, prompt string) (Image, error)
	SpeechFunc    func(ctx context.Context, text string) (string, error)
	LessonFunc    func(ctx context.Context, surahName string) (string, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Method string
	Input  string
	Time   time.Time
}

// NewMock creates a mock with canned content. Speech returns a short tone
// encoded as real PCM so it survives pcm.Decode.
func NewMock() *Mock {
	return &Mock{
		QuestionsFunc: func(ctx context.Context, category string) ([]QuizQuestion, error) {
			return []QuizQuestion{
				{
					Question:      "Apa bahasa Arabnya Gajah?",
					ArabicWord:    "فِيْلٌ",
					Options:       []string{"Fiilun", "Asadun", "Qittun", "Jamalun"},
					CorrectAnswer: "Fiilun",
					ImagePrompt:   "cute elephant cartoon",
				},
				{
					Question:      "Apa bahasa Arabnya Kucing?",
					ArabicWord:    "قِطٌّ",
					Options:       []string{"Kalbun", "Qittun", "Asadun", "Fiilun"},
					CorrectAnswer: "Qittun",
					ImagePrompt:   "cute cat cartoon",
				},
			}, nil
		},
		ImageFunc: func(ctx context.Context, prompt string) (Image, error) {
			return Image{MimeType: "image/png", Data: "aW1hZ2U="}, nil
		},
		SpeechFunc: func(ctx context.Context, text string) (string, error) {
			return ToneSpeech(len(text)), nil
		},
		LessonFunc: func(ctx context.Context, surahName string) (string, error) {
			return DefaultLesson, nil
		},
	}
}

// ToneSpeech returns base64 PCM for a quiet 440 Hz tone of roughly 20ms per
// character at 24 kHz.
func ToneSpeech(chars int) string {
	frames := chars * pcm.DefaultSampleRate / 50
	samples := make([]float32, frames)
	for i := range samples {
		samples[i] = float32(0.25 * math.Sin(2*math.Pi*440*float64(i)/pcm.DefaultSampleRate))
	}
	payload, _ := pcm.Encode([][]float32{samples})
	return payload
}

// Questions calls QuestionsFunc and records the call.
func (m *Mock) Questions(ctx context.Context, category string) ([]QuizQuestion, error) {
	m.recordCall("Questions", category)
	if m.QuestionsFunc != nil {
		return m.QuestionsFunc(ctx, category)
	}
	return nil, WrapError("mock", ErrNoQuestions)
}

// Image calls ImageFunc and records the call.
func (m *Mock) Image(ctx context.Context, prompt string) (Image, error) {
	m.recordCall("Image", prompt)
	if m.ImageFunc != nil {
		return m.ImageFunc(ctx, prompt)
	}
	return Image{}, WrapError("mock", ErrNoImage)
}

// Speech calls SpeechFunc and records the call.
func (m *Mock) Speech(ctx context.Context, text string) (string, error) {
	m.recordCall("Speech", text)
	if m.SpeechFunc != nil {
		return m.SpeechFunc(ctx, text)
	}
	return "", WrapError("mock", ErrNoAudio)
}

// Lesson calls LessonFunc and records the call.
func (m *Mock) Lesson(ctx context.Context, surahName string) (string, error) {
	m.recordCall("Lesson", surahName)
	if m.LessonFunc != nil {
		return m.LessonFunc(ctx, surahName)
	}
	return DefaultLesson, nil
}

func (m *Mock) recordCall(method, input string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Method: method, Input: input, Time: time.Now()})
}

// Calls returns all recorded method calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns the number of times a method was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// Reset clears all recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Verify Mock implements Generator at compile time.
var _ Generator = (*Mock)(nil)
