// Package session holds per-learner quiz state and the generated media that
// goes with it.
//
// A Store is safe for concurrent use. Sessions expire after a TTL measured from
// their last access; expired sessions are swept lazily.
package session

import (
	"errors"
	"time"

	"github.com/teslashibe/alifbata/pkg/gemini"
)

// PointsPerAnswer is the score awarded for each correct answer.
const PointsPerAnswer = 10

// Spoken feedback phrases.
const (
	CorrectPhrase = "Maa Shaa Allah, Benar!"
	WrongPhrase   = "Sayang sekali, kurang tepat. Ayo coba lagi!"
)

// FeedbackKind selects a feedback clip.
type FeedbackKind string

const (
	FeedbackCorrect FeedbackKind = "correct"
	FeedbackWrong   FeedbackKind = "wrong"
)

// Categories are the quiz topics offered to learners.
var Categories = []string{
	"Hewan Lucu",
	"Buah Segar",
	"Benda di Rumah",
	"Anggota Keluarga",
	"Warna-warni",
	"Angka Arab",
}

var (
	ErrNotFound        = errors.New("session: not found")
	ErrEmptyCategory   = errors.New("session: category required")
	ErrIndexOutOfRange = errors.New("session: question index out of range")
	ErrOutOfOrder      = errors.New("session: questions must be answered in order")
	ErrFinished        = errors.New("session: quiz already finished")
	ErrInvalidFeedback = errors.New("session: unknown feedback kind")
)

// Event types published to a session's listeners.
const (
	EventMediaReady = "media_ready"
	EventAnswered   = "answered"
	EventFinished   = "finished"
)

// Event is a quiz state change.
type Event struct {
	Type     string `json:"type"`
	Index    int    `json:"index"`
	HasImage bool   `json:"has_image,omitempty"`
	HasAudio bool   `json:"has_audio,omitempty"`
	Correct  *bool  `json:"correct,omitempty"`
	Score    int    `json:"score"`
	Finished bool   `json:"finished,omitempty"`
}

// Publisher receives session events. Close is called once a session expires.
type Publisher interface {
	Publish(sessionID string, event Event)
	Close(sessionID string)
}

// Quiz is the public view of a freshly started session.
type Quiz struct {
	ID        string                `json:"session"`
	Category  string                `json:"category"`
	Questions []gemini.QuizQuestion `json:"questions"`
	Fallback  bool                  `json:"fallback"`
}

// Media describes the generated assets for one question.
type Media struct {
	Image    gemini.Image
	HasAudio bool
}

// Result is the outcome of one answer.
type Result struct {
	Correct       bool         `json:"correct"`
	CorrectAnswer string       `json:"correctAnswer"`
	Feedback      FeedbackKind `json:"feedback"`
	Score         int          `json:"score"`
	Finished      bool         `json:"finished"`
}

type item struct {
	question gemini.QuizQuestion
	image    gemini.Image
	audio    string
}

func (it *item) loaded() bool {
	return !it.image.Empty() && it.audio != ""
}

func (it *item) media() *Media {
	return &Media{Image: it.image, HasAudio: it.audio != ""}
}

// state is guarded by Store.mu.
type state struct {
	id       string
	category string
	items    []*item
	score    int
	next     int
	finished bool
	correct  string
	wrong    string
	touched  time.Time
}
