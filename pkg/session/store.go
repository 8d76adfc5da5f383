package session

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/teslashibe/alifbata/pkg/gemini"
	"github.com/teslashibe/alifbata/pkg/metrics"
	"github.com/teslashibe/alifbata/pkg/retry"
)

// DefaultTTL is how long an idle session lives.
const DefaultTTL = 2 * time.Hour

// Store owns all live sessions.
type Store struct {
	gen    gemini.Generator
	ttl    time.Duration
	pub    Publisher
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*state

	media singleflight.Group
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the idle lifetime. Zero disables expiry.
func WithTTL(d time.Duration) Option {
	return func(s *Store) { s.ttl = d }
}

// WithPublisher sets the event sink.
func WithPublisher(p Publisher) Option {
	return func(s *Store) { s.pub = p }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Store that generates content with gen.
func NewStore(gen gemini.Generator, opts ...Option) *Store {
	s := &Store{
		gen:      gen,
		ttl:      DefaultTTL,
		logger:   slog.Default(),
		now:      time.Now,
		sessions: make(map[string]*state),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "session")
	return s
}

// StartQuiz creates a session for category. Questions and both feedback clips
// are generated concurrently. A question failure other than a permission error
// falls back to the built-in set; speech failures leave the clip empty.
func (s *Store) StartQuiz(ctx context.Context, category string) (*Quiz, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, ErrEmptyCategory
	}
	s.Sweep()

	var (
		questions      []gemini.QuizQuestion
		fallback       bool
		correct, wrong string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		qs, err := s.gen.Questions(gctx, category)
		switch {
		case err == nil && len(qs) > 0:
			questions = qs
			return nil
		case retry.IsPermission(err):
			return err
		case gctx.Err() != nil:
			// The parent was canceled or a sibling failed; Wait reports why.
			return gctx.Err()
		}
		s.logger.Warn("question generation failed, serving fallback", "category", category, "error", err)
		metrics.FallbackQuizzesTotal.Inc()
		questions, fallback = Fallback(category), true
		return nil
	})
	g.Go(func() error { return s.speak(gctx, CorrectPhrase, &correct) })
	g.Go(func() error { return s.speak(gctx, WrongPhrase, &wrong) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	st := &state{
		id:       uuid.NewString(),
		category: category,
		items:    make([]*item, len(questions)),
		correct:  correct,
		wrong:    wrong,
		touched:  s.now(),
	}
	for i, question := range questions {
		st.items[i] = &item{question: question}
	}

	s.mu.Lock()
	s.sessions[st.id] = st
	n := len(s.sessions)
	s.mu.Unlock()
	metrics.SessionsActive.Set(float64(n))

	s.logger.Info("quiz started", "session", st.id, "category", category, "questions", len(questions), "fallback", fallback)
	return &Quiz{
		ID:        st.id,
		Category:  category,
		Questions: questions,
		Fallback:  fallback,
	}, nil
}

// speak stores generated speech for text in dst. Only permission failures are
// returned.
func (s *Store) speak(ctx context.Context, text string, dst *string) error {
	audio, err := s.gen.Speech(ctx, text)
	if err != nil {
		if retry.IsPermission(err) {
			return err
		}
		s.logger.Warn("speech generation failed", "text", text, "error", err)
		return nil
	}
	*dst = audio
	return nil
}

// LoadMedia generates the image and pronunciation for question index. Results
// are cached, so a fully loaded question is returned without calling the
// generator. Concurrent calls for the same question share one generation.
func (s *Store) LoadMedia(ctx context.Context, id string, index int) (*Media, error) {
	key := id + "/" + strconv.Itoa(index)
	v, err, _ := s.media.Do(key, func() (any, error) {
		return s.loadMedia(ctx, id, index)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Media), nil
}

func (s *Store) loadMedia(ctx context.Context, id string, index int) (*Media, error) {
	s.mu.Lock()
	it, err := s.itemLocked(id, index)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if it.loaded() {
		media := it.media()
		s.mu.Unlock()
		return media, nil
	}
	question, image, audio := it.question, it.image, it.audio
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	if image.Empty() {
		g.Go(func() error {
			img, err := s.gen.Image(gctx, question.ImagePrompt)
			if err != nil {
				if retry.IsPermission(err) {
					return err
				}
				s.logger.Warn("image generation failed", "session", id, "index", index, "error", err)
				return nil
			}
			image = img
			return nil
		})
	}
	if audio == "" {
		g.Go(func() error { return s.speak(gctx, question.ArabicWord, &audio) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	it, err = s.itemLocked(id, index)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if !image.Empty() {
		it.image = image
	}
	if audio != "" {
		it.audio = audio
	}
	media := it.media()
	s.mu.Unlock()

	s.publish(id, Event{
		Type:     EventMediaReady,
		Index:    index,
		HasImage: !media.Image.Empty(),
		HasAudio: media.HasAudio,
	})
	return media, nil
}

// Answer grades option for question index. Questions are answered in order;
// each correct answer adds PointsPerAnswer. The session finishes after the
// last question.
func (s *Store) Answer(id string, index int, option string) (*Result, error) {
	s.mu.Lock()
	st, err := s.lookupLocked(id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	switch {
	case st.finished:
		s.mu.Unlock()
		return nil, ErrFinished
	case index < 0 || index >= len(st.items):
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	case index != st.next:
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrOutOfOrder, st.next, index)
	}

	question := st.items[index].question
	res := &Result{
		Correct:       question.IsCorrect(option),
		CorrectAnswer: question.CorrectAnswer,
		Feedback:      FeedbackWrong,
	}
	if res.Correct {
		st.score += PointsPerAnswer
		res.Feedback = FeedbackCorrect
	}
	st.next++
	st.finished = st.next == len(st.items)
	res.Score, res.Finished = st.score, st.finished
	s.mu.Unlock()

	correct := res.Correct
	s.publish(id, Event{Type: EventAnswered, Index: index, Correct: &correct, Score: res.Score, Finished: res.Finished})
	if res.Finished {
		s.publish(id, Event{Type: EventFinished, Index: index, Score: res.Score, Finished: true})
	}
	return res, nil
}

// Audio returns the base64 PCM pronunciation for question index. It is empty
// until LoadMedia succeeds for that question.
func (s *Store) Audio(id string, index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.itemLocked(id, index)
	if err != nil {
		return "", err
	}
	return it.audio, nil
}

// Feedback returns the base64 PCM clip for kind.
func (s *Store) Feedback(id string, kind FeedbackKind) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.lookupLocked(id)
	if err != nil {
		return "", err
	}
	switch kind {
	case FeedbackCorrect:
		return st.correct, nil
	case FeedbackWrong:
		return st.wrong, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFeedback, kind)
}

// Exists reports whether id names a live session.
func (s *Store) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.lookupLocked(id)
	return err == nil
}

// Len returns the number of stored sessions, including expired ones not yet
// swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []string
	for id, st := range s.sessions {
		if st.touched.Before(cutoff) {
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	if len(expired) == 0 {
		return 0
	}
	metrics.SessionsActive.Set(float64(n))
	for _, id := range expired {
		if s.pub != nil {
			s.pub.Close(id)
		}
	}
	s.logger.Debug("swept sessions", "expired", len(expired), "remaining", n)
	return len(expired)
}

// lookupLocked returns a live session and refreshes its access time.
func (s *Store) lookupLocked(id string) (*state, error) {
	st, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if s.ttl > 0 && now.Sub(st.touched) > s.ttl {
		return nil, ErrNotFound
	}
	st.touched = now
	return st, nil
}

func (s *Store) itemLocked(id string, index int) (*item, error) {
	st, err := s.lookupLocked(id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(st.items) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return st.items[index], nil
}

func (s *Store) publish(id string, e Event) {
	if s.pub != nil {
		s.pub.Publish(id, e)
	}
}
