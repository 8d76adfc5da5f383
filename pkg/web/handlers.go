package web

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/alifbata/pkg/gemini"
	"github.com/teslashibe/alifbata/pkg/hub"
	"github.com/teslashibe/alifbata/pkg/pcm"
	"github.com/teslashibe/alifbata/pkg/quran"
	"github.com/teslashibe/alifbata/pkg/retry"
	"github.com/teslashibe/alifbata/pkg/session"
)

// StartQuizRequest is the body of POST /api/quiz.
type StartQuizRequest struct {
	Category string `json:"category"`
}

// AnswerRequest is the body of POST /api/quiz/:session/answer/:index.
type AnswerRequest struct {
	Option string `json:"option"`
}

// SpeechRequest is the body of POST /api/speech.
type SpeechRequest struct {
	Text string `json:"text"`
}

// MediaResponse carries a question's image as a data URL.
type MediaResponse struct {
	Image    string `json:"image,omitempty"`
	HasAudio bool   `json:"has_audio"`
}

// SurahResponse is a surah with its verses and a short lesson.
type SurahResponse struct {
	*quran.SurahDetail
	Lesson string `json:"lesson"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"sessions": s.store.Len(),
	})
}

func (s *Server) handleCategories(c *fiber.Ctx) error {
	return c.JSON(session.Categories)
}

func (s *Server) handleStartQuiz(c *fiber.Ctx) error {
	var req StartQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	quiz, err := s.store.StartQuiz(c.UserContext(), req.Category)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(quiz)
}

func (s *Server) handleLoadMedia(c *fiber.Ctx) error {
	index, err := paramIndex(c)
	if err != nil {
		return err
	}
	media, err := s.store.LoadMedia(c.UserContext(), c.Params("session"), index)
	if err != nil {
		return err
	}
	return c.JSON(MediaResponse{
		Image:    media.Image.DataURL(),
		HasAudio: media.HasAudio,
	})
}

func (s *Server) handleAnswer(c *fiber.Ctx) error {
	index, err := paramIndex(c)
	if err != nil {
		return err
	}
	var req AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	res, err := s.store.Answer(c.Params("session"), index, req.Option)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (s *Server) handleAudio(c *fiber.Ctx) error {
	index, err := paramIndex(c)
	if err != nil {
		return err
	}
	payload, err := s.store.Audio(c.Params("session"), index)
	if err != nil {
		return err
	}
	return s.sendWAV(c, payload)
}

func (s *Server) handleFeedback(c *fiber.Ctx) error {
	payload, err := s.store.Feedback(c.Params("session"), session.FeedbackKind(c.Params("kind")))
	if err != nil {
		return err
	}
	return s.sendWAV(c, payload)
}

func (s *Server) handleSpeech(c *fiber.Ctx) error {
	var req SpeechRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("%w: text required", errBadRequest)
	}
	payload, err := s.gen.Speech(c.UserContext(), req.Text)
	if err != nil {
		return err
	}
	return s.sendWAV(c, payload)
}

func (s *Server) handleSurahs(c *fiber.Ctx) error {
	surahs, err := s.quran.Juz30(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(surahs)
}

// handleSurah fetches the verses and the lesson concurrently. The optional
// name query is the transliterated surah name used in the lesson prompt. A
// lesson failure other than a permission error falls back to the default.
func (s *Server) handleSurah(c *fiber.Ctx) error {
	n, err := c.ParamsInt("number")
	if err != nil {
		return fmt.Errorf("%w: surah number", errBadRequest)
	}
	if !quran.ValidNumber(n) {
		return fmt.Errorf("%w: %d", quran.ErrInvalidSurah, n)
	}

	name := c.Query("name")
	if name == "" {
		name = fmt.Sprintf("ke-%d", n)
	}

	var (
		detail *quran.SurahDetail
		lesson string
	)
	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		d, err := s.quran.Surah(ctx, n)
		detail = d
		return err
	})
	g.Go(func() error {
		text, err := s.gen.Lesson(ctx, name)
		switch {
		case err == nil:
			lesson = text
		case retry.IsPermission(err):
			return err
		default:
			s.logger.Warn("lesson generation failed", "surah", n, "error", err)
			lesson = gemini.DefaultLesson
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return c.JSON(SurahResponse{SurahDetail: detail, Lesson: lesson})
}

// sendWAV decodes a base64 PCM payload and writes it as a WAV file. Empty
// audio yields 204. An optional rate query resamples the output.
func (s *Server) sendWAV(c *fiber.Ctx, payload string) error {
	buf, err := pcm.Decode(payload, s.sampleRate, pcm.DefaultChannels)
	if err != nil {
		return err
	}
	if buf.Empty() {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if rate := c.QueryInt("rate"); rate != 0 && rate != buf.SampleRate {
		if buf, err = buf.Resample(rate); err != nil {
			return err
		}
	}
	data, err := buf.WAV()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "audio/wav")
	return c.Send(data)
}

func (s *Server) requireSession(c *fiber.Ctx) error {
	if !s.store.Exists(c.Params("session")) {
		return session.ErrNotFound
	}
	return c.Next()
}

// handleQuizWS streams a session's events until the client disconnects or
// the session expires.
func (s *Server) handleQuizWS(c *websocket.Conn) {
	h := s.hubs.Get(strings.Clone(c.Params("session")))
	client := hub.NewClient(h, c)
	if client == nil {
		c.Close()
		return
	}
	client.Run()
}

func paramIndex(c *fiber.Ctx) (int, error) {
	index, err := c.ParamsInt("index")
	if err != nil {
		return 0, fmt.Errorf("%w: question index", errBadRequest)
	}
	return index, nil
}
