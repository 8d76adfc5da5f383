// Package web serves the quiz and Juz 30 API over HTTP and websockets.
package web

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/alifbata/pkg/gemini"
	"github.com/teslashibe/alifbata/pkg/hub"
	"github.com/teslashibe/alifbata/pkg/pcm"
	"github.com/teslashibe/alifbata/pkg/quran"
	"github.com/teslashibe/alifbata/pkg/session"
)

// DefaultSweepInterval is how often expired sessions are swept.
const DefaultSweepInterval = time.Minute

// Quran is the subset of the Quran client the server needs.
type Quran interface {
	Juz30(ctx context.Context) ([]quran.Surah, error)
	Surah(ctx context.Context, n int) (*quran.SurahDetail, error)
}

// Config wires the server's dependencies.
type Config struct {
	Addr      string
	Store     *session.Store
	Generator gemini.Generator
	Quran     Quran
	Hubs      *hub.Registry
	Logger    *slog.Logger

	// SampleRate is the PCM rate of generated speech.
	SampleRate int

	// SweepInterval is how often expired sessions are removed. Zero uses
	// DefaultSweepInterval.
	SweepInterval time.Duration
}

// Server is the HTTP API server.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger

	store      *session.Store
	gen        gemini.Generator
	quran      Quran
	hubs       *hub.Registry
	sampleRate int
	sweepEvery time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewServer creates a server and registers its routes.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hubs := cfg.Hubs
	if hubs == nil {
		hubs = hub.NewRegistry(logger)
	}
	s := &Server{
		addr:       cfg.Addr,
		logger:     logger.With("component", "web"),
		store:      cfg.Store,
		gen:        cfg.Generator,
		quran:      cfg.Quran,
		hubs:       hubs,
		sampleRate: cfg.SampleRate,
		sweepEvery: cfg.SweepInterval,
		stop:       make(chan struct{}),
	}
	if s.sampleRate <= 0 {
		s.sampleRate = pcm.DefaultSampleRate
	}
	if s.sweepEvery <= 0 {
		s.sweepEvery = DefaultSweepInterval
	}

	app := fiber.New(fiber.Config{
		AppName:               "alifbata",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(s.logRequests)

	app.Get("/healthz", s.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Get("/categories", s.handleCategories)
	api.Post("/quiz", s.handleStartQuiz)
	api.Post("/quiz/:session/media/:index", s.handleLoadMedia)
	api.Post("/quiz/:session/answer/:index", s.handleAnswer)
	api.Get("/quiz/:session/audio/:index.wav", s.handleAudio)
	api.Get("/quiz/:session/feedback/:kind.wav", s.handleFeedback)
	api.Get("/surahs", s.handleSurahs)
	api.Get("/surahs/:number", s.handleSurah)
	api.Post("/speech", s.handleSpeech)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/quiz/:session", s.requireSession, websocket.New(s.handleQuizWS))

	s.app = app
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start serves on the configured address until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.addr)
	go s.sweep()
	return s.app.Listen(s.addr)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	go s.sweep()
	return s.app.Listener(ln)
}

// Shutdown stops the sweeper, closes every session hub, and drains
// in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.hubs.CloseAll()
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) sweep() {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.store.Sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return err
}
