// alifbata serves the Arabic vocabulary quiz and Juz 30 memorization API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/alifbata/internal/config"
	"github.com/teslashibe/alifbata/internal/log"
	"github.com/teslashibe/alifbata/pkg/gemini"
	"github.com/teslashibe/alifbata/pkg/hub"
	"github.com/teslashibe/alifbata/pkg/quran"
	"github.com/teslashibe/alifbata/pkg/retry"
	"github.com/teslashibe/alifbata/pkg/session"
	"github.com/teslashibe/alifbata/pkg/web"
)

func main() {
	envFile := flag.String("env", ".env", "Path to a .env file")
	addr := flag.String("addr", "", "Listen address (overrides ALIFBATA_ADDR)")
	flag.Parse()

	envErr := config.LoadEnv(*envFile)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Init("info")
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	if envErr != nil && !config.IsNotExist(envErr) {
		log.Warn("failed to load env file", "path", *envFile, "error", envErr)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	if err := run(ctx, cfg); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := log.L()
	policy := retry.Policy{
		MaxRetries:     cfg.Retry.MaxRetries,
		InitialDelay:   cfg.Retry.InitialDelay,
		Multiplier:     retry.DefaultPolicy().Multiplier,
		MaxDelay:       cfg.Retry.MaxDelay,
		AttemptTimeout: cfg.Retry.AttemptTimeout,
	}

	opts := []gemini.Option{
		gemini.WithBaseURL(cfg.Gemini.BaseURL),
		gemini.WithModels(cfg.Gemini.TextModel, cfg.Gemini.ImageModel, cfg.Gemini.SpeechModel),
		gemini.WithVoice(cfg.Gemini.Voice),
		gemini.WithTimeout(cfg.Gemini.Timeout),
		gemini.WithRetry(policy),
		gemini.WithLogger(logger),
	}
	var (
		gen *gemini.Client
		err error
	)
	if cfg.Gemini.UseADC() {
		logger.Info("using application default credentials")
		gen, err = gemini.FromADC(ctx, opts...)
	} else {
		gen, err = gemini.NewClient(append(opts, gemini.WithAPIKey(cfg.Gemini.APIKey))...)
	}
	if err != nil {
		return err
	}
	defer gen.Close()

	qc, err := quran.NewClient(
		quran.WithBaseURL(cfg.Quran.BaseURL),
		quran.WithTimeout(cfg.Quran.Timeout),
		quran.WithRetry(policy),
		quran.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer qc.Close()

	hubs := hub.NewRegistry(logger)
	store := session.NewStore(gen,
		session.WithTTL(cfg.SessionTTL),
		session.WithPublisher(web.Events(hubs)),
		session.WithLogger(logger),
	)

	srv := web.NewServer(web.Config{
		Addr:       cfg.Addr,
		Store:      store,
		Generator:  gen,
		Quran:      qc,
		Hubs:       hubs,
		Logger:     logger,
		SampleRate: config.DefaultSampleRate,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}
