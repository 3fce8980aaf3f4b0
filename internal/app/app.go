// Package app builds the components shared by the api and worker binaries
// from a Config.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/zepsite/cache"
	"github.com/briangreenhill/zepsite/internal/config"
	"github.com/briangreenhill/zepsite/internal/freshness"
	"github.com/briangreenhill/zepsite/internal/prompt"
	"github.com/briangreenhill/zepsite/internal/refresh"
	"github.com/briangreenhill/zepsite/internal/textgen"
	"github.com/briangreenhill/zepsite/internal/updater"
)

type App struct {
	Store        *cache.FileStore
	Gateway      *textgen.Gateway
	Registry     *updater.Registry
	Orchestrator *refresh.Orchestrator
}

// NewLogger builds the process logger. cfg must already be validated.
func NewLogger(cfg *config.Config) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.LogFormat == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// New wires the store, the generation gateway, the updaters and the
// orchestrator. A missing API key is not an error: generation is disabled and
// the site serves whatever is cached.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	store := cache.NewFileStore(cfg.Store.DataFile,
		cache.WithSnapshot(cfg.Store.SnapshotFile),
		cache.WithKey(cfg.Store.BandKey),
		cache.WithLogger(logger.With().Str("component", "store").Logger()),
	)

	emphasis, err := textgen.ParseEmphasisMode(cfg.Gemini.Emphasis)
	if err != nil {
		return nil, err
	}
	mode, err := updater.ParseProfilesMode(cfg.Refresh.ProfilesMode)
	if err != nil {
		return nil, err
	}

	prompts := prompt.NewGenerator(prompt.DefaultBand)
	ready := logger.Info().Str("band", prompts.Band()).Str("cache", store.Path())

	var model textgen.Model
	if cfg.HasGemini() {
		gm, err := textgen.NewGeminiModel(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		model = gm
		ready = ready.Str("model", gm.Name())
	} else {
		logger.Warn().Msg("GOOGLE_API_KEY not set, content will not be regenerated")
	}

	gwLog := logger.With().Str("component", "textgen").Logger()
	gw := textgen.New(model,
		textgen.WithRetryPolicy(textgen.RetryPolicy{
			MaxRetries: cfg.Gemini.RetryMax,
			Backoff:    textgen.LinearBackoff(cfg.Gemini.RetryBase),
			Retryable:  textgen.IsRateLimit,
		}),
		textgen.WithTemperature(cfg.Gemini.Temperature),
		textgen.WithEmphasis(emphasis),
		textgen.WithLogger(gwLog),
	)

	policy := freshness.DefaultPolicy()
	policy.MaxAge = cfg.Refresh.MaxAge
	fresh := freshness.NewController(policy)

	reg := updater.Default(updater.Deps{
		Store:    store,
		Gen:      gw,
		Fresh:    fresh,
		Prompts:  prompts,
		Emphasis: emphasis,
		Log:      logger.With().Str("component", "updater").Logger(),
	}, mode, cfg.Refresh.MemberDelay)

	orch := refresh.New(store, reg, fresh,
		refresh.WithStepDelay(cfg.Refresh.StepDelay),
		refresh.WithLogger(logger.With().Str("component", "refresh").Logger()),
	)

	ready.Str("profiles_mode", string(mode)).Msg("content pipeline ready")
	return &App{Store: store, Gateway: gw, Registry: reg, Orchestrator: orch}, nil
}

// StartupRefresh runs the refresh the server performs before listening. A
// blocking run that ends because ctx was cancelled returns false: the process
// is shutting down and should not start serving.
func (a *App) StartupRefresh(ctx context.Context, onStart, blocking bool) bool {
	if !onStart {
		return true
	}
	if !blocking {
		go a.Orchestrator.Run(ctx, false)
		return true
	}
	a.Orchestrator.Run(ctx, false)
	return ctx.Err() == nil
}
