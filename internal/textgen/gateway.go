// Package textgen wraps the generative-language-model call used to fill the
// content cache: retries on rate limits and light post-processing of the
// returned text.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrNoCredential is returned when no API key was configured
	ErrNoCredential = errors.New("no API credential configured")
	// ErrRateLimited is returned when every retry hit a rate limit
	ErrRateLimited = errors.New("rate limited")
	// ErrProvider is returned for any other failure of the model call
	ErrProvider = errors.New("provider error")
)

// DefaultTemperature is the sampling temperature used unless a call
// overrides it.
const DefaultTemperature float32 = 0.7

// Request is what the gateway asks of a Model for one attempt.
type Request struct {
	Temperature float32
	JSON        bool // structured output: the response must be a JSON array or object
}

// Model is a single external text-generation call.
type Model interface {
	GenerateContent(ctx context.Context, prompt string, req Request) (string, error)
}

// Options tune one Generate call.
type Options struct {
	Label       string   // used in logs only
	Temperature *float32 // nil uses the gateway default
	JSON        bool
}

// Gateway adds retry and formatting around a Model.
type Gateway struct {
	model       Model
	retry       RetryPolicy
	temperature float32
	emphasis    EmphasisMode
	sleep       func(context.Context, time.Duration) error
	log         zerolog.Logger
}

type Option func(*Gateway)

func WithRetryPolicy(p RetryPolicy) Option {
	return func(g *Gateway) { g.retry = p }
}

func WithTemperature(t float32) Option {
	return func(g *Gateway) { g.temperature = t }
}

func WithEmphasis(m EmphasisMode) Option {
	return func(g *Gateway) { g.emphasis = m }
}

// WithSleep replaces the wait between retries.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(g *Gateway) { g.sleep = fn }
}

func WithLogger(l zerolog.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// New creates a gateway. model may be nil when no credential is available;
// every call then fails softly with ErrNoCredential.
func New(model Model, opts ...Option) *Gateway {
	g := &Gateway{
		model:       model,
		retry:       DefaultRetryPolicy(),
		temperature: DefaultTemperature,
		emphasis:    EmphasisItalic,
		sleep:       Sleep,
		log:         zerolog.Nop(),
	}
	for _, o := range opts {
		o(g)
	}
	if g.retry.Backoff == nil {
		g.retry.Backoff = LinearBackoff(0)
	}
	if g.retry.Retryable == nil {
		g.retry.Retryable = IsRateLimit
	}
	return g
}

// Enabled reports whether a model is configured.
func (g *Gateway) Enabled() bool {
	return g.model != nil
}

// Generate runs prompt through the model. Free text comes back with emphasis
// markup converted; structured output comes back cleaned for parsing.
func (g *Gateway) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	log := g.log.With().Str("label", opts.Label).Logger()

	if g.model == nil {
		log.Warn().Msg("GOOGLE_API_KEY not set, skipping generation")
		return "", ErrNoCredential
	}

	req := Request{Temperature: g.temperature, JSON: opts.JSON}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}

	for attempt := 0; ; attempt++ {
		start := time.Now()
		text, err := g.model.GenerateContent(ctx, prompt, req)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				log.Error().Int("attempt", attempt+1).Msg("empty response from model")
				return "", fmt.Errorf("%w: empty response", ErrProvider)
			}
			log.Debug().Int("attempt", attempt+1).Dur("took", time.Since(start)).Msg("generated")
			return g.postProcess(text, opts.JSON), nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if !g.retry.Retryable(err) {
			log.Error().Err(err).Int("attempt", attempt+1).Msg("generation failed")
			return "", fmt.Errorf("%w: %w", ErrProvider, err)
		}
		if attempt >= g.retry.MaxRetries {
			log.Error().Err(err).Int("attempts", attempt+1).Msg("rate limited, giving up")
			return "", fmt.Errorf("%w after %d attempts: %w", ErrRateLimited, attempt+1, err)
		}

		wait := g.retry.Backoff(attempt + 1)
		log.Warn().Err(err).Int("attempt", attempt+1).Dur("wait", wait).Msg("rate limited, backing off")
		if err := g.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
}

func (g *Gateway) postProcess(text string, structured bool) string {
	if structured {
		return CleanJSON(text)
	}
	return strings.TrimSpace(g.emphasis.Apply(text))
}
