// Package refresh runs the field updaters in order, once or on a schedule.
package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/zepsite/cache"
	"github.com/briangreenhill/zepsite/internal/freshness"
	"github.com/briangreenhill/zepsite/internal/textgen"
	"github.com/briangreenhill/zepsite/internal/updater"
)

// DefaultStepDelay separates updaters that called the model.
const DefaultStepDelay = 10 * time.Second

// Report summarizes one run.
type Report struct {
	RunID   string
	Force   bool
	Changed []string
	Skipped []string
	Failed  map[string]error
	Took    time.Duration
}

// Orchestrator sequences the updaters of a registry. Runs never overlap.
type Orchestrator struct {
	store     cache.Store
	registry  *updater.Registry
	fresh     *freshness.Controller
	stepDelay time.Duration
	sleep     func(context.Context, time.Duration) error
	now       func() time.Time
	log       zerolog.Logger

	mu sync.Mutex
}

type Option func(*Orchestrator)

func WithStepDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.stepDelay = d }
}

func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(o *Orchestrator) { o.sleep = fn }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

func New(store cache.Store, registry *updater.Registry, fresh *freshness.Controller, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:     store,
		registry:  registry,
		fresh:     fresh,
		stepDelay: DefaultStepDelay,
		sleep:     textgen.Sleep,
		now:       time.Now,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run loads the document once, decides the global force flag and runs every
// updater against the same in-memory document.
func (o *Orchestrator) Run(ctx context.Context, force bool) Report {
	o.mu.Lock()
	defer o.mu.Unlock()

	start := o.now()
	report := Report{RunID: uuid.NewString(), Failed: map[string]error{}}
	log := o.log.With().Str("run_id", report.RunID).Logger()

	doc := o.store.Load()
	modTime, stored := o.store.ModTime()
	global := o.fresh.Global(doc, modTime, stored, start)
	report.Force = force || global

	plan := o.fresh.Plan(doc, report.Force)
	ev := log.Info().
		Bool("force", force).
		Bool("global", global).
		Stringer("history", plan.History).
		Stringer("profiles", plan.Profiles).
		Stringer("shows", plan.Shows)
	if stored {
		ev = ev.Str("cache_age", humanize.RelTime(modTime, start, "old", "from now"))
	}
	ev.Msg("refresh started")

	called := false
	for _, u := range o.registry.Updaters() {
		if ctx.Err() != nil {
			report.Failed[u.Name()] = ctx.Err()
			continue
		}
		if called && o.stepDelay > 0 {
			if err := o.sleep(ctx, o.stepDelay); err != nil {
				report.Failed[u.Name()] = err
				continue
			}
		}

		changed, err := u.Update(ctx, doc, report.Force)
		// no credential means no request went out
		called = changed || (err != nil && !errors.Is(err, textgen.ErrNoCredential))
		switch {
		case err != nil:
			report.Failed[u.Name()] = err
			logUpdateError(log, u.Name(), err)
			if changed {
				report.Changed = append(report.Changed, u.Name())
			}
		case changed:
			report.Changed = append(report.Changed, u.Name())
		default:
			report.Skipped = append(report.Skipped, u.Name())
		}
	}

	report.Took = o.now().Sub(start)
	log.Info().
		Strs("changed", report.Changed).
		Strs("skipped", report.Skipped).
		Int("failed", len(report.Failed)).
		Dur("took", report.Took).
		Msg("refresh finished")
	return report
}

func logUpdateError(log zerolog.Logger, name string, err error) {
	switch {
	case errors.Is(err, updater.ErrParse):
		log.Error().Err(err).Str("field", name).Msg("model output could not be parsed, keeping cached value")
	case errors.Is(err, textgen.ErrNoCredential):
		log.Warn().Str("field", name).Msg("no credential, field not regenerated")
	default:
		log.Warn().Err(err).Str("field", name).Msg("field not regenerated")
	}
}
