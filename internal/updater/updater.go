// Package updater regenerates individual fields of the content cache.
package updater

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/zepsite/cache"
	"github.com/briangreenhill/zepsite/internal/content"
	"github.com/briangreenhill/zepsite/internal/freshness"
	"github.com/briangreenhill/zepsite/internal/prompt"
	"github.com/briangreenhill/zepsite/internal/textgen"
)

// ErrParse marks a structured response that could not be turned into
// content. The cached value is left untouched.
var ErrParse = errors.New("unparseable model output")

// Updater regenerates one field of the document
type Updater interface {
	// Name returns the field name (e.g., "history", "profiles")
	Name() string

	// Update regenerates the field in doc when the freshness policy (or
	// force) says so, and persists doc when it changed. doc is the
	// in-memory truth for the rest of the run even if persisting fails.
	Update(ctx context.Context, doc *content.Document, force bool) (changed bool, err error)
}

// Generator produces text for a prompt; *textgen.Gateway implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts textgen.Options) (string, error)
}

// Store is the part of the local store updaters need.
type Store interface {
	cache.Loader
	cache.Saver
}

// Deps are shared by every updater.
type Deps struct {
	Store    Store
	Gen      Generator
	Fresh    *freshness.Controller
	Prompts  *prompt.Generator
	Emphasis textgen.EmphasisMode
	Sleep    func(context.Context, time.Duration) error
	Log      zerolog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Fresh == nil {
		d.Fresh = freshness.NewController(freshness.DefaultPolicy())
	}
	if d.Prompts == nil {
		d.Prompts = prompt.NewGenerator("")
	}
	if d.Emphasis == "" {
		d.Emphasis = textgen.EmphasisItalic
	}
	if d.Sleep == nil {
		d.Sleep = textgen.Sleep
	}
	return d
}

// persist saves doc. A failed write is logged and otherwise ignored.
func (d Deps) persist(doc *content.Document, field string) {
	if err := d.Store.Save(doc); err != nil {
		d.Log.Error().Err(err).Str("field", field).Msg("could not persist content cache, keeping in-memory copy")
	}
}

// Registry keeps updaters in the order they were registered
type Registry struct {
	order    []string
	updaters map[string]Updater
}

// NewRegistry creates a new updater registry
func NewRegistry() *Registry {
	return &Registry{
		updaters: make(map[string]Updater),
	}
}

// Register adds an updater; registering a name again replaces it in place
func (r *Registry) Register(u Updater) {
	if _, exists := r.updaters[u.Name()]; !exists {
		r.order = append(r.order, u.Name())
	}
	r.updaters[u.Name()] = u
}

// Get retrieves an updater by name
func (r *Registry) Get(name string) (Updater, bool) {
	u, exists := r.updaters[name]
	return u, exists
}

// List returns registered names in run order
func (r *Registry) List() []string {
	return append([]string(nil), r.order...)
}

// Updaters returns the registered updaters in run order
func (r *Registry) Updaters() []Updater {
	out := make([]Updater, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.updaters[name])
	}
	return out
}

// Default registers history, profiles and shows, in that order.
func Default(d Deps, mode ProfilesMode, memberDelay time.Duration) *Registry {
	r := NewRegistry()
	r.Register(NewHistory(d))
	r.Register(NewProfiles(d, mode, memberDelay))
	r.Register(NewShows(d, DefaultShowCount))
	return r
}
