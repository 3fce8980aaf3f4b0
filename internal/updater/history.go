package updater

import (
	"context"
	"fmt"

	"github.com/briangreenhill/zepsite/internal/content"
	"github.com/briangreenhill/zepsite/internal/textgen"
)

// History regenerates the band history text.
type History struct {
	deps Deps
}

func NewHistory(d Deps) *History {
	return &History{deps: d.withDefaults()}
}

func (h *History) Name() string { return "history" }

func (h *History) Update(ctx context.Context, doc *content.Document, force bool) (bool, error) {
	state := h.deps.Fresh.History(doc, force)
	log := h.deps.Log.With().Str("field", h.Name()).Stringer("state", state).Logger()
	if !state.NeedsUpdate() {
		log.Debug().Msg("history is fresh, skipping")
		return false, nil
	}

	text, err := h.deps.Gen.Generate(ctx, h.deps.Prompts.History(), textgen.Options{Label: h.Name()})
	if err != nil {
		return false, fmt.Errorf("generate history: %w", err)
	}

	doc.History = text
	doc.Normalize()
	h.deps.persist(doc, h.Name())
	log.Info().Int("chars", content.Len(text)).Msg("history updated")
	return true, nil
}
