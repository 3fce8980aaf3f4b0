package updater

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/briangreenhill/zepsite/internal/content"
	"github.com/briangreenhill/zepsite/internal/textgen"
)

// DefaultShowCount is how many curated shows are requested.
const DefaultShowCount = 10

// Shows regenerates the curated show list. The list is always replaced as a
// whole.
type Shows struct {
	deps  Deps
	count int
}

func NewShows(d Deps, count int) *Shows {
	if count < 2 {
		count = DefaultShowCount
	}
	return &Shows{deps: d.withDefaults(), count: count}
}

func (s *Shows) Name() string { return "shows" }

func (s *Shows) Update(ctx context.Context, doc *content.Document, force bool) (bool, error) {
	state := s.deps.Fresh.Shows(doc, force)
	log := s.deps.Log.With().Str("field", s.Name()).Stringer("state", state).Logger()
	if !state.NeedsUpdate() {
		log.Debug().Msg("shows are fresh, skipping")
		return false, nil
	}

	raw, err := s.deps.Gen.Generate(ctx, s.deps.Prompts.Shows(s.count), textgen.Options{Label: s.Name(), JSON: true})
	if err != nil {
		return false, fmt.Errorf("generate shows: %w", err)
	}

	shows, err := ParseShows(raw)
	if err != nil {
		return false, err
	}
	for i := range shows {
		shows[i].Context = s.deps.Emphasis.Apply(shows[i].Context)
		if shows[i].Setlist == nil {
			shows[i].Setlist = []string{}
		}
		for j, song := range shows[i].Setlist {
			shows[i].Setlist[j] = s.deps.Emphasis.Apply(song)
		}
	}
	if !content.Chronological(shows) {
		log.Debug().Msg("model returned shows out of order, sorting")
		content.SortShows(shows)
	}

	if first, reunion := content.Mandated(shows); !first || !reunion {
		log.Warn().Bool("first_show", first).Bool("reunion", reunion).Msg("curated list is missing a mandated show")
	}
	if len(shows) != s.count {
		log.Warn().Int("got", len(shows)).Int("want", s.count).Msg("unexpected number of shows")
	}

	doc.Shows = shows
	doc.Normalize()
	s.deps.persist(doc, s.Name())
	log.Info().Int("shows", len(shows)).Msg("shows updated")
	return true, nil
}

// ParseShows accepts either a JSON array of shows or an object carrying the
// array under "shows". Anything else is ErrParse.
func ParseShows(raw string) ([]content.Show, error) {
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrParse)
	}

	var list gjson.Result
	switch res := gjson.Parse(raw); {
	case res.IsArray():
		list = res
	case res.IsObject() && res.Get("shows").IsArray():
		list = res.Get("shows")
	default:
		return nil, fmt.Errorf("%w: expected an array or an object with shows", ErrParse)
	}

	var shows []content.Show
	if err := json.Unmarshal([]byte(list.Raw), &shows); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if len(shows) == 0 {
		return nil, fmt.Errorf("%w: empty show list", ErrParse)
	}
	return shows, nil
}
