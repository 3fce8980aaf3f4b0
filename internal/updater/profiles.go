package updater

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/briangreenhill/zepsite/internal/content"
	"github.com/briangreenhill/zepsite/internal/textgen"
)

// ProfilesMode picks how biographies are regenerated.
type ProfilesMode string

const (
	// PerMember walks the members one at a time, skipping complete ones
	// unless forced, with a delay between calls.
	PerMember ProfilesMode = "per-member"
	// AllMembers regenerates every member concurrently once the profiles
	// field is stale.
	AllMembers ProfilesMode = "all"
)

// DefaultMemberDelay spaces out per-member calls to stay under provider
// throughput limits.
const DefaultMemberDelay = 8 * time.Second

func ParseProfilesMode(s string) (ProfilesMode, error) {
	switch m := ProfilesMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return PerMember, nil
	case PerMember, AllMembers:
		return m, nil
	default:
		return "", fmt.Errorf("unknown profiles mode %q", s)
	}
}

// Profiles regenerates member biographies.
type Profiles struct {
	deps  Deps
	mode  ProfilesMode
	delay time.Duration
}

func NewProfiles(d Deps, mode ProfilesMode, delay time.Duration) *Profiles {
	if mode == "" {
		mode = PerMember
	}
	return &Profiles{deps: d.withDefaults(), mode: mode, delay: delay}
}

func (p *Profiles) Name() string { return "profiles" }

func (p *Profiles) Update(ctx context.Context, doc *content.Document, force bool) (bool, error) {
	doc.Normalize()

	var (
		changed bool
		err     error
	)
	if p.mode == AllMembers {
		changed, err = p.updateAll(ctx, doc, force)
	} else {
		changed, err = p.updatePerMember(ctx, doc, force)
	}

	if changed {
		p.deps.persist(doc, p.Name())
	}
	return changed, err
}

func (p *Profiles) updatePerMember(ctx context.Context, doc *content.Document, force bool) (bool, error) {
	var (
		errs    []error
		changed bool
		called  bool
	)

	for _, member := range p.deps.Fresh.Policy().Members {
		state := p.deps.Fresh.Member(doc, member, force)
		log := p.deps.Log.With().Str("field", p.Name()).Str("member", member).Stringer("state", state).Logger()
		if !state.NeedsUpdate() {
			log.Debug().Msg("profile is complete, skipping")
			continue
		}

		if called {
			if err := p.deps.Sleep(ctx, p.delay); err != nil {
				errs = append(errs, err)
				break
			}
		}
		called = true

		text, err := p.generate(ctx, member)
		if err != nil {
			errs = append(errs, err)
			if errors.Is(err, textgen.ErrNoCredential) || ctx.Err() != nil {
				break
			}
			continue
		}
		doc.Profiles[member] = text
		changed = true
		log.Info().Int("chars", content.Len(text)).Msg("profile updated")
	}

	return changed, errors.Join(errs...)
}

func (p *Profiles) updateAll(ctx context.Context, doc *content.Document, force bool) (bool, error) {
	state := p.deps.Fresh.Profiles(doc, force)
	if !state.NeedsUpdate() {
		p.deps.Log.Debug().Str("field", p.Name()).Msg("profiles are complete, skipping")
		return false, nil
	}

	members := p.deps.Fresh.Policy().Members
	texts := make([]string, len(members))
	errs := make([]error, len(members))

	var g errgroup.Group
	for i, member := range members {
		g.Go(func() error {
			texts[i], errs[i] = p.generate(ctx, member)
			return nil
		})
	}
	_ = g.Wait()

	changed := false
	for i, member := range members {
		if errs[i] != nil {
			continue
		}
		doc.Profiles[member] = texts[i]
		changed = true
	}
	p.deps.Log.Info().Str("field", p.Name()).Bool("changed", changed).Msg("profiles regenerated")
	return changed, errors.Join(errs...)
}

func (p *Profiles) generate(ctx context.Context, member string) (string, error) {
	text, err := p.deps.Gen.Generate(ctx, p.deps.Prompts.Profile(member), textgen.Options{Label: member})
	if err != nil {
		return "", fmt.Errorf("generate profile %s: %w", member, err)
	}
	return text, nil
}
