// Package freshness decides which content fields need to be regenerated.
package freshness

import (
	"time"

	"github.com/briangreenhill/zepsite/internal/content"
)

// State of one field.
type State int

const (
	Fresh State = iota // keep what is cached
	Stale              // regenerate, cached value is missing or too short
	Force              // regenerate unconditionally
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	case Force:
		return "force"
	default:
		return "unknown"
	}
}

// NeedsUpdate is true for Stale and Force.
func (s State) NeedsUpdate() bool {
	return s != Fresh
}

// Policy holds the thresholds. The zero value is not useful; start from
// DefaultPolicy.
type Policy struct {
	HistoryMinLen int           // history is fresh when longer than this
	ProfileMinLen int           // a biography is complete at this length or more
	Members       []string      // required profile names
	MaxAge        time.Duration // 0 disables the file-age trigger
}

func DefaultPolicy() Policy {
	return Policy{
		HistoryMinLen: 100,
		ProfileMinLen: 50,
		Members:       content.Members,
		MaxAge:        24 * time.Hour,
	}
}

// Controller evaluates a Policy against a document.
type Controller struct {
	policy Policy
}

func NewController(p Policy) *Controller {
	if len(p.Members) == 0 {
		p.Members = content.Members
	}
	return &Controller{policy: p}
}

// Policy returns the thresholds in use.
func (c *Controller) Policy() Policy {
	return c.policy
}

func (c *Controller) History(doc *content.Document, force bool) State {
	if force {
		return Force
	}
	if content.Len(doc.History) <= c.policy.HistoryMinLen {
		return Stale
	}
	return Fresh
}

// Profiles is Stale when any required member is missing or short.
func (c *Controller) Profiles(doc *content.Document, force bool) State {
	if force {
		return Force
	}
	for _, m := range c.policy.Members {
		if c.Member(doc, m, false) != Fresh {
			return Stale
		}
	}
	return Fresh
}

// Member evaluates a single biography.
func (c *Controller) Member(doc *content.Document, name string, force bool) State {
	if force {
		return Force
	}
	bio, ok := doc.Profiles[name]
	if !ok || content.Len(bio) < c.policy.ProfileMinLen {
		return Stale
	}
	return Fresh
}

func (c *Controller) Shows(doc *content.Document, force bool) State {
	if force {
		return Force
	}
	if len(doc.Shows) == 0 {
		return Stale
	}
	return Fresh
}

// Global reports whether every field should be regenerated regardless of
// its content: the store is older than MaxAge (or was never written), or
// the history is empty. It is always false when MaxAge is 0.
func (c *Controller) Global(doc *content.Document, modTime time.Time, stored bool, now time.Time) bool {
	if c.policy.MaxAge <= 0 {
		return false
	}
	if !stored || now.Sub(modTime) > c.policy.MaxAge {
		return true
	}
	return doc.History == ""
}

// Plan is the per-field decision for one refresh run.
type Plan struct {
	History  State
	Profiles State
	Shows    State
}

// Plan evaluates every field with the same force flag.
func (c *Controller) Plan(doc *content.Document, force bool) Plan {
	return Plan{
		History:  c.History(doc, force),
		Profiles: c.Profiles(doc, force),
		Shows:    c.Shows(doc, force),
	}
}
