package freshness

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/briangreenhill/zepsite/internal/content"
)

func fullDoc() *content.Document {
	doc := content.Empty()
	doc.History = strings.Repeat("h", 101)
	for _, m := range content.Members {
		doc.Profiles[m] = strings.Repeat("b", 50)
	}
	doc.Shows = []content.Show{{Date: "07/09/1968"}}
	return doc
}

func TestEmptyDocumentIsStale(t *testing.T) {
	c := NewController(DefaultPolicy())

	plan := c.Plan(content.Empty(), false)
	assert.Equal(t, Plan{History: Stale, Profiles: Stale, Shows: Stale}, plan)
}

func TestFullDocumentIsFresh(t *testing.T) {
	c := NewController(DefaultPolicy())

	assert.Equal(t, Plan{History: Fresh, Profiles: Fresh, Shows: Fresh}, c.Plan(fullDoc(), false))
	assert.Equal(t, Plan{History: Force, Profiles: Force, Shows: Force}, c.Plan(fullDoc(), true))
}

func TestHistoryThreshold(t *testing.T) {
	c := NewController(DefaultPolicy())
	doc := content.Empty()

	doc.History = strings.Repeat("a", 100)
	assert.Equal(t, Stale, c.History(doc, false))

	doc.History = strings.Repeat("a", 101)
	assert.Equal(t, Fresh, c.History(doc, false))

	// characters, not bytes
	doc.History = strings.Repeat("ã", 60)
	assert.Equal(t, Stale, c.History(doc, false))
}

func TestProfilesStrict(t *testing.T) {
	c := NewController(DefaultPolicy())

	tests := []struct {
		name   string
		mutate func(*content.Document)
		want   State
	}{
		{"complete", func(*content.Document) {}, Fresh},
		{"missing member", func(d *content.Document) { delete(d.Profiles, "John Bonham") }, Stale},
		{"short member", func(d *content.Document) { d.Profiles["Robert Plant"] = "curta" }, Stale},
		{"four wrong names", func(d *content.Document) {
			d.Profiles = map[string]string{
				"a": strings.Repeat("x", 60), "b": strings.Repeat("x", 60),
				"c": strings.Repeat("x", 60), "d": strings.Repeat("x", 60),
			}
		}, Stale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := fullDoc()
			tt.mutate(doc)
			assert.Equal(t, tt.want, c.Profiles(doc, false))
		})
	}
}

func TestMember(t *testing.T) {
	c := NewController(DefaultPolicy())
	doc := fullDoc()
	doc.Profiles["Jimmy Page"] = "x"

	assert.Equal(t, Stale, c.Member(doc, "Jimmy Page", false))
	assert.Equal(t, Fresh, c.Member(doc, "Robert Plant", false))
	assert.Equal(t, Force, c.Member(doc, "Robert Plant", true))
}

func TestConfigurableThresholds(t *testing.T) {
	c := NewController(Policy{HistoryMinLen: 5, ProfileMinLen: 2, Members: []string{"Solo"}})
	doc := content.Empty()
	doc.History = "123456"
	doc.Profiles["Solo"] = "ok"

	assert.Equal(t, Fresh, c.History(doc, false))
	assert.Equal(t, Fresh, c.Profiles(doc, false))
}

func TestGlobal(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewController(DefaultPolicy())

	tests := []struct {
		name    string
		doc     *content.Document
		modTime time.Time
		stored  bool
		want    bool
	}{
		{"recent and populated", fullDoc(), now.Add(-time.Hour), true, false},
		{"old and populated", fullDoc(), now.Add(-25 * time.Hour), true, true},
		{"recent but empty history", content.Empty(), now.Add(-time.Hour), true, true},
		{"never stored", fullDoc(), time.Time{}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Global(tt.doc, tt.modTime, tt.stored, now))
		})
	}
}

func TestGlobalDisabled(t *testing.T) {
	p := DefaultPolicy()
	p.MaxAge = 0
	c := NewController(p)

	assert.False(t, c.Global(content.Empty(), time.Time{}, false, time.Now()))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "fresh", Fresh.String())
	assert.Equal(t, "stale", Stale.String())
	assert.Equal(t, "force", Force.String())
	assert.False(t, Fresh.NeedsUpdate())
	assert.True(t, Stale.NeedsUpdate())
}
