// Package search finds a query across the cached band content and marks the
// matches for display.
package search

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/briangreenhill/zepsite/internal/content"
)

// HistoryTitle is the section title shown for a history match.
const HistoryTitle = "História"

// Section is a matched free-text block.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Results groups matches by section. Timeline and album entries keep every
// field of the cached item; matched fields are highlighted.
type Results struct {
	Query    string            `json:"query"`
	History  *Section          `json:"history"`
	Timeline []map[string]any  `json:"timeline"`
	Albums   []map[string]any  `json:"albums"`
	Profiles map[string]string `json:"profiles"`
}

// Empty reports whether nothing matched.
func (r Results) Empty() bool {
	return r.History == nil && len(r.Timeline) == 0 && len(r.Albums) == 0 && len(r.Profiles) == 0
}

// Search matches query case-insensitively as a plain substring. A blank query
// matches nothing.
func Search(doc *content.Document, query string) Results {
	res := Results{
		Query:    query,
		Timeline: []map[string]any{},
		Albums:   []map[string]any{},
		Profiles: map[string]string{},
	}
	if strings.TrimSpace(query) == "" || doc == nil {
		return res
	}
	m := newMatcher(query)

	if m.contains(doc.History) {
		res.History = &Section{Title: HistoryTitle, Content: m.highlight(doc.History)}
	}

	if raw, ok := doc.Raw(content.FieldTimeline); ok {
		gjson.ParseBytes(raw).ForEach(func(_, item gjson.Result) bool {
			year, text := item.Get("year").String(), item.Get("text").String()
			if !m.contains(year) && !m.contains(text) {
				return true
			}
			entry := object(item)
			entry["year"] = m.highlight(year)
			entry["text"] = m.highlight(text)
			res.Timeline = append(res.Timeline, entry)
			return true
		})
	}

	if raw, ok := doc.Raw(content.FieldAlbums); ok {
		gjson.ParseBytes(raw).ForEach(func(_, item gjson.Result) bool {
			name := item.Get("album").String()
			desc := item.Get("description").String()
			var tracks []string
			trackHit := false
			item.Get("tracks").ForEach(func(_, t gjson.Result) bool {
				tracks = append(tracks, t.String())
				trackHit = trackHit || m.contains(t.String())
				return true
			})
			if !m.contains(name) && !m.contains(item.Get("year").String()) && !m.contains(desc) && !trackHit {
				return true
			}
			entry := object(item)
			entry["album"] = m.highlight(name)
			entry["description"] = m.highlight(desc)
			marked := make([]string, len(tracks))
			for i, t := range tracks {
				marked[i] = m.highlight(t)
			}
			entry["tracks"] = marked
			res.Albums = append(res.Albums, entry)
			return true
		})
	}

	for name, text := range doc.Profiles {
		if m.contains(name) || m.contains(text) {
			res.Profiles[name] = m.highlight(text)
		}
	}
	return res
}

// Highlight wraps every case-insensitive occurrence of query in <mark>.
// Regex metacharacters in query match literally.
func Highlight(text, query string) string {
	if query == "" {
		return text
	}
	return newMatcher(query).highlight(text)
}

type matcher struct {
	lower string
	re    *regexp.Regexp
}

func newMatcher(query string) matcher {
	return matcher{
		lower: strings.ToLower(query),
		re:    regexp.MustCompile("(?i)(" + regexp.QuoteMeta(query) + ")"),
	}
}

func (m matcher) contains(s string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), m.lower)
}

func (m matcher) highlight(s string) string {
	return m.re.ReplaceAllString(s, "<mark>$1</mark>")
}

func object(item gjson.Result) map[string]any {
	if v, ok := item.Value().(map[string]interface{}); ok {
		return v
	}
	return map[string]any{}
}
