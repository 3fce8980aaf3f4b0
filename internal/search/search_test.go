package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/zepsite/internal/content"
)

const fixture = `{
	"historia": "Formada em Londres em 1968, a banda definiu o hard rock.",
	"perfis": {
		"Jimmy Page": "Guitarrista e produtor da banda.",
		"John Bonham": "Baterista de Redditch."
	},
	"shows": [],
	"timeline": [
		{"year": "1968", "text": "Formação da banda em Londres."},
		{"year": "1980", "text": "Morte de John Bonham.", "icon": "star"}
	],
	"albuns": [
		{"album": "Led Zeppelin IV", "year": 1971, "description": "O quarto disco.", "tracks": ["Black Dog", "Stairway to Heaven"], "cover": "iv.jpg"},
		{"album": "Physical Graffiti", "year": 1975, "description": "Álbum duplo.", "tracks": ["Kashmir"]}
	]
}`

func loadFixture(t *testing.T) *content.Document {
	t.Helper()
	var doc content.Document
	require.NoError(t, json.Unmarshal([]byte(fixture), &doc))
	return &doc
}

func TestSearchAcrossSections(t *testing.T) {
	doc := loadFixture(t)

	res := Search(doc, "londres")
	require.NotNil(t, res.History)
	assert.Equal(t, HistoryTitle, res.History.Title)
	assert.Contains(t, res.History.Content, "<mark>Londres</mark>")
	require.Len(t, res.Timeline, 1)
	assert.Equal(t, "Formação da banda em <mark>Londres</mark>.", res.Timeline[0]["text"])
	assert.Empty(t, res.Albums)
	assert.Empty(t, res.Profiles)
}

func TestSearchAlbumsByTrackAndYear(t *testing.T) {
	doc := loadFixture(t)

	res := Search(doc, "kashmir")
	require.Len(t, res.Albums, 1)
	assert.Equal(t, "Physical Graffiti", res.Albums[0]["album"])
	assert.Equal(t, []string{"<mark>Kashmir</mark>"}, res.Albums[0]["tracks"])

	res = Search(doc, "1971")
	require.Len(t, res.Albums, 1)
	assert.Equal(t, "iv.jpg", res.Albums[0]["cover"])
	assert.Equal(t, float64(1971), res.Albums[0]["year"])
}

func TestSearchProfilesByName(t *testing.T) {
	doc := loadFixture(t)

	res := Search(doc, "bonham")
	assert.Equal(t, map[string]string{"John Bonham": "Baterista de Redditch."}, res.Profiles)
	require.Len(t, res.Timeline, 1)
	assert.Equal(t, "star", res.Timeline[0]["icon"])
}

func TestSearchBlankQuery(t *testing.T) {
	doc := loadFixture(t)
	for _, q := range []string{"", "   "} {
		res := Search(doc, q)
		assert.True(t, res.Empty(), "query %q", q)
	}
}

func TestSearchWithoutPreservedSections(t *testing.T) {
	doc := content.Empty()
	doc.History = "Led Zeppelin"
	res := Search(doc, "zep")
	require.NotNil(t, res.History)
	assert.Empty(t, res.Timeline)
	assert.Empty(t, res.Albums)
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		name, text, query, want string
	}{
		{"case insensitive", "Stairway to Heaven", "heaven", "Stairway to <mark>Heaven</mark>"},
		{"every occurrence", "a A a", "a", "<mark>a</mark> <mark>A</mark> <mark>a</mark>"},
		{"metacharacters", "Led Zeppelin (1969)", "(1969)", "Led Zeppelin <mark>(1969)</mark>"},
		{"no match", "Kashmir", "dog", "Kashmir"},
		{"empty query", "Kashmir", "", "Kashmir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.text, tt.query))
		})
	}
}
