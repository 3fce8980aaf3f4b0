// Package content defines the cached site document and its show records.
package content

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
	"unicode/utf8"
)

// DefaultBandKey is the top-level key the site's data file nests the
// document under.
const DefaultBandKey = "led_zeppelin"

// Members are the four fixed identities a profile can be written for.
var Members = []string{"Jimmy Page", "Robert Plant", "John Paul Jones", "John Bonham"}

// Wire names of the generated fields.
const (
	fieldHistory  = "historia"
	fieldProfiles = "perfis"
	fieldShows    = "shows"

	FieldTimeline = "timeline"
	FieldAlbums   = "albuns"
)

// ShowDateLayout is the d/m/yyyy layout used by show records. Day and month
// parse with or without a leading zero.
const ShowDateLayout = "2/1/2006"

// Show is a single curated concert.
type Show struct {
	Date    string   `json:"data"`
	Venue   string   `json:"local"`
	Context string   `json:"contexto"`
	Setlist []string `json:"setlist"`
}

// Time parses the show date. ok is false when the date does not follow
// ShowDateLayout.
func (s Show) Time() (t time.Time, ok bool) {
	t, err := time.Parse(ShowDateLayout, s.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Document is the content cache. Keys other than the generated fields
// (timeline, albuns, ...) are kept as raw JSON and written back untouched.
type Document struct {
	History  string
	Profiles map[string]string
	Shows    []Show

	extra map[string]json.RawMessage
}

// Empty returns a document with every generated field defaulted.
func Empty() *Document {
	return &Document{
		Profiles: map[string]string{},
		Shows:    []Show{},
	}
}

// Normalize makes sure the profiles map and the shows slice are non-nil so
// they serialize as {} and [] instead of null.
func (d *Document) Normalize() {
	if d.Profiles == nil {
		d.Profiles = map[string]string{}
	}
	if d.Shows == nil {
		d.Shows = []Show{}
	}
}

// Raw returns a preserved key verbatim.
func (d *Document) Raw(key string) (json.RawMessage, bool) {
	raw, ok := d.extra[key]
	return raw, ok
}

// SetRaw stores a key that is not one of the generated fields.
func (d *Document) SetRaw(key string, raw json.RawMessage) {
	if d.extra == nil {
		d.extra = map[string]json.RawMessage{}
	}
	d.extra[key] = raw
}

// UnmarshalJSON decodes the generated fields and keeps everything else. A
// generated field with the wrong JSON type falls back to its default rather
// than failing the whole document.
func (d *Document) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	*d = *Empty()
	for key, raw := range fields {
		switch key {
		case fieldHistory:
			var s string
			if json.Unmarshal(raw, &s) == nil {
				d.History = s
			}
		case fieldProfiles:
			var p map[string]string
			if json.Unmarshal(raw, &p) == nil && p != nil {
				d.Profiles = p
			}
		case fieldShows:
			var shows []Show
			if json.Unmarshal(raw, &shows) == nil && shows != nil {
				d.Shows = shows
			}
		default:
			d.SetRaw(key, raw)
		}
	}
	return nil
}

// MarshalJSON writes the generated fields alongside the preserved keys.
// Keys come out sorted, so equal documents produce equal bytes.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(d.extra)+3)
	for k, v := range d.extra {
		out[k] = v
	}

	profiles := d.Profiles
	if profiles == nil {
		profiles = map[string]string{}
	}
	shows := d.Shows
	if shows == nil {
		shows = []Show{}
	}

	var err error
	if out[fieldHistory], err = marshalNoEscape(d.History); err != nil {
		return nil, err
	}
	if out[fieldProfiles], err = marshalNoEscape(profiles); err != nil {
		return nil, err
	}
	if out[fieldShows], err = marshalNoEscape(shows); err != nil {
		return nil, err
	}
	return marshalNoEscape(out)
}

// marshalNoEscape keeps <i> markup readable in the file instead of <.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Len counts characters, not bytes; biographies are written in Portuguese.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// SortShows orders shows chronologically. Shows with an unparseable date keep
// their relative order and go last.
func SortShows(shows []Show) {
	sort.SliceStable(shows, func(i, j int) bool {
		ti, iok := shows[i].Time()
		tj, jok := shows[j].Time()
		switch {
		case iok && jok:
			return ti.Before(tj)
		case iok:
			return true
		default:
			return false
		}
	})
}

// Chronological reports whether shows are already in date order.
func Chronological(shows []Show) bool {
	var prev time.Time
	for i, s := range shows {
		t, ok := s.Time()
		if !ok {
			return false
		}
		if i > 0 && t.Before(prev) {
			return false
		}
		prev = t
	}
	return true
}

// Debut window: the first official show (Gladsaxe, 7 September 1968) up to
// the first date billed as Led Zeppelin (25 October 1968). Models cite either.
var (
	debutFrom = time.Date(1968, time.September, 7, 0, 0, 0, 0, time.UTC)
	debutTo   = time.Date(1968, time.October, 25, 0, 0, 0, 0, time.UTC)
)

// Mandated reports whether the list contains the band's first official show
// (a date inside the autumn 1968 debut window) and the Celebration Day
// reunion (any 2007 date, the band's only show that year).
func Mandated(shows []Show) (first, reunion bool) {
	for _, s := range shows {
		t, ok := s.Time()
		if !ok {
			continue
		}
		switch {
		case !t.Before(debutFrom) && !t.After(debutTo):
			first = true
		case t.Year() == 2007:
			reunion = true
		}
	}
	return first, reunion
}
