package textgen

import (
	"fmt"
	"regexp"
	"strings"
)

// EmphasisMode selects what happens to *term* markup in free text.
type EmphasisMode string

const (
	EmphasisItalic EmphasisMode = "italic"
	EmphasisStrip  EmphasisMode = "strip"
)

// ParseEmphasisMode accepts "italic" (default when empty) or "strip".
func ParseEmphasisMode(s string) (EmphasisMode, error) {
	switch m := EmphasisMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return EmphasisItalic, nil
	case EmphasisItalic, EmphasisStrip:
		return m, nil
	default:
		return "", fmt.Errorf("unknown emphasis mode %q", s)
	}
}

var (
	strongRe   = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	emphasisRe = regexp.MustCompile(`\*([^*\n]+)\*`)
)

// Emphasize turns *term* (and **term**) into <i>term</i>. Text that is
// already converted passes through unchanged.
func Emphasize(s string) string {
	s = strongRe.ReplaceAllString(s, "<i>$1</i>")
	return emphasisRe.ReplaceAllString(s, "<i>$1</i>")
}

// StripEmphasis removes the asterisks and keeps the term.
func StripEmphasis(s string) string {
	s = strongRe.ReplaceAllString(s, "$1")
	return emphasisRe.ReplaceAllString(s, "$1")
}

// Apply runs the conversion selected by m.
func (m EmphasisMode) Apply(s string) string {
	if m == EmphasisStrip {
		return StripEmphasis(s)
	}
	return Emphasize(s)
}

// CleanJSON prepares a structured-output response for parsing: code fences
// are removed and anything before the first [ or { and after the last ] or
// } is dropped.
func CleanJSON(s string) string {
	s = stripCodeFences(s)
	if start := strings.IndexAny(s, "[{"); start > 0 {
		s = s[start:]
	}
	if end := strings.LastIndexAny(s, "]}"); end >= 0 && end < len(s)-1 {
		s = s[:end+1]
	}
	return strings.TrimSpace(s)
}

// stripCodeFences handles ```json, ``` and other language tags.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	body := trimmed[3:]
	if nl := strings.Index(body, "\n"); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = strings.TrimPrefix(strings.TrimPrefix(body, "json"), "JSON")
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}
