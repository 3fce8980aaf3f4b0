// Package prompt holds the fixed prompts used to generate site content
package prompt

import (
	"fmt"
	"strings"
)

// DefaultBand is the band the site is about
const DefaultBand = "Led Zeppelin"

// Generator builds the prompts for one band
type Generator struct {
	band string
}

// NewGenerator creates a new prompt generator. An empty band uses DefaultBand.
func NewGenerator(band string) *Generator {
	band = strings.TrimSpace(band)
	if band == "" {
		band = DefaultBand
	}
	return &Generator{band: band}
}

// Band returns the band name used in prompts
func (g *Generator) Band() string {
	return g.band
}

// History returns the prompt for the band history text
func (g *Generator) History() string {
	return fmt.Sprintf(historyTemplate, g.band)
}

// Profile returns the prompt for one member's biography
func (g *Generator) Profile(member string) string {
	return fmt.Sprintf(profileTemplate, member, g.band)
}

// Shows returns the prompt for the curated show list. The response must be a
// JSON array of {data, local, contexto, setlist}.
func (g *Generator) Shows(count int) string {
	return fmt.Sprintf(showsTemplate, count, g.band, count-2, count)
}
