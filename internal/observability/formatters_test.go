package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/collapse"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/ranking"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/rewriting"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintDecision(t *testing.T) {
	var buf bytes.Buffer
	catalog := styles.Default()
	engine := ranking.NewEngine(catalog)
	profile := &types.ReaderProfile{HasDyslexiaPattern: true}

	d := engine.Decide("One short sentence. Another one here.", profile, nil)
	NewPrinter(&buf).PrintDecision(catalog, d)
	output := buf.String()

	assert.Contains(t, output, "DECISION TRACE")
	assert.Contains(t, output, "Recommended: "+catalog.Title(d.Recommended))
	assert.Contains(t, output, "*"+string(d.Recommended))
	for _, key := range catalog.Keys() {
		assert.Contains(t, output, string(key))
	}
	assert.Contains(t, output, ranking.SourceOnboarding)
	assert.Contains(t, output, "sparse")
}

func TestPrintCandidates(t *testing.T) {
	var buf bytes.Buffer
	candidates := []rewriting.Candidate{
		{Style: styles.Simplified, Title: "Simplified", Ordinal: 1, Content: "Short text."},
		{Style: styles.BulletPoints, Title: "Bullet Points", Ordinal: 2, Content: strings.Repeat("- point\n", 20), Fallback: true},
	}

	NewPrinter(&buf).PrintCandidates(candidates, styles.Simplified)
	output := buf.String()

	assert.Contains(t, output, "VERSION 1: SIMPLIFIED (recommended)")
	assert.Contains(t, output, "VERSION 2: BULLET POINTS [fallback]")
	assert.Contains(t, output, "... and 8 more lines")
}

func TestPrintCollapse(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCollapse(nil)
	assert.Empty(t, buf.String())

	p.PrintCollapse(&collapse.Outcome{
		Style:     styles.Simplified,
		Title:     "Simplified",
		Ordinal:   1,
		Reason:    collapse.ReasonDefault,
		NoContent: true,
		ProfileUpdates: collapse.ProfileUpdates{
			StyleWeights: map[styles.Key]float64{styles.Simplified: 0.667, styles.BulletPoints: 0.333},
		},
	})
	output := buf.String()
	assert.Contains(t, output, "COLLAPSED")
	assert.Contains(t, output, "showing the source text")
	assert.Contains(t, output, "0.667")
	assert.Less(t, strings.Index(output, "bullet_points"), strings.Index(output, "simplified  "))
}

func TestPrintBox_WrapsLongLines(t *testing.T) {
	var buf bytes.Buffer
	long := strings.Repeat("readable ", 30) + strings.Repeat("x", 100)

	NewPrinter(&buf).printBox("TITLE", long)

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
	assert.Contains(t, buf.String(), "readable readable")
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"short"}, wrap("short", 10))
	assert.Equal(t, []string{"one two", "three"}, wrap("one two three", 8))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, wrap("abcdefghij", 4))
}
