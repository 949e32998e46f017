package ranking

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/density"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
)

// Decision is the outcome of scoring every style for one reader and one text.
type Decision struct {
	Recommended styles.Key
	// Scores holds the total per style, rounded to three decimals.
	Scores  Scores
	Metrics density.Metrics
	// Components holds the unrounded per-source scores, keyed by source name.
	Components map[string]Scores
}

// Source names used in Decision.Components.
const (
	SourceOnboarding = "onboarding"
	SourceHistory    = "history"
	SourceDensity    = "density"
)

// Engine is the decision engine. It is stateless apart from its catalog and
// safe for concurrent use.
type Engine struct {
	catalog *styles.Catalog
	now     func() time.Time
}

// NewEngine creates an engine over catalog.
func NewEngine(catalog *styles.Catalog) *Engine {
	return &Engine{catalog: catalog, now: time.Now}
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *styles.Catalog {
	return e.catalog
}

// Decide scores every style against the reader's profile, the reader's
// selection history and the density of text, and picks the style with the
// highest total. Ties go to the style that comes first in catalog order, so
// an all-zero board recommends the first catalog style.
func (e *Engine) Decide(text string, profile *types.ReaderProfile, state *types.LearningState) Decision {
	metrics := density.Analyze(text)

	onboarding := computeOnboardingScores(e.catalog, profile)
	history := computeHistoryScores(e.catalog, state)
	dense := computeDensityScores(e.catalog, metrics)

	totals := zeroScores(e.catalog)
	recommended := e.catalog.First()
	best := math.Inf(-1)
	for _, key := range e.catalog.Keys() {
		total := onboarding[key] + history[key] + dense[key]
		totals[key] = round3(total)
		if total > best {
			best = total
			recommended = key
		}
	}

	return Decision{
		Recommended: recommended,
		Scores:      totals,
		Metrics:     metrics,
		Components: map[string]Scores{
			SourceOnboarding: onboarding,
			SourceHistory:    history,
			SourceDensity:    dense,
		},
	}
}

// Recommend returns only the recommended style.
func (e *Engine) Recommend(text string, profile *types.ReaderProfile, state *types.LearningState) styles.Key {
	return e.Decide(text, profile, state).Recommended
}

// Trace converts a decision into the trace stamped on a document.
func (e *Engine) Trace(d Decision) types.DecisionTrace {
	scores := make(map[styles.Key]float64, len(d.Scores))
	for k, v := range d.Scores {
		scores[k] = v
	}
	return types.DecisionTrace{
		RecommendedStyle: d.Recommended,
		Scores:           scores,
		Metrics:          d.Metrics,
		DecidedAt:        e.now().UTC(),
	}
}

// Explain renders a one-line summary of the decision, in catalog order.
func (e *Engine) Explain(d Decision) string {
	parts := make([]string, 0, e.catalog.Len())
	for _, key := range e.catalog.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%.3f", key, d.Scores[key]))
	}
	densityNote := "sparse"
	if d.Metrics.Dense {
		densityNote = "dense"
	}
	return fmt.Sprintf("recommended %s (%s; text %s, %.2f words/sentence)",
		d.Recommended, strings.Join(parts, ", "), densityNote, d.Metrics.AvgWordsPerSentence)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
