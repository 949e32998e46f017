// Package ranking scores the rewrite styles for a reader and picks the recommended one.
package ranking

import (
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/density"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
)

// Onboarding bonuses. A profile can trigger several at once.
const (
	dyslexiaPatternBonus  = 1.1
	vocabularyBonus       = 1.1
	slowReaderBonus       = 0.9
	sentenceLengthBonus   = 0.9
	recommendedStyleBonus = 1.4
)

// historyWeight scales a style's share of past selections.
const historyWeight = 1.2

// Density bonuses.
const (
	denseBulletBonus         = 1.0
	denseRestructuredBonus   = 0.4
	sparseSimplifiedBonus    = 0.4
	sparsePlainLanguageBonus = 0.3
)

// Scores maps every catalog key to a score.
type Scores map[styles.Key]float64

// zeroScores returns a score map with an explicit zero for every catalog key.
func zeroScores(catalog *styles.Catalog) Scores {
	scores := make(Scores, catalog.Len())
	for _, key := range catalog.Keys() {
		scores[key] = 0
	}
	return scores
}

// add credits key when it is a catalog key; anything else is ignored so that no
// scorer can introduce a key outside the catalog.
func (s Scores) add(key styles.Key, amount float64) {
	if _, ok := s[key]; ok {
		s[key] += amount
	}
}

// computeOnboardingScores scores styles from the reader's onboarding profile.
func computeOnboardingScores(catalog *styles.Catalog, profile *types.ReaderProfile) Scores {
	scores := zeroScores(catalog)
	if profile == nil {
		return scores
	}

	if profile.HasDyslexiaPattern {
		scores.add(styles.BulletPoints, dyslexiaPatternBonus)
	}
	if profile.MainStruggle == types.StruggleVocabulary {
		scores.add(styles.PlainLanguage, vocabularyBonus)
	}
	if profile.ReadingSpeed == types.ReadingSpeedSlow {
		scores.add(styles.Simplified, slowReaderBonus)
	}
	if profile.MainStruggle == types.StruggleSentenceLength {
		scores.add(styles.Restructured, sentenceLengthBonus)
	}
	if key, ok := catalog.Normalize(profile.RecommendedStyle); ok {
		scores.add(key, recommendedStyleBonus)
	}

	return scores
}

// computeHistoryScores scores styles proportionally to how often the reader
// picked them before.
func computeHistoryScores(catalog *styles.Catalog, state *types.LearningState) Scores {
	scores := zeroScores(catalog)
	if state == nil {
		return scores
	}

	total := 0
	for _, key := range catalog.Keys() {
		total += state.StyleCounts[key]
	}
	if total <= 0 {
		return scores
	}

	for _, key := range catalog.Keys() {
		scores[key] = float64(state.StyleCounts[key]) / float64(total) * historyWeight
	}
	return scores
}

// computeDensityScores favors compression-oriented styles for dense text.
func computeDensityScores(catalog *styles.Catalog, metrics density.Metrics) Scores {
	scores := zeroScores(catalog)
	if metrics.Dense {
		scores.add(styles.BulletPoints, denseBulletBonus)
		scores.add(styles.Restructured, denseRestructuredBonus)
	} else {
		scores.add(styles.Simplified, sparseSimplifiedBonus)
		scores.add(styles.PlainLanguage, sparsePlainLanguageBonus)
	}
	return scores
}
