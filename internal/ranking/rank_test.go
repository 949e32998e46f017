package ranking

import (
	"strings"
	"testing"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shortText = "The cat sat. It was warm. We went home."

func denseText() string {
	sentence := strings.Repeat("word ", 30)
	return strings.TrimSpace(sentence) + ". " + strings.TrimSpace(sentence) + "."
}

func TestDecide_DenseTextFavorsBulletPoints(t *testing.T) {
	engine := NewEngine(styles.Default())
	state := types.NewLearningState()

	d := engine.Decide(denseText(), &types.ReaderProfile{}, &state)

	assert.Equal(t, styles.BulletPoints, d.Recommended)
	assert.True(t, d.Metrics.Dense)
	assert.InDelta(t, 1.0, d.Scores[styles.BulletPoints], 1e-9)
	assert.InDelta(t, 0.4, d.Scores[styles.Restructured], 1e-9)
}

func TestDecide_DyslexiaPatternOnSparseText(t *testing.T) {
	engine := NewEngine(styles.Default())

	d := engine.Decide(shortText, &types.ReaderProfile{HasDyslexiaPattern: true}, nil)

	assert.Equal(t, styles.BulletPoints, d.Recommended)
	assert.InDelta(t, 1.1, d.Scores[styles.BulletPoints], 1e-9)
	assert.InDelta(t, 0.4, d.Scores[styles.Simplified], 1e-9)
}

func TestDecide_VocabularyWithRecommendedPlainLanguage(t *testing.T) {
	engine := NewEngine(styles.Default())
	profile := &types.ReaderProfile{
		MainStruggle:     types.StruggleVocabulary,
		RecommendedStyle: "plain_language",
	}

	d := engine.Decide(shortText, profile, nil)

	assert.Equal(t, styles.PlainLanguage, d.Recommended)
	assert.InDelta(t, 2.8, d.Scores[styles.PlainLanguage], 1e-9)
}

func TestDecide_HistoryDominates(t *testing.T) {
	engine := NewEngine(styles.Default())
	state := types.NewLearningState()
	state.StyleCounts[styles.PlainLanguage] = 4
	state.StyleCounts[styles.Simplified] = 1

	d := engine.Decide(shortText, nil, &state)

	assert.Equal(t, styles.PlainLanguage, d.Recommended)
	assert.InDelta(t, 1.26, d.Scores[styles.PlainLanguage], 1e-9)
	assert.InDelta(t, 0.64, d.Scores[styles.Simplified], 1e-9)
	assert.InDelta(t, 0.96, d.Components[SourceHistory][styles.PlainLanguage], 1e-9)
}

func TestDecide_EmptyInputsRecommendFirstStyle(t *testing.T) {
	engine := NewEngine(styles.Default())

	d := engine.Decide("", nil, nil)

	assert.Equal(t, styles.Simplified, d.Recommended)
	assert.Equal(t, 0, d.Metrics.WordCount)
	assert.False(t, d.Metrics.Dense)
}

func TestDecide_TieBreaksToCatalogOrder(t *testing.T) {
	catalog, err := styles.NewCatalog([]styles.Style{
		{Key: "alpha", Title: "Alpha"},
		{Key: "beta", Title: "Beta"},
	}, nil)
	require.NoError(t, err)
	engine := NewEngine(catalog)

	// Neither key earns any score, so every total is zero.
	d := engine.Decide(shortText, &types.ReaderProfile{HasDyslexiaPattern: true}, nil)

	assert.Equal(t, styles.Key("alpha"), d.Recommended)
	assert.Equal(t, Scores{"alpha": 0, "beta": 0}, d.Scores)
}

func TestDecide_EqualHistoryKeepsEarlierStyle(t *testing.T) {
	catalog, err := styles.NewCatalog([]styles.Style{
		{Key: "alpha", Title: "Alpha"},
		{Key: "beta", Title: "Beta"},
	}, nil)
	require.NoError(t, err)
	engine := NewEngine(catalog)
	state := types.NewLearningState()
	state.StyleCounts["alpha"] = 3
	state.StyleCounts["beta"] = 3

	assert.Equal(t, styles.Key("alpha"), engine.Recommend(shortText, nil, &state))
}

func TestDecide_IsDeterministic(t *testing.T) {
	engine := NewEngine(styles.Default())
	state := types.NewLearningState()
	state.StyleCounts[styles.Restructured] = 2
	state.StyleCounts[styles.BulletPoints] = 2
	profile := &types.ReaderProfile{ReadingSpeed: types.ReadingSpeedSlow, MainStruggle: types.StruggleSentenceLength}

	first := engine.Decide(denseText(), profile, &state)
	for i := 0; i < 50; i++ {
		again := engine.Decide(denseText(), profile, &state)
		assert.Equal(t, first.Recommended, again.Recommended)
		assert.Equal(t, first.Scores, again.Scores)
	}
}

func TestDecide_RecommendationAlwaysInCatalog(t *testing.T) {
	catalog := styles.Default()
	engine := NewEngine(catalog)
	state := types.NewLearningState()
	state.StyleCounts["retired_style"] = 100

	profiles := []*types.ReaderProfile{
		nil,
		{RecommendedStyle: "retired_style"},
		{HasDyslexiaPattern: true, MainStruggle: types.StruggleVocabulary},
	}
	for _, p := range profiles {
		for _, text := range []string{"", shortText, denseText()} {
			d := engine.Decide(text, p, &state)
			assert.True(t, catalog.Contains(d.Recommended))
			assert.Len(t, d.Scores, catalog.Len())
		}
	}
}

func TestTrace(t *testing.T) {
	engine := NewEngine(styles.Default())
	d := engine.Decide(shortText, &types.ReaderProfile{HasDyslexiaPattern: true}, nil)

	trace := engine.Trace(d)

	assert.Equal(t, styles.BulletPoints, trace.RecommendedStyle)
	assert.Len(t, trace.Scores, 4)
	assert.Equal(t, d.Metrics, trace.Metrics)
	assert.False(t, trace.DecidedAt.IsZero())
	assert.Contains(t, engine.Explain(d), "recommended bullet_points")
}
