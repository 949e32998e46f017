package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/assessment"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/collapse"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/db"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/rewriting"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const denseText = "The committee will utilize the quarterly report in order to facilitate a comprehensive review of all " +
	"outstanding obligations prior to the annual meeting that is scheduled to commence approximately two weeks " +
	"after the close of the fiscal period."

func echoGenerator() rewriting.Generator {
	return rewriting.GeneratorFunc(func(_ context.Context, req rewriting.Request) (string, error) {
		return "[" + string(req.Style.Key) + "] " + req.Source, nil
	})
}

type recorder struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (r *recorder) record(e ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) steps() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Step)
	}
	return out
}

func newTestService(t *testing.T, gen rewriting.Generator) (*Service, *db.SQLiteStore, *recorder) {
	t.Helper()
	store, err := db.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	rec := &recorder{}
	svc := NewService(Options{
		Store:      store,
		Generator:  gen,
		Assembly:   rewriting.Config{Concurrency: 2},
		OnProgress: rec.record,
	})
	return svc, store, rec
}

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func TestCreateReader(t *testing.T) {
	svc, _, _ := newTestService(t, echoGenerator())
	ctx := context.Background()

	reader, err := svc.CreateReader(ctx, "  Ada ", map[string]json.RawMessage{
		"has_dyslexia_pattern": raw(`"true"`),
		"font_preference":      raw(`"sans-serif"`),
	}, "hash")
	require.NoError(t, err)
	assert.Equal(t, "Ada", reader.Name)

	got, err := svc.GetReader(ctx, reader.ID)
	require.NoError(t, err)
	assert.True(t, got.Profile.HasDyslexiaPattern)
	assert.JSONEq(t, `"sans-serif"`, string(got.Profile.Extra["font_preference"]))
	assert.Equal(t, "hash", got.APIKeyHash)
}

func TestCreateReader_Invalid(t *testing.T) {
	svc, _, _ := newTestService(t, echoGenerator())
	ctx := context.Background()

	_, err := svc.CreateReader(ctx, " ", nil, "hash")
	var inputErr *InvalidInputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "name", inputErr.Field)

	_, err = svc.CreateReader(ctx, "Ada", map[string]json.RawMessage{"reading_speed": raw(`"warp"`)}, "hash")
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "profile", inputErr.Field)
}

func TestUpdateProfile_MergesAndProtectsLearnedFields(t *testing.T) {
	svc, _, _ := newTestService(t, echoGenerator())
	ctx := context.Background()
	reader, err := svc.CreateReader(ctx, "Ada", map[string]json.RawMessage{"sentence_length": raw(`"short"`)}, "hash")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, reader.ID, map[string]json.RawMessage{
		"reading_speed":   raw(`"slow"`),
		"preferred_style": raw(`"restructured"`),
		"readability":     raw(`"strong"`),
	})
	require.NoError(t, err)
	assert.Equal(t, "slow", updated.Profile.ReadingSpeed)
	assert.Equal(t, "short", updated.Profile.SentenceLength)
	assert.Empty(t, updated.Profile.PreferredStyle)

	got, err := svc.GetReader(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, "slow", got.Profile.ReadingSpeed)
	assert.JSONEq(t, `"strong"`, string(got.Profile.Extra["readability"]))

	_, err = svc.UpdateProfile(ctx, reader.ID, map[string]json.RawMessage{"comprehension_score": raw(`101`)})
	var inputErr *InvalidInputError
	assert.ErrorAs(t, err, &inputErr)

	_, err = svc.UpdateProfile(ctx, uuid.New(), map[string]json.RawMessage{})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestCreateDocument_TextAndHTML(t *testing.T) {
	svc, _, rec := newTestService(t, echoGenerator())
	ctx := context.Background()
	reader, err := svc.CreateReader(ctx, "Ada", nil, "hash")
	require.NoError(t, err)

	out, err := svc.CreateDocument(ctx, reader.ID, SourceInput{Text: "Line one is hyph-\nenated.\n\n\n\nEnd."})
	require.NoError(t, err)
	assert.Equal(t, "Line one is hyphenated.\n\nEnd.", out.Document.ExtractedText)
	assert.Len(t, out.Document.ContentHash, 64)
	assert.Nil(t, out.Collapse)

	html := `<html><body><nav>Menu</nav><main><p>Hello reader.</p><ul><li>One</li></ul></main></body></html>`
	out, err = svc.CreateDocument(ctx, reader.ID, SourceInput{HTML: html})
	require.NoError(t, err)
	assert.Contains(t, out.Document.ExtractedText, "Hello reader.")
	assert.Contains(t, out.Document.ExtractedText, "- One")
	assert.NotContains(t, out.Document.ExtractedText, "Menu")
	assert.Equal(t, html, out.Document.OriginalContent)

	assert.Equal(t, []string{StepNewReader, StepIngest, StepIngest}, rec.steps())
}

func TestCreateDocument_RejectsEmpty(t *testing.T) {
	svc, _, _ := newTestService(t, echoGenerator())
	ctx := context.Background()
	reader, err := svc.CreateReader(ctx, "Ada", nil, "hash")
	require.NoError(t, err)

	_, err = svc.CreateDocument(ctx, reader.ID, SourceInput{Text: "   \n  "})
	var inputErr *InvalidInputError
	assert.ErrorAs(t, err, &inputErr)

	_, err = svc.CreateDocument(ctx, uuid.New(), SourceInput{Text: "Hello."})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestCreateDocument_AutoCollapsesToRecommendation(t *testing.T) {
	var mu sync.Mutex
	var generated []styles.Key
	gen := rewriting.GeneratorFunc(func(_ context.Context, req rewriting.Request) (string, error) {
		mu.Lock()
		generated = append(generated, req.Style.Key)
		mu.Unlock()
		return "- short bullet", nil
	})
	svc, store, _ := newTestService(t, gen)
	ctx := context.Background()
	reader, err := svc.CreateReader(ctx, "Ada", nil, "hash")
	require.NoError(t, err)

	out, err := svc.CreateDocument(ctx, reader.ID, SourceInput{Text: denseText, Auto: true})
	require.NoError(t, err)
	require.NotNil(t, out.Collapse)
	assert.Equal(t, styles.BulletPoints, out.Collapse.Style)
	assert.Equal(t, "- short bullet", out.Collapse.Content)
	assert.Equal(t, []styles.Key{styles.BulletPoints}, generated)

	doc, err := store.GetDocument(ctx, reader.ID, out.Document.ID)
	require.NoError(t, err)
	require.NotNil(t, doc.SelectedStyle)
	assert.Equal(t, styles.BulletPoints, *doc.SelectedStyle)
	require.NotNil(t, doc.Decision)
	assert.Equal(t, styles.BulletPoints, doc.Decision.RecommendedStyle)

	got, err := store.GetReader(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bullet Points", got.PreferredStyle)
}

func TestRequestTransformations(t *testing.T) {
	svc, store, _ := newTestService(t, echoGenerator())
	ctx := context.Background()
	reader, err := svc.CreateReader(ctx, "Ada", nil, "hash")
	require.NoError(t, err)
	created, err := svc.CreateDocument(ctx, reader.ID, SourceInput{Text: denseText})
	require.NoError(t, err)

	res, err := svc.RequestTransformations(ctx, reader.ID, created.Document.ID, []string{"Plain Language", "bullet", "unknown", "bullet_points"})
	require.NoError(t, err)

	require.Len(t, res.Candidates, 2)
	assert.Equal(t, styles.BulletPoints, res.Candidates[0].Style)
	assert.Equal(t, 2, res.Candidates[0].Ordinal)
	assert.Equal(t, styles.PlainLanguage, res.Candidates[1].Style)
	assert.True(t, strings.HasPrefix(res.Candidates[1].Content, "[plain_language]"))
	assert.Equal(t, styles.BulletPoints, res.RecommendedStyle)
	assert.Len(t, res.DecisionTrace, 4)
	assert.True(t, res.Metrics.Dense)

	doc, err := store.GetDocument(ctx, reader.ID, created.Document.ID)
	require.NoError(t, err)
	assert.Len(t, doc.Transformations, 2)

	_, err = svc.RequestTransformations(ctx, reader.ID, uuid.New(), nil)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestRequestTransformations_FailingGeneratorUsesFallback(t *testing.T) {
	gen := rewriting.GeneratorFunc(func(context.Context, rewriting.Request) (string, error) {
		return "", errors.New("model unavailable")
	})
	svc, _, _ := newTestService(t, gen)
	ctx := context.Background()
	reader, err := svc.CreateReader(ctx, "Ada", nil, "hash")
	require.NoError(t, err)
	created, err := svc.CreateDocument(ctx, reader.ID, SourceInput{Text: "First sentence. Second sentence."})
	require.NoError(t, err)

	res, err := svc.RequestTransformations(ctx, reader.ID, created.Document.ID, []string{"bullet_points"})
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.True(t, res.Candidates[0].Fallback)
	assert.Equal(t, "- First sentence.\n- Second sentence.", res.Candidates[0].Content)
}

func TestCollapse_EndToEnd(t *testing.T) {
	svc, _, _ := newTestService(t, echoGenerator())
	ctx := context.Background()
	reader, err := svc.CreateReader(ctx, "Ada", nil, "hash")
	require.NoError(t, err)
	created, err := svc.CreateDocument(ctx, reader.ID, SourceInput{Text: denseText})
	require.NoError(t, err)

	_, err = svc.RequestTransformations(ctx, reader.ID, created.Document.ID, nil)
	require.NoError(t, err)

	out, err := svc.Collapse(ctx, reader.ID, created.Document.ID, collapse.Selection{ChosenStyle: "Plain Language"})
	require.NoError(t, err)
	assert.Equal(t, styles.PlainLanguage, out.Style)
	assert.Equal(t, 3, out.Ordinal)

	got, err := svc.GetReader(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.State.StyleCounts[styles.PlainLanguage])
	assert.Equal(t, "Plain Language", got.PreferredStyle)

	docs, err := svc.ListDocuments(ctx, reader.ID, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.NotNil(t, docs[0].SelectedStyle)
}

func TestCollapse_NoContent(t *testing.T) {
	svc, _, _ := newTestService(t, echoGenerator())
	ctx := context.Background()
	reader, err := svc.CreateReader(ctx, "Ada", nil, "hash")
	require.NoError(t, err)
	created, err := svc.CreateDocument(ctx, reader.ID, SourceInput{Text: "Nothing generated."})
	require.NoError(t, err)

	out, err := svc.Collapse(ctx, reader.ID, created.Document.ID, collapse.Selection{})
	assert.ErrorIs(t, err, collapse.ErrNoContent)
	require.NotNil(t, out)
	assert.Equal(t, styles.Simplified, out.Style)
	assert.True(t, out.NoContent)
}

func TestAssess_DefaultsWithoutModel(t *testing.T) {
	svc, _, _ := newTestService(t, echoGenerator())
	ctx := context.Background()
	reader, err := svc.CreateReader(ctx, "Ada", map[string]json.RawMessage{"simplify_jargon": raw(`true`)}, "hash")
	require.NoError(t, err)

	out, err := svc.Assess(ctx, reader.ID, assessment.Input{RetypedText: "The cat wearing a hat", TimeTakenSeconds: 12})
	require.NoError(t, err)
	assert.True(t, out.Assessment.Fallback)
	assert.Equal(t, "Bullet Points", out.PreferredStyle)

	got, err := svc.GetReader(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bullet Points", got.PreferredStyle)
	assert.Equal(t, types.ReadingSpeedMedium, got.Profile.ReadingSpeed)
	assert.Equal(t, "bullet", got.Profile.RecommendedStyle)
	assert.True(t, got.Profile.SimplifyJargon)
}
