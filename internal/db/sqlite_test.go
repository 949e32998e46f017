package db

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedReader(t *testing.T, store Store) *types.Reader {
	t.Helper()
	reader := &types.Reader{
		ID:         uuid.New(),
		Name:       "Ada",
		APIKeyHash: "hash",
		Profile:    types.ReaderProfile{SchemaVersion: 1, HasDyslexiaPattern: true},
		State:      types.NewLearningState(),
	}
	require.NoError(t, store.CreateReader(context.Background(), reader))
	return reader
}

func seedDocument(t *testing.T, store Store, readerID uuid.UUID) *types.Document {
	t.Helper()
	doc := &types.Document{
		ID:              uuid.New(),
		ReaderID:        readerID,
		OriginalContent: "Some text.",
		ExtractedText:   "Some text.",
		ContentHash:     "abc",
	}
	require.NoError(t, store.CreateDocument(context.Background(), doc))
	return doc
}

func TestSQLite_ReaderRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	reader := seedReader(t, store)

	got, err := store.GetReader(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "hash", got.APIKeyHash)
	assert.True(t, got.Profile.HasDyslexiaPattern)
	assert.NotNil(t, got.State.StyleCounts)
	assert.WithinDuration(t, reader.CreatedAt, got.CreatedAt, time.Millisecond)

	_, err = store.GetReader(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_UpdateReaderProfileKeepsExtraKeys(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	reader := seedReader(t, store)

	profile := reader.Profile.Clone()
	profile.ReadingSpeed = types.ReadingSpeedSlow
	profile.Extra = map[string]json.RawMessage{"favourite_font": json.RawMessage(`"OpenDyslexic"`)}
	require.NoError(t, store.UpdateReaderProfile(ctx, reader.ID, profile, "Bullet Points"))

	got, err := store.GetReader(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ReadingSpeedSlow, got.Profile.ReadingSpeed)
	assert.Equal(t, "Bullet Points", got.PreferredStyle)
	assert.JSONEq(t, `"OpenDyslexic"`, string(got.Profile.Extra["favourite_font"]))

	assert.ErrorIs(t, store.UpdateReaderProfile(ctx, uuid.New(), profile, ""), ErrNotFound)
}

func TestSQLite_DocumentIsScopedToReader(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	owner := seedReader(t, store)
	other := seedReader(t, store)
	doc := seedDocument(t, store, owner.ID)

	got, err := store.GetDocument(ctx, owner.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Some text.", got.OriginalContent)
	assert.Empty(t, got.Transformations)
	assert.Nil(t, got.SelectedStyle)
	assert.Nil(t, got.Decision)

	_, err = store.GetDocument(ctx, other.ID, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_SaveTransformationUpsertsPerStyle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	reader := seedReader(t, store)
	doc := seedDocument(t, store, reader.ID)

	var wg sync.WaitGroup
	for _, key := range styles.Default().Keys() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.SaveTransformation(ctx, doc.ID, key, "v1 "+string(key)))
		}()
	}
	wg.Wait()
	require.NoError(t, store.SaveTransformation(ctx, doc.ID, styles.Simplified, "v2"))

	got, err := store.GetDocument(ctx, reader.ID, doc.ID)
	require.NoError(t, err)
	assert.Len(t, got.Transformations, 4)
	assert.Equal(t, "v2", got.Transformations[styles.Simplified])
	assert.Equal(t, "v1 restructured", got.Transformations[styles.Restructured])

	assert.ErrorIs(t, store.SaveTransformation(ctx, uuid.New(), styles.Simplified, "x"), ErrNotFound)
}

func TestSQLite_SaveDecision(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	reader := seedReader(t, store)
	doc := seedDocument(t, store, reader.ID)

	trace := types.DecisionTrace{
		RecommendedStyle: styles.BulletPoints,
		Scores:           map[styles.Key]float64{styles.BulletPoints: 1.1, styles.Simplified: 0.4},
		DecidedAt:        time.Now().UTC(),
	}
	require.NoError(t, store.SaveDecision(ctx, doc.ID, trace))

	got, err := store.GetDocument(ctx, reader.ID, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Decision)
	assert.Equal(t, styles.BulletPoints, got.Decision.RecommendedStyle)
	assert.InDelta(t, 1.1, got.Decision.Scores[styles.BulletPoints], 1e-9)
}

func TestSQLite_CollapseTxCommits(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	reader := seedReader(t, store)
	doc := seedDocument(t, store, reader.ID)

	err := store.CollapseTx(ctx, reader.ID, doc.ID, func(r *types.Reader, d *types.Document) (*CollapseWrite, error) {
		assert.Equal(t, reader.ID, r.ID)
		assert.Equal(t, doc.ID, d.ID)
		state := r.State.Clone()
		state.RecordSelection(styles.PlainLanguage, types.SignalBundle{})
		profile := r.Profile.Clone()
		profile.PreferredStyle = styles.PlainLanguage
		return &CollapseWrite{SelectedStyle: styles.PlainLanguage, Profile: profile, State: state, PreferredStyle: "Plain Language"}, nil
	})
	require.NoError(t, err)

	gotDoc, err := store.GetDocument(ctx, reader.ID, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, gotDoc.SelectedStyle)
	assert.Equal(t, styles.PlainLanguage, *gotDoc.SelectedStyle)

	gotReader, err := store.GetReader(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotReader.State.StyleCounts[styles.PlainLanguage])
	assert.Equal(t, styles.PlainLanguage, gotReader.Profile.PreferredStyle)
	assert.Equal(t, "Plain Language", gotReader.PreferredStyle)
}

func TestSQLite_CollapseTxRollsBackOnError(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	reader := seedReader(t, store)
	doc := seedDocument(t, store, reader.ID)
	boom := errors.New("boom")

	err := store.CollapseTx(ctx, reader.ID, doc.ID, func(*types.Reader, *types.Document) (*CollapseWrite, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	gotDoc, err := store.GetDocument(ctx, reader.ID, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, gotDoc.SelectedStyle)
}

func TestSQLite_CollapseTxUnknownDocument(t *testing.T) {
	store := openTestStore(t)
	reader := seedReader(t, store)

	err := store.CollapseTx(context.Background(), reader.ID, uuid.New(), func(*types.Reader, *types.Document) (*CollapseWrite, error) {
		t.Fatal("fn must not run")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_ConcurrentCollapsesSerialize(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	reader := seedReader(t, store)
	doc := seedDocument(t, store, reader.ID)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.CollapseTx(ctx, reader.ID, doc.ID, func(r *types.Reader, _ *types.Document) (*CollapseWrite, error) {
				state := r.State.Clone()
				state.RecordSelection(styles.Simplified, types.SignalBundle{})
				return &CollapseWrite{SelectedStyle: styles.Simplified, Profile: r.Profile, State: state}, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.GetReader(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.State.StyleCounts[styles.Simplified])
}

func TestSQLite_ListDocumentsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	reader := seedReader(t, store)

	first := &types.Document{ID: uuid.New(), ReaderID: reader.ID, OriginalContent: "a", ContentHash: "a", CreatedAt: time.Now().Add(-time.Hour)}
	second := &types.Document{ID: uuid.New(), ReaderID: reader.ID, OriginalContent: "b", ContentHash: "b"}
	require.NoError(t, store.CreateDocument(ctx, first))
	require.NoError(t, store.CreateDocument(ctx, second))

	docs, err := store.ListDocuments(ctx, reader.ID, 10)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, second.ID, docs[0].ID)
}

func TestSQLite_MigrateIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, store.Ping(context.Background()))
}

func TestLoadMigrations(t *testing.T) {
	for _, dir := range []string{"migrations/postgres", "migrations/sqlite"} {
		migrations, err := loadMigrations(dir)
		require.NoError(t, err)
		require.NotEmpty(t, migrations)
		assert.Equal(t, 1, migrations[0].version)
		assert.Contains(t, migrations[0].sql, "CREATE TABLE IF NOT EXISTS readers")
	}
}
