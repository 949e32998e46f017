// Package collapse finalizes a reader's choice among the generated versions of
// a document and folds it into the reader's learning state.
package collapse

import (
	"context"
	"errors"
	"strings"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/db"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/logger"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/ranking"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
	"github.com/google/uuid"
)

// Reasons a style was resolved.
const (
	ReasonExplicit       = "explicit"
	ReasonSignal         = "signal"
	ReasonRecommended    = "recommended"
	ReasonFirstAvailable = "first_available"
	ReasonDefault        = "default"
)

// Selection is the reader's input to a collapse. ChosenStyle wins over
// Version when both are set.
type Selection struct {
	ChosenStyle string
	Version     *int
	Signals     types.SignalBundle
}

// ProfileUpdates summarizes what the collapse wrote to the reader.
type ProfileUpdates struct {
	PreferredStyle string                 `json:"preferred_style"`
	StyleCounts    map[styles.Key]int     `json:"style_counts"`
	StyleWeights   map[styles.Key]float64 `json:"style_weights"`
}

// Outcome is the committed result of a collapse.
type Outcome struct {
	Style          styles.Key         `json:"style"`
	Title          string             `json:"title"`
	Ordinal        int                `json:"selected_ordinal"`
	Content        string             `json:"content"`
	NoContent      bool               `json:"no_content,omitempty"`
	Reason         string             `json:"reason"`
	Signals        types.SignalBundle `json:"signals"`
	ProfileUpdates ProfileUpdates     `json:"profile_updates"`
}

// Engine resolves and commits collapses.
type Engine struct {
	ranker *ranking.Engine
	store  db.Store
	log    *logger.Logger
}

// NewEngine creates a collapse engine. log may be nil.
func NewEngine(ranker *ranking.Engine, store db.Store, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{ranker: ranker, store: store, log: log}
}

// Collapse resolves the final style for a document and commits it together
// with the reader's learning-state update in one transaction. When no style
// has content the default style is recorded and the outcome is returned along
// with ErrNoContent.
func (e *Engine) Collapse(ctx context.Context, readerID, documentID uuid.UUID, sel Selection) (*Outcome, error) {
	catalog := e.ranker.Catalog()

	chosen := strings.TrimSpace(sel.ChosenStyle)
	if chosen == "" && sel.Version != nil {
		key, ok := catalog.ByOrdinal(*sel.Version)
		if !ok {
			return nil, &InvalidInputError{Field: "version", Message: "must name one of the generated versions"}
		}
		chosen = string(key)
	}
	signals := sel.Signals.Normalize(catalog)

	var outcome *Outcome
	err := e.store.CollapseTx(ctx, readerID, documentID, func(reader *types.Reader, doc *types.Document) (*db.CollapseWrite, error) {
		key, reason := e.resolve(doc, reader, chosen, signals)

		state := reader.State.Clone()
		state.Retain(catalog)
		state.RecordSelection(key, signals)

		profile := reader.Profile.Clone()
		profile.PreferredStyle = key
		profile.StyleWeights = state.StyleWeights()

		title := catalog.Title(key)
		outcome = &Outcome{
			Style:   key,
			Title:   title,
			Ordinal: catalog.Ordinal(key),
			Content: doc.Content(key),
			Reason:  reason,
			Signals: signals,
			ProfileUpdates: ProfileUpdates{
				PreferredStyle: title,
				StyleCounts:    state.StyleCounts,
				StyleWeights:   profile.StyleWeights,
			},
		}
		if reason == ReasonDefault {
			outcome.NoContent = true
			outcome.Content = doc.SourceText()
		}

		return &db.CollapseWrite{
			SelectedStyle:  key,
			Profile:        profile,
			State:          state,
			PreferredStyle: title,
		}, nil
	})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
		return nil, &StatePersistenceError{Message: "failed to commit collapse", Cause: err}
	}

	e.log.Info("collapse committed",
		"reader_id", readerID, "document_id", documentID,
		"style", outcome.Style, "reason", outcome.Reason)

	if outcome.NoContent {
		return outcome, ErrNoContent
	}
	return outcome, nil
}

// resolve picks the first style with content in order: explicit choice,
// behavioral signal, recommendation, first available, default.
func (e *Engine) resolve(doc *types.Document, reader *types.Reader, chosen string, signals types.SignalBundle) (styles.Key, string) {
	catalog := e.ranker.Catalog()

	if chosen != "" {
		key, ok := catalog.Normalize(chosen)
		switch {
		case !ok:
			e.log.Warn("ignoring selection", "error", &InvalidStyleSelection{Raw: chosen, Message: "not a catalog style"})
		case !doc.HasContent(key):
			e.log.Warn("ignoring selection", "error", &InvalidStyleSelection{Raw: chosen, Message: "no content generated"})
		default:
			return key, ReasonExplicit
		}
	}

	if key, ok := inferFromSignals(catalog, signals, doc.HasContent); ok {
		return key, ReasonSignal
	}

	if key := e.ranker.Recommend(doc.SourceText(), &reader.Profile, &reader.State); doc.HasContent(key) {
		return key, ReasonRecommended
	}

	for _, key := range catalog.Keys() {
		if doc.HasContent(key) {
			return key, ReasonFirstAvailable
		}
	}
	return catalog.First(), ReasonDefault
}

// inferFromSignals maps micro-signals to a style with content. A speech
// playback names the style directly; when that style has no content, a long
// dwell still suggests scannable bullets.
func inferFromSignals(catalog *styles.Catalog, signals types.SignalBundle, hasContent func(styles.Key) bool) (styles.Key, bool) {
	if key, ok := signals.TTSKey(catalog); ok && hasContent(key) {
		return key, true
	}
	if signals.IsLongDwell() && catalog.Contains(styles.BulletPoints) && hasContent(styles.BulletPoints) {
		return styles.BulletPoints, true
	}
	return "", false
}
