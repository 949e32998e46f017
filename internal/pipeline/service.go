// Package pipeline orchestrates the reader-facing operations: document
// intake, version generation, collapse and reading assessment.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/assessment"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/collapse"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/db"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/density"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/ingestion"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/llm"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/logger"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/ranking"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/rewriting"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/schemas"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
	"github.com/google/uuid"
)

// DefaultListLimit caps ListDocuments when no limit is given.
const DefaultListLimit = 50

// Progress steps.
const (
	StepIngest    = "ingest"
	StepDecide    = "decide"
	StepGenerate  = "generate"
	StepCollapse  = "collapse"
	StepAssess    = "assess"
	StepProfile   = "profile"
	StepNewReader = "new_reader"
)

// ProgressEvent represents a progress update during a service call
type ProgressEvent struct {
	Step       string    `json:"step"`
	Message    string    `json:"message"`
	DocumentID uuid.UUID `json:"document_id,omitempty"`
	Content    any       `json:"content,omitempty"`
}

// ProgressCallback is called when service progress occurs
type ProgressCallback func(event ProgressEvent)

// Options wires a Service.
type Options struct {
	Store     db.Store
	Catalog   *styles.Catalog
	Generator rewriting.Generator
	// Model is used for the reading assessment; nil yields default profiles.
	Model      llm.Client
	Assembly   rewriting.Config
	IDs        types.IDGenerator
	Log        *logger.Logger
	OnProgress ProgressCallback
}

// Service implements the reader-facing operations on top of a Store.
type Service struct {
	store      db.Store
	catalog    *styles.Catalog
	ranker     *ranking.Engine
	assembler  *rewriting.Assembler
	collapser  *collapse.Engine
	analyser   *assessment.Analyser
	newID      types.IDGenerator
	log        *logger.Logger
	onProgress ProgressCallback
}

// NewService creates a service. Store and Generator are required.
func NewService(opts Options) *Service {
	if opts.Catalog == nil {
		opts.Catalog = styles.Default()
	}
	if opts.IDs == nil {
		opts.IDs = types.NewIDGenerator()
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	ranker := ranking.NewEngine(opts.Catalog)
	return &Service{
		store:      opts.Store,
		catalog:    opts.Catalog,
		ranker:     ranker,
		assembler:  rewriting.NewAssembler(ranker, opts.Generator, opts.Store, opts.Log, opts.Assembly),
		collapser:  collapse.NewEngine(ranker, opts.Store, opts.Log),
		analyser:   assessment.NewAnalyser(opts.Model, opts.Log),
		newID:      opts.IDs,
		log:        opts.Log,
		onProgress: opts.OnProgress,
	}
}

// Catalog returns the style catalog.
func (s *Service) Catalog() *styles.Catalog {
	return s.catalog
}

// Ranker returns the decision engine.
func (s *Service) Ranker() *ranking.Engine {
	return s.ranker
}

func (s *Service) emit(step, message string, documentID uuid.UUID, content any) {
	if s.onProgress != nil {
		s.onProgress(ProgressEvent{Step: step, Message: message, DocumentID: documentID, Content: content})
	}
}

// CreateReader creates a reader with an optional initial profile. apiKeyHash
// is stored as given.
func (s *Service) CreateReader(ctx context.Context, name string, profile map[string]json.RawMessage, apiKeyHash string) (*types.Reader, error) {
	reader := &types.Reader{
		ID:         s.newID(),
		Name:       strings.TrimSpace(name),
		APIKeyHash: apiKeyHash,
		Profile:    types.ReaderProfile{SchemaVersion: types.ProfileSchemaVersion},
		State:      types.NewLearningState(),
	}
	if reader.Name == "" {
		return nil, &InvalidInputError{Field: "name", Message: "must not be empty"}
	}
	if len(profile) > 0 {
		if err := s.mergeProfile(&reader.Profile, profile); err != nil {
			return nil, err
		}
	}

	if err := s.store.CreateReader(ctx, reader); err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	s.emit(StepNewReader, "reader created", uuid.Nil, reader.ID)
	return reader, nil
}

// GetReader loads a reader.
func (s *Service) GetReader(ctx context.Context, readerID uuid.UUID) (*types.Reader, error) {
	return s.store.GetReader(ctx, readerID)
}

// UpdateProfile merges patch into the reader's profile. Known keys are
// validated strictly and unknown keys are kept.
func (s *Service) UpdateProfile(ctx context.Context, readerID uuid.UUID, patch map[string]json.RawMessage) (*types.Reader, error) {
	reader, err := s.store.GetReader(ctx, readerID)
	if err != nil {
		return nil, err
	}

	profile := reader.Profile.Clone()
	if err := s.mergeProfile(&profile, patch); err != nil {
		return nil, err
	}
	if err := s.store.UpdateReaderProfile(ctx, readerID, profile, reader.PreferredStyle); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	reader.Profile = profile
	s.emit(StepProfile, "profile updated", uuid.Nil, profile)
	return reader, nil
}

// mergeProfile validates a client patch and applies it. The learned fields
// are owned by collapse and cannot be set by clients.
func (s *Service) mergeProfile(profile *types.ReaderProfile, patch map[string]json.RawMessage) error {
	raw, err := json.Marshal(patch)
	if err != nil {
		return &InvalidInputError{Field: "profile", Message: "not a JSON object", Cause: err}
	}
	if err := schemas.Validate(schemas.ReaderProfile, raw); err != nil {
		return &InvalidInputError{Field: "profile", Message: "does not match the reader profile schema", Cause: err}
	}

	cleaned := make(map[string]json.RawMessage, len(patch))
	for k, v := range patch {
		switch k {
		case "style_weights", "preferred_style", "schema_version":
			continue
		}
		cleaned[k] = v
	}
	if err := profile.Merge(cleaned); err != nil {
		return &InvalidInputError{Field: "profile", Message: "could not be merged", Cause: err}
	}
	if err := profile.Validate(); err != nil {
		return &InvalidInputError{Field: "profile", Message: "failed validation", Cause: err}
	}
	return nil
}

// Assess runs the reading assessment and merges its result into the reader's
// profile. The reader's display preference becomes the recommended style.
func (s *Service) Assess(ctx context.Context, readerID uuid.UUID, in assessment.Input) (*AssessmentOutcome, error) {
	reader, err := s.store.GetReader(ctx, readerID)
	if err != nil {
		return nil, err
	}

	res := s.analyser.Analyse(ctx, in)
	profile := reader.Profile.Clone()
	title := assessment.Apply(&profile, res, s.catalog)

	if err := s.store.UpdateReaderProfile(ctx, readerID, profile, title); err != nil {
		return nil, fmt.Errorf("failed to save assessment: %w", err)
	}
	s.emit(StepAssess, "assessment applied", uuid.Nil, res)

	return &AssessmentOutcome{Assessment: res, Profile: profile, PreferredStyle: title}, nil
}

// AssessmentOutcome is the result of Assess.
type AssessmentOutcome struct {
	Assessment     *assessment.Result  `json:"assessment"`
	Profile        types.ReaderProfile `json:"profile"`
	PreferredStyle string              `json:"preferred_style"`
}

// SourceInput is the content of a new document. Exactly one of Text and HTML
// should be set; Text wins when both are.
type SourceInput struct {
	Text string
	HTML string
	// Auto generates only the recommended style and collapses to it.
	Auto bool
}

// DocumentOutcome is the result of CreateDocument.
type DocumentOutcome struct {
	Document *types.Document   `json:"document"`
	Collapse *collapse.Outcome `json:"collapse,omitempty"`
}

// CreateDocument stores a new document for the reader. With Auto set the
// recommended style is generated and collapsed immediately.
func (s *Service) CreateDocument(ctx context.Context, readerID uuid.UUID, in SourceInput) (*DocumentOutcome, error) {
	reader, err := s.store.GetReader(ctx, readerID)
	if err != nil {
		return nil, err
	}

	raw, source := in.Text, ingestion.SourceText
	if strings.TrimSpace(raw) == "" {
		raw, source = in.HTML, ingestion.SourceHTML
	}
	text, meta, err := ingestion.Ingest(raw, source)
	if err != nil {
		return nil, &InvalidInputError{Field: source, Message: "could not be read", Cause: err}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &InvalidInputError{Field: "text", Message: "document has no readable text"}
	}

	doc := &types.Document{
		ID:              s.newID(),
		ReaderID:        readerID,
		OriginalContent: raw,
		ExtractedText:   text,
		ContentHash:     meta.Hash,
		Transformations: map[styles.Key]string{},
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	s.emit(StepIngest, fmt.Sprintf("ingested %d words from %s", meta.WordCount, meta.Source), doc.ID, meta)

	out := &DocumentOutcome{Document: doc}
	if !in.Auto {
		return out, nil
	}

	recommended := s.ranker.Recommend(doc.SourceText(), &reader.Profile, &reader.State)
	s.emit(StepDecide, "recommended "+string(recommended), doc.ID, recommended)
	if _, err := s.assembler.Assemble(ctx, doc, &reader.Profile, &reader.State, []string{string(recommended)}); err != nil {
		return nil, err
	}
	s.emit(StepGenerate, "generated "+string(recommended), doc.ID, nil)

	outcome, err := s.collapser.Collapse(ctx, readerID, doc.ID, collapse.Selection{ChosenStyle: string(recommended)})
	if err != nil {
		return nil, err
	}
	selected := outcome.Style
	doc.SelectedStyle = &selected
	out.Collapse = outcome
	s.emit(StepCollapse, "collapsed to "+string(outcome.Style), doc.ID, outcome)
	return out, nil
}

// GetDocument loads one of the reader's documents.
func (s *Service) GetDocument(ctx context.Context, readerID, documentID uuid.UUID) (*types.Document, error) {
	return s.store.GetDocument(ctx, readerID, documentID)
}

// ListDocuments returns the reader's most recent documents.
func (s *Service) ListDocuments(ctx context.Context, readerID uuid.UUID, limit int) ([]types.Document, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	return s.store.ListDocuments(ctx, readerID, limit)
}

// TransformationsResult is the result of RequestTransformations.
type TransformationsResult struct {
	DocumentID       uuid.UUID              `json:"document_id"`
	Candidates       []rewriting.Candidate  `json:"candidates"`
	RecommendedStyle styles.Key             `json:"recommended_style"`
	DecisionTrace    map[styles.Key]float64 `json:"decision_trace"`
	Metrics          density.Metrics        `json:"metrics"`
}

// RequestTransformations generates the requested styles of a document (all
// styles when none are named) and returns them with the recommendation.
func (s *Service) RequestTransformations(ctx context.Context, readerID, documentID uuid.UUID, requested []string) (*TransformationsResult, error) {
	reader, err := s.store.GetReader(ctx, readerID)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.GetDocument(ctx, readerID, documentID)
	if err != nil {
		return nil, err
	}

	res, err := s.assembler.Assemble(ctx, doc, &reader.Profile, &reader.State, requested)
	if err != nil {
		return nil, err
	}
	s.emit(StepGenerate, fmt.Sprintf("generated %d styles", len(res.Candidates)), doc.ID, res.Candidates)

	return &TransformationsResult{
		DocumentID:       doc.ID,
		Candidates:       res.Candidates,
		RecommendedStyle: res.Recommended,
		DecisionTrace:    res.Decision.Scores,
		Metrics:          res.Decision.Metrics,
	}, nil
}

// Collapse finalizes the reader's choice for a document. When no style has
// content the outcome is still returned, together with collapse.ErrNoContent.
func (s *Service) Collapse(ctx context.Context, readerID, documentID uuid.UUID, sel collapse.Selection) (*collapse.Outcome, error) {
	outcome, err := s.collapser.Collapse(ctx, readerID, documentID, sel)
	if err != nil && !errors.Is(err, collapse.ErrNoContent) {
		return nil, err
	}
	s.emit(StepCollapse, "collapsed to "+string(outcome.Style), documentID, outcome)
	return outcome, err
}
