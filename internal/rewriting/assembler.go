package rewriting

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/ingestion"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/logger"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/ranking"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Defaults for Config.
const (
	DefaultTimeout     = 45 * time.Second
	DefaultConcurrency = 4
)

// Request is one generation call.
type Request struct {
	Style           styles.Style
	Source          string
	ContentHash     string
	Personalization []string
	Prompt          string
}

// Generator produces the text of one style. Implementations must be safe for
// concurrent use.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// ContentSink persists assembly output as it is produced.
type ContentSink interface {
	SaveDecision(ctx context.Context, documentID uuid.UUID, trace types.DecisionTrace) error
	SaveTransformation(ctx context.Context, documentID uuid.UUID, style styles.Key, content string) error
}

// Candidate is one generated version.
type Candidate struct {
	Style    styles.Key `json:"style"`
	Title    string     `json:"title"`
	Ordinal  int        `json:"version"`
	Content  string     `json:"content"`
	Prompt   string     `json:"-"`
	Fallback bool       `json:"fallback"`
}

// Result is the outcome of one assembly run.
type Result struct {
	Candidates  []Candidate
	Recommended styles.Key
	Decision    ranking.Decision
	Trace       types.DecisionTrace
}

// Config tunes the fan-out.
type Config struct {
	// Timeout bounds each generator call.
	Timeout time.Duration
	// Concurrency caps the number of generator calls in flight.
	Concurrency int
}

// Assembler generates the requested styles for a document.
type Assembler struct {
	engine    *ranking.Engine
	generator Generator
	sink      ContentSink
	log       *logger.Logger
	cfg       Config
}

// NewAssembler creates an assembler. sink may be nil, in which case nothing is
// persisted.
func NewAssembler(engine *ranking.Engine, generator Generator, sink ContentSink, log *logger.Logger, cfg Config) *Assembler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Assembler{engine: engine, generator: generator, sink: sink, log: log, cfg: cfg}
}

// Keys resolves a requested style list: names are normalized, unknown names are
// dropped, duplicates removed and the result is in catalog order. An empty
// result means every catalog style.
func (a *Assembler) Keys(requested []string) []styles.Key {
	keys := a.engine.Catalog().NormalizeAll(requested)
	if len(keys) == 0 {
		return a.engine.Catalog().Keys()
	}
	return keys
}

// Assemble decides the recommended style, then generates every requested style
// in parallel. A failed or empty generation is replaced by the fallback for
// that style and never fails the run. Each finished style with non-empty
// content is written to the sink on its own, so styles that completed are kept even if the caller gives
// up. The document's Decision and Transformations are updated in place.
func (a *Assembler) Assemble(ctx context.Context, doc *types.Document, profile *types.ReaderProfile, state *types.LearningState, requested []string) (*Result, error) {
	keys := a.Keys(requested)
	source := doc.SourceText()
	catalog := a.engine.Catalog()

	decision := a.engine.Decide(source, profile, state)
	trace := a.engine.Trace(decision)
	doc.Decision = &trace
	if a.sink != nil {
		if err := a.sink.SaveDecision(ctx, doc.ID, trace); err != nil {
			return nil, fmt.Errorf("failed to save decision trace: %w", err)
		}
	}

	personalization := PersonalizationInstructions(profile)
	log := a.log.With("document_id", doc.ID, "recommended", decision.Recommended)

	candidates := make([]Candidate, len(keys))
	var mu sync.Mutex
	produced := make(map[styles.Key]string, len(keys))

	g := new(errgroup.Group)
	g.SetLimit(a.cfg.Concurrency)
	for i, key := range keys {
		style, _ := catalog.Lookup(key)
		req := Request{
			Style:           style,
			Source:          source,
			ContentHash:     doc.ContentHash,
			Personalization: personalization,
			Prompt:          BuildPrompt(style, source, personalization),
		}

		g.Go(func() error {
			content, fallback := a.generate(ctx, log, req)
			candidates[i] = Candidate{
				Style:    key,
				Title:    style.Title,
				Ordinal:  catalog.Ordinal(key),
				Content:  content,
				Prompt:   req.Prompt,
				Fallback: fallback,
			}

			if content == "" {
				return nil
			}
			if a.sink != nil {
				// The write outlives the caller so a completed style is never lost.
				if err := a.sink.SaveTransformation(context.WithoutCancel(ctx), doc.ID, key, content); err != nil {
					return fmt.Errorf("failed to save %s transformation: %w", key, err)
				}
			}

			mu.Lock()
			produced[key] = content
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()

	if doc.Transformations == nil {
		doc.Transformations = make(map[styles.Key]string, len(produced))
	}
	for key, content := range produced {
		doc.Transformations[key] = content
	}

	if err != nil {
		return nil, err
	}

	log.Info("assembly finished", "styles", len(keys))
	return &Result{
		Candidates:  candidates,
		Recommended: decision.Recommended,
		Decision:    decision,
		Trace:       trace,
	}, nil
}

// generate calls the generator once under the per-call timeout and falls back
// on error or empty output.
func (a *Assembler) generate(ctx context.Context, log *logger.Logger, req Request) (string, bool) {
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	start := time.Now()
	content, err := a.generator.Generate(callCtx, req)
	if err == nil {
		content = cleanGenerated(content)
		if content == "" {
			err = &GenerationError{Style: req.Style.Key, Message: "generator returned empty content"}
		}
	} else {
		err = &GenerationError{Style: req.Style.Key, Message: "generator call failed", Cause: err}
	}

	if err != nil {
		log.Warn("generation failure, using fallback", "style", req.Style.Key, "error", err)
		return Fallback(req.Style.Key, req.Source), true
	}

	log.Debug("style generated", "style", req.Style.Key, "duration", time.Since(start))
	return content, false
}

// cleanGenerated strips code fences that models sometimes wrap output in and
// normalizes whitespace.
func cleanGenerated(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.Index(text, "\n"); idx >= 0 {
			first := text[:idx]
			if len(first) < 20 && !strings.Contains(first, " ") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return ingestion.CleanText(text)
}
