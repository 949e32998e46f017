package types

import (
	"time"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/density"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/google/uuid"
)

// DecisionTrace records the scores behind a recommendation so it can be audited later.
type DecisionTrace struct {
	RecommendedStyle styles.Key             `json:"recommended_style"`
	Scores           map[styles.Key]float64 `json:"decision_trace"`
	Metrics          density.Metrics        `json:"metrics"`
	DecidedAt        time.Time              `json:"decided_at"`
}

// Document is a piece of source text together with the versions generated for it.
type Document struct {
	ID              uuid.UUID             `json:"id"`
	ReaderID        uuid.UUID             `json:"reader_id"`
	OriginalContent string                `json:"original_content"`
	ExtractedText   string                `json:"extracted_text,omitempty"`
	ContentHash     string                `json:"content_hash"`
	Transformations map[styles.Key]string `json:"transformations"`
	SelectedStyle   *styles.Key           `json:"selected_style,omitempty"`
	Decision        *DecisionTrace        `json:"decision,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// SourceText returns the text the engine works on: the extracted text when
// present, otherwise the original content.
func (d *Document) SourceText() string {
	if d.ExtractedText != "" {
		return d.ExtractedText
	}
	return d.OriginalContent
}

// Content returns the generated text for style, or "" when none exists.
func (d *Document) Content(style styles.Key) string {
	if d.Transformations == nil {
		return ""
	}
	return d.Transformations[style]
}

// HasContent reports whether style has non-empty generated text.
func (d *Document) HasContent(style styles.Key) bool {
	return style != "" && d.Content(style) != ""
}

// Ready reports whether at least one style has content.
func (d *Document) Ready() bool {
	for _, content := range d.Transformations {
		if content != "" {
			return true
		}
	}
	return false
}

// SelectedContent returns the content of the selected style, if any.
func (d *Document) SelectedContent() string {
	if d.SelectedStyle == nil {
		return ""
	}
	return d.Content(*d.SelectedStyle)
}
