package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
)

// LearningStateSchemaVersion is the current LearningState schema version.
const LearningStateSchemaVersion = 1

// Signal counter names.
const (
	SignalLongDwell = "long_dwell_events"
	SignalTTS       = "tts_events"
)

// LearningState is the per-reader record of past selections. Counters only
// grow; weights are derived from StyleCounts on demand.
type LearningState struct {
	SchemaVersion     int                `json:"schema_version"`
	StyleCounts       map[styles.Key]int `json:"style_counts"`
	SignalCounts      map[string]int     `json:"signal_counts"`
	LastSelectedStyle styles.Key         `json:"last_selected_style,omitempty"`
}

// NewLearningState returns an empty state at the current schema version.
func NewLearningState() LearningState {
	return LearningState{
		SchemaVersion: LearningStateSchemaVersion,
		StyleCounts:   map[styles.Key]int{},
		SignalCounts:  map[string]int{},
	}
}

// UnmarshalJSON decodes a state tolerantly. Negative or non-numeric counters are
// dropped and unrelated legacy keys are ignored.
func (s *LearningState) UnmarshalJSON(data []byte) error {
	out := NewLearningState()
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = out
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("learning state must be a JSON object: %w", err)
	}

	if v, ok := raw["schema_version"]; ok {
		if n, ok := coerceInt(v); ok && n > 0 {
			out.SchemaVersion = n
		}
	}
	if v, ok := raw["style_counts"]; ok {
		for k, n := range coerceCounts(v) {
			out.StyleCounts[styles.Key(k)] = n
		}
	}
	if v, ok := raw["signal_counts"]; ok {
		for k, n := range coerceCounts(v) {
			out.SignalCounts[k] = n
		}
	}
	if v, ok := raw["last_selected_style"]; ok {
		out.LastSelectedStyle = styles.Key(coerceString(v))
	}

	*s = out
	return nil
}

// Clone returns a deep copy of the state.
func (s LearningState) Clone() LearningState {
	out := s
	out.StyleCounts = make(map[styles.Key]int, len(s.StyleCounts))
	for k, v := range s.StyleCounts {
		out.StyleCounts[k] = v
	}
	out.SignalCounts = make(map[string]int, len(s.SignalCounts))
	for k, v := range s.SignalCounts {
		out.SignalCounts[k] = v
	}
	return out
}

// Retain drops style counts for keys outside the catalog.
func (s *LearningState) Retain(catalog *styles.Catalog) {
	for k := range s.StyleCounts {
		if !catalog.Contains(k) {
			delete(s.StyleCounts, k)
		}
	}
	if s.LastSelectedStyle != "" && !catalog.Contains(s.LastSelectedStyle) {
		s.LastSelectedStyle = ""
	}
}

// TotalSelections sums StyleCounts.
func (s *LearningState) TotalSelections() int {
	total := 0
	for _, n := range s.StyleCounts {
		total += n
	}
	return total
}

// StyleWeights returns each style's share of all selections, rounded to three
// decimals. It returns an empty map when nothing has been selected yet.
func (s *LearningState) StyleWeights() map[styles.Key]float64 {
	total := s.TotalSelections()
	weights := make(map[styles.Key]float64, len(s.StyleCounts))
	if total <= 0 {
		return weights
	}
	for k, n := range s.StyleCounts {
		weights[k] = math.Round(float64(n)/float64(total)*1000) / 1000
	}
	return weights
}

// RecordSelection applies one collapse to the state.
func (s *LearningState) RecordSelection(style styles.Key, signals SignalBundle) {
	if s.StyleCounts == nil {
		s.StyleCounts = map[styles.Key]int{}
	}
	if s.SignalCounts == nil {
		s.SignalCounts = map[string]int{}
	}
	s.StyleCounts[style]++
	if signals.IsLongDwell() {
		s.SignalCounts[SignalLongDwell]++
	}
	if signals.HasTTS() {
		s.SignalCounts[SignalTTS]++
	}
	s.LastSelectedStyle = style
	if s.SchemaVersion == 0 {
		s.SchemaVersion = LearningStateSchemaVersion
	}
}

func coerceCounts(raw json.RawMessage) map[string]int {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		n, ok := coerceInt(v)
		if !ok || n < 0 {
			continue
		}
		out[k] = n
	}
	return out
}
