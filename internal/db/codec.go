package db

import (
	"encoding/json"
	"fmt"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
)

// encodeReaderJSON marshals the JSON columns of a reader.
func encodeReaderJSON(profile types.ReaderProfile, state types.LearningState) ([]byte, []byte, error) {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal profile: %w", err)
	}
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal learning state: %w", err)
	}
	return profileJSON, stateJSON, nil
}

// decodeReaderJSON fills the profile and learning state of a reader. Both
// decoders are tolerant, so legacy rows load without error.
func decodeReaderJSON(r *types.Reader, profileJSON, stateJSON []byte) error {
	if err := json.Unmarshal(nonEmptyJSON(profileJSON), &r.Profile); err != nil {
		return fmt.Errorf("failed to decode profile of reader %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(nonEmptyJSON(stateJSON), &r.State); err != nil {
		return fmt.Errorf("failed to decode learning state of reader %s: %w", r.ID, err)
	}
	return nil
}

// decodeDocumentJSON fills the JSON columns of a document.
func decodeDocumentJSON(d *types.Document, transformations, decision []byte, selected *string) error {
	d.Transformations = map[styles.Key]string{}
	if len(transformations) > 0 {
		if err := json.Unmarshal(transformations, &d.Transformations); err != nil {
			return fmt.Errorf("failed to decode transformations of document %s: %w", d.ID, err)
		}
	}
	if len(decision) > 0 && string(decision) != "null" {
		var trace types.DecisionTrace
		if err := json.Unmarshal(decision, &trace); err != nil {
			return fmt.Errorf("failed to decode decision of document %s: %w", d.ID, err)
		}
		d.Decision = &trace
	}
	if selected != nil && *selected != "" {
		key := styles.Key(*selected)
		d.SelectedStyle = &key
	}
	return nil
}

func encodeTransformations(t map[styles.Key]string) ([]byte, error) {
	if t == nil {
		t = map[styles.Key]string{}
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transformations: %w", err)
	}
	return b, nil
}

func encodeDecision(trace *types.DecisionTrace) ([]byte, error) {
	if trace == nil {
		return nil, nil
	}
	b, err := json.Marshal(trace)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal decision: %w", err)
	}
	return b, nil
}

func selectedStyleValue(key *styles.Key) *string {
	if key == nil {
		return nil
	}
	s := string(*key)
	return &s
}

func nonEmptyJSON(b []byte) []byte {
	if len(b) == 0 {
		return []byte("{}")
	}
	return b
}
