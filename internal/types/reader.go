// Package types holds the reader, document and learning-state records shared
// by the decision engine, storage and HTTP layers.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Reader owns a profile and a learning state.
type Reader struct {
	ID             uuid.UUID     `json:"id"`
	Name           string        `json:"name"`
	APIKeyHash     string        `json:"-"`
	PreferredStyle string        `json:"preferred_style,omitempty"`
	Profile        ReaderProfile `json:"profile"`
	State          LearningState `json:"learning_state"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// IDGenerator produces identifiers for new records.
type IDGenerator func() uuid.UUID

// NewIDGenerator returns the default random UUID generator.
func NewIDGenerator() IDGenerator {
	return uuid.New
}
