// Package db persists readers and documents. PostgresStore is the production
// backend; SQLiteStore serves local runs and tests. Both implement Store.
package db

import (
	"context"
	"errors"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a reader or document does not exist, or a
// document does not belong to the requesting reader.
var ErrNotFound = errors.New("not found")

// CollapseWrite is everything a collapse commits.
type CollapseWrite struct {
	SelectedStyle  styles.Key
	Profile        types.ReaderProfile
	State          types.LearningState
	PreferredStyle string
}

// CollapseFunc computes a collapse from the locked reader and document. Returning
// an error aborts the transaction.
type CollapseFunc func(reader *types.Reader, doc *types.Document) (*CollapseWrite, error)

// Store is the persistence boundary.
type Store interface {
	CreateReader(ctx context.Context, reader *types.Reader) error
	GetReader(ctx context.Context, id uuid.UUID) (*types.Reader, error)
	// UpdateReaderProfile replaces the profile and the display preferred style.
	UpdateReaderProfile(ctx context.Context, id uuid.UUID, profile types.ReaderProfile, preferredStyle string) error

	CreateDocument(ctx context.Context, doc *types.Document) error
	GetDocument(ctx context.Context, readerID, documentID uuid.UUID) (*types.Document, error)
	ListDocuments(ctx context.Context, readerID uuid.UUID, limit int) ([]types.Document, error)

	// SaveDecision stamps the decision trace on a document.
	SaveDecision(ctx context.Context, documentID uuid.UUID, trace types.DecisionTrace) error
	// SaveTransformation upserts the content of one style, leaving other styles untouched.
	SaveTransformation(ctx context.Context, documentID uuid.UUID, style styles.Key, content string) error

	// CollapseTx locks the reader row, loads the reader and the document, runs fn
	// and writes its result in one transaction. Any error rolls everything back.
	CollapseTx(ctx context.Context, readerID, documentID uuid.UUID, fn CollapseFunc) error

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
