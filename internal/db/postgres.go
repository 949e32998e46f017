package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool
func (db *PostgresStore) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// Ping checks the database connection.
func (db *PostgresStore) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Migrate applies pending schema migrations, each in its own transaction.
func (db *PostgresStore) Migrate(ctx context.Context) error {
	migrations, err := loadMigrations("migrations/postgres")
	if err != nil {
		return err
	}

	if _, err := db.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INT PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		if err := db.applyMigration(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (db *PostgresStore) applyMigration(ctx context.Context, m migration) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", m.name, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var applied bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.version,
	).Scan(&applied); err != nil {
		return fmt.Errorf("failed to check migration %s: %w", m.name, err)
	}
	if applied {
		return nil
	}

	if _, err := tx.Exec(ctx, m.sql); err != nil {
		return fmt.Errorf("failed to apply migration %s: %w", m.name, err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.version, m.name,
	); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", m.name, err)
	}
	return tx.Commit(ctx)
}

// CreateReader inserts a reader. Zero timestamps are set to now.
func (db *PostgresStore) CreateReader(ctx context.Context, reader *types.Reader) error {
	profileJSON, stateJSON, err := encodeReaderJSON(reader.Profile, reader.State)
	if err != nil {
		return err
	}
	stampCreated(&reader.CreatedAt, &reader.UpdatedAt)

	_, err = db.pool.Exec(ctx,
		`INSERT INTO readers (id, name, api_key_hash, preferred_style, profile, learning_state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		reader.ID, reader.Name, reader.APIKeyHash, reader.PreferredStyle, profileJSON, stateJSON,
		reader.CreatedAt, reader.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reader: %w", err)
	}
	return nil
}

// GetReader retrieves a reader by ID.
func (db *PostgresStore) GetReader(ctx context.Context, id uuid.UUID) (*types.Reader, error) {
	return scanReader(db.pool.QueryRow(ctx, readerSelect+` WHERE id = $1`, id))
}

// UpdateReaderProfile replaces the profile and display preferred style of a reader.
func (db *PostgresStore) UpdateReaderProfile(ctx context.Context, id uuid.UUID, profile types.ReaderProfile, preferredStyle string) error {
	profileJSON, _, err := encodeReaderJSON(profile, types.NewLearningState())
	if err != nil {
		return err
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE readers SET profile = $2, preferred_style = $3, updated_at = NOW() WHERE id = $1`,
		id, profileJSON, preferredStyle,
	)
	if err != nil {
		return fmt.Errorf("failed to update reader profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateDocument inserts a document.
func (db *PostgresStore) CreateDocument(ctx context.Context, doc *types.Document) error {
	transformations, err := encodeTransformations(doc.Transformations)
	if err != nil {
		return err
	}
	decision, err := encodeDecision(doc.Decision)
	if err != nil {
		return err
	}
	stampCreated(&doc.CreatedAt, &doc.UpdatedAt)

	_, err = db.pool.Exec(ctx,
		`INSERT INTO documents (id, reader_id, original_content, extracted_text, content_hash,
		                        transformations, selected_style, decision, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		doc.ID, doc.ReaderID, doc.OriginalContent, doc.ExtractedText, doc.ContentHash,
		transformations, selectedStyleValue(doc.SelectedStyle), decision, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document owned by readerID.
func (db *PostgresStore) GetDocument(ctx context.Context, readerID, documentID uuid.UUID) (*types.Document, error) {
	return scanDocument(db.pool.QueryRow(ctx,
		documentSelect+` WHERE id = $1 AND reader_id = $2`, documentID, readerID))
}

// ListDocuments returns a reader's most recent documents.
func (db *PostgresStore) ListDocuments(ctx context.Context, readerID uuid.UUID, limit int) ([]types.Document, error) {
	rows, err := db.pool.Query(ctx,
		documentSelect+` WHERE reader_id = $1 ORDER BY created_at DESC LIMIT $2`, readerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

// SaveDecision stamps the decision trace on a document.
func (db *PostgresStore) SaveDecision(ctx context.Context, documentID uuid.UUID, trace types.DecisionTrace) error {
	decision, err := encodeDecision(&trace)
	if err != nil {
		return err
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE documents SET decision = $2, updated_at = NOW() WHERE id = $1`, documentID, decision)
	if err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveTransformation upserts one style's content with jsonb_set, so concurrent
// writers for different styles never overwrite each other.
func (db *PostgresStore) SaveTransformation(ctx context.Context, documentID uuid.UUID, style styles.Key, content string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE documents
		 SET transformations = jsonb_set(transformations, ARRAY[$2::text], to_jsonb($3::text), true),
		     updated_at = NOW()
		 WHERE id = $1`,
		documentID, string(style), content,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s transformation: %w", style, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CollapseTx runs fn with the reader row locked FOR UPDATE and commits its
// result atomically.
func (db *PostgresStore) CollapseTx(ctx context.Context, readerID, documentID uuid.UUID, fn CollapseFunc) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	reader, err := scanReader(tx.QueryRow(ctx, readerSelect+` WHERE id = $1 FOR UPDATE`, readerID))
	if err != nil {
		return err
	}
	doc, err := scanDocument(tx.QueryRow(ctx,
		documentSelect+` WHERE id = $1 AND reader_id = $2 FOR UPDATE`, documentID, readerID))
	if err != nil {
		return err
	}

	write, err := fn(reader, doc)
	if err != nil {
		return err
	}

	profileJSON, stateJSON, err := encodeReaderJSON(write.Profile, write.State)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE documents SET selected_style = $2, updated_at = NOW() WHERE id = $1`,
		documentID, string(write.SelectedStyle),
	); err != nil {
		return fmt.Errorf("failed to record selected style: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE readers SET profile = $2, learning_state = $3, preferred_style = $4, updated_at = NOW() WHERE id = $1`,
		readerID, profileJSON, stateJSON, write.PreferredStyle,
	); err != nil {
		return fmt.Errorf("failed to update reader state: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit collapse: %w", err)
	}
	return nil
}

const readerSelect = `SELECT id, name, api_key_hash, preferred_style, profile, learning_state, created_at, updated_at FROM readers`

const documentSelect = `SELECT id, reader_id, original_content, extracted_text, content_hash,
	transformations, selected_style, decision, created_at, updated_at FROM documents`

func scanReader(row pgx.Row) (*types.Reader, error) {
	var r types.Reader
	var profileJSON, stateJSON []byte
	err := row.Scan(&r.ID, &r.Name, &r.APIKeyHash, &r.PreferredStyle, &profileJSON, &stateJSON, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reader: %w", err)
	}
	if err := decodeReaderJSON(&r, profileJSON, stateJSON); err != nil {
		return nil, err
	}
	return &r, nil
}

func scanDocument(row pgx.Row) (*types.Document, error) {
	var d types.Document
	var transformations, decision []byte
	var selected *string
	err := row.Scan(&d.ID, &d.ReaderID, &d.OriginalContent, &d.ExtractedText, &d.ContentHash,
		&transformations, &selected, &decision, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if err := decodeDocumentJSON(&d, transformations, decision, selected); err != nil {
		return nil, err
	}
	return &d, nil
}

func stampCreated(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}

var _ Store = (*PostgresStore)(nil)
