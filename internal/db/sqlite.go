package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on SQLite. SQLite has a single writer, so every
// write goes through mu; that also serializes concurrent collapses.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite database and applies migrations.
// Use ":memory:" for an in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// One connection keeps an in-memory database alive and shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies pending schema migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	migrations, err := loadMigrations("migrations/sqlite")
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		err := s.withTx(ctx, func(tx *sql.Tx) error {
			var n int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, m.version).Scan(&n); err != nil {
				return err
			}
			if n > 0 {
				return nil
			}
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
				m.version, m.name, formatTime(time.Now()))
			return err
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}
	return nil
}

// CreateReader inserts a reader.
func (s *SQLiteStore) CreateReader(ctx context.Context, reader *types.Reader) error {
	profileJSON, stateJSON, err := encodeReaderJSON(reader.Profile, reader.State)
	if err != nil {
		return err
	}
	stampCreated(&reader.CreatedAt, &reader.UpdatedAt)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO readers (id, name, api_key_hash, preferred_style, profile, learning_state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reader.ID.String(), reader.Name, reader.APIKeyHash, reader.PreferredStyle,
		string(profileJSON), string(stateJSON), formatTime(reader.CreatedAt), formatTime(reader.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create reader: %w", err)
	}
	return nil
}

// GetReader retrieves a reader by ID.
func (s *SQLiteStore) GetReader(ctx context.Context, id uuid.UUID) (*types.Reader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sqliteScanReader(s.db.QueryRowContext(ctx, readerSelect+` WHERE id = ?`, id.String()))
}

// UpdateReaderProfile replaces the profile and display preferred style of a reader.
func (s *SQLiteStore) UpdateReaderProfile(ctx context.Context, id uuid.UUID, profile types.ReaderProfile, preferredStyle string) error {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx,
		`UPDATE readers SET profile = ?, preferred_style = ?, updated_at = ? WHERE id = ?`,
		string(profileJSON), preferredStyle, formatTime(time.Now()), id.String())
	if err != nil {
		return fmt.Errorf("update reader profile: %w", err)
	}
	return requireRow(res)
}

// CreateDocument inserts a document.
func (s *SQLiteStore) CreateDocument(ctx context.Context, doc *types.Document) error {
	transformations, err := encodeTransformations(doc.Transformations)
	if err != nil {
		return err
	}
	decision, err := encodeDecision(doc.Decision)
	if err != nil {
		return err
	}
	stampCreated(&doc.CreatedAt, &doc.UpdatedAt)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, reader_id, original_content, extracted_text, content_hash,
		                        transformations, selected_style, decision, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID.String(), doc.ReaderID.String(), doc.OriginalContent, doc.ExtractedText, doc.ContentHash,
		string(transformations), selectedStyleValue(doc.SelectedStyle), nullableJSON(decision),
		formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document owned by readerID.
func (s *SQLiteStore) GetDocument(ctx context.Context, readerID, documentID uuid.UUID) (*types.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sqliteScanDocument(s.db.QueryRowContext(ctx,
		documentSelect+` WHERE id = ? AND reader_id = ?`, documentID.String(), readerID.String()))
}

// ListDocuments returns a reader's most recent documents.
func (s *SQLiteStore) ListDocuments(ctx context.Context, readerID uuid.UUID, limit int) ([]types.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		documentSelect+` WHERE reader_id = ? ORDER BY created_at DESC LIMIT ?`, readerID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []types.Document
	for rows.Next() {
		doc, err := sqliteScanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// SaveDecision stamps the decision trace on a document.
func (s *SQLiteStore) SaveDecision(ctx context.Context, documentID uuid.UUID, trace types.DecisionTrace) error {
	decision, err := encodeDecision(&trace)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET decision = ?, updated_at = ? WHERE id = ?`,
		string(decision), formatTime(time.Now()), documentID.String())
	if err != nil {
		return fmt.Errorf("save decision: %w", err)
	}
	return requireRow(res)
}

// SaveTransformation upserts one style's content. The read-modify-write runs
// in a transaction under the store mutex.
func (s *SQLiteStore) SaveTransformation(ctx context.Context, documentID uuid.UUID, style styles.Key, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var raw string
		err := tx.QueryRowContext(ctx, `SELECT transformations FROM documents WHERE id = ?`, documentID.String()).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load transformations: %w", err)
		}

		current := map[styles.Key]string{}
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &current); err != nil {
				return fmt.Errorf("decode transformations: %w", err)
			}
		}
		current[style] = content

		updated, err := encodeTransformations(current)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE documents SET transformations = ?, updated_at = ? WHERE id = ?`,
			string(updated), formatTime(time.Now()), documentID.String()); err != nil {
			return fmt.Errorf("save %s transformation: %w", style, err)
		}
		return nil
	})
}

// CollapseTx runs fn and commits its result in one transaction. The store
// mutex stands in for the row lock.
func (s *SQLiteStore) CollapseTx(ctx context.Context, readerID, documentID uuid.UUID, fn CollapseFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		reader, err := sqliteScanReader(tx.QueryRowContext(ctx, readerSelect+` WHERE id = ?`, readerID.String()))
		if err != nil {
			return err
		}
		doc, err := sqliteScanDocument(tx.QueryRowContext(ctx,
			documentSelect+` WHERE id = ? AND reader_id = ?`, documentID.String(), readerID.String()))
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
		now := formatTime(time.Now())
		if _, err := tx.ExecContext(ctx,
			`UPDATE documents SET selected_style = ?, updated_at = ? WHERE id = ?`,
			string(write.SelectedStyle), now, documentID.String()); err != nil {
			return fmt.Errorf("record selected style: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE readers SET profile = ?, learning_state = ?, preferred_style = ?, updated_at = ? WHERE id = ?`,
			string(profileJSON), string(stateJSON), write.PreferredStyle, now, readerID.String()); err != nil {
			return fmt.Errorf("update reader state: %w", err)
		}
		return nil
	})
}

// withTx runs fn in a transaction. Callers hold s.mu.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func sqliteScanReader(row rowScanner) (*types.Reader, error) {
	var r types.Reader
	var id, profileJSON, stateJSON, createdAt, updatedAt string
	err := row.Scan(&id, &r.Name, &r.APIKeyHash, &r.PreferredStyle, &profileJSON, &stateJSON, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reader: %w", err)
	}
	if r.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("reader id %q: %w", id, err)
	}
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	if err := decodeReaderJSON(&r, []byte(profileJSON), []byte(stateJSON)); err != nil {
		return nil, err
	}
	return &r, nil
}

func sqliteScanDocument(row rowScanner) (*types.Document, error) {
	var d types.Document
	var id, readerID, transformations, createdAt, updatedAt string
	var selected, decision sql.NullString
	err := row.Scan(&id, &readerID, &d.OriginalContent, &d.ExtractedText, &d.ContentHash,
		&transformations, &selected, &decision, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if d.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("document id %q: %w", id, err)
	}
	if d.ReaderID, err = uuid.Parse(readerID); err != nil {
		return nil, fmt.Errorf("document reader id %q: %w", readerID, err)
	}
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)

	var selectedPtr *string
	if selected.Valid {
		selectedPtr = &selected.String
	}
	var decisionJSON []byte
	if decision.Valid {
		decisionJSON = []byte(decision.String)
	}
	if err := decodeDocumentJSON(&d, []byte(transformations), decisionJSON, selectedPtr); err != nil {
		return nil, err
	}
	return &d, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableJSON(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

// sqliteTimeLayout is fixed-width so that timestamps sort as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

var _ Store = (*SQLiteStore)(nil)
