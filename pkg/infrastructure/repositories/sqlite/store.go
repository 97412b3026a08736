package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/domain/repositories"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents (collection, seq);
`

// Store keeps documents in a single SQLite table
type Store struct {
	db *sql.DB
}

// Verify interface compliance
var _ repositories.DocumentStore = (*Store)(nil)

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	// _pragma values are applied by the driver to every new connection.
	db, err := sql.Open("sqlite", path+sep+"_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if strings.HasPrefix(path, ":memory:") {
		// each connection would see its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal_mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, collection repositories.Collection, doc any) (string, error) {
	body, err := repositories.EncodeObject(doc)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		string(collection), id, string(body), now, now)
	if err != nil {
		return "", fmt.Errorf("insert %s document: %w", collection, err)
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection repositories.Collection, id string, patch any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	var body string
	err = tx.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		string(collection), id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("document %s/%s: %w", collection, id, entities.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read %s/%s: %w", collection, id, err)
	}

	merged, err := repositories.MergeJSON([]byte(body), patch)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET body = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(merged), time.Now().UTC(), string(collection), id); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return tx.Commit()
}

func (s *Store) ListAll(ctx context.Context, collection repositories.Collection) ([]repositories.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, body FROM documents WHERE collection = ? ORDER BY seq`, string(collection))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []repositories.Document{}
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		docs = append(docs, repositories.Document{ID: id, Body: []byte(body)})
	}
	return docs, rows.Err()
}

func (s *Store) Delete(ctx context.Context, collection repositories.Collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, string(collection), id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return fmt.Errorf("document %s/%s: %w", collection, id, entities.ErrNotFound)
	}
	return nil
}
