// Package sqlite provides a dataset backend on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ohana/internal/infra/persistence"
	"ohana/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var (
	_ domain.DatasetLoader = (*Store)(nil)
	_ domain.DatasetWriter = (*Store)(nil)
)

const defaultPath = "ohana.db"

// Store keeps the dataset in a single state table, one JSON payload per bucket.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (creating if needed) the SQLite file at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Load reads every bucket. An empty table yields an empty dataset.
func (s *Store) Load(ctx context.Context) (domain.Dataset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ds domain.Dataset
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return domain.Dataset{}, fmt.Errorf("scan: %w", err)
		}
		if err := persistence.DecodeBucket(&ds, bucket, payload); err != nil {
			return domain.Dataset{}, err
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Dataset{}, fmt.Errorf("iterate state: %w", err)
	}
	return ds, nil
}

// Save replaces the stored dataset in one transaction.
func (s *Store) Save(ctx context.Context, ds domain.Dataset) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range persistence.Buckets {
		data, err := persistence.EncodeBucket(ds, bucket)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
