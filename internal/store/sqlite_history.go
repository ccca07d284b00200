package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const historySchemaSQL = `
CREATE TABLE IF NOT EXISTS batch_history (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	format TEXT NOT NULL,
	total INTEGER NOT NULL,
	succeeded INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	bytes_in INTEGER NOT NULL,
	bytes_out INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL
);
`

type SQLiteHistory struct {
	db *sql.DB
}

// NewSQLiteHistory opens the history database at path, creating the file,
// its directory and the schema as needed.
func NewSQLiteHistory(ctx context.Context, path string) (*SQLiteHistory, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	// modernc.org/sqlite only honors pragmas in _pragma=name(value) form.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// sqlite works best with a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, historySchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure history schema: %w", err)
	}

	return &SQLiteHistory{db: db}, nil
}

func (s *SQLiteHistory) Record(ctx context.Context, rec BatchRecord) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO batch_history (id, created_at, format, total, succeeded, failed, bytes_in, bytes_out, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.CreatedAt.UTC().Unix(),
		rec.Format,
		rec.Total,
		rec.Succeeded,
		rec.Failed,
		rec.BytesIn,
		rec.BytesOut,
		rec.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("insert batch record: %w", err)
	}
	return nil
}

func (s *SQLiteHistory) Recent(ctx context.Context, limit int) ([]BatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, created_at, format, total, succeeded, failed, bytes_in, bytes_out, duration_ms
		 FROM batch_history
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query batch records: %w", err)
	}
	defer rows.Close()

	var records []BatchRecord
	for rows.Next() {
		var (
			rec       BatchRecord
			createdAt int64
		)
		if err := rows.Scan(
			&rec.ID,
			&createdAt,
			&rec.Format,
			&rec.Total,
			&rec.Succeeded,
			&rec.Failed,
			&rec.BytesIn,
			&rec.BytesOut,
			&rec.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("scan batch record: %w", err)
		}
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch records: %w", err)
	}

	return records, nil
}

func (s *SQLiteHistory) Close() error {
	return s.db.Close()
}
