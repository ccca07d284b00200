package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSQLiteHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := NewSQLiteHistory(ctx, path)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	records := []BatchRecord{
		{ID: "batch-1", CreatedAt: base, Format: "jpeg", Total: 5, Succeeded: 4, Failed: 1, BytesIn: 5000, BytesOut: 2000, DurationMS: 120},
		{ID: "batch-2", CreatedAt: base.Add(time.Minute), Format: "webp", Total: 2, Succeeded: 2, BytesIn: 900, BytesOut: 300, DurationMS: 40},
		{ID: "batch-3", CreatedAt: base.Add(2 * time.Minute), Format: "png", Total: 1, Succeeded: 1, BytesIn: 100, BytesOut: 150, DurationMS: 9},
	}
	for _, rec := range records {
		if err := s.Record(ctx, rec); err != nil {
			t.Fatalf("record %s: %v", rec.ID, err)
		}
	}

	recent, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recent))
	}
	if recent[0].ID != "batch-3" || recent[1].ID != "batch-2" {
		t.Fatalf("expected newest first, got %s then %s", recent[0].ID, recent[1].ID)
	}

	got := recent[1]
	want := records[1]
	if got.CreatedAt != want.CreatedAt {
		t.Fatalf("expected created_at %v, got %v", want.CreatedAt, got.CreatedAt)
	}
	if got.Format != want.Format || got.Total != want.Total || got.Succeeded != want.Succeeded || got.Failed != want.Failed {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if got.BytesIn != want.BytesIn || got.BytesOut != want.BytesOut || got.DurationMS != want.DurationMS {
		t.Fatalf("expected byte totals %+v, got %+v", want, got)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen and confirm the records survived.
	s2, err := NewSQLiteHistory(ctx, path)
	if err != nil {
		t.Fatalf("reopen history: %v", err)
	}
	defer s2.Close()

	all, err := s2.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent after reopen: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records after reopen, got %d", len(all))
	}
}

func TestSQLiteHistoryAppliesPragmas(t *testing.T) {
	// The DSN must use the driver's _pragma=name(value) form; mattn-style
	// keys like _journal_mode are silently ignored by modernc.org/sqlite.
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := NewSQLiteHistory(ctx, path)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Fatalf("expected journal_mode wal, got %s", mode)
	}

	var timeout int
	if err := s.db.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("query busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Fatalf("expected busy_timeout 5000, got %d", timeout)
	}
}

func TestSQLiteHistoryCreatesDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")

	s, err := NewSQLiteHistory(ctx, path)
	if err != nil {
		t.Fatalf("open history with nested path: %v", err)
	}
	defer s.Close()

	if err := s.Record(ctx, BatchRecord{ID: "only", CreatedAt: time.Now(), Format: "jpeg", Total: 1, Succeeded: 1}); err != nil {
		t.Fatalf("record: %v", err)
	}
}
