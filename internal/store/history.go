package store

import (
	"context"
	"time"
)

// BatchRecord captures the outcome of one pipeline run. Only aggregate
// numbers are kept, never image bytes.
type BatchRecord struct {
	ID         string
	CreatedAt  time.Time
	Format     string
	Total      int
	Succeeded  int
	Failed     int
	BytesIn    int64
	BytesOut   int64
	DurationMS int64
}

type History interface {
	Record(ctx context.Context, rec BatchRecord) error
	Recent(ctx context.Context, limit int) ([]BatchRecord, error)
	Close() error
}
