package store

import (
	"context"
	"sync"
)

// MemoryHistory keeps batch records in memory, for embedders that want run
// stats without a database file.
type MemoryHistory struct {
	mu      sync.RWMutex
	records []BatchRecord
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

func (s *MemoryHistory) Record(_ context.Context, rec BatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// Recent returns up to limit records, newest first. limit <= 0 returns all.
func (s *MemoryHistory) Recent(_ context.Context, limit int) ([]BatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}

	out := make([]BatchRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func (s *MemoryHistory) Close() error {
	return nil
}
