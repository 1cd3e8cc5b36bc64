package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Zachkp/folio/internal/portfolio"
)

// MemoryStore is an in-process Adapter and VisitLog. It keeps the document
// as raw bytes so it behaves like the SQLite store, corrupt input included.
type MemoryStore struct {
	mu     sync.Mutex
	raw    []byte
	visits []Visit
	log    *zap.Logger
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{log: zap.NewNop()}
}

// SetRaw replaces the stored document bytes verbatim.
func (m *MemoryStore) SetRaw(raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = append([]byte(nil), raw...)
}

func (m *MemoryStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.raw...)
}

func (m *MemoryStore) Load(context.Context) (*portfolio.Data, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raw == nil {
		return nil, false
	}
	return decode(m.log, m.raw)
}

func (m *MemoryStore) Save(_ context.Context, d *portfolio.Data) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding portfolio data: %w", err)
	}
	m.mu.Lock()
	m.raw = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(context.Context) error {
	m.mu.Lock()
	m.raw = nil
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) RecordVisit(_ context.Context, v Visit) error {
	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now()
	}
	m.mu.Lock()
	m.visits = append(m.visits, v)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) VisitStats(_ context.Context, now time.Time) (VisitStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := now.AddDate(0, 0, -7)

	var stats VisitStats
	unique := make(map[string]struct{})
	for _, v := range m.visits {
		stats.TotalVisitors++
		unique[v.HashedIP] = struct{}{}
		if !v.Timestamp.Before(dayStart) {
			stats.VisitorsToday++
		}
		if !v.Timestamp.Before(weekAgo) {
			stats.VisitorsThisWeek++
		}
	}
	stats.UniqueVisitors = int64(len(unique))
	return stats, nil
}

func (m *MemoryStore) PurgeVisitsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.visits[:0]
	for _, v := range m.visits {
		if !v.Timestamp.Before(cutoff) {
			kept = append(kept, v)
		}
	}
	n := int64(len(m.visits) - len(kept))
	m.visits = kept
	return n, nil
}

var (
	_ Adapter  = (*MemoryStore)(nil)
	_ VisitLog = (*MemoryStore)(nil)
	_ Adapter  = (*SQLiteStore)(nil)
	_ VisitLog = (*SQLiteStore)(nil)
)
