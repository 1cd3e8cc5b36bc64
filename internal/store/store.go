// Package store persists the portfolio document and the visitor log.
//
// The portfolio is kept as one JSON document under a fixed key. Writes
// always replace the whole document; the last write wins.
package store

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Zachkp/folio/internal/portfolio"
)

// DataKey is the key the portfolio document is stored under.
const DataKey = "portfolioData"

// Adapter reads and writes the aggregate portfolio document.
type Adapter interface {
	Load(ctx context.Context) (*portfolio.Data, bool)
	Save(ctx context.Context, d *portfolio.Data) error
	Delete(ctx context.Context) error
}

// Visit is a single privacy-conscious page view: the client address is only
// ever stored hashed.
type Visit struct {
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

type VisitStats struct {
	TotalVisitors    int64 `json:"total_visitors"`
	UniqueVisitors   int64 `json:"unique_visitors"`
	VisitorsToday    int64 `json:"visitors_today"`
	VisitorsThisWeek int64 `json:"visitors_this_week"`
}

// VisitLog records page views for the admin dashboard.
type VisitLog interface {
	RecordVisit(ctx context.Context, v Visit) error
	VisitStats(ctx context.Context, now time.Time) (VisitStats, error)
	PurgeVisitsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// decode parses a stored document. Corrupt data is logged and reported as
// absent so the caller falls back to defaults.
func decode(log *zap.Logger, raw []byte) (*portfolio.Data, bool) {
	var d portfolio.Data
	if err := json.Unmarshal(raw, &d); err != nil {
		log.Warn("discarding unreadable portfolio data", zap.String("key", DataKey), zap.Error(err))
		return nil, false
	}
	return &d, true
}
