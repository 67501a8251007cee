// Package store persists analysis history per user.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/credence/internal/model"
)

// HistoryStore is the persistence contract for analysis history.
// Get and Delete return *model.NotFoundError for missing or foreign records.
type HistoryStore interface {
	Insert(ctx context.Context, rec *model.HistoryRecord) error
	Get(ctx context.Context, userID, id string) (*model.HistoryRecord, error)
	List(ctx context.Context, q model.HistoryQuery) (*model.HistoryPage, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int, error)
	Stats(ctx context.Context, userID string) (*model.Stats, error)
	Close() error
}

// Driver names
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open creates the configured store and prepares its schema
func Open(ctx context.Context, cfg model.StoreConfig) (HistoryStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite, "sqlite3":
		return OpenSQL(ctx, DriverSQLite, cfg.DSN)
	case DriverPostgres, "postgresql":
		return OpenSQL(ctx, DriverPostgres, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver: %s (supported: memory, sqlite, postgres)", cfg.Driver)
	}
}

func notFound(id string) error {
	return &model.NotFoundError{Resource: "analysis", ID: id}
}

func averageOf(sum, count int) int {
	if count == 0 {
		return 0
	}
	return int(float64(sum)/float64(count) + 0.5)
}
