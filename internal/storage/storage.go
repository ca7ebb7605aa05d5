// Package storage persists calculated results.
//
// One record is kept per point: saving a point again replaces the stored
// result, so a stale calculation never survives a recalculation. The
// memory store is the default; SQLite and PostgreSQL stores run their
// embedded migrations when opened.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/liquefy/internal/config"
	"github.com/JonMunkholm/liquefy/internal/liquefaction"
)

// ErrNotFound is returned when no record exists for a point.
var ErrNotFound = errors.New("result not found")

// Source values for records.
const (
	SourceManual = "manual"
	SourceImport = "import"
)

// Record is a stored calculation.
type Record struct {
	ID           uuid.UUID             `json:"id"`
	PointID      string                `json:"pointId"`
	Source       string                `json:"source"`
	Category     liquefaction.Category `json:"category"`
	Result       liquefaction.Result   `json:"result"`
	CalculatedAt time.Time             `json:"calculatedAt"`
}

// NewRecord stamps a result with a fresh id and the current time.
func NewRecord(res liquefaction.Result, source string, cat liquefaction.Category) Record {
	return Record{
		ID:           uuid.New(),
		PointID:      res.PointID,
		Source:       source,
		Category:     cat,
		Result:       res,
		CalculatedAt: time.Now().UTC(),
	}
}

// Store is implemented by every result backend. Implementations are safe
// for concurrent use.
type Store interface {
	// Save inserts or replaces the record of rec.PointID.
	Save(ctx context.Context, rec Record) error
	// SaveAll saves every record or none of them.
	SaveAll(ctx context.Context, recs []Record) error
	Get(ctx context.Context, pointID string) (Record, error)
	// List returns all records ordered by point id.
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, pointID string) error
	// Reset deletes every record and returns how many were removed.
	Reset(ctx context.Context) (int, error)
	Close() error
}

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return NewMemory(), nil
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath, logger)
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func validateRecord(rec Record) error {
	if strings.TrimSpace(rec.PointID) == "" {
		return errors.New("record has no point id")
	}
	if rec.ID == uuid.Nil {
		return fmt.Errorf("record for point %q has no id", rec.PointID)
	}
	return nil
}

func sortRecords(recs []Record) {
	slices.SortFunc(recs, func(a, b Record) int {
		return strings.Compare(a.PointID, b.PointID)
	})
}

// cloneResult copies the layer slice so callers cannot alter stored values.
func cloneResult(r liquefaction.Result) liquefaction.Result {
	r.Layers = slices.Clone(r.Layers)
	return r
}
