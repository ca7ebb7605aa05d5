package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const upsertSQLite = `
INSERT INTO results (id, point_id, source, category, intensity, depth_criterion,
                     groundwater_depth, ile, grade, layers, calculated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (point_id) DO UPDATE SET
    id = excluded.id,
    source = excluded.source,
    category = excluded.category,
    intensity = excluded.intensity,
    depth_criterion = excluded.depth_criterion,
    groundwater_depth = excluded.groundwater_depth,
    ile = excluded.ile,
    grade = excluded.grade,
    layers = excluded.layers,
    calculated_at = excluded.calculated_at`

const selectSQLite = `
SELECT id, point_id, source, category, intensity, depth_criterion,
       groundwater_depth, ile, grade, layers, calculated_at
FROM results`

// SQLite stores results in a single database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite migrate driver: %w", err)
	}
	if err := migrateUp("migrations/sqlite", "sqlite", driver, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, rec Record) error {
	return s.SaveAll(ctx, []Record{rec})
}

func (s *SQLite) SaveAll(ctx context.Context, recs []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertSQLite)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		if err := validateRecord(rec); err != nil {
			return err
		}
		r, err := encodeRecord(rec)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.PointID, r.Source, r.Category, r.Intensity,
			r.DepthCriterion, r.GroundwaterDepth, r.Index, r.Grade, string(r.Layers),
			rec.CalculatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("save %q: %w", rec.PointID, err)
		}
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLite(sc scanner) (Record, error) {
	var (
		r      row
		layers string
		at     string
		rec    Record
	)
	if err := sc.Scan(&r.ID, &r.PointID, &r.Source, &r.Category, &r.Intensity, &r.DepthCriterion,
		&r.GroundwaterDepth, &r.Index, &r.Grade, &layers, &at); err != nil {
		return Record{}, err
	}
	r.Layers = []byte(layers)

	id, err := uuid.Parse(r.ID)
	if err != nil {
		return Record{}, fmt.Errorf("record %q: bad id: %w", r.PointID, err)
	}
	rec.ID = id
	if rec.CalculatedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
		return Record{}, fmt.Errorf("record %q: bad timestamp: %w", r.PointID, err)
	}
	if err := decodeInto(&rec, r); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *SQLite) Get(ctx context.Context, pointID string) (Record, error) {
	rec, err := scanSQLite(s.db.QueryRowContext(ctx, selectSQLite+" WHERE point_id = ?", pointID))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %q: %w", pointID, err)
	}
	return rec, nil
}

func (s *SQLite) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectSQLite+" ORDER BY point_id")
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) Delete(ctx context.Context, pointID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM results WHERE point_id = ?", pointID)
	if err != nil {
		return fmt.Errorf("delete %q: %w", pointID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Reset(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM results")
	if err != nil {
		return 0, fmt.Errorf("reset results: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
