package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/liquefy/internal/config"
)

const upsertPostgres = `
INSERT INTO results (id, point_id, source, category, intensity, depth_criterion,
                     groundwater_depth, ile, grade, layers, calculated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (point_id) DO UPDATE SET
    id = EXCLUDED.id,
    source = EXCLUDED.source,
    category = EXCLUDED.category,
    intensity = EXCLUDED.intensity,
    depth_criterion = EXCLUDED.depth_criterion,
    groundwater_depth = EXCLUDED.groundwater_depth,
    ile = EXCLUDED.ile,
    grade = EXCLUDED.grade,
    layers = EXCLUDED.layers,
    calculated_at = EXCLUDED.calculated_at`

const selectPostgres = `
SELECT id, point_id, source, category, intensity, depth_criterion,
       groundwater_depth, ile, grade, layers, calculated_at
FROM results`

// Postgres stores results in PostgreSQL through a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, migrates and returns a Postgres store.
func OpenPostgres(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Postgres, error) {
	if err := migratePostgres(cfg.URL, logger); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	poolCfg.MinConns = int32(cfg.MinConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// migratePostgres runs the embedded migrations over a short-lived
// connection opened by the pgx5 migrate driver.
func migratePostgres(url string, logger *slog.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations/postgres")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, pgx5URL(url))
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	return runUp(m, logger)
}

// pgx5URL rewrites a postgres:// URL to the scheme the migrate driver registers.
func pgx5URL(url string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(url, prefix) {
			return "pgx5://" + strings.TrimPrefix(url, prefix)
		}
	}
	return url
}

func (p *Postgres) Save(ctx context.Context, rec Record) error {
	return p.SaveAll(ctx, []Record{rec})
}

func (p *Postgres) SaveAll(ctx context.Context, recs []Record) error {
	batch := &pgx.Batch{}
	for _, rec := range recs {
		if err := validateRecord(rec); err != nil {
			return err
		}
		r, err := encodeRecord(rec)
		if err != nil {
			return err
		}
		batch.Queue(upsertPostgres, pgtype.UUID{Bytes: rec.ID, Valid: true}, r.PointID, r.Source, r.Category, r.Intensity,
			r.DepthCriterion, r.GroundwaterDepth, r.Index, r.Grade, r.Layers, rec.CalculatedAt)
	}

	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
}

func scanPostgres(sc pgx.Row) (Record, error) {
	var (
		r   row
		id  pgtype.UUID
		rec Record
	)
	if err := sc.Scan(&id, &r.PointID, &r.Source, &r.Category, &r.Intensity, &r.DepthCriterion,
		&r.GroundwaterDepth, &r.Index, &r.Grade, &r.Layers, &rec.CalculatedAt); err != nil {
		return Record{}, err
	}
	rec.ID = uuid.UUID(id.Bytes)
	if err := decodeInto(&rec, r); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (p *Postgres) Get(ctx context.Context, pointID string) (Record, error) {
	rec, err := scanPostgres(p.pool.QueryRow(ctx, selectPostgres+" WHERE point_id = $1", pointID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %q: %w", pointID, err)
	}
	return rec, nil
}

func (p *Postgres) List(ctx context.Context) ([]Record, error) {
	rows, err := p.pool.Query(ctx, selectPostgres+" ORDER BY point_id")
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) Delete(ctx context.Context, pointID string) error {
	tag, err := p.pool.Exec(ctx, "DELETE FROM results WHERE point_id = $1", pointID)
	if err != nil {
		return fmt.Errorf("delete %q: %w", pointID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Reset(ctx context.Context) (int, error) {
	tag, err := p.pool.Exec(ctx, "DELETE FROM results")
	if err != nil {
		return 0, fmt.Errorf("reset results: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
