package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/liquefy/internal/config"
	"github.com/JonMunkholm/liquefy/internal/liquefaction"
)

func computed(t *testing.T, id string, p liquefaction.SitePoint) liquefaction.Result {
	t.Helper()
	p.ID = id
	res, err := liquefaction.Compute(p)
	require.NoError(t, err)
	return res
}

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	sq, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "results.db"), nil)
	require.NoError(t, err)

	stores := map[string]Store{
		"memory": NewMemory(),
		"sqlite": sq,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStore_SaveGetReplace(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first := NewRecord(computed(t, "P1", liquefaction.DefaultPoint()), SourceManual, liquefaction.CategoryB)
			require.NoError(t, s.Save(ctx, first))

			got, err := s.Get(ctx, "P1")
			require.NoError(t, err)
			assert.Equal(t, first.ID, got.ID)
			assert.Equal(t, liquefaction.GradeSevere, got.Result.Grade)
			assert.InDelta(t, first.Result.Index, got.Result.Index, 1e-12)
			assert.Equal(t, first.Result.Layers, got.Result.Layers)
			assert.WithinDuration(t, first.CalculatedAt, got.CalculatedAt, time.Millisecond)

			p := liquefaction.DefaultPoint()
			p.Layers = p.Layers[:1]
			second := NewRecord(computed(t, "P1", p), SourceImport, liquefaction.CategoryC)
			require.NoError(t, s.Save(ctx, second))

			got, err = s.Get(ctx, "P1")
			require.NoError(t, err)
			assert.Equal(t, second.ID, got.ID, "recalculation must replace the stored result")
			assert.Equal(t, liquefaction.GradeSlight, got.Result.Grade)
			assert.Equal(t, liquefaction.CategoryC, got.Category)
			assert.Len(t, got.Result.Layers, 1)

			all, err := s.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestStore_ListDeleteReset(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var recs []Record
			for _, id := range []string{"B", "A", "C"} {
				recs = append(recs, NewRecord(computed(t, id, liquefaction.DefaultPoint()), SourceImport, liquefaction.CategoryD))
			}
			require.NoError(t, s.SaveAll(ctx, recs))

			all, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, []string{"A", "B", "C"}, []string{all[0].PointID, all[1].PointID, all[2].PointID})

			require.NoError(t, s.Delete(ctx, "B"))
			assert.ErrorIs(t, s.Delete(ctx, "B"), ErrNotFound)
			_, err = s.Get(ctx, "B")
			assert.ErrorIs(t, err, ErrNotFound)

			n, err := s.Reset(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			all, err = s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestStore_SaveAllIsAtomic(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			good := NewRecord(computed(t, "ok", liquefaction.DefaultPoint()), SourceImport, liquefaction.CategoryB)
			bad := NewRecord(computed(t, "bad", liquefaction.DefaultPoint()), SourceImport, liquefaction.CategoryB)
			bad.ID = uuid.Nil

			assert.Error(t, s.SaveAll(ctx, []Record{good, bad}))

			_, err := s.Get(ctx, "ok")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	rec := NewRecord(computed(t, "P", liquefaction.DefaultPoint()), SourceManual, liquefaction.CategoryB)
	require.NoError(t, m.Save(ctx, rec))
	rec.Result.Layers[0].Contribution = 999

	got, err := m.Get(ctx, "P")
	require.NoError(t, err)
	assert.NotEqual(t, 999.0, got.Result.Layers[0].Contribution)
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StorageConfig{Driver: config.DriverMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, config.StorageConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.db")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, config.StorageConfig{Driver: "mysql"}, nil)
	assert.Error(t, err)
}

func TestOpenSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")

	s, err := OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, NewRecord(computed(t, "kept", liquefaction.DefaultPoint()), SourceManual, liquefaction.CategoryB)))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, "kept")
	assert.NoError(t, err)
}

func TestPgx5URL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@h/db": "pgx5://u:p@h/db",
		"postgresql://h/db":   "pgx5://h/db",
		"pgx5://h/db":         "pgx5://h/db",
	}
	for in, want := range tests {
		if got := pgx5URL(in); got != want {
			t.Errorf("pgx5URL(%q) = %q, want %q", in, got, want)
		}
	}
}
