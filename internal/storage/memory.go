package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Store. Contents are lost on exit.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) Save(ctx context.Context, rec Record) error {
	return m.SaveAll(ctx, []Record{rec})
}

func (m *Memory) SaveAll(ctx context.Context, recs []Record) error {
	for _, r := range recs {
		if err := validateRecord(r); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range recs {
		r.Result = cloneResult(r.Result)
		m.records[r.PointID] = r
	}
	return nil
}

func (m *Memory) Get(_ context.Context, pointID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[pointID]
	if !ok {
		return Record{}, ErrNotFound
	}
	r.Result = cloneResult(r.Result)
	return r, nil
}

func (m *Memory) List(_ context.Context) ([]Record, error) {
	m.mu.RLock()
	out := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		r.Result = cloneResult(r.Result)
		out = append(out, r)
	}
	m.mu.RUnlock()

	sortRecords(out)
	return out, nil
}

func (m *Memory) Delete(_ context.Context, pointID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[pointID]; !ok {
		return ErrNotFound
	}
	delete(m.records, pointID)
	return nil
}

func (m *Memory) Reset(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.records)
	m.records = make(map[string]Record)
	return n, nil
}

func (m *Memory) Close() error {
	return nil
}
