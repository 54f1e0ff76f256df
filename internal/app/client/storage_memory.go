package client

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"fibertrace/internal/model"
)

// MemoryStorage is an in-memory Storage used by tests.
type MemoryStorage struct {
	mu       sync.Mutex
	records  map[model.Collection]map[string]model.Record
	lastSync map[model.Collection]time.Time
	timer    *TimerState
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records:  make(map[model.Collection]map[string]model.Record),
		lastSync: make(map[model.Collection]time.Time),
	}
}

func (m *MemoryStorage) Load(c model.Collection) ([]model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := make([]model.Record, 0, len(m.records[c]))
	for _, rec := range m.records[c] {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs, nil
}

func (m *MemoryStorage) Get(c model.Collection, id string) (model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[c][id]
	if !ok {
		return model.Record{}, fmt.Errorf("%w: %s/%s", ErrNotFound, c, id)
	}
	return rec, nil
}

func (m *MemoryStorage) Upsert(rec model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.records[rec.Collection] == nil {
		m.records[rec.Collection] = make(map[string]model.Record)
	}
	m.records[rec.Collection][rec.ID] = rec
	return nil
}

func (m *MemoryStorage) SaveAll(c model.Collection, recs []model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[string]model.Record, len(recs))
	for _, rec := range recs {
		next[rec.ID] = rec
	}
	m.records[c] = next
	return nil
}

func (m *MemoryStorage) Purge(c model.Collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records[c], id)
	return nil
}

func (m *MemoryStorage) UnsyncedCount(c model.Collection) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, rec := range m.records[c] {
		if !rec.Synced {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStorage) LastSyncTime(c model.Collection) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSync[c], nil
}

func (m *MemoryStorage) SetLastSyncTime(c model.Collection, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSync[c] = t
	return nil
}

func (m *MemoryStorage) LoadTimer() (TimerState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timer == nil {
		return TimerState{}, ErrNotFound
	}
	return *m.timer, nil
}

func (m *MemoryStorage) SaveTimer(ts TimerState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timer = &ts
	return nil
}

func (m *MemoryStorage) ClearTimer() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timer = nil
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
