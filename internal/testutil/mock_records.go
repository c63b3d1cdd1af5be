// mock_records.go - Mock record store implementation for testing
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/admitcast/backend/internal/models"
)

// MockRecordStore implements storage.RecordStore in memory.
type MockRecordStore struct {
	mu           sync.RWMutex
	Institutions []models.Institution
	Cutoffs      []models.CutoffRecord
	FailInsert   bool // force insert errors to exercise persistence failures
	nextID       int
}

// NewMockRecordStore creates an empty mock record store.
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{}
}

func (m *MockRecordStore) InsertInstitutions(_ context.Context, records []models.Institution) ([]models.Institution, error) {
	if m.FailInsert {
		return nil, fmt.Errorf("mock insert failure")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Institution, len(records))
	for i, rec := range records {
		m.nextID++
		rec.ID = fmt.Sprintf("inst-%d", m.nextID)
		m.Institutions = append(m.Institutions, rec)
		out[i] = rec
	}
	return out, nil
}

func (m *MockRecordStore) InsertCutoffRecords(_ context.Context, records []models.CutoffRecord) ([]models.CutoffRecord, error) {
	if m.FailInsert {
		return nil, fmt.Errorf("mock insert failure")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.CutoffRecord, len(records))
	for i, rec := range records {
		m.nextID++
		rec.ID = fmt.Sprintf("cutoff-%d", m.nextID)
		m.Cutoffs = append(m.Cutoffs, rec)
		out[i] = rec
	}
	return out, nil
}

func (m *MockRecordStore) QueryCutoffRecords(_ context.Context, category string) ([]models.CutoffRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.CutoffRecord
	for _, rec := range m.Cutoffs {
		if strings.EqualFold(rec.Category, category) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MockRecordStore) ListInstitutions(_ context.Context, limit int) ([]models.Institution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := append([]models.Institution(nil), m.Institutions...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockRecordStore) Close() error { return nil }
