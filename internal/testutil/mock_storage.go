// mock_storage.go - Mock file storage implementation for testing
package testutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/admitcast/backend/internal/models"
)

// MockStorage implements storage.Store in memory for testing. Files are
// written to a temp directory so GetFilePath works against real extractors.
type MockStorage struct {
	mu       sync.RWMutex
	dir      string
	files    map[string]*models.FileInfo
	chunks   map[string]map[int][]byte
	nextID   int
	FailSave bool // force Save errors
}

// NewMockStorage creates a mock store rooted at dir (use t.TempDir()).
func NewMockStorage(dir string) *MockStorage {
	return &MockStorage{
		dir:    dir,
		files:  make(map[string]*models.FileInfo),
		chunks: make(map[string]map[int][]byte),
	}
}

func (m *MockStorage) Save(name string, r io.Reader) (*models.FileInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return m.SaveBytes(name, data)
}

func (m *MockStorage) SaveBytes(name string, data []byte) (*models.FileInfo, error) {
	if m.FailSave {
		return nil, fmt.Errorf("mock save failure")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := fmt.Sprintf("file-%d", m.nextID)
	if err := os.WriteFile(filepath.Join(m.dir, id), data, 0644); err != nil {
		return nil, err
	}

	info := &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		Status:     "uploaded",
	}
	m.files[id] = info
	return info, nil
}

func (m *MockStorage) Get(id string) (*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}
	return info, nil
}

func (m *MockStorage) List(limit int) ([]*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*models.FileInfo, 0, len(m.files))
	for _, info := range m.files {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return fmt.Errorf("file not found: %s", id)
	}
	delete(m.files, id)
	os.Remove(filepath.Join(m.dir, id))
	return nil
}

func (m *MockStorage) Rename(id string, newName string) (*models.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}
	info.Name = newName
	return info, nil
}

func (m *MockStorage) SetStatus(id string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.files[id]
	if !ok {
		return fmt.Errorf("file not found: %s", id)
	}
	info.Status = status
	return nil
}

func (m *MockStorage) GetFilePath(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.files[id]; !ok {
		return "", fmt.Errorf("file not found: %s", id)
	}
	return filepath.Join(m.dir, id), nil
}

func (m *MockStorage) SaveChunk(uploadID string, chunkIndex int, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.chunks[uploadID] == nil {
		m.chunks[uploadID] = make(map[int][]byte)
	}
	m.chunks[uploadID][chunkIndex] = data
	return nil
}

func (m *MockStorage) CompleteChunkedUpload(uploadID string, name string, totalChunks int) (*models.FileInfo, error) {
	m.mu.Lock()
	chunks, ok := m.chunks[uploadID]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("upload not found: %s", uploadID)
	}

	var data []byte
	for i := 0; i < totalChunks; i++ {
		chunk, ok := chunks[i]
		if !ok {
			return nil, fmt.Errorf("missing chunk %d", i)
		}
		data = append(data, chunk...)
	}

	info, err := m.SaveBytes(name, data)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	delete(m.chunks, uploadID)
	m.mu.Unlock()
	return info, nil
}
