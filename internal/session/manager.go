// Package session runs and tracks asynchronous extract-then-persist jobs
// over uploaded files.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/admitcast/backend/internal/extract"
	"github.com/admitcast/backend/internal/models"
	"github.com/admitcast/backend/internal/storage"
)

// MaxJobs limits concurrent tracked jobs to bound memory.
const MaxJobs = 50

// JobMaxAge is how long completed jobs are kept before cleanup.
const JobMaxAge = 30 * time.Minute

// Manager handles extraction jobs. Each job runs in its own goroutine with
// no shared scan state, so independent files extract in parallel safely.
type Manager struct {
	mu       sync.RWMutex
	jobs     map[string]*jobState
	registry *extract.Registry
	files    storage.Store
	records  storage.RecordStore
}

type jobState struct {
	job          *models.ExtractionJob
	result       *models.ExtractionResult
	lastAccessed time.Time
}

// NewManager creates a job manager wired to the file store and record
// store.
func NewManager(registry *extract.Registry, files storage.Store, records storage.RecordStore) *Manager {
	return &Manager{
		jobs:     make(map[string]*jobState),
		registry: registry,
		files:    files,
		records:  records,
	}
}

// StartJob begins extraction of a stored file. The declared format wins;
// FormatAuto falls back to content sniffing.
func (m *Manager) StartJob(fileID string, format models.Format, kind models.RecordKind) (*models.ExtractionJob, error) {
	filePath, err := m.files.GetFilePath(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolving file: %w", err)
	}

	m.cleanupIfNeeded()

	job := models.NewExtractionJob(uuid.New().String(), fileID, kind, format)
	job.Status = models.JobStatusRunning
	job.StartTime = time.Now().UnixMilli()

	m.mu.Lock()
	m.jobs[job.ID] = &jobState{job: job, lastAccessed: time.Now()}
	m.mu.Unlock()

	go m.runJob(job.ID, filePath, format, kind)

	return job, nil
}

// runJob performs extraction and persistence in the background. Panics are
// recovered into a job error so one bad file never takes the server down.
func (m *Manager) runJob(jobID, filePath string, format models.Format, kind models.RecordKind) {
	defer func() {
		if r := recover(); r != nil {
			m.failJob(jobID, fmt.Sprintf("extraction panicked: %v", r))
		}
	}()

	extractor := m.registry.ByFormat(format)
	if extractor == nil {
		detected, err := m.registry.Detect(filePath)
		if err != nil {
			m.failJob(jobID, err.Error())
			return
		}
		extractor = detected
	}

	m.setProgress(jobID, 25, "extracting records")

	result, err := extractor.Extract(filePath, kind)
	if err != nil && result == nil {
		m.failJob(jobID, err.Error())
		return
	}
	if !result.Success {
		m.finishJob(jobID, result)
		return
	}

	m.setProgress(jobID, 70, "persisting records")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := m.persist(ctx, result); err != nil {
		// Persistence failure: keep the store's message, drop the records.
		result.Success = false
		result.Message = fmt.Sprintf("persistence failed: %v", err)
		result.Errors = append(result.Errors, result.Message)
	}

	m.finishJob(jobID, result)
}

func (m *Manager) persist(ctx context.Context, result *models.ExtractionResult) error {
	if len(result.Institutions) > 0 {
		stored, err := m.records.InsertInstitutions(ctx, result.Institutions)
		if err != nil {
			return err
		}
		result.Institutions = stored
	}
	if len(result.Cutoffs) > 0 {
		stored, err := m.records.InsertCutoffRecords(ctx, result.Cutoffs)
		if err != nil {
			return err
		}
		result.Cutoffs = stored
	}
	return nil
}

func (m *Manager) setProgress(jobID string, progress float64, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.jobs[jobID]; ok {
		state.job.Progress = progress
		state.job.Message = message
	}
}

func (m *Manager) finishJob(jobID string, result *models.ExtractionResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.jobs[jobID]
	if !ok {
		return
	}
	state.result = result
	state.job.EndTime = time.Now().UnixMilli()
	state.job.Stats = result.Stats
	state.job.RecordCount = result.RecordCount()
	state.job.Message = result.Message
	state.job.Progress = 100

	fileStatus := "extracted"
	if result.Success {
		state.job.Status = models.JobStatusComplete
	} else {
		state.job.Status = models.JobStatusError
		state.job.Error = result.Message
		fileStatus = "error"
	}
	m.files.SetStatus(state.job.FileID, fileStatus)
}

func (m *Manager) failJob(jobID, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.jobs[jobID]
	if !ok {
		return
	}
	state.job.Status = models.JobStatusError
	state.job.Error = message
	state.job.EndTime = time.Now().UnixMilli()
	m.files.SetStatus(state.job.FileID, "error")
}

// GetJob returns a snapshot of a job's current state.
func (m *Manager) GetJob(id string) (*models.ExtractionJob, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	snapshot := *state.job
	return &snapshot, true
}

// GetResult returns the extraction result of a finished job.
func (m *Manager) GetResult(id string) (*models.ExtractionResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.jobs[id]
	if !ok || state.result == nil {
		return nil, false
	}
	return state.result, true
}

// TouchJob extends a job's lifetime while a client is watching it.
func (m *Manager) TouchJob(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.jobs[id]
	if !ok {
		return false
	}
	state.lastAccessed = time.Now()
	return true
}

// DeleteJobsForFile drops all jobs referencing a deleted file.
func (m *Manager) DeleteJobsForFile(fileID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, state := range m.jobs {
		if state.job.FileID == fileID {
			delete(m.jobs, id)
		}
	}
}

// CleanupOldJobs removes finished jobs older than maxAge.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for id, state := range m.jobs {
		done := state.job.Status == models.JobStatusComplete ||
			state.job.Status == models.JobStatusError
		if done && state.lastAccessed.Before(cutoff) {
			delete(m.jobs, id)
		}
	}
}

func (m *Manager) cleanupIfNeeded() {
	m.mu.RLock()
	over := len(m.jobs) >= MaxJobs
	m.mu.RUnlock()
	if over {
		m.CleanupOldJobs(JobMaxAge)
	}
}
