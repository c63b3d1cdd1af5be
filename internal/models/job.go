package models

// JobStatus represents the status of an extraction job.
type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusRunning  JobStatus = "running"
	JobStatusComplete JobStatus = "complete"
	JobStatusError    JobStatus = "error"
)

// ExtractionJob tracks one async extract-then-persist run over an uploaded
// file.
type ExtractionJob struct {
	ID          string          `json:"id"`
	FileID      string          `json:"fileId"`
	Kind        RecordKind      `json:"kind"`
	Format      Format          `json:"format"`
	Status      JobStatus       `json:"status"`
	Progress    float64         `json:"progress"` // 0-100
	Message     string          `json:"message,omitempty"`
	RecordCount int             `json:"recordCount,omitempty"`
	Stats       ExtractionStats `json:"stats,omitempty"`
	Error       string          `json:"error,omitempty"`
	StartTime   int64           `json:"startTime,omitempty"` // Unix ms
	EndTime     int64           `json:"endTime,omitempty"`   // Unix ms
}

// NewExtractionJob creates a new ExtractionJob in pending status.
func NewExtractionJob(id, fileID string, kind RecordKind, format Format) *ExtractionJob {
	return &ExtractionJob{
		ID:     id,
		FileID: fileID,
		Kind:   kind,
		Format: format,
		Status: JobStatusPending,
	}
}
