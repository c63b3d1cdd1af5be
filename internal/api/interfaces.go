// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/admitcast/backend/internal/models"
)

// UploadHandler handles file upload operations.
type UploadHandler interface {
	HandleUploadFile(c echo.Context) error
	HandleUploadChunk(c echo.Context) error
	HandleCompleteUpload(c echo.Context) error
	HandleUploadBinary(c echo.Context) error
	HandleGetRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
	HandleRenameFile(c echo.Context) error
}

// ExtractHandler handles extraction job operations.
type ExtractHandler interface {
	HandleStartExtract(c echo.Context) error
	HandleExtractStatus(c echo.Context) error
	HandleJobKeepAlive(c echo.Context) error
	HandleExtractRecords(c echo.Context) error
	HandleExtractRecordsMsgpack(c echo.Context) error
	HandleExtractProgressStream(c echo.Context) error
}

// PredictHandler handles prediction and institution listing operations.
type PredictHandler interface {
	HandlePredict(c echo.Context) error
	HandleListInstitutions(c echo.Context) error
}

// HealthHandler handles health checks.
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// JobManager is the subset of the session manager the handlers depend on.
type JobManager interface {
	StartJob(fileID string, format models.Format, kind models.RecordKind) (*models.ExtractionJob, error)
	GetJob(id string) (*models.ExtractionJob, bool)
	GetResult(id string) (*models.ExtractionResult, bool)
	TouchJob(id string) bool
	DeleteJobsForFile(fileID string)
	CleanupOldJobs(maxAge time.Duration)
}
