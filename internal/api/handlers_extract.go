// handlers_extract.go - Extraction job operation handlers
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/admitcast/backend/internal/models"
)

// ExtractHandlerImpl implements the ExtractHandler interface.
type ExtractHandlerImpl struct {
	jobs JobManager
}

// NewExtractHandler creates a new extract handler instance.
func NewExtractHandler(jobs JobManager) ExtractHandler {
	return &ExtractHandlerImpl{jobs: jobs}
}

// HandleStartExtract starts a new extraction job for an uploaded file.
func (h *ExtractHandlerImpl) HandleStartExtract(c echo.Context) error {
	var req startExtractRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	job, err := h.jobs.StartJob(req.FileID, req.format(), req.kind())
	if err != nil {
		return NewNotFoundError("file", req.FileID)
	}

	return c.JSON(http.StatusAccepted, job)
}

// HandleExtractStatus returns the current status of an extraction job.
func (h *ExtractHandlerImpl) HandleExtractStatus(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}

	job, ok := h.jobs.GetJob(id)
	if !ok {
		return NewNotFoundError("job", id)
	}
	h.jobs.TouchJob(id)

	return c.JSON(http.StatusOK, job)
}

// HandleJobKeepAlive extends job lifetime for active viewing.
func (h *ExtractHandlerImpl) HandleJobKeepAlive(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}
	if ok := h.jobs.TouchJob(id); !ok {
		return NewNotFoundError("job", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleExtractRecords returns the full extraction result of a finished job.
func (h *ExtractHandlerImpl) HandleExtractRecords(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}

	result, ok := h.jobs.GetResult(id)
	if !ok {
		return NewNotFoundError("job result", id)
	}

	return c.JSON(http.StatusOK, result)
}

// HandleExtractRecordsMsgpack returns the extraction result msgpack-encoded
// for compact transfer of large record sets.
func (h *ExtractHandlerImpl) HandleExtractRecordsMsgpack(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}

	result, ok := h.jobs.GetResult(id)
	if !ok {
		return NewNotFoundError("job result", id)
	}

	data, err := msgpack.Marshal(result)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleExtractProgressStream streams job progress via SSE until the job
// finishes or the stream times out.
func (h *ExtractHandlerImpl) HandleExtractProgressStream(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	job, ok := h.jobs.GetJob(id)
	if !ok {
		h.sendSSEError(c, "job not found")
		return nil
	}
	h.sendSSEData(c, job)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.NewTimer(5 * time.Minute)
	defer timeout.Stop()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-timeout.C:
			h.sendSSEError(c, "stream timeout")
			return nil
		case <-ticker.C:
			job, ok := h.jobs.GetJob(id)
			if !ok {
				h.sendSSEError(c, "job not found")
				return nil
			}
			h.sendSSEData(c, job)
			if job.Status == models.JobStatusComplete || job.Status == models.JobStatusError {
				return nil
			}
		}
	}
}

func (h *ExtractHandlerImpl) sendSSEData(c echo.Context, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Response(), "data: %s\n\n", data)
	c.Response().Flush()
}

func (h *ExtractHandlerImpl) sendSSEError(c echo.Context, message string) {
	fmt.Fprintf(c.Response(), "event: error\ndata: %q\n\n", message)
	c.Response().Flush()
}

// Request/Response types

type startExtractRequest struct {
	FileID string `json:"fileId"`
	Format string `json:"format"` // "delimited", "document", "" = auto
	Kind   string `json:"kind"`   // "institution" or "cutoff"
}

func (r *startExtractRequest) validate() error {
	if r.FileID == "" {
		return NewValidationError("fileId")
	}
	switch r.Kind {
	case string(models.KindInstitution), string(models.KindCutoff):
	default:
		return NewValidationError("kind")
	}
	switch r.Format {
	case "", string(models.FormatAuto), string(models.FormatDelimited), string(models.FormatDocument):
	default:
		return NewValidationError("format")
	}
	return nil
}

func (r *startExtractRequest) format() models.Format {
	if r.Format == "" {
		return models.FormatAuto
	}
	return models.Format(r.Format)
}

func (r *startExtractRequest) kind() models.RecordKind {
	return models.RecordKind(r.Kind)
}
