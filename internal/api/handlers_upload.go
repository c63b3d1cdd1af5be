// handlers_upload.go - File upload operation handlers
package api

import (
	"bytes"
	"encoding/base64"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/admitcast/backend/internal/storage"
)

// UploadHandlerImpl implements the UploadHandler interface.
type UploadHandlerImpl struct {
	store storage.Store
	jobs  JobManager
}

// NewUploadHandler creates a new upload handler instance.
func NewUploadHandler(store storage.Store, jobs JobManager) UploadHandler {
	return &UploadHandlerImpl{store: store, jobs: jobs}
}

// HandleUploadFile accepts a file as base64 JSON and saves it to storage.
func (h *UploadHandlerImpl) HandleUploadFile(c echo.Context) error {
	var req uploadFileRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	decoded, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return NewBadRequestError("invalid base64 data", err)
	}

	info, err := h.store.SaveBytes(req.Name, decoded)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleUploadChunk accepts a single chunk of a chunked upload.
func (h *UploadHandlerImpl) HandleUploadChunk(c echo.Context) error {
	var req uploadChunkRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	decoded, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return NewBadRequestError("invalid base64 data", err)
	}

	if err := h.store.SaveChunk(req.UploadID, req.ChunkIndex, bytes.NewReader(decoded)); err != nil {
		return NewInternalError("failed to save chunk", err)
	}

	return c.NoContent(http.StatusAccepted)
}

// HandleCompleteUpload assembles a chunked upload into a stored file.
func (h *UploadHandlerImpl) HandleCompleteUpload(c echo.Context) error {
	var req completeUploadRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	info, err := h.store.CompleteChunkedUpload(req.UploadID, req.Name, req.TotalChunks)
	if err != nil {
		return NewInternalError("failed to assemble upload", err)
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleUploadBinary accepts raw binary file upload (multipart/form-data).
func (h *UploadHandlerImpl) HandleUploadBinary(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	info, err := h.store.Save(file.Filename, src)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleGetRecentFiles returns a list of recently uploaded files.
func (h *UploadHandlerImpl) HandleGetRecentFiles(c echo.Context) error {
	files, err := h.store.List(20)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}
	return c.JSON(http.StatusOK, files)
}

// HandleGetFile returns metadata for a specific file.
func (h *UploadHandlerImpl) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	return c.JSON(http.StatusOK, info)
}

// HandleDeleteFile deletes a file and any jobs referencing it.
func (h *UploadHandlerImpl) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("file", id)
	}
	if h.jobs != nil {
		h.jobs.DeleteJobsForFile(id)
	}

	return c.NoContent(http.StatusNoContent)
}

// HandleRenameFile updates the name of a file.
func (h *UploadHandlerImpl) HandleRenameFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req renameFileRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Name == "" {
		return NewValidationError("name")
	}

	info, err := h.store.Rename(id, req.Name)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	return c.JSON(http.StatusOK, info)
}

// Request/Response types

type uploadFileRequest struct {
	Name string `json:"name"`
	Data string `json:"data"` // Base64-encoded content
}

func (r *uploadFileRequest) validate() error {
	if r.Name == "" {
		return NewValidationError("name")
	}
	if r.Data == "" {
		return NewValidationError("data")
	}
	return nil
}

type uploadChunkRequest struct {
	UploadID   string `json:"uploadId"`
	ChunkIndex int    `json:"chunkIndex"`
	Data       string `json:"data"` // Base64-encoded chunk
}

func (r *uploadChunkRequest) validate() error {
	if r.UploadID == "" {
		return NewValidationError("uploadId")
	}
	if r.ChunkIndex < 0 {
		return NewValidationError("chunkIndex")
	}
	if r.Data == "" {
		return NewValidationError("data")
	}
	return nil
}

type completeUploadRequest struct {
	UploadID    string `json:"uploadId"`
	Name        string `json:"name"`
	TotalChunks int    `json:"totalChunks"`
}

func (r *completeUploadRequest) validate() error {
	if r.UploadID == "" {
		return NewValidationError("uploadId")
	}
	if r.Name == "" {
		return NewValidationError("name")
	}
	if r.TotalChunks <= 0 {
		return NewValidationError("totalChunks")
	}
	return nil
}

type renameFileRequest struct {
	Name string `json:"name"`
}
