package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/admitcast/backend/internal/models"
)

func jobIDContext(e *echo.Echo, method string, rec *httptest.ResponseRecorder, jobID string) echo.Context {
	req := httptest.NewRequest(method, "/", nil)
	c := e.NewContext(req, rec)
	c.SetParamNames("jobId")
	c.SetParamValues(jobID)
	return c
}

func TestHandleStartExtract(t *testing.T) {
	e := echo.New()
	jobs := newFakeJobs()
	h := NewExtractHandler(jobs)

	body := `{"fileId":"file-1","format":"delimited","kind":"institution"}`
	c, rec := jsonRequest(e, http.MethodPost, "/api/extract", body)

	if assert.NoError(t, h.HandleStartExtract(c)) {
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":"job-1"`)
		assert.Contains(t, rec.Body.String(), `"status":"running"`)
	}
}

func TestHandleStartExtractValidation(t *testing.T) {
	e := echo.New()
	h := NewExtractHandler(newFakeJobs())

	cases := []struct {
		name string
		body string
	}{
		{"missing fileId", `{"kind":"institution"}`},
		{"bad kind", `{"fileId":"f","kind":"nonsense"}`},
		{"bad format", `{"fileId":"f","kind":"cutoff","format":"xlsx"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := jsonRequest(e, http.MethodPost, "/api/extract", tc.body)
			err := h.HandleStartExtract(c)
			if assert.Error(t, err) {
				assert.Equal(t, "VALIDATION_ERROR", err.(*APIError).Code)
			}
		})
	}
}

func TestHandleStartExtractUnknownFile(t *testing.T) {
	e := echo.New()
	jobs := newFakeJobs()
	jobs.startErr = fmt.Errorf("resolving file: not found")
	h := NewExtractHandler(jobs)

	c, _ := jsonRequest(e, http.MethodPost, "/api/extract",
		`{"fileId":"missing","kind":"cutoff"}`)
	err := h.HandleStartExtract(c)
	if assert.Error(t, err) {
		assert.Equal(t, http.StatusNotFound, err.(*APIError).Status)
	}
}

func TestHandleExtractStatus(t *testing.T) {
	e := echo.New()
	jobs := newFakeJobs()
	job := models.NewExtractionJob("job-1", "file-1", models.KindCutoff, models.FormatDelimited)
	job.Status = models.JobStatusComplete
	job.RecordCount = 7
	jobs.jobs[job.ID] = job
	h := NewExtractHandler(jobs)

	rec := httptest.NewRecorder()
	c := jobIDContext(e, http.MethodGet, rec, "job-1")
	if assert.NoError(t, h.HandleExtractStatus(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"complete"`)
		assert.Contains(t, rec.Body.String(), `"recordCount":7`)
	}
	assert.Contains(t, jobs.touched, "job-1")

	c = jobIDContext(e, http.MethodGet, httptest.NewRecorder(), "nope")
	err := h.HandleExtractStatus(c)
	if assert.Error(t, err) {
		assert.Equal(t, http.StatusNotFound, err.(*APIError).Status)
	}
}

func TestHandleJobKeepAlive(t *testing.T) {
	e := echo.New()
	jobs := newFakeJobs()
	jobs.jobs["job-1"] = models.NewExtractionJob("job-1", "f", models.KindCutoff, models.FormatAuto)
	h := NewExtractHandler(jobs)

	rec := httptest.NewRecorder()
	c := jobIDContext(e, http.MethodPost, rec, "job-1")
	if assert.NoError(t, h.HandleJobKeepAlive(c)) {
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	c = jobIDContext(e, http.MethodPost, httptest.NewRecorder(), "nope")
	err := h.HandleJobKeepAlive(c)
	if assert.Error(t, err) {
		assert.Equal(t, http.StatusNotFound, err.(*APIError).Status)
	}
}

func sampleResult() *models.ExtractionResult {
	return &models.ExtractionResult{
		Success: true,
		Message: "extracted 1 records",
		Kind:    models.KindCutoff,
		Cutoffs: []models.CutoffRecord{
			{
				Year:            2024,
				InstitutionName: "Govt College",
				CourseName:      "Computer Science Engineering",
				Category:        "General",
				RankCutoff:      1250,
				TotalSeats:      models.DefaultTotalSeats,
				Fee:             models.DefaultFee,
				Duration:        models.DefaultDuration,
			},
		},
		Stats: models.ExtractionStats{TotalRows: 4, Accepted: 1},
	}
}

func TestHandleExtractRecords(t *testing.T) {
	e := echo.New()
	jobs := newFakeJobs()
	jobs.results["job-1"] = sampleResult()
	h := NewExtractHandler(jobs)

	rec := httptest.NewRecorder()
	c := jobIDContext(e, http.MethodGet, rec, "job-1")
	if assert.NoError(t, h.HandleExtractRecords(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"institutionName":"Govt College"`)
		assert.Contains(t, rec.Body.String(), `"rankCutoff":1250`)
	}

	c = jobIDContext(e, http.MethodGet, httptest.NewRecorder(), "nope")
	err := h.HandleExtractRecords(c)
	if assert.Error(t, err) {
		assert.Equal(t, http.StatusNotFound, err.(*APIError).Status)
	}
}

func TestHandleExtractRecordsMsgpack(t *testing.T) {
	e := echo.New()
	jobs := newFakeJobs()
	jobs.results["job-1"] = sampleResult()
	h := NewExtractHandler(jobs)

	rec := httptest.NewRecorder()
	c := jobIDContext(e, http.MethodGet, rec, "job-1")
	if assert.NoError(t, h.HandleExtractRecordsMsgpack(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/msgpack", rec.Header().Get(echo.HeaderContentType))
	}

	var decoded models.ExtractionResult
	if assert.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &decoded)) {
		assert.True(t, decoded.Success)
		assert.Len(t, decoded.Cutoffs, 1)
		assert.Equal(t, 1250, decoded.Cutoffs[0].RankCutoff)
	}
}

func TestHandleExtractProgressStream(t *testing.T) {
	e := echo.New()
	jobs := newFakeJobs()
	job := models.NewExtractionJob("job-1", "file-1", models.KindCutoff, models.FormatDelimited)
	job.Status = models.JobStatusComplete
	job.Progress = 100
	jobs.jobs[job.ID] = job
	h := NewExtractHandler(jobs)

	rec := httptest.NewRecorder()
	c := jobIDContext(e, http.MethodGet, rec, "job-1")

	// Job is already complete, so the stream sends a snapshot and closes on
	// the first tick.
	if assert.NoError(t, h.HandleExtractProgressStream(c)) {
		assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
		assert.Contains(t, rec.Body.String(), `data: {"id":"job-1"`)
		assert.Contains(t, rec.Body.String(), `"status":"complete"`)
	}
}

func TestHandleExtractProgressStreamUnknownJob(t *testing.T) {
	e := echo.New()
	h := NewExtractHandler(newFakeJobs())

	rec := httptest.NewRecorder()
	c := jobIDContext(e, http.MethodGet, rec, "nope")

	if assert.NoError(t, h.HandleExtractProgressStream(c)) {
		assert.Contains(t, rec.Body.String(), "event: error")
		assert.Contains(t, rec.Body.String(), "job not found")
	}
}
