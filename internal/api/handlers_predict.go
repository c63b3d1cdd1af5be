// handlers_predict.go - Prediction operation handlers
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/admitcast/backend/internal/models"
	"github.com/admitcast/backend/internal/predict"
	"github.com/admitcast/backend/internal/storage"
)

// PredictHandlerImpl implements the PredictHandler interface.
type PredictHandlerImpl struct {
	records storage.RecordStore
	engine  *predict.Engine
}

// NewPredictHandler creates a new predict handler instance.
func NewPredictHandler(records storage.RecordStore, engine *predict.Engine) PredictHandler {
	return &PredictHandlerImpl{records: records, engine: engine}
}

// HandlePredict scores all historical cutoff records for the requested
// category against the applicant's rank. History is always re-queried from
// the record store.
func (h *PredictHandlerImpl) HandlePredict(c echo.Context) error {
	var req predictRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	history, err := h.records.QueryCutoffRecords(c.Request().Context(), req.Category)
	if err != nil {
		return NewInternalError("failed to query cutoff records", err)
	}

	result := h.engine.Predict(req.Rank, req.Category, history)

	return c.JSON(http.StatusOK, predictResponse{
		Rank:        req.Rank,
		Category:    req.Category,
		Result:      result,
		GeneratedAt: time.Now().UTC(),
	})
}

// HandleListInstitutions returns stored institutions, newest-name-first
// capped by the limit query parameter.
func (h *PredictHandlerImpl) HandleListInstitutions(c echo.Context) error {
	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := parsePositiveInt(raw); err == nil {
			limit = n
		}
	}

	institutions, err := h.records.ListInstitutions(c.Request().Context(), limit)
	if err != nil {
		return NewInternalError("failed to list institutions", err)
	}
	return c.JSON(http.StatusOK, institutions)
}

func parsePositiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("not positive: %d", n)
	}
	return n, nil
}

// Request/Response types

type predictRequest struct {
	Rank     int    `json:"rank"`
	Category string `json:"category"`
}

func (r *predictRequest) validate() error {
	if r.Rank <= 0 {
		return NewValidationError("rank")
	}
	if r.Category == "" {
		return NewValidationError("category")
	}
	return nil
}

type predictResponse struct {
	Rank        int                      `json:"rank"`
	Category    string                   `json:"category"`
	Result      *models.PredictionResult `json:"result"`
	GeneratedAt time.Time                `json:"generatedAt"`
}
