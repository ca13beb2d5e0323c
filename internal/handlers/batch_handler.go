package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"assettracker/internal/services"
)

// BatchHandler handles pipeline batch runs.
type BatchHandler struct {
	batchService services.BatchServicer
	defaultDelay time.Duration
}

// NewBatchHandler creates a new BatchHandler. defaultDelay applies when a
// request does not set delay_ms.
func NewBatchHandler(batchService services.BatchServicer, defaultDelay time.Duration) *BatchHandler {
	return &BatchHandler{batchService: batchService, defaultDelay: defaultDelay}
}

// RunBatchRequest represents the request payload for a batch run.
type RunBatchRequest struct {
	StartDate string `json:"start_date" binding:"omitempty,isodate"`
	EndDate   string `json:"end_date" binding:"omitempty,isodate"`
	DelayMS   *int   `json:"delay_ms" binding:"omitempty,min=0,max=60000"`
}

// RunBatchResponse reports a batch run. Errors maps failed dates to their
// messages.
type RunBatchResponse struct {
	RunID      string            `json:"run_id"`
	Dates      []string          `json:"dates"`
	Outcomes   map[string]bool   `json:"outcomes"`
	Errors     map[string]string `json:"errors"`
	DurationMS int64             `json:"duration_ms"`
}

// RunBatch handles refreshing every day in a date range.
// @Summary     Run a batch update
// @Description Refresh prices and valuation for every stored day in a date range, then save once (pipeline endpoint)
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key  header   string           true  "Pipeline API key"
// @Param       request    body     RunBatchRequest  false "Date range and delay"
// @Success     200        {object} RunBatchResponse
// @Failure     400        {object} ErrorResponse "Invalid input"
// @Failure     401        {object} ErrorResponse "Invalid API key"
// @Failure     500        {object} ErrorResponse "Storage failure"
// @Failure     503        {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/batch [post]
func (h *BatchHandler) RunBatch(c *gin.Context) {
	var req RunBatchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, bindingError(err))
			return
		}
	}

	delay := h.defaultDelay
	if req.DelayMS != nil {
		delay = time.Duration(*req.DelayMS) * time.Millisecond
	}

	result, err := h.batchService.RunBatch(c.Request.Context(), req.StartDate, req.EndDate, delay)
	if err != nil {
		respondWithError(c, err)
		return
	}

	errs := make(map[string]string, len(result.Errors))
	for date, e := range result.Errors {
		errs[date] = e.Error()
	}
	c.JSON(http.StatusOK, RunBatchResponse{
		RunID:      result.RunID,
		Dates:      result.Dates,
		Outcomes:   result.Outcomes,
		Errors:     errs,
		DurationMS: result.Duration.Milliseconds(),
	})
}
