package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "assettracker/internal/errors"
	"assettracker/internal/models"
	"assettracker/internal/pagination"
	"assettracker/internal/services"
)

// PortfolioHandler handles day-level portfolio requests.
type PortfolioHandler struct {
	portfolioService services.PortfolioServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService services.PortfolioServicer) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// SetCashRequest represents the request payload for setting a cash balance.
type SetCashRequest struct {
	Currency string   `json:"currency" binding:"required,currency"`
	Amount   *float64 `json:"amount" binding:"required"`
}

// UpsertStockRequest represents the request payload for adding or replacing
// a holding.
type UpsertStockRequest struct {
	Market   string   `json:"market" binding:"required,market"`
	Name     string   `json:"name"`
	Code     string   `json:"code" binding:"required,max=32"`
	Quantity float64  `json:"quantity" binding:"gte=0"`
	Cost     float64  `json:"cost" binding:"gte=0"`
	Price    *float64 `json:"price" binding:"omitempty,gt=0"`
}

// DayResponse wraps a day in its persisted form with its date.
type DayResponse struct {
	Date string               `json:"date"`
	Day  *models.PortfolioDay `json:"day"`
}

// ListDays handles listing the stored days.
// @Summary     List portfolio days
// @Description Get a paginated list of stored days in ascending date order
// @Tags        days
// @Produce     json
// @Param       page       query    int false "Page number"
// @Param       page_size  query    int false "Items per page"
// @Success     200        {object} pagination.PageResponse[services.DayListItem]
// @Failure     400        {object} ErrorResponse "Invalid input"
// @Router      /days [get]
func (h *PortfolioHandler) ListDays(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.portfolioService.ListDays(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDay handles retrieving one day in its persisted form.
// @Summary     Get a portfolio day
// @Description Get one day with cash, holdings, rates and totals
// @Tags        days
// @Produce     json
// @Param       date  path     string true "Date (YYYY-MM-DD)"
// @Success     200   {object} DayResponse
// @Failure     400   {object} ErrorResponse "Invalid date"
// @Failure     404   {object} ErrorResponse "No data for date"
// @Router      /days/{date} [get]
func (h *PortfolioHandler) GetDay(c *gin.Context) {
	date, err := parseDateParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	day, err := h.portfolioService.GetDay(date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, DayResponse{Date: date, Day: day})
}

// GetSummary handles the summary of a date, or of the latest day.
// @Summary     Get a portfolio summary
// @Description Summarize a day, or the latest day when no date is given
// @Tags        summary
// @Produce     json
// @Param       date  query    string false "Date (YYYY-MM-DD)"
// @Success     200   {object} portfolio.Summary
// @Failure     400   {object} ErrorResponse "Invalid date"
// @Failure     404   {object} ErrorResponse "No data for date"
// @Router      /summary [get]
func (h *PortfolioHandler) GetSummary(c *gin.Context) {
	summary, err := h.portfolioService.Summary(c.Query("date"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// SetCash handles overwriting one cash balance.
// @Summary     Set a cash balance
// @Description Overwrite one cash balance, creating the day if needed
// @Tags        days
// @Accept      json
// @Produce     json
// @Param       date     path     string          true "Date (YYYY-MM-DD)"
// @Param       request  body     SetCashRequest  true "Cash balance"
// @Success     200      {object} DayResponse
// @Failure     400      {object} ErrorResponse "Invalid input or unsupported currency"
// @Failure     500      {object} ErrorResponse "Storage failure"
// @Router      /days/{date}/cash [put]
func (h *PortfolioHandler) SetCash(c *gin.Context) {
	date, err := parseDateParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetCashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	day, err := h.portfolioService.SetCash(c.Request.Context(), date, req.Currency, *req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, DayResponse{Date: date, Day: day})
}

// UpsertStock handles adding or replacing a holding.
// @Summary     Add or replace a holding
// @Description Add a stock to a market, replacing any holding with the same code
// @Tags        days
// @Accept      json
// @Produce     json
// @Param       date     path     string              true "Date (YYYY-MM-DD)"
// @Param       request  body     UpsertStockRequest  true "Holding"
// @Success     200      {object} DayResponse
// @Failure     400      {object} ErrorResponse "Invalid input or unknown market"
// @Failure     500      {object} ErrorResponse "Storage failure"
// @Router      /days/{date}/stocks [put]
func (h *PortfolioHandler) UpsertStock(c *gin.Context) {
	date, err := parseDateParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpsertStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	stock := models.Stock{
		Name:     req.Name,
		Code:     req.Code,
		Quantity: req.Quantity,
		Cost:     req.Cost,
		Price:    req.Price,
	}
	day, err := h.portfolioService.UpsertStock(c.Request.Context(), date, req.Market, stock)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, DayResponse{Date: date, Day: day})
}

// RefreshPrices handles a price refresh for one day.
// @Summary     Refresh prices
// @Description Fetch prices for every holding of a day from the market's provider chain
// @Tags        refresh
// @Produce     json
// @Param       date  path     string true "Date (YYYY-MM-DD)"
// @Success     200   {object} portfolio.PriceReport
// @Failure     400   {object} ErrorResponse "Invalid date"
// @Failure     404   {object} ErrorResponse "No data for date"
// @Failure     500   {object} ErrorResponse "Storage failure"
// @Router      /days/{date}/prices [post]
func (h *PortfolioHandler) RefreshPrices(c *gin.Context) {
	date, err := parseDateParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.portfolioService.RefreshPrices(c.Request.Context(), date)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if report.Skipped {
		respondWithError(c, apperrors.ErrNoData)
		return
	}

	c.JSON(http.StatusOK, report)
}

// RefreshValuation handles a valuation pass for one day.
// @Summary     Refresh valuation
// @Description Fetch exchange rates for a day and recompute its totals
// @Tags        refresh
// @Produce     json
// @Param       date  path     string true "Date (YYYY-MM-DD)"
// @Success     200   {object} portfolio.ValuationReport
// @Failure     400   {object} ErrorResponse "Invalid date"
// @Failure     404   {object} ErrorResponse "No data for date"
// @Failure     500   {object} ErrorResponse "Storage failure"
// @Router      /days/{date}/valuation [post]
func (h *PortfolioHandler) RefreshValuation(c *gin.Context) {
	date, err := parseDateParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.portfolioService.RefreshValuation(c.Request.Context(), date)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if report.Skipped {
		respondWithError(c, apperrors.ErrNoData)
		return
	}

	c.JSON(http.StatusOK, report)
}
