package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"assettracker/internal/batch"
	_ "assettracker/internal/docs"
	apperrors "assettracker/internal/errors"
	"assettracker/internal/logger"
	"assettracker/internal/models"
	"assettracker/internal/pagination"
	"assettracker/internal/portfolio"
	"assettracker/internal/services"
	"assettracker/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
	logger.Init("test", "error")
}

// --- mock portfolio service ---

type mockPortfolioService struct {
	listDaysFn         func(page pagination.PageRequest) (*pagination.PageResponse[services.DayListItem], error)
	getDayFn           func(date string) (*models.PortfolioDay, error)
	summaryFn          func(date string) (*portfolio.Summary, error)
	setCashFn          func(date, currency string, amount float64) (*models.PortfolioDay, error)
	upsertStockFn      func(date, market string, stock models.Stock) (*models.PortfolioDay, error)
	refreshPricesFn    func(date string) (*portfolio.PriceReport, error)
	refreshValuationFn func(date string) (*portfolio.ValuationReport, error)
}

var _ services.PortfolioServicer = (*mockPortfolioService)(nil)

func (m *mockPortfolioService) ListDays(page pagination.PageRequest) (*pagination.PageResponse[services.DayListItem], error) {
	if m.listDaysFn != nil {
		return m.listDaysFn(page)
	}
	resp := pagination.NewPageResponse([]services.DayListItem{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockPortfolioService) GetDay(date string) (*models.PortfolioDay, error) {
	if m.getDayFn != nil {
		return m.getDayFn(date)
	}
	return models.NewPortfolioDay(), nil
}

func (m *mockPortfolioService) Summary(date string) (*portfolio.Summary, error) {
	if m.summaryFn != nil {
		return m.summaryFn(date)
	}
	return &portfolio.Summary{Date: "latest"}, nil
}

func (m *mockPortfolioService) SetCash(_ context.Context, date, currency string, amount float64) (*models.PortfolioDay, error) {
	if m.setCashFn != nil {
		return m.setCashFn(date, currency, amount)
	}
	return models.NewPortfolioDay(), nil
}

func (m *mockPortfolioService) UpsertStock(_ context.Context, date, market string, stock models.Stock) (*models.PortfolioDay, error) {
	if m.upsertStockFn != nil {
		return m.upsertStockFn(date, market, stock)
	}
	return models.NewPortfolioDay(), nil
}

func (m *mockPortfolioService) RefreshPrices(_ context.Context, date string) (*portfolio.PriceReport, error) {
	if m.refreshPricesFn != nil {
		return m.refreshPricesFn(date)
	}
	return &portfolio.PriceReport{Date: date}, nil
}

func (m *mockPortfolioService) RefreshValuation(_ context.Context, date string) (*portfolio.ValuationReport, error) {
	if m.refreshValuationFn != nil {
		return m.refreshValuationFn(date)
	}
	return &portfolio.ValuationReport{Date: date}, nil
}

// --- mock batch service ---

type mockBatchService struct {
	runBatchFn func(start, end string, delay time.Duration) (*batch.Result, error)
}

func (m *mockBatchService) RunBatch(_ context.Context, start, end string, delay time.Duration) (*batch.Result, error) {
	if m.runBatchFn != nil {
		return m.runBatchFn(start, end, delay)
	}
	return &batch.Result{Outcomes: map[string]bool{}, Errors: map[string]error{}}, nil
}

// --- helpers ---

func setupRouter(svc *mockPortfolioService, batchSvc *mockBatchService) *gin.Engine {
	return NewRouter(NewPortfolioHandler(svc), NewBatchHandler(batchSvc, time.Second), "pipeline-key")
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "pipeline-key")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- tests ---

func TestSwaggerDocs(t *testing.T) {
	r := setupRouter(&mockPortfolioService{}, &mockBatchService{})
	rec := doRequest(r, http.MethodGet, "/swagger/doc.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	paths, ok := parseJSON(t, rec)["paths"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected paths in swagger doc, got: %s", rec.Body.String())
	}
	for _, path := range []string{"/days/{date}/cash", "/days/{date}/stocks", "/summary", "/pipeline/batch"} {
		if _, ok := paths[path]; !ok {
			t.Errorf("swagger doc missing %s", path)
		}
	}
}

func TestHealth(t *testing.T) {
	r := setupRouter(&mockPortfolioService{}, &mockBatchService{})
	rec := doRequest(r, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK || parseJSON(t, rec)["status"] != "ok" {
		t.Errorf("unexpected health response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestPortfolioHandler_SetCash(t *testing.T) {
	t.Run("returns_200_on_success", func(t *testing.T) {
		var gotDate, gotCurrency string
		var gotAmount float64
		svc := &mockPortfolioService{
			setCashFn: func(date, currency string, amount float64) (*models.PortfolioDay, error) {
				gotDate, gotCurrency, gotAmount = date, currency, amount
				day := models.NewPortfolioDay()
				day.Cash.HKD = amount
				return day, nil
			},
		}
		r := setupRouter(svc, &mockBatchService{})

		rec := doRequest(r, http.MethodPut, "/api/v1/days/2024-03-01/cash", `{"currency":"HKD","amount":2500.5}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotDate != "2024-03-01" || gotCurrency != "HKD" || gotAmount != 2500.5 {
			t.Errorf("service called with %s %s %f", gotDate, gotCurrency, gotAmount)
		}
	})

	t.Run("zero_amount_is_allowed", func(t *testing.T) {
		r := setupRouter(&mockPortfolioService{}, &mockBatchService{})
		rec := doRequest(r, http.MethodPut, "/api/v1/days/2024-03-01/cash", `{"currency":"USD","amount":0}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns_400_unsupported_currency", func(t *testing.T) {
		r := setupRouter(&mockPortfolioService{}, &mockBatchService{})
		rec := doRequest(r, http.MethodPut, "/api/v1/days/2024-03-01/cash", `{"currency":"EUR","amount":100}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNSUPPORTED_CURRENCY")
	})

	t.Run("returns_400_missing_amount", func(t *testing.T) {
		r := setupRouter(&mockPortfolioService{}, &mockBatchService{})
		rec := doRequest(r, http.MethodPut, "/api/v1/days/2024-03-01/cash", `{"currency":"USD"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns_400_bad_date", func(t *testing.T) {
		r := setupRouter(&mockPortfolioService{}, &mockBatchService{})
		rec := doRequest(r, http.MethodPut, "/api/v1/days/2024-13-01/cash", `{"currency":"USD","amount":1}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_DATE")
	})
}

func TestPortfolioHandler_UpsertStock(t *testing.T) {
	t.Run("passes_the_stock_through", func(t *testing.T) {
		var got models.Stock
		var gotMarket string
		svc := &mockPortfolioService{
			upsertStockFn: func(_, market string, stock models.Stock) (*models.PortfolioDay, error) {
				got, gotMarket = stock, market
				return models.NewPortfolioDay(), nil
			},
		}
		r := setupRouter(svc, &mockBatchService{})

		rec := doRequest(r, http.MethodPut, "/api/v1/days/2024-03-01/stocks",
			`{"market":"HKStocks","name":"Tencent","code":"00700","quantity":100,"cost":300,"price":390}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotMarket != "HKStocks" || got.Code != "00700" || got.Price == nil || *got.Price != 390 {
			t.Errorf("service got %s %+v", gotMarket, got)
		}
	})

	t.Run("returns_400_unknown_market", func(t *testing.T) {
		r := setupRouter(&mockPortfolioService{}, &mockBatchService{})
		rec := doRequest(r, http.MethodPut, "/api/v1/days/2024-03-01/stocks", `{"market":"Crypto","code":"BTC"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNKNOWN_MARKET")
	})

	t.Run("returns_400_negative_quantity", func(t *testing.T) {
		r := setupRouter(&mockPortfolioService{}, &mockBatchService{})
		rec := doRequest(r, http.MethodPut, "/api/v1/days/2024-03-01/stocks", `{"market":"USStocks","code":"AAPL","quantity":-1}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns_400_code_too_long", func(t *testing.T) {
		called := false
		svc := &mockPortfolioService{
			upsertStockFn: func(string, string, models.Stock) (*models.PortfolioDay, error) {
				called = true
				return models.NewPortfolioDay(), nil
			},
		}
		r := setupRouter(svc, &mockBatchService{})
		body := `{"market":"USStocks","code":"` + strings.Repeat("A", 33) + `","quantity":1}`
		rec := doRequest(r, http.MethodPut, "/api/v1/days/2024-03-01/stocks", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		if called {
			t.Error("service should not be called for an oversized code")
		}
	})
}

func TestPortfolioHandler_Reads(t *testing.T) {
	t.Run("get_day_404", func(t *testing.T) {
		svc := &mockPortfolioService{
			getDayFn: func(string) (*models.PortfolioDay, error) { return nil, apperrors.ErrNoData },
		}
		rec := doRequest(setupRouter(svc, &mockBatchService{}), http.MethodGet, "/api/v1/days/2024-03-01", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NO_DATA")
	})

	t.Run("summary_passes_date", func(t *testing.T) {
		var gotDate string
		svc := &mockPortfolioService{
			summaryFn: func(date string) (*portfolio.Summary, error) {
				gotDate = date
				return &portfolio.Summary{Date: date}, nil
			},
		}
		rec := doRequest(setupRouter(svc, &mockBatchService{}), http.MethodGet, "/api/v1/summary?date=2024-03-01", "")
		if rec.Code != http.StatusOK || gotDate != "2024-03-01" {
			t.Fatalf("got %d for %q", rec.Code, gotDate)
		}
	})

	t.Run("list_days_rejects_bad_page_size", func(t *testing.T) {
		rec := doRequest(setupRouter(&mockPortfolioService{}, &mockBatchService{}), http.MethodGet, "/api/v1/days?page_size=1000", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestPortfolioHandler_Refresh(t *testing.T) {
	t.Run("skipped_is_404", func(t *testing.T) {
		svc := &mockPortfolioService{
			refreshPricesFn: func(date string) (*portfolio.PriceReport, error) {
				return &portfolio.PriceReport{Date: date, Skipped: true}, nil
			},
		}
		rec := doRequest(setupRouter(svc, &mockBatchService{}), http.MethodPost, "/api/v1/days/2024-03-01/prices", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("valuation_returns_report", func(t *testing.T) {
		svc := &mockPortfolioService{
			refreshValuationFn: func(date string) (*portfolio.ValuationReport, error) {
				return &portfolio.ValuationReport{
					Date:        date,
					Complete:    true,
					TotalAssets: models.TotalAssets{USD: models.Float(100), CNY: models.Float(700), HKD: models.Float(780)},
				}, nil
			},
		}
		rec := doRequest(setupRouter(svc, &mockBatchService{}), http.MethodPost, "/api/v1/days/2024-03-01/valuation", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		totals := parseJSON(t, rec)["totalAssets"].(map[string]interface{})
		if totals["USD"].(float64) != 100 {
			t.Errorf("totals = %v", totals)
		}
	})

	t.Run("service_error_is_500", func(t *testing.T) {
		svc := &mockPortfolioService{
			refreshValuationFn: func(string) (*portfolio.ValuationReport, error) {
				return nil, errors.New("boom")
			},
		}
		rec := doRequest(setupRouter(svc, &mockBatchService{}), http.MethodPost, "/api/v1/days/2024-03-01/valuation", "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INTERNAL_ERROR")
	})
}

func TestBatchHandler_RunBatch(t *testing.T) {
	t.Run("defaults_and_outcomes", func(t *testing.T) {
		var gotDelay time.Duration
		svc := &mockBatchService{
			runBatchFn: func(_, _ string, delay time.Duration) (*batch.Result, error) {
				gotDelay = delay
				return &batch.Result{
					RunID:    "run",
					Dates:    []string{"2024-03-01", "2024-03-02"},
					Outcomes: map[string]bool{"2024-03-01": true, "2024-03-02": false},
					Errors:   map[string]error{"2024-03-02": errors.New("upstream down")},
				}, nil
			},
		}
		rec := doRequest(setupRouter(&mockPortfolioService{}, svc), http.MethodPost, "/api/v1/pipeline/batch", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotDelay != time.Second {
			t.Errorf("delay = %v, want default 1s", gotDelay)
		}
		body := parseJSON(t, rec)
		outcomes := body["outcomes"].(map[string]interface{})
		if outcomes["2024-03-02"] != false || outcomes["2024-03-01"] != true {
			t.Errorf("outcomes = %v", outcomes)
		}
		if body["errors"].(map[string]interface{})["2024-03-02"] != "upstream down" {
			t.Errorf("errors = %v", body["errors"])
		}
	})

	t.Run("explicit_range_and_delay", func(t *testing.T) {
		var gotStart, gotEnd string
		var gotDelay time.Duration
		svc := &mockBatchService{
			runBatchFn: func(start, end string, delay time.Duration) (*batch.Result, error) {
				gotStart, gotEnd, gotDelay = start, end, delay
				return &batch.Result{}, nil
			},
		}
		rec := doRequest(setupRouter(&mockPortfolioService{}, svc), http.MethodPost, "/api/v1/pipeline/batch",
			`{"start_date":"2024-01-01","end_date":"2024-02-01","delay_ms":0}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotStart != "2024-01-01" || gotEnd != "2024-02-01" || gotDelay != 0 {
			t.Errorf("got %s..%s delay %v", gotStart, gotEnd, gotDelay)
		}
	})

	t.Run("rejects_bad_date", func(t *testing.T) {
		rec := doRequest(setupRouter(&mockPortfolioService{}, &mockBatchService{}), http.MethodPost, "/api/v1/pipeline/batch",
			`{"start_date":"01-01-2024"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_DATE")
	})

	t.Run("requires_api_key", func(t *testing.T) {
		r := setupRouter(&mockPortfolioService{}, &mockBatchService{})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/batch", http.NoBody)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
