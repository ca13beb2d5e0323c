package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// v8ChartResponse builds a Yahoo chart payload with a market price and closes.
func v8ChartResponse(symbol string, price float64, closes ...any) map[string]any {
	return map[string]any{
		"chart": map[string]any{
			"result": []any{map[string]any{
				"meta":       map[string]any{"symbol": symbol, "regularMarketPrice": price},
				"timestamp":  []int64{1709251200},
				"indicators": map[string]any{"quote": []any{map[string]any{"close": closes}}},
			}},
			"error": nil,
		},
	}
}

func v8ChartErrorResponse(code, desc string) map[string]any {
	return map[string]any{
		"chart": map[string]any{
			"result": nil,
			"error":  map[string]any{"code": code, "description": desc},
		},
	}
}

// newChartMockServer answers chart requests for the given tickers.
func newChartMockServer(prices map[string]float64, closes map[string][]any) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ticker := strings.TrimPrefix(r.URL.Path, "/")
		w.Header().Set("Content-Type", "application/json")
		price, ok := prices[ticker]
		if !ok {
			_ = json.NewEncoder(w).Encode(v8ChartErrorResponse("Not Found", "No data found for "+ticker))
			return
		}
		_ = json.NewEncoder(w).Encode(v8ChartResponse(ticker, price, closes[ticker]...))
	}))
}

var march1 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestYahooSource(t *testing.T) {
	server := newChartMockServer(
		map[string]float64{"600519.SS": 1700.5, "0700.HK": 390},
		map[string][]any{"600519.SS": {nil, 1688.0, 1690.0}},
	)
	defer server.Close()

	src := NewYahooSource(server.Client(), nil, server.URL, YahooAShareSymbol)

	price, err := src.Quote(context.Background(), "600519")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 1700.5 {
		t.Errorf("price = %f, want 1700.5", price)
	}

	closePrice, err := src.DailyClose(context.Background(), "600519", march1, march1.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closePrice != 1688.0 {
		t.Errorf("close = %f, want first non-null close 1688", closePrice)
	}

	if _, err := src.Quote(context.Background(), "000001"); err == nil {
		t.Error("expected chart error for unknown ticker")
	}
}

func TestYahooSource_PassesPeriod(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(v8ChartResponse("AAPL", 180, 179.0))
	}))
	defer server.Close()

	src := NewYahooSource(server.Client(), NewLimiter(10), server.URL, YahooUSSymbol)
	if _, err := src.DailyClose(context.Background(), "aapl", march1, march1.Add(24*time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := fmt.Sprintf("period1=%d", march1.Unix())
	if !strings.Contains(query, want) {
		t.Errorf("query %q missing %q", query, want)
	}
}

func TestYahooSymbols(t *testing.T) {
	tests := []struct {
		fn   func(string) string
		in   string
		want string
	}{
		{YahooAShareSymbol, "600519", "600519.SS"},
		{YahooAShareSymbol, "510300", "510300.SS"},
		{YahooAShareSymbol, "000001", "000001.SZ"},
		{YahooAShareSymbol, "300750", "300750.SZ"},
		{YahooAShareSymbol, "600519.ss", "600519.SS"},
		{YahooHKSymbol, "00700", "0700.HK"},
		{YahooHKSymbol, "09988", "9988.HK"},
		{YahooHKSymbol, "5", "0005.HK"},
		{YahooUSSymbol, "brk.b", "BRK-B"},
	}
	for _, tt := range tests {
		if got := tt.fn(tt.in); got != tt.want {
			t.Errorf("symbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestYahooForex(t *testing.T) {
	server := newChartMockServer(
		map[string]float64{"USDCNY=X": 7.19, "USDHKD=X": 7.82},
		map[string][]any{"USDCNY=X": {7.10}, "USDHKD=X": {7.80}},
	)
	defer server.Close()

	fx := NewYahooForex(server.Client(), nil, server.URL, RateQuotes, 0)

	rates, err := fx.LatestRates(context.Background(), "usd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rates["CNY"] != 7.19 || rates["HKD"] != 7.82 || rates["USD"] != 1.0 {
		t.Errorf("rates = %v", rates)
	}

	hist, err := fx.HistoricalRates(context.Background(), "USD", march1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hist["CNY"] != 7.10 || hist["HKD"] != 7.80 {
		t.Errorf("historical rates = %v", hist)
	}

	if _, err := fx.LatestRates(context.Background(), "EUR"); err == nil {
		t.Error("expected error when a pair is missing")
	}
}

func TestExchangeRateAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/USD":
			fmt.Fprint(w, `{"result":"success","base_code":"USD","rates":{"USD":1,"CNY":7.2,"HKD":7.8}}`)
		default:
			fmt.Fprint(w, `{"result":"error","error-type":"unsupported-code"}`)
		}
	}))
	defer server.Close()

	api := NewExchangeRateAPI(server.Client(), nil, server.URL)

	rates, err := api.LatestRates(context.Background(), "usd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rates["CNY"] != 7.2 {
		t.Errorf("CNY = %f, want 7.2", rates["CNY"])
	}

	_, err = api.LatestRates(context.Background(), "XXX")
	if err == nil || !strings.Contains(err.Error(), "unsupported-code") {
		t.Errorf("expected explicit failure status, got %v", err)
	}

	if _, err := api.HistoricalRates(context.Background(), "USD", march1); !errors.Is(err, ErrNotSupported) {
		t.Errorf("expected ErrNotSupported, got %v", err)
	}
}

func TestAlphaVantage(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		q := r.URL.Query()
		if q.Get("function") != "FX_DAILY" || q.Get("apikey") != "demo" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		switch q.Get("to_symbol") {
		case "CNY":
			fmt.Fprint(w, `{"Time Series FX (Daily)":{"2024-03-01":{"4. close":"7.19850"},"2024-02-29":{"4. close":"7.1900"}}}`)
		case "HKD":
			fmt.Fprint(w, `{"Time Series FX (Daily)":{"2024-03-01":{"4. close":"7.8260"}}}`)
		}
	}))
	defer server.Close()

	av := NewAlphaVantage(server.Client(), nil, server.URL, "demo", RateQuotes)

	rates, err := av.HistoricalRates(context.Background(), "USD", march1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rates["CNY"] != 7.1985 || rates["HKD"] != 7.826 {
		t.Errorf("rates = %v", rates)
	}

	// HKD has no bar on 2024-02-29; the series are served from cache.
	_, err = av.HistoricalRates(context.Background(), "USD", march1.Add(-24*time.Hour))
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("requests = %d, want 2 (one per pair)", n)
	}

	if _, err := av.LatestRates(context.Background(), "USD"); !errors.Is(err, ErrNotSupported) {
		t.Errorf("expected ErrNotSupported, got %v", err)
	}
}

func TestAlphaVantage_RateLimitNote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`)
	}))
	defer server.Close()

	av := NewAlphaVantage(server.Client(), nil, server.URL, "demo", RateQuotes)
	_, err := av.HistoricalRates(context.Background(), "USD", march1)
	if err == nil || !strings.Contains(err.Error(), "call frequency") {
		t.Errorf("expected note to surface as error, got %v", err)
	}
}

func TestEastmoneySource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case r.URL.Path == "/quote" && q.Get("secid") == "1.600519":
			fmt.Fprint(w, `{"rc":0,"data":{"f43":1688.5,"f57":"600519","f58":"Moutai"}}`)
		case r.URL.Path == "/quote" && q.Get("secid") == "0.000002":
			fmt.Fprint(w, `{"rc":0,"data":{"f43":"-","f57":"000002","f58":"Suspended"}}`)
		case r.URL.Path == "/quote":
			fmt.Fprint(w, `{"rc":0,"data":null}`)
		case r.URL.Path == "/kline" && q.Get("beg") == "20240301":
			fmt.Fprint(w, `{"rc":0,"data":{"code":"600519","klines":["2024-03-01,1700.00,1710.50","2024-03-04,1710.00,1720.00"]}}`)
		default:
			fmt.Fprint(w, `{"rc":0,"data":{"code":"600519","klines":[]}}`)
		}
	}))
	defer server.Close()

	em := NewEastmoneySource(server.Client(), nil, server.URL+"/quote", server.URL+"/kline", AShareSecID)

	price, err := em.Quote(context.Background(), "600519")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 1688.5 {
		t.Errorf("price = %f, want 1688.5", price)
	}

	if _, err := em.Quote(context.Background(), "000002"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for suspended quote, got %v", err)
	}
	if _, err := em.Quote(context.Background(), "000003"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for null data, got %v", err)
	}
	if _, err := em.Quote(context.Background(), "AAPL"); err == nil {
		t.Error("expected secid error for non A-share code")
	}

	closePrice, err := em.DailyClose(context.Background(), "600519", march1, march1.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closePrice != 1710.5 {
		t.Errorf("close = %f, want 1710.5", closePrice)
	}

	if _, err := em.DailyClose(context.Background(), "600519", march1.AddDate(0, 0, 1), march1.AddDate(0, 0, 2)); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for empty klines, got %v", err)
	}
}

func TestSecIDs(t *testing.T) {
	tests := []struct {
		fn      func(string) (string, error)
		in      string
		want    string
		wantErr bool
	}{
		{AShareSecID, "600519", "1.600519", false},
		{AShareSecID, "510300", "1.510300", false},
		{AShareSecID, "000001", "0.000001", false},
		{AShareSecID, "159915", "0.159915", false},
		{AShareSecID, "60051", "", true},
		{HKSecID, "00700", "116.00700", false},
		{HKSecID, "700", "116.00700", false},
		{HKSecID, "2800ETF", "", true},
	}
	for _, tt := range tests {
		got, err := tt.fn(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("secid(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("secid(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFundSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/js/510300.js":
			fmt.Fprint(w, `jsonpgz({"fundcode":"510300","name":"CSI 300 ETF","jzrq":"2024-02-29","dwjz":"3.5010","gsz":"3.5230","gztime":"2024-03-01 15:00"});`)
		case r.URL.Path == "/js/159915.js":
			fmt.Fprint(w, `jsonpgz({"fundcode":"159915","name":"ChiNext ETF","jzrq":"2024-02-29","dwjz":"1.8000","gsz":""});`)
		case r.URL.Path == "/js/000000.js":
			fmt.Fprint(w, `jsonpgz();`)
		case r.URL.Path == "/lsjz":
			if r.Header.Get("Referer") == "" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			fmt.Fprint(w, `{"Data":{"LSJZList":[{"FSRQ":"2024-03-04","DWJZ":"3.6000"},{"FSRQ":"2024-03-01","DWJZ":"3.5100"}]},"ErrCode":0,"ErrMsg":null}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	funds := NewFundSource(server.Client(), nil, server.URL+"/js", server.URL+"/lsjz")

	price, err := funds.Quote(context.Background(), "510300")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 3.523 {
		t.Errorf("price = %f, want estimate 3.523", price)
	}

	price, err = funds.Quote(context.Background(), "159915")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 1.8 {
		t.Errorf("price = %f, want NAV 1.8 when no estimate", price)
	}

	if _, err := funds.Quote(context.Background(), "000000"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for empty payload, got %v", err)
	}

	nav, err := funds.DailyClose(context.Background(), "510300", march1, march1.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nav != 3.51 {
		t.Errorf("nav = %f, want earliest 3.51", nav)
	}
}

func TestIsAShareFund(t *testing.T) {
	for code, want := range map[string]bool{
		"510300":  true,
		"159915":  true,
		"563300":  true,
		"588000":  true,
		"600519":  false,
		"000001":  false,
		"TECHETF": true,
	} {
		if got := IsAShareFund(code); got != want {
			t.Errorf("IsAShareFund(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestCodeVariants(t *testing.T) {
	got := HKCodeVariants("02800ETF")
	want := []string{"02800", "2800"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("HKCodeVariants = %v, want %v", got, want)
	}

	got = HKCodeVariants("2800")
	want = []string{"2800", "02800"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("HKCodeVariants = %v, want %v", got, want)
	}

	src := &mockPriceSource{name: "hk", quoteFn: quotes(map[string]float64{"2800": 17.5})}
	wrapped := WithCodeVariants(src, HKCodeVariants)
	price, err := wrapped.Quote(context.Background(), "02800ETF")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 17.5 {
		t.Errorf("price = %f, want 17.5", price)
	}
	if strings.Join(src.quoteCodes, ",") != "02800,2800" {
		t.Errorf("tried %v", src.quoteCodes)
	}
	if wrapped.Name() != "hk" {
		t.Errorf("Name() = %q", wrapped.Name())
	}
}

func TestFetcher_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != browserUA {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	f := newFetcher(server.Client(), nil)
	_, err := f.get(context.Background(), server.URL, nil)
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status error, got %v", err)
	}
}
