package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"assettracker/internal/models"
)

// Fund endpoints.
const (
	FundEstimateURL = "https://fundgz.1234567.com.cn/js"
	FundHistoryURL  = "https://api.fund.eastmoney.com/f10/lsjz"
	fundReferer     = "https://fundf10.eastmoney.com/"
)

type fundEstimate struct {
	FundCode string `json:"fundcode"`
	Name     string `json:"name"`
	NAVDate  string `json:"jzrq"`
	NAV      string `json:"dwjz"`
	Estimate string `json:"gsz"`
}

type fundHistoryResponse struct {
	Data *struct {
		List []struct {
			Date string `json:"FSRQ"`
			NAV  string `json:"DWJZ"`
		} `json:"LSJZList"`
	} `json:"Data"`
	ErrCode int    `json:"ErrCode"`
	ErrMsg  string `json:"ErrMsg"`
}

// FundSource prices mainland funds and ETFs by net asset value.
type FundSource struct {
	fetch       *fetcher
	estimateURL string
	historyURL  string
}

// NewFundSource creates a fund NAV source.
func NewFundSource(httpClient *http.Client, limiter *rate.Limiter, estimateURL, historyURL string) *FundSource {
	if estimateURL == "" {
		estimateURL = FundEstimateURL
	}
	if historyURL == "" {
		historyURL = FundHistoryURL
	}
	return &FundSource{fetch: newFetcher(httpClient, limiter), estimateURL: estimateURL, historyURL: historyURL}
}

// Name returns the provider's display name.
func (s *FundSource) Name() string { return "Eastmoney Fund" }

// Quote returns the intraday NAV estimate, or the last published NAV when
// no estimate is available.
func (s *FundSource) Quote(ctx context.Context, code string) (float64, error) {
	code = strings.TrimSpace(code)
	body, err := s.fetch.get(ctx, s.estimateURL+"/"+url.PathEscape(code)+".js", nil)
	if err != nil {
		return 0, fmt.Errorf("fund estimate for %s: %w", code, err)
	}

	// jsonpgz({...});
	open, end := strings.IndexByte(string(body), '('), strings.LastIndexByte(string(body), ')')
	if open < 0 || end <= open+1 {
		return 0, fmt.Errorf("fund estimate for %s: %w", code, ErrNoData)
	}
	var est fundEstimate
	if err := json.Unmarshal(body[open+1:end], &est); err != nil {
		return 0, fmt.Errorf("fund estimate for %s: decoding: %w", code, err)
	}

	for _, v := range []string{est.Estimate, est.NAV} {
		if d, err := decimal.NewFromString(v); err == nil && d.IsPositive() {
			return d.InexactFloat64(), nil
		}
	}
	return 0, fmt.Errorf("fund estimate for %s: %w", code, ErrNoData)
}

// DailyClose returns the NAV of the earliest published date in [from, to].
func (s *FundSource) DailyClose(ctx context.Context, code string, from, to time.Time) (float64, error) {
	code = strings.TrimSpace(code)
	q := url.Values{
		"fundCode":  {code},
		"pageIndex": {"1"},
		"pageSize":  {"20"},
		"startDate": {from.Format(models.DateLayout)},
		"endDate":   {to.Format(models.DateLayout)},
	}

	var resp fundHistoryResponse
	header := http.Header{"Referer": {fundReferer}}
	if err := s.fetch.getJSON(ctx, s.historyURL+"?"+q.Encode(), header, &resp); err != nil {
		return 0, fmt.Errorf("fund history for %s: %w", code, err)
	}
	if resp.ErrCode != 0 {
		return 0, fmt.Errorf("fund history for %s: %d %s", code, resp.ErrCode, resp.ErrMsg)
	}
	if resp.Data == nil || len(resp.Data.List) == 0 {
		return 0, fmt.Errorf("fund history for %s: %w", code, ErrNoData)
	}

	rows := resp.Data.List
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	for _, row := range rows {
		if d, err := decimal.NewFromString(row.NAV); err == nil && d.IsPositive() {
			return d.InexactFloat64(), nil
		}
	}
	return 0, fmt.Errorf("fund history for %s: %w", code, ErrNoData)
}

// IsAShareFund reports whether an A-share code is an exchange-traded fund:
// codes marked ETF, Shenzhen 15xxxx, and Shanghai 51/56/58xxxx.
func IsAShareFund(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	if strings.Contains(code, "ETF") {
		return true
	}
	for _, p := range []string{"15", "51", "56", "58"} {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}
