package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// Eastmoney endpoints.
const (
	EastmoneyQuoteURL = "https://push2.eastmoney.com/api/qt/stock/get"
	EastmoneyKlineURL = "https://push2his.eastmoney.com/api/qt/stock/kline/get"
)

type eastmoneyQuoteResponse struct {
	RC   int `json:"rc"`
	Data *struct {
		Price json.RawMessage `json:"f43"`
		Code  string          `json:"f57"`
		Name  string          `json:"f58"`
	} `json:"data"`
}

type eastmoneyKlineResponse struct {
	RC   int `json:"rc"`
	Data *struct {
		Code   string   `json:"code"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// EastmoneySource fetches quotes and daily bars from Eastmoney push2 for
// mainland and Hong Kong listings.
type EastmoneySource struct {
	fetch    *fetcher
	quoteURL string
	klineURL string
	secid    func(code string) (string, error)
}

// NewEastmoneySource creates an Eastmoney source. secid maps a market code
// to Eastmoney's "market.code" security id.
func NewEastmoneySource(httpClient *http.Client, limiter *rate.Limiter, quoteURL, klineURL string, secid func(code string) (string, error)) *EastmoneySource {
	if quoteURL == "" {
		quoteURL = EastmoneyQuoteURL
	}
	if klineURL == "" {
		klineURL = EastmoneyKlineURL
	}
	return &EastmoneySource{fetch: newFetcher(httpClient, limiter), quoteURL: quoteURL, klineURL: klineURL, secid: secid}
}

// Name returns the provider's display name.
func (e *EastmoneySource) Name() string { return "Eastmoney" }

// Quote returns the latest trade price (field f43).
func (e *EastmoneySource) Quote(ctx context.Context, code string) (float64, error) {
	id, err := e.secid(code)
	if err != nil {
		return 0, err
	}
	q := url.Values{"secid": {id}, "fltt": {"2"}, "fields": {"f43,f57,f58"}}

	var resp eastmoneyQuoteResponse
	if err := e.fetch.getJSON(ctx, e.quoteURL+"?"+q.Encode(), nil, &resp); err != nil {
		return 0, fmt.Errorf("quote for %s: %w", id, err)
	}
	if resp.RC != 0 {
		return 0, fmt.Errorf("quote for %s: rc %d", id, resp.RC)
	}
	if resp.Data == nil {
		return 0, fmt.Errorf("quote for %s: %w", id, ErrNoData)
	}
	price, err := parseDecimal(resp.Data.Price)
	if err != nil {
		return 0, fmt.Errorf("quote for %s: %w", id, err)
	}
	return price, nil
}

// DailyClose returns the close of the first unadjusted daily bar in [from, to].
func (e *EastmoneySource) DailyClose(ctx context.Context, code string, from, to time.Time) (float64, error) {
	id, err := e.secid(code)
	if err != nil {
		return 0, err
	}
	q := url.Values{
		"secid":   {id},
		"klt":     {"101"},
		"fqt":     {"0"},
		"beg":     {from.Format("20060102")},
		"end":     {to.Format("20060102")},
		"fields1": {"f1,f2,f3"},
		"fields2": {"f51,f52,f53"},
	}

	var resp eastmoneyKlineResponse
	if err := e.fetch.getJSON(ctx, e.klineURL+"?"+q.Encode(), nil, &resp); err != nil {
		return 0, fmt.Errorf("klines for %s: %w", id, err)
	}
	if resp.RC != 0 {
		return 0, fmt.Errorf("klines for %s: rc %d", id, resp.RC)
	}
	if resp.Data == nil || len(resp.Data.Klines) == 0 {
		return 0, fmt.Errorf("klines for %s: %w", id, ErrNoData)
	}

	// date,open,close
	fields := strings.Split(resp.Data.Klines[0], ",")
	if len(fields) < 3 {
		return 0, fmt.Errorf("klines for %s: malformed bar %q", id, resp.Data.Klines[0])
	}
	closePrice, err := decimal.NewFromString(fields[2])
	if err != nil {
		return 0, fmt.Errorf("klines for %s: bad close %q: %w", id, fields[2], err)
	}
	return closePrice.InexactFloat64(), nil
}

// AShareSecID maps a six-digit A-share code to its Eastmoney id: Shanghai
// listings (5xxxxx, 6xxxxx, 9xxxxx) are market 1, everything else market 0.
func AShareSecID(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) != 6 || !isDigits(code) {
		return "", fmt.Errorf("not an A-share code: %q", code)
	}
	switch code[0] {
	case '5', '6', '9':
		return "1." + code, nil
	default:
		return "0." + code, nil
	}
}

// HKSecID maps an HKEX code to Eastmoney's market 116 with a five-digit code.
func HKSecID(code string) (string, error) {
	code = strings.TrimLeft(strings.TrimSpace(code), "0")
	if code == "" || len(code) > 5 || !isDigits(code) {
		return "", fmt.Errorf("not an HKEX code: %q", code)
	}
	return "116." + strings.Repeat("0", 5-len(code)) + code, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// parseDecimal reads a JSON number or numeric string. "-" and empty values
// mean the upstream has no figure.
func parseDecimal(raw json.RawMessage) (float64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	switch s {
	case "", "-", "null":
		return 0, ErrNoData
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}
