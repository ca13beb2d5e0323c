package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

const (
	browserUA    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
	maxBodyBytes = 4 << 20
)

// fetcher issues rate-limited GET requests for one upstream.
type fetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter // nil means unlimited
}

func newFetcher(httpClient *http.Client, limiter *rate.Limiter) *fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &fetcher{httpClient: httpClient, limiter: limiter}
}

// NewLimiter returns a limiter allowing perSecond requests per second with
// an equal burst. A non-positive rate disables limiting.
func NewLimiter(perSecond int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), perSecond)
}

func (f *fetcher) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", browserUA)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

func (f *fetcher) getJSON(ctx context.Context, url string, header http.Header, out any) error {
	body, err := f.get(ctx, url, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
