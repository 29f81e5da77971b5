package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Fetcher retrieves raw feed bytes for one external source. It does not
// retry; retrying is the orchestrator's per-source concern.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewFetcher(userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 5,
			},
		},
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// Run fetches the feed at the given URL. Calendar-subscription schemes
// (webcal://, webcals://) are rewritten to https:// first, since they
// exist only as a browser handoff convention.
func (f *Fetcher) Run(ctx context.Context, feedURL string) ([]byte, error) {
	feedURL = NormalizeFeedURL(feedURL)

	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/calendar")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: feedURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: feedURL, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: feedURL, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return data, nil
}

// NormalizeFeedURL rewrites calendar-subscription schemes to secure HTTP.
func NormalizeFeedURL(feedURL string) string {
	lower := strings.ToLower(feedURL)
	switch {
	case strings.HasPrefix(lower, "webcals://"):
		return "https://" + feedURL[len("webcals://"):]
	case strings.HasPrefix(lower, "webcal://"):
		return "https://" + feedURL[len("webcal://"):]
	}
	return feedURL
}
