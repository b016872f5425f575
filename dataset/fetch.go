package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ============================================================================
// FETCH — Downloads the source extract from the NYC open data portal
// ============================================================================
// One GET, no retries. A failed or partial download aborts the run; the
// report is only worth producing over the complete extract.
// ============================================================================

// DefaultURL is the full-extract CSV endpoint for the shooting incident
// dataset (historic) on the NYC open data portal.
const DefaultURL = "https://data.cityofnewyork.us/api/views/833y-fsy8/rows.csv?accessType=DOWNLOAD"

// DefaultTimeout bounds the whole download. The extract is ~5 MB but the
// portal can be slow to start streaming.
const DefaultTimeout = 120 * time.Second

// Fetcher downloads the source extract.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the given overall timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch downloads the CSV at url and returns the raw bytes.
// An empty url falls back to DefaultURL.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		url = DefaultURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("data portal returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("data portal returned an empty body")
	}

	logrus.WithFields(logrus.Fields{
		"url":     url,
		"bytes":   len(body),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("downloaded source extract")

	return body, nil
}

// Fetch downloads the CSV at url with a one-off Fetcher.
func Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	return NewFetcher(timeout).Fetch(ctx, url)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
