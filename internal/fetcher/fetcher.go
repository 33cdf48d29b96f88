// Package fetcher is a cmd-only convenience for loading filter-list
// text over HTTP (spec.md §1's scope note: the library itself has no
// opinion on where rule text comes from). It is narrower than the
// teacher's fetcher: retry/backoff is delegated to
// github.com/hashicorp/go-retryablehttp instead of a hand-rolled loop.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/katari-dev/abpfilter/internal/config"
)

// Fetcher downloads filter-list text for the CLI's `ingest --url` path.
type Fetcher struct {
	client *retryablehttp.Client
}

// New builds a Fetcher from HTTPConfig, applying the same
// zero-value-means-default convention as the rest of internal/config.
func New(cfg config.HTTPConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	retries := cfg.Retries
	if retries == 0 {
		retries = 3
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = retries
	rc.HTTPClient = &http.Client{Timeout: timeout}
	rc.Logger = nil // silence go-retryablehttp's default stderr logging

	return &Fetcher{client: rc}
}

// Fetch downloads url's body, retrying transient failures per the
// client's configured backoff policy.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetcher: new request: %w", err)
	}
	req.Header.Set("User-Agent", "abpfilter/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetcher: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetcher: %s: HTTP %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
