// Package crm talks to the external CRM over its rate-limited JSON API.
// It owns the 429 backoff policy and the normalization of the two
// pagination envelope shapes the upstream is known to emit.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/salesboard/internal/upstream/credentials"
	"github.com/okian/salesboard/pkg/logger"
	"github.com/okian/salesboard/pkg/metrics"
)

// Default fetcher configuration constants.
const (
	defaultMaxAttempts = 3
	defaultBackoffBase = 500 * time.Millisecond
	defaultHTTPTimeout = 10 * time.Second
	maxErrorBodyBytes  = 2048
)

// Fetcher issues authenticated requests with bounded 429 backoff.
type Fetcher struct {
	client      *http.Client
	baseURL     string
	creds       credentials.Provider
	log         logger.Logger
	maxAttempts int
	backoffBase time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// FetcherOption applies a configuration option to the Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithMaxAttempts bounds the number of tries for a rate-limited call.
func WithMaxAttempts(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithBackoffBase sets the first retry delay; each retry doubles it.
func WithBackoffBase(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.backoffBase = d
		}
	}
}

// WithFetcherLogger sets a custom logger.
func WithFetcherLogger(log logger.Logger) FetcherOption {
	return func(f *Fetcher) {
		if log != nil {
			f.log = log
		}
	}
}

// NewFetcher creates a Fetcher for the given base URL.
func NewFetcher(baseURL string, creds credentials.Provider, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:     baseURL,
		creds:       creds,
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = logger.Get()
	}
	return f
}

// GetJSON issues an authenticated GET and returns the raw body.
func (f *Fetcher) GetJSON(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return f.do(ctx, http.MethodGet, path, query, nil)
}

// PostJSON issues an authenticated POST with a JSON body and returns the
// raw response body.
func (f *Fetcher) PostJSON(ctx context.Context, path string, body any) ([]byte, error) {
	return f.do(ctx, http.MethodPost, path, nil, body)
}

func (f *Fetcher) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	token, err := f.creds.BearerToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := f.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	delay := f.backoffBase
	for attempt := 1; ; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, fmt.Errorf("build request %s: %w", path, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := f.client.Do(req)
		if err != nil {
			metrics.RecordUpstreamError(path)
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		raw, rerr := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			if attempt >= f.maxAttempts {
				metrics.RecordUpstreamError(path)
				return nil, fmt.Errorf("%w: %s after %d attempts", ErrRateLimited, path, attempt)
			}
			metrics.RecordRateLimitRetry()
			f.log.Warn(ctx, "rate limited, backing off",
				logger.String("path", path),
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
			)
			if err := f.sleep(ctx, delay); err != nil {
				return nil, err
			}
			delay *= 2
			continue
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			metrics.RecordUpstreamError(path)
			return nil, &UpstreamError{Status: resp.StatusCode, Body: clip(raw)}
		}

		if rerr != nil {
			return nil, fmt.Errorf("read response %s: %w", path, rerr)
		}
		return raw, nil
	}
}

func clip(raw []byte) string {
	if len(raw) > maxErrorBodyBytes {
		raw = raw[:maxErrorBodyBytes]
	}
	return string(raw)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
