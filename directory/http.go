// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/hobbyfind/core"
	"golang.org/x/time/rate"
)

const (
	// defaultTimeout is the per-request HTTP timeout.
	defaultTimeout = 30 * time.Second

	// defaultRate is the proactive request throttle (requests per second).
	// Grounding fans out point lookups, so the client self-limits instead
	// of trusting callers to pace themselves.
	defaultRate = 20

	// defaultMaxRetries is the retry budget for transient failures.
	defaultMaxRetries = 3

	// defaultRetryDelay is the base delay for exponential backoff.
	defaultRetryDelay = 500 * time.Millisecond
)

// HTTPDirectory implements Directory against a JSON REST user service:
// GET {base}/users returns the full snapshot, GET {base}/users/{id} one user.
type HTTPDirectory struct {
	baseURL    string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

var _ Directory = (*HTTPDirectory)(nil)

// HTTPOption configures an HTTPDirectory.
type HTTPOption func(*HTTPDirectory)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(d *HTTPDirectory) {
		if client != nil {
			d.client = client
		}
	}
}

// WithRateLimit sets the proactive throttle in requests per second.
func WithRateLimit(rps float64) HTTPOption {
	return func(d *HTTPDirectory) {
		if rps > 0 {
			d.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithRetries sets the retry budget and base backoff delay.
func WithRetries(maxRetries int, baseDelay time.Duration) HTTPOption {
	return func(d *HTTPDirectory) {
		if maxRetries > 0 {
			d.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			d.retryDelay = baseDelay
		}
	}
}

// NewHTTPDirectory creates a directory client for the given base URL.
func NewHTTPDirectory(baseURL string, opts ...HTTPOption) *HTTPDirectory {
	d := &HTTPDirectory{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		client:     &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRate), 1),
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		logger:     slog.Default().With("component", "http-directory"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ListAll fetches the full user snapshot.
func (d *HTTPDirectory) ListAll(ctx context.Context) ([]*core.User, error) {
	var users []*core.User
	err := retryWithBackoff(ctx, func() error {
		body, err := d.get(ctx, d.baseURL+"/users")
		if err != nil {
			return err
		}
		users = users[:0]
		if err := json.Unmarshal(body, &users); err != nil {
			return permanent(fmt.Errorf("decoding user snapshot: %w", err))
		}
		return nil
	}, d.maxRetries, d.retryDelay)
	if err != nil {
		d.logger.Error("failed to fetch user snapshot", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	d.logger.Debug("fetched user snapshot", "count", len(users))
	return users, nil
}

// GetByID fetches a single user. A 404 is reported as ErrNotFound and is
// never retried.
func (d *HTTPDirectory) GetByID(ctx context.Context, id core.ID) (*core.User, error) {
	var user core.User
	err := retryWithBackoff(ctx, func() error {
		body, err := d.get(ctx, d.baseURL+"/users/"+strconv.FormatInt(int64(id), 10))
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &user); err != nil {
			return permanent(fmt.Errorf("decoding user %d: %w", id, err))
		}
		return nil
	}, d.maxRetries, d.retryDelay)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &user, nil
}

// get performs one throttled GET and returns the response body.
// 4xx statuses are permanent; 5xx statuses and transport errors are
// retryable.
func (d *HTTPDirectory) get(ctx context.Context, url string) ([]byte, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, permanent(ErrNotFound)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, permanent(fmt.Errorf("directory returned %s", resp.Status))
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("directory returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}
