package networking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultMaxFetchSize is the default maximum fetched body size (100MB),
	// sized for edited office documents.
	DefaultMaxFetchSize = 100 * 1024 * 1024

	// errorPreviewSize is the maximum size of error body preview in HTTPError.
	errorPreviewSize = 1024

	// fetchMaxTries bounds retry attempts for transient fetch failures,
	// including the initial attempt.
	fetchMaxTries = 3
)

// HTTPError represents an HTTP error response with status code and body preview.
type HTTPError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is a preview of the response body (limited to errorPreviewSize).
	Body string

	// URL is the requested URL.
	URL string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP request to %s failed with status %d", e.URL, e.StatusCode)
}

// IsHTTPError checks if an error is an HTTPError with the specified status code.
// If statusCode is 0, it matches any HTTPError.
func IsHTTPError(err error, statusCode int) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	if statusCode == 0 {
		return true
	}
	return httpErr.StatusCode == statusCode
}

// FetchBytes performs a GET request and returns the response body, retrying
// transient failures (network errors and 5xx responses) with exponential
// backoff. Responses larger than maxSize fail rather than truncate.
func FetchBytes(ctx context.Context, client HTTPClient, requestURL string, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFetchSize
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 500 * time.Millisecond

	operation := func() ([]byte, error) {
		return fetchOnce(ctx, client, requestURL, maxSize)
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(fetchMaxTries),
	)
}

func fetchOnce(ctx context.Context, client HTTPClient, requestURL string, maxSize int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, errorPreviewSize))
		httpErr := &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       string(preview),
			URL:        requestURL,
		}
		// Client errors will not heal on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(httpErr)
		}
		return nil, httpErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(body)) > maxSize {
		return nil, backoff.Permanent(fmt.Errorf("response body exceeds %d bytes", maxSize))
	}

	return body, nil
}
