// Package networking provides the outbound HTTP plumbing for the connector:
// bounded-timeout clients and a small fetch helper with retry for pulling
// edited document bytes from the Document Server.
package networking

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds outgoing HTTP requests. Content fetches must fail
// fast enough that a stuck Document Server does not hang callback handling.
const DefaultTimeout = 15 * time.Second

// HTTPClient is the interface used by the fetch helpers, satisfied by
// *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewClient creates an HTTP client with the given overall timeout and
// bounded handshake/header timeouts. A non-positive timeout falls back to
// DefaultTimeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
		},
	}
}
