// Package confluence is the Confluence Cloud REST client. Every request
// is signed with a Connect JWT minted from the tenant's shared secret, so
// the client resolves the tenant profile per call rather than holding
// credentials.
package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/connect"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/errors"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/networking"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/tenant"
)

const (
	// outboundTokenTTL bounds the lifetime of JWTs minted for REST calls.
	outboundTokenTTL = 3 * time.Minute

	// maxResponseBody bounds decoded REST response bodies.
	maxResponseBody = 10 * 1024 * 1024
)

// TenantSource resolves an installed tenant's profile.
type TenantSource interface {
	Get(ctx context.Context, clientKey string) (*tenant.Profile, error)
}

// Client talks to the Confluence Cloud REST API on behalf of tenants.
type Client struct {
	http     networking.HTTPClient
	tenants  TenantSource
	addonKey string
}

// NewClient creates a Client. addonKey is the Connect add-on key used as
// the issuer of outbound JWTs.
func NewClient(httpClient networking.HTTPClient, tenants TenantSource, addonKey string) *Client {
	return &Client{
		http:     httpClient,
		tenants:  tenants,
		addonKey: addonKey,
	}
}

// request builds, signs and executes one REST call against the tenant's
// site. The body is decoded into out when out is non-nil.
func (c *Client) request(
	ctx context.Context,
	clientKey, method, path string,
	query url.Values,
	contentType string,
	body []byte,
	out any,
) error {
	profile, err := c.tenants.Get(ctx, clientKey)
	if err != nil {
		return err
	}

	requestURL, err := buildURL(profile.BaseURL, path, query)
	if err != nil {
		return errors.NewInternalError("building request url", err)
	}

	signed, err := connect.SignOutbound(method, requestURL, c.addonKey, profile.SharedSecret, outboundTokenTTL)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, requestURL.String(), reader)
	if err != nil {
		return errors.NewInternalError("building request", err)
	}
	req.Header.Set("Authorization", "JWT "+signed)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method != http.MethodGet {
		// Confluence rejects mutating requests without this header.
		req.Header.Set("X-Atlassian-Token", "nocheck")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewContentStoreError("content store request failed", 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return errors.NewContentStoreError("reading content store response", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewContentStoreError(
			fmt.Sprintf("content store returned %d for %s %s", resp.StatusCode, method, path),
			resp.StatusCode, nil)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return errors.NewContentStoreError("decoding content store response", resp.StatusCode, err)
		}
	}
	return nil
}

func buildURL(base, path string, query url.Values) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSuffix(base, "/") + path)
	if err != nil {
		return nil, err
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u, nil
}
