// SPDX-FileCopyrightText: Copyright 2025 Ascensio System SIA
// SPDX-License-Identifier: Apache-2.0

package tenant

import (
	"context"
	"strings"
)

// Defaults are the deployment-wide Document Server settings used when a
// tenant has not configured overrides.
type Defaults struct {
	// DocServerURL is the default Document Server base address.
	DocServerURL string

	// JWTSecret is the default secret for Document-Server-facing JWTs.
	JWTSecret string

	// JWTHeader is the default HTTP header carrying the Document Server JWT.
	JWTHeader string
}

// Resolver resolves the Document-Server-facing signing secret, auth header
// name, and API address for a tenant, preferring admin-configured overrides
// and falling back to deployment defaults. All lookups are pure reads; a
// tenant with no overrides is a normal state, never an error.
type Resolver struct {
	registry *Registry
	defaults Defaults
}

// NewResolver creates a Resolver over registry with the given defaults.
func NewResolver(registry *Registry, defaults Defaults) *Resolver {
	return &Resolver{registry: registry, defaults: defaults}
}

// SigningSecret returns the secret used to sign and verify JWTs exchanged
// with the Document Server for this tenant.
func (r *Resolver) SigningSecret(ctx context.Context, clientKey string) (string, error) {
	props, err := r.registry.GetProperties(ctx, clientKey)
	if err != nil {
		return "", err
	}
	if props.JWTSecret != "" {
		return props.JWTSecret, nil
	}
	return r.defaults.JWTSecret, nil
}

// AuthHeader returns the name of the HTTP header in which the Document
// Server sends its JWT for this tenant.
func (r *Resolver) AuthHeader(ctx context.Context, clientKey string) (string, error) {
	props, err := r.registry.GetProperties(ctx, clientKey)
	if err != nil {
		return "", err
	}
	if props.JWTHeader != "" {
		return props.JWTHeader, nil
	}
	return r.defaults.JWTHeader, nil
}

// DocServerURL returns the Document Server base address for this tenant,
// always with a trailing slash.
func (r *Resolver) DocServerURL(ctx context.Context, clientKey string) (string, error) {
	props, err := r.registry.GetProperties(ctx, clientKey)
	if err != nil {
		return "", err
	}
	if props.DocAPIURL != "" {
		return appendSlash(props.DocAPIURL), nil
	}
	return appendSlash(r.defaults.DocServerURL), nil
}

func appendSlash(url string) string {
	if strings.HasSuffix(url, "/") {
		return url
	}
	return url + "/"
}
