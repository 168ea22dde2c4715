// SPDX-FileCopyrightText: Copyright 2025 Ascensio System SIA
// SPDX-License-Identifier: Apache-2.0

package connect

import (
	"context"
)

// TenantContext is the authenticated tenant/user identity attached to a
// request after Connect JWT verification.
type TenantContext struct {
	// ClientKey identifies the tenant installation.
	ClientKey string

	// AccountID is the acting user's Atlassian account id; empty for
	// server-to-server tokens with no subject.
	AccountID string
}

type contextKey struct{}

// WithTenantContext returns a context carrying tc.
func WithTenantContext(ctx context.Context, tc TenantContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// TenantFromContext returns the authenticated tenant context, if any.
func TenantFromContext(ctx context.Context) (TenantContext, bool) {
	tc, ok := ctx.Value(contextKey{}).(TenantContext)
	return tc, ok
}
