// SPDX-FileCopyrightText: Copyright 2025 Ascensio System SIA
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/errors"
)

// Operation scopes a query token to a single endpoint.
type Operation string

// Query token operations.
const (
	OperationDownload Operation = "download"
	OperationCallback Operation = "callback"
)

// DefaultQueryTokenTTL bounds a query token's lifetime. Editing sessions
// can stay open for a long time, so the bound is generous; it exists to
// keep leaked URLs from remaining valid forever.
const DefaultQueryTokenTTL = 7 * 24 * time.Hour

// Target identifies the content a query token is scoped to.
type Target struct {
	PageID       string
	AttachmentID string
}

// QueryClaims are the claims carried by a query token.
type QueryClaims struct {
	ClientKey    string    `json:"clientKey"`
	UserID       string    `json:"userId"`
	PageID       string    `json:"pageId"`
	AttachmentID string    `json:"attachmentId"`
	Operation    Operation `json:"operation"`
	jwt.RegisteredClaims
}

// SecretSource resolves the Connect shared secret for a tenant.
type SecretSource interface {
	SharedSecret(ctx context.Context, clientKey string) (string, error)
}

// Authority issues and verifies the query tokens gating the download and
// callback endpoints.
type Authority struct {
	secrets SecretSource
	ttl     time.Duration
	now     func() time.Time
}

// NewAuthority creates an Authority over secrets. A non-positive ttl
// falls back to DefaultQueryTokenTTL.
func NewAuthority(secrets SecretSource, ttl time.Duration) *Authority {
	if ttl <= 0 {
		ttl = DefaultQueryTokenTTL
	}
	return &Authority{secrets: secrets, ttl: ttl, now: time.Now}
}

// Issue mints a URL-embeddable query token scoped to op and target, signed
// with the tenant's shared secret.
func (a *Authority) Issue(ctx context.Context, clientKey, userID string, target Target, op Operation) (string, error) {
	secret, err := a.secrets.SharedSecret(ctx, clientKey)
	if err != nil {
		return "", errors.NewTokenRejectedError("unknown tenant", err)
	}

	now := a.now().UTC()
	claims := QueryClaims{
		ClientKey:    clientKey,
		UserID:       userID,
		PageID:       target.PageID,
		AttachmentID: target.AttachmentID,
		Operation:    op,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	return Encode(claims, secret)
}

// Verify checks tokenString against expected and returns its claims.
//
// The pipeline is: peek-decode without trust to read the clientKey, resolve
// that tenant's shared secret, verified decode, structural presence check,
// then operation equality. Every failure surfaces as a token error; the
// route layer must answer all of them with the same generic 401 so callers
// cannot distinguish signature failures from parameter mismatches.
func (a *Authority) Verify(ctx context.Context, tokenString string, expected Operation) (*QueryClaims, error) {
	var unverified QueryClaims
	if err := PeekUnverified(tokenString, &unverified); err != nil {
		return nil, err
	}
	if unverified.ClientKey == "" {
		return nil, errors.NewTokenRejectedError("token did not contain required parameters", nil)
	}

	secret, err := a.secrets.SharedSecret(ctx, unverified.ClientKey)
	if err != nil {
		return nil, errors.NewTokenRejectedError("unknown tenant", err)
	}

	var claims QueryClaims
	if err := DecodeVerified(tokenString, secret, &claims); err != nil {
		return nil, err
	}

	if claims.UserID == "" || claims.PageID == "" || claims.AttachmentID == "" || claims.Operation == "" {
		return nil, errors.NewTokenRejectedError("token did not contain required parameters", nil)
	}

	if claims.Operation != expected {
		return nil, errors.NewTokenRejectedError("not supported operation", nil)
	}

	return &claims, nil
}
