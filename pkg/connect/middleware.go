// SPDX-FileCopyrightText: Copyright 2025 Ascensio System SIA
// SPDX-License-Identifier: Apache-2.0

package connect

import (
	"net/http"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/logger"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/token"
)

// Authenticator is chi middleware that authenticates inbound requests via
// the Connect JWT and stores the resulting tenant context on the request.
type Authenticator struct {
	secrets token.SecretSource
}

// NewAuthenticator creates an Authenticator resolving secrets from secrets.
func NewAuthenticator(secrets token.SecretSource) *Authenticator {
	return &Authenticator{secrets: secrets}
}

// Middleware rejects requests without a valid Connect JWT. All failures
// produce the same generic 401 body; the distinction between signature,
// structure and tenant failures stays in the logs.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := VerifyRequest(r.Context(), r, a.secrets)
		if err != nil {
			logger.Warnf("Connect authentication failed: %v", err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tc := TenantContext{
			ClientKey: claims.Issuer,
			AccountID: claims.Subject,
		}
		next.ServeHTTP(w, r.WithContext(WithTenantContext(r.Context(), tc)))
	})
}
