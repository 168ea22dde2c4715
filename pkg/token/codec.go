// SPDX-FileCopyrightText: Copyright 2025 Ascensio System SIA
// SPDX-License-Identifier: Apache-2.0

// Package token implements the symmetric JWT scheme used by the connector.
//
// Two claim shapes flow through it: short-lived operation-scoped query
// tokens embedded in download/callback URLs (signed with the tenant's
// Connect shared secret), and the editor configuration / callback payloads
// exchanged with the Document Server (signed with the tenant's Document
// Server secret).
package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/errors"
)

// hmacKeyfunc rejects any signing method other than HMAC before handing the
// secret to the parser. Algorithm confusion with an asymmetric method would
// otherwise let an attacker use a public value as the verification key.
func hmacKeyfunc(secret string) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}
}

// Encode produces a compact HS256 JWT of claims signed with secret.
func Encode(claims jwt.Claims, secret string) (string, error) {
	if secret == "" {
		return "", errors.NewInternalError("cannot sign token with empty secret", nil)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", errors.NewInternalError("signing token", err)
	}
	return signed, nil
}

// DecodeVerified parses tokenString into claims after verifying its HS256
// signature against secret and its registered timing claims. Failure yields
// a TokenInvalid error carrying no secret material.
func DecodeVerified(tokenString, secret string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		hmacKeyfunc(secret),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return errors.NewTokenInvalidError("token verification failed", err)
	}
	if !parsed.Valid {
		return errors.NewTokenInvalidError("token verification failed", nil)
	}
	return nil
}

// DecodeVerifiedMap is DecodeVerified for callers that need the raw claim
// map, such as Document Server callback bodies.
func DecodeVerifiedMap(tokenString, secret string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if err := DecodeVerified(tokenString, secret, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// PeekUnverified parses the structure of tokenString into claims WITHOUT
// verifying the signature. It exists only so the clientKey claim can be
// read to look up the tenant secret before a real verification; nothing
// returned by it may be trusted. It must tolerate arbitrary input.
func PeekUnverified(tokenString string, claims jwt.Claims) error {
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return errors.NewTokenInvalidError("malformed token", err)
	}
	return nil
}
