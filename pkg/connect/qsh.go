// SPDX-FileCopyrightText: Copyright 2025 Ascensio System SIA
// SPDX-License-Identifier: Apache-2.0

// Package connect implements the Atlassian Connect JWT profile used to
// authenticate traffic between Confluence and the add-on.
package connect

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// ContextQSH is the fixed qsh value Atlassian uses for context JWTs, which
// are not bound to a single request.
const ContextQSH = "context-qsh"

// QueryStringHash computes the Connect query-string-hash for an inbound
// request: the hex SHA-256 of the canonical request string.
func QueryStringHash(r *http.Request) string {
	return CanonicalRequestHash(r.Method, r.URL.Path, r.URL.Query())
}

// CanonicalRequestHash computes the qsh for an arbitrary method, path and
// query. Used both to validate inbound requests and to sign outbound REST
// calls.
func CanonicalRequestHash(method, path string, query url.Values) string {
	canonical := canonicalRequest(method, path, query)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// canonicalRequest builds METHOD&path&sorted-query per the Connect spec.
func canonicalRequest(method, path string, query url.Values) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte('&')
	b.WriteString(canonicalPath(path))
	b.WriteByte('&')
	b.WriteString(canonicalQuery(query))
	return b.String()
}

func canonicalPath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func canonicalQuery(query url.Values) string {
	type param struct {
		key    string
		values []string
	}

	params := make([]param, 0, len(query))
	for key, values := range query {
		// The jwt parameter itself is never part of the hash.
		if key == "jwt" {
			continue
		}

		encoded := make([]string, len(values))
		for i, v := range values {
			encoded[i] = rfc3986Encode(v)
		}
		sort.Strings(encoded)

		params = append(params, param{key: rfc3986Encode(key), values: encoded})
	}

	sort.Slice(params, func(i, j int) bool { return params[i].key < params[j].key })

	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.key + "=" + strings.Join(p.values, ",")
	}
	return strings.Join(parts, "&")
}

// rfc3986Encode percent-encodes per RFC 3986: spaces become %20, and the
// characters QueryEscape leaves to the application are already covered
// since Go treats only unreserved characters as safe.
func rfc3986Encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
