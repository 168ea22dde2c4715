// SPDX-FileCopyrightText: Copyright 2025 Ascensio System SIA
// SPDX-License-Identifier: Apache-2.0

package connect

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		path   string
		query  url.Values
		want   string
	}{
		{
			name:   "method uppercased, params sorted",
			method: "get",
			path:   "/editor",
			query:  url.Values{"pageId": {"1"}, "attachmentId": {"2"}},
			want:   "GET&/editor&attachmentId=2&pageId=1",
		},
		{
			name:   "jwt parameter excluded",
			method: "GET",
			path:   "/editor",
			query:  url.Values{"pageId": {"1"}, "jwt": {"a.b.c"}},
			want:   "GET&/editor&pageId=1",
		},
		{
			name:   "empty path becomes root",
			method: "GET",
			path:   "",
			query:  url.Values{},
			want:   "GET&/&",
		},
		{
			name:   "trailing slash stripped",
			method: "POST",
			path:   "/onlyoffice-callback/",
			query:  url.Values{},
			want:   "POST&/onlyoffice-callback&",
		},
		{
			name:   "values percent encoded with %20 for spaces",
			method: "GET",
			path:   "/editor",
			query:  url.Values{"attachmentName": {"annual report.docx"}},
			want:   "GET&/editor&attachmentName=annual%20report.docx",
		},
		{
			name:   "repeated parameter values sorted and comma joined",
			method: "GET",
			path:   "/editor",
			query:  url.Values{"id": {"30", "10", "20"}},
			want:   "GET&/editor&id=10,20,30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, canonicalRequest(tt.method, tt.path, tt.query))
		})
	}
}

func TestQueryStringHash_Stable(t *testing.T) {
	t.Parallel()

	a := httptest.NewRequest("GET", "/editor?pageId=1&attachmentId=2", nil)
	b := httptest.NewRequest("GET", "/editor?attachmentId=2&pageId=1", nil)
	assert.Equal(t, QueryStringHash(a), QueryStringHash(b))

	c := httptest.NewRequest("GET", "/editor?pageId=1&attachmentId=3", nil)
	assert.NotEqual(t, QueryStringHash(a), QueryStringHash(c))
}

func TestQueryStringHash_IgnoresJWTParam(t *testing.T) {
	t.Parallel()

	bare := httptest.NewRequest("GET", "/editor?pageId=1", nil)
	withJWT := httptest.NewRequest("GET", "/editor?pageId=1&jwt=a.b.c", nil)
	assert.Equal(t, QueryStringHash(bare), QueryStringHash(withJWT))
}
