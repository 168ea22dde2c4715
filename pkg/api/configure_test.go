package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_RequiresAdmin(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	rec := h.get(t, "/configure", nil, testAccountID)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestConfigure_RoundTrip(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.confluence.adminAccounts["acc-admin"] = true

	// Defaults apply before any configuration is stored.
	rec := h.get(t, "/configure", nil, "acc-admin")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var current configurationBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Empty(t, current.DocAPIURL)

	body, err := json.Marshal(configurationBody{
		DocAPIURL: "https://ds.internal.example.com",
		JWTSecret: "tenant-secret",
		JWTHeader: "X-Custom-Auth",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/configure", bytes.NewReader(body))
	req.Header.Set("Authorization",
		"JWT "+connectJWT(t, http.MethodPost, "/configure", url.Values{}, "acc-admin"))
	postRec := httptest.NewRecorder()
	h.handler.ServeHTTP(postRec, req)
	require.Equal(t, http.StatusOK, postRec.Code, postRec.Body.String())

	// The stored overrides now drive secret and header resolution.
	secret, err := h.deps.Resolver.SigningSecret(context.Background(), testClientKey)
	require.NoError(t, err)
	assert.Equal(t, "tenant-secret", secret)

	header, err := h.deps.Resolver.AuthHeader(context.Background(), testClientKey)
	require.NoError(t, err)
	assert.Equal(t, "X-Custom-Auth", header)

	dsURL, err := h.deps.Resolver.DocServerURL(context.Background(), testClientKey)
	require.NoError(t, err)
	assert.Equal(t, "https://ds.internal.example.com/", dsURL)
}

func TestReferenceData_MintsFreshDownloadLink(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	body, err := json.Marshal(map[string]any{
		"referenceData": map[string]string{
			"fileKey":    "20002",
			"instanceId": testClientKey,
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/reference-data", bytes.NewReader(body))
	req.Header.Set("Authorization",
		"JWT "+connectJWT(t, http.MethodPost, "/reference-data", url.Values{}, testAccountID))
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response struct {
		FileType string `json:"fileType"`
		Key      string `json:"key"`
		URL      string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "docx", response.FileType)
	assert.NotEmpty(t, response.Key)
	assert.Contains(t, response.URL, "https://connector.example.com/onlyoffice-download?token=")
}

func TestReferenceData_RejectsForeignInstance(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	body, err := json.Marshal(map[string]any{
		"referenceData": map[string]string{
			"fileKey":    "20002",
			"instanceId": "another-tenant",
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/reference-data", bytes.NewReader(body))
	req.Header.Set("Authorization",
		"JWT "+connectJWT(t, http.MethodPost, "/reference-data", url.Values{}, testAccountID))
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsersInfo(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	body, err := json.Marshal(map[string]any{"ids": []string{"acc-1", "acc-2"}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/users-info", bytes.NewReader(body))
	req.Header.Set("Authorization",
		"JWT "+connectJWT(t, http.MethodPost, "/users-info", url.Values{}, testAccountID))
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response usersInfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Users, 2)
	assert.Equal(t, "acc-1", response.Users[0].ID)
	assert.Equal(t, "Jamie", response.Users[0].Name)
}
