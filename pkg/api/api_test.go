package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/callback"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/confluence"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/connect"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/document"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/settings"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/tenant"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/token"
)

const (
	testClientKey = "client-1"
	testSecret    = "shared-secret"
	testAddonKey  = "onlyoffice-confluence-cloud"
	testDSSecret  = "ds-secret"
	testAccountID = "acc-1"
)

// fakeConfluence is an httptest stand-in for the Confluence Cloud REST
// API, serving one page with one attachment.
type fakeConfluence struct {
	server *httptest.Server

	adminAccounts  map[string]bool
	updateAllowed  bool
	attachmentName string
	updates        [][]byte
}

func newFakeConfluence(t *testing.T) *fakeConfluence {
	t.Helper()
	f := &fakeConfluence{
		adminAccounts:  map[string]bool{},
		updateAllowed:  true,
		attachmentName: "report.docx",
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /rest/api/content/20002", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "20002",
			"title": "` + f.attachmentName + `",
			"container": {"id": "10001"},
			"version": {"when": "2024-05-01T12:00:00Z"},
			"_links": {"download": "/download/attachments/10001/` + f.attachmentName + `"}
		}`))
	})
	mux.HandleFunc("POST /rest/api/content/20002/permission/check", func(w http.ResponseWriter, r *http.Request) {
		allowed := true
		if strings.Contains(readBody(r), `"update"`) {
			allowed = f.updateAllowed
		}
		w.Header().Set("Content-Type", "application/json")
		if allowed {
			_, _ = w.Write([]byte(`{"hasPermission": true}`))
		} else {
			_, _ = w.Write([]byte(`{"hasPermission": false}`))
		}
	})
	mux.HandleFunc("POST /rest/api/content/10001/child/attachment/20002/data", func(w http.ResponseWriter, r *http.Request) {
		f.updates = append(f.updates, []byte(readBody(r)))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("GET /rest/api/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accountId":"` + r.URL.Query().Get("accountId") + `","displayName":"Jamie"}`))
	})
	mux.HandleFunc("GET /rest/api/user/memberof", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if f.adminAccounts[r.URL.Query().Get("accountId")] {
			_, _ = w.Write([]byte(`{"results":[{"name":"site-admins"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"name":"confluence-users"}]}`))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func readBody(r *http.Request) string {
	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := r.Body.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			break
		}
	}
	return sb.String()
}

type apiHarness struct {
	deps       Deps
	handler    http.Handler
	confluence *fakeConfluence
}

func newHarness(t *testing.T) *apiHarness {
	t.Helper()

	store := settings.NewMemoryStore()
	tenants := tenant.NewRegistry(store)
	fake := newFakeConfluence(t)

	require.NoError(t, tenants.Install(context.Background(), tenant.Profile{
		ClientKey:    testClientKey,
		SharedSecret: testSecret,
		BaseURL:      fake.server.URL,
	}))

	resolver := tenant.NewResolver(tenants, tenant.Defaults{
		DocServerURL: "http://docserver.example.com",
		JWTSecret:    testDSSecret,
		JWTHeader:    "Authorization",
	})
	authority := token.NewAuthority(tenants, token.DefaultQueryTokenTTL)
	registry := document.DefaultRegistry()
	client := confluence.NewClient(http.DefaultClient, tenants, testAddonKey)

	deps := Deps{
		Store:      store,
		Tenants:    tenants,
		Resolver:   resolver,
		Authority:  authority,
		Builder:    document.NewBuilder(registry, authority),
		Processor:  callback.NewProcessor(client, http.DefaultClient),
		Confluence: client,
		BaseURL:    "https://connector.example.com",
		AddonKey:   testAddonKey,
	}

	return &apiHarness{deps: deps, handler: Router(deps), confluence: fake}
}

// connectJWT mints a Connect JWT the way Confluence signs iframe and
// webhook requests: issuer clientKey, subject accountId, qsh over the
// request.
func connectJWT(t *testing.T, method, path string, query url.Values, accountID string) string {
	t.Helper()
	now := time.Now().UTC()
	claims := connect.Claims{
		QSH: connect.CanonicalRequestHash(method, path, query),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testClientKey,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	signed, err := token.Encode(claims, testSecret)
	require.NoError(t, err)
	return signed
}

// docServerJWT mints a JWT the way the Document Server authenticates its
// requests to the connector.
func docServerJWT(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if claims == nil {
		claims = jwt.MapClaims{}
	}
	now := time.Now().UTC()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(time.Minute).Unix()
	signed, err := token.Encode(claims, testDSSecret)
	require.NoError(t, err)
	return signed
}

func (h *apiHarness) get(t *testing.T, path string, query url.Values, accountID string) *httptest.ResponseRecorder {
	t.Helper()
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if accountID != "" {
		req.Header.Set("Authorization", "JWT "+connectJWT(t, http.MethodGet, path, query, accountID))
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}
