package api

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/connect"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/document"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/errors"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/logger"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/token"
)

// EditorRouter serves the editor bootstrap page. Requests reach it
// through the Connect authentication middleware.
func EditorRouter(deps Deps) http.Handler {
	routes := &editorRoutes{deps: deps}
	r := chi.NewRouter()
	r.Get("/", routes.getEditor)
	return r
}

type editorRoutes struct {
	deps Deps
}

var editorTemplate = template.Must(template.New("editor").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Title}}</title>
<style>html, body, #onlyoffice-editor { width: 100%; height: 100%; margin: 0; padding: 0; }</style>
<script type="text/javascript" src="{{.APIScript}}"></script>
</head>
<body>
<div id="onlyoffice-editor"></div>
<script type="text/javascript">
new DocsAPI.DocEditor("onlyoffice-editor", {{.Config}});
</script>
</body>
</html>
`))

type editorPage struct {
	Title     string
	APIScript string
	Config    template.JS
}

func (e *editorRoutes) getEditor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tc, ok := connect.TenantFromContext(ctx)
	if !ok || tc.AccountID == "" {
		unauthorized(w)
		return
	}

	pageID := r.URL.Query().Get("pageId")
	attachmentID := r.URL.Query().Get("attachmentId")
	if pageID == "" || attachmentID == "" {
		http.Error(w, "pageId and attachmentId are required", http.StatusBadRequest)
		return
	}

	attachment, err := e.deps.Confluence.GetAttachment(ctx, tc.ClientKey, attachmentID)
	if err != nil {
		logger.Errorf("Failed to fetch attachment %s: %v", attachmentID, err)
		writeContentStoreError(w, err)
		return
	}

	canRead, err := e.deps.Confluence.CheckContentPermission(ctx, tc.ClientKey, tc.AccountID, attachmentID, "read")
	if err != nil {
		logger.Errorf("Failed to check read permission: %v", err)
		writeContentStoreError(w, err)
		return
	}
	if !canRead {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	canUpdate, err := e.deps.Confluence.CheckUpdatePermission(ctx, tc.ClientKey, tc.AccountID, attachmentID)
	if err != nil {
		logger.Errorf("Failed to check update permission: %v", err)
		writeContentStoreError(w, err)
		return
	}

	user, err := e.deps.Confluence.GetUser(ctx, tc.ClientKey, tc.AccountID)
	if err != nil {
		logger.Errorf("Failed to fetch user %s: %v", tc.AccountID, err)
		writeContentStoreError(w, err)
		return
	}

	profile, err := e.deps.Tenants.Get(ctx, tc.ClientKey)
	if err != nil {
		logger.Errorf("Failed to load tenant profile: %v", err)
		unauthorized(w)
		return
	}

	cfg, err := e.deps.Builder.Build(ctx, tc.ClientKey,
		document.FileInfo{
			ID:       attachment.ID,
			Title:    attachment.Title,
			PageID:   attachment.PageID,
			Modified: attachment.Modified,
		},
		document.UserInfo{ID: user.AccountID, Name: user.DisplayName},
		document.PermissionSet{Read: canRead, Update: canUpdate},
		document.URLs{LocalBase: e.deps.BaseURL, HostBase: profile.BaseURL},
	)
	if errors.IsUnsupportedFormat(err) {
		http.Error(w, "Unsupported file format", http.StatusUnsupportedMediaType)
		return
	}
	if err != nil {
		logger.Errorf("Failed to build editor configuration: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	secret, err := e.deps.Resolver.SigningSecret(ctx, tc.ClientKey)
	if err != nil {
		logger.Errorf("Failed to resolve signing secret: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if secret != "" {
		signed, err := signConfig(cfg, secret)
		if err != nil {
			logger.Errorf("Failed to sign editor configuration: %v", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		cfg.Token = signed
	}

	docServerURL, err := e.deps.Resolver.DocServerURL(ctx, tc.ClientKey)
	if err != nil {
		logger.Errorf("Failed to resolve Document Server address: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	encoded, err := json.Marshal(cfg)
	if err != nil {
		logger.Errorf("Failed to encode editor configuration: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := editorTemplate.Execute(w, editorPage{
		Title:     attachment.Title,
		APIScript: docServerURL + "web-apps/apps/api/documents/api.js",
		Config:    template.JS(encoded), // #nosec G203 -- encoded is json.Marshal output
	}); err != nil {
		logger.Errorf("Failed to render editor page: %v", err)
	}
}

// signConfig mints the Document Server JWT over the whole configuration
// object, which is how the editor proves the config was not tampered with
// in the browser.
func signConfig(cfg *document.Config, secret string) (string, error) {
	encoded, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	var claims jwt.MapClaims
	if err := json.Unmarshal(encoded, &claims); err != nil {
		return "", err
	}
	return token.Encode(claims, secret)
}

// writeContentStoreError maps a content-store failure onto the response:
// upstream 404 passes through, everything else collapses to 500.
func writeContentStoreError(w http.ResponseWriter, err error) {
	if storeErr, ok := err.(*errors.Error); ok &&
		storeErr.Type == errors.ErrContentStore &&
		storeErr.StatusCode == http.StatusNotFound {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	http.Error(w, "Internal error", http.StatusInternalServerError)
}
