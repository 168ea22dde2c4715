package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/logger"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/token"
)

// DownloadRouter serves the Document Server's fetch of document content.
func DownloadRouter(deps Deps) http.Handler {
	routes := &downloadRoutes{deps: deps}
	r := chi.NewRouter()
	r.Get("/", routes.getDownload)
	return r
}

type downloadRoutes struct {
	deps Deps
}

// getDownload is called by the Document Server, not the browser: the URL
// token proves the link was minted by us, and the header JWT proves the
// caller is the tenant's Document Server. Both must pass before the 302.
func (d *downloadRoutes) getDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := d.deps.Authority.Verify(ctx, r.URL.Query().Get("token"), token.OperationDownload)
	if err != nil {
		logger.Warnf("rejected download token: %v", err)
		unauthorized(w)
		return
	}

	if err := d.verifyDocServerJWT(r, claims.ClientKey); err != nil {
		logger.Warnf("rejected download request from Document Server: %v", err)
		unauthorized(w)
		return
	}

	downloadURL, err := d.deps.Confluence.DownloadURL(ctx, claims.ClientKey, claims.AttachmentID)
	if err != nil {
		logger.Errorf("Failed to resolve download url for attachment %s: %v", claims.AttachmentID, err)
		writeContentStoreError(w, err)
		return
	}

	http.Redirect(w, r, downloadURL, http.StatusFound)
}

// verifyDocServerJWT checks the JWT the Document Server sends in the
// tenant's configured auth header. An empty configured secret disables
// the check for deployments running an open Document Server.
func (d *downloadRoutes) verifyDocServerJWT(r *http.Request, clientKey string) error {
	ctx := r.Context()

	secret, err := d.deps.Resolver.SigningSecret(ctx, clientKey)
	if err != nil {
		return err
	}
	if secret == "" {
		return nil
	}

	header, err := d.deps.Resolver.AuthHeader(ctx, clientKey)
	if err != nil {
		return err
	}

	raw := strings.TrimPrefix(r.Header.Get(header), "Bearer ")
	_, err = token.DecodeVerifiedMap(raw, secret)
	return err
}
