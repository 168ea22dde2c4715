package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/callback"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/confluence"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/connect"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/document"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/logger"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/settings"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/tenant"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/token"
)

const (
	middlewareTimeout = 60 * time.Second
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Deps are the collaborators the HTTP surface dispatches into.
type Deps struct {
	Store      settings.Store
	Tenants    *tenant.Registry
	Resolver   *tenant.Resolver
	Authority  *token.Authority
	Builder    *document.Builder
	Processor  *callback.Processor
	Confluence *confluence.Client

	// BaseURL is the connector's public address, used in minted download
	// and callback URLs and in the Connect descriptor.
	BaseURL string

	// AddonKey is the Connect add-on key.
	AddonKey string
}

// Router assembles the full route tree.
func Router(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Timeout(middlewareTimeout),
	)

	authenticator := connect.NewAuthenticator(deps.Tenants)

	r.Mount("/healthcheck", HealthcheckRouter(deps.Store))
	r.Mount("/atlassian-connect.json", DescriptorRouter(deps.BaseURL, deps.AddonKey))
	r.Mount("/installed", InstalledRouter(deps.Tenants))
	r.Mount("/uninstalled", UninstalledRouter(deps.Tenants))

	r.Group(func(r chi.Router) {
		r.Use(authenticator.Middleware)
		r.Mount("/editor", EditorRouter(deps))
		r.Mount("/configure", ConfigureRouter(deps))
		r.Mount("/reference-data", ReferenceDataRouter(deps))
		r.Mount("/users-info", UsersInfoRouter(deps))
	})

	r.Mount("/onlyoffice-download", DownloadRouter(deps))
	r.Mount("/onlyoffice-callback", CallbackRouter(deps))

	return r
}

// Serve starts the server on the given address and blocks until ctx is
// cancelled. It is assumed that the caller sets up signal handling.
func Serve(ctx context.Context, address string, deps Deps) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           Router(deps),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Infof("Connector API server started on %s", address)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
