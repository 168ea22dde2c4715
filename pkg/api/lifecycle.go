package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/connect"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/logger"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/tenant"
)

// lifecyclePayload is the Connect lifecycle webhook body.
type lifecyclePayload struct {
	Key          string `json:"key"`
	ClientKey    string `json:"clientKey"`
	SharedSecret string `json:"sharedSecret"`
	BaseURL      string `json:"baseUrl"`
	ProductType  string `json:"productType"`
	Description  string `json:"description"`
	EventType    string `json:"eventType"`
}

// InstalledRouter handles the Connect installed webhook.
func InstalledRouter(tenants *tenant.Registry) http.Handler {
	routes := &lifecycleRoutes{tenants: tenants}
	r := chi.NewRouter()
	r.Post("/", routes.installed)
	return r
}

// UninstalledRouter handles the Connect uninstalled webhook.
func UninstalledRouter(tenants *tenant.Registry) http.Handler {
	routes := &lifecycleRoutes{tenants: tenants}
	r := chi.NewRouter()
	r.Post("/", routes.uninstalled)
	return r
}

type lifecycleRoutes struct {
	tenants *tenant.Registry
}

// installed persists the tenant's shared secret. The first install for a
// clientKey is trusted on receipt; any later install for a known tenant
// must be signed with the secret already on record, otherwise anyone who
// learned a clientKey could swap in their own secret.
func (l *lifecycleRoutes) installed(w http.ResponseWriter, r *http.Request) {
	var payload lifecyclePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.ClientKey == "" || payload.SharedSecret == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	known, err := l.tenants.Lookup(r.Context(), payload.ClientKey)
	if err != nil && !errors.Is(err, tenant.ErrUnknownTenant) {
		logger.Errorf("Failed to look up tenant on install: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	if known != nil {
		raw := connect.RequestToken(r)
		if raw == "" {
			unauthorized(w)
			return
		}
		claims, err := connect.VerifyWithSecret(r, raw, known.SharedSecret)
		if err != nil || claims.Issuer != payload.ClientKey {
			logger.Warnw("rejected re-install with unverifiable token",
				"client_key", payload.ClientKey)
			unauthorized(w)
			return
		}
	}

	profile := tenant.Profile{
		ClientKey:    payload.ClientKey,
		SharedSecret: payload.SharedSecret,
		BaseURL:      payload.BaseURL,
		ProductType:  payload.ProductType,
		Description:  payload.Description,
	}
	if err := l.tenants.Install(r.Context(), profile); err != nil {
		logger.Errorf("Failed to persist tenant install: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	logger.Infow("tenant installed", "client_key", payload.ClientKey, "base_url", payload.BaseURL)
	w.WriteHeader(http.StatusNoContent)
}

// uninstalled tombstones the tenant. Unlike a first install there is
// always a secret on record, so the webhook must verify.
func (l *lifecycleRoutes) uninstalled(w http.ResponseWriter, r *http.Request) {
	var payload lifecyclePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	known, err := l.tenants.Lookup(r.Context(), payload.ClientKey)
	if errors.Is(err, tenant.ErrUnknownTenant) {
		// Nothing to remove; answer success so Confluence stops retrying.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		logger.Errorf("Failed to look up tenant on uninstall: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	raw := connect.RequestToken(r)
	if raw == "" {
		unauthorized(w)
		return
	}
	claims, err := connect.VerifyWithSecret(r, raw, known.SharedSecret)
	if err != nil || claims.Issuer != payload.ClientKey {
		logger.Warnw("rejected uninstall with unverifiable token",
			"client_key", payload.ClientKey)
		unauthorized(w)
		return
	}

	if err := l.tenants.Uninstall(r.Context(), payload.ClientKey); err != nil {
		logger.Errorf("Failed to tombstone tenant: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	logger.Infow("tenant uninstalled", "client_key", payload.ClientKey)
	w.WriteHeader(http.StatusNoContent)
}
