package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/connect"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/logger"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/tenant"
)

// ConfigureRouter serves the admin configuration endpoints. Requests
// reach it through the Connect authentication middleware; every handler
// additionally requires site administrator membership.
func ConfigureRouter(deps Deps) http.Handler {
	routes := &configureRoutes{deps: deps}
	r := chi.NewRouter()
	r.Get("/", routes.getConfiguration)
	r.Post("/", routes.setConfiguration)
	return r
}

type configureRoutes struct {
	deps Deps
}

// configurationBody is the admin-facing shape of the tenant's Document
// Server settings.
type configurationBody struct {
	DocAPIURL string `json:"docApiUrl"`
	JWTSecret string `json:"jwtSecret"`
	JWTHeader string `json:"jwtHeader"`
}

func (c *configureRoutes) requireAdmin(w http.ResponseWriter, r *http.Request) (connect.TenantContext, bool) {
	tc, ok := connect.TenantFromContext(r.Context())
	if !ok || tc.AccountID == "" {
		unauthorized(w)
		return tc, false
	}

	admin, err := c.deps.Confluence.IsAdmin(r.Context(), tc.ClientKey, tc.AccountID)
	if err != nil {
		logger.Errorf("Failed to check administrator membership: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return tc, false
	}
	if !admin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return tc, false
	}
	return tc, true
}

func (c *configureRoutes) getConfiguration(w http.ResponseWriter, r *http.Request) {
	tc, ok := c.requireAdmin(w, r)
	if !ok {
		return
	}

	props, err := c.deps.Tenants.GetProperties(r.Context(), tc.ClientKey)
	if err != nil {
		logger.Errorf("Failed to load tenant properties: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, configurationBody{
		DocAPIURL: props.DocAPIURL,
		JWTSecret: props.JWTSecret,
		JWTHeader: props.JWTHeader,
	})
}

func (c *configureRoutes) setConfiguration(w http.ResponseWriter, r *http.Request) {
	tc, ok := c.requireAdmin(w, r)
	if !ok {
		return
	}

	var body configurationBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	props := tenant.Properties{
		DocAPIURL: body.DocAPIURL,
		JWTSecret: body.JWTSecret,
		JWTHeader: body.JWTHeader,
	}
	if err := c.deps.Tenants.SetProperties(r.Context(), tc.ClientKey, props); err != nil {
		logger.Errorf("Failed to store tenant properties: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	logger.Infow("tenant configuration updated", "client_key", tc.ClientKey)
	writeJSON(w, http.StatusOK, body)
}
