package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/settings"
)

// HealthcheckRouter sets up the healthcheck route.
func HealthcheckRouter(store settings.Store) http.Handler {
	routes := &healthcheckRoutes{store: store}
	r := chi.NewRouter()
	r.Get("/", routes.getHealthcheck)
	return r
}

type healthcheckRoutes struct {
	store settings.Store
}

func (h *healthcheckRoutes) getHealthcheck(w http.ResponseWriter, r *http.Request) {
	// A probe read exercises the settings backend; absence is the healthy
	// answer, any other error means the backend is down.
	_, err := h.store.Get(r.Context(), settings.NamespaceSystem, "healthcheck")
	if err != nil && !errors.Is(err, settings.ErrNotFound) {
		http.Error(w, "settings store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
