// Package api is the connector's HTTP surface: the editor bootstrap, the
// Document Server download and callback endpoints, the Connect lifecycle
// webhooks, and the admin configuration page.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/logger"
)

// callbackEnvelope is the response body the Document Server expects:
// always HTTP 200, with the outcome in the error field.
type callbackEnvelope struct {
	Error   int    `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Errorf("Failed to encode response body: %v", err)
	}
}

// writeCallbackOK and writeCallbackError both answer 200: the Document
// Server treats any other status as a transport failure and retries, so
// business failures travel in the envelope.
func writeCallbackOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, callbackEnvelope{Error: 0})
}

func writeCallbackError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, callbackEnvelope{Error: 1, Message: message})
}

// unauthorized answers every authentication failure identically so the
// response cannot be used to probe which check failed.
func unauthorized(w http.ResponseWriter) {
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
