package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/callback"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/logger"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/token"
)

// maxCallbackBody bounds the callback payload; actual document content
// travels via payload.url, never in the body.
const maxCallbackBody = 1 * 1024 * 1024

// CallbackRouter serves the Document Server's editing status callbacks.
func CallbackRouter(deps Deps) http.Handler {
	routes := &callbackRoutes{deps: deps}
	r := chi.NewRouter()
	r.Post("/", routes.postCallback)
	return r
}

type callbackRoutes struct {
	deps Deps
}

// postCallback authenticates the callback twice (URL query token, then
// the Document Server JWT over the payload) and dispatches the processor.
// Business failures answer 200 with {"error":1}: the Document Server
// treats other statuses as transport errors and keeps retrying.
func (c *callbackRoutes) postCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := c.deps.Authority.Verify(ctx, r.URL.Query().Get("token"), token.OperationCallback)
	if err != nil {
		logger.Warnf("rejected callback token: %v", err)
		unauthorized(w)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		writeCallbackError(w, "unreadable request body")
		return
	}

	payload, err := c.verifiedPayload(r, claims.ClientKey, body)
	if err != nil {
		logger.Warnf("rejected callback payload: %v", err)
		unauthorized(w)
		return
	}

	result, err := c.deps.Processor.Handle(ctx, payload, callback.Target{
		ClientKey:    claims.ClientKey,
		UserID:       claims.UserID,
		PageID:       claims.PageID,
		AttachmentID: claims.AttachmentID,
	})
	if err != nil {
		logger.Errorw("callback processing failed",
			"client_key", claims.ClientKey,
			"attachment_id", claims.AttachmentID,
			"status", payload.Status,
			"error", err)
		writeCallbackError(w, "callback processing failed")
		return
	}

	if result.Saved {
		logger.Infow("callback saved document",
			"client_key", claims.ClientKey,
			"attachment_id", claims.AttachmentID)
	}
	writeCallbackOK(w)
}

// verifiedPayload authenticates the callback body. With JWT enabled the
// trusted payload is the token's claims, either the body's token field or
// the payload claim nested in the header JWT; the raw body is only
// trusted when the tenant runs without a Document Server secret.
func (c *callbackRoutes) verifiedPayload(r *http.Request, clientKey string, body []byte) (*callback.Payload, error) {
	ctx := r.Context()

	secret, err := c.deps.Resolver.SigningSecret(ctx, clientKey)
	if err != nil {
		return nil, err
	}

	var raw struct {
		callback.Payload
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	if secret == "" {
		return &raw.Payload, nil
	}

	if raw.Token != "" {
		claims, err := token.DecodeVerifiedMap(raw.Token, secret)
		if err != nil {
			return nil, err
		}
		return payloadFromClaims(claims)
	}

	header, err := c.deps.Resolver.AuthHeader(ctx, clientKey)
	if err != nil {
		return nil, err
	}
	headerToken := strings.TrimPrefix(r.Header.Get(header), "Bearer ")
	claims, err := token.DecodeVerifiedMap(headerToken, secret)
	if err != nil {
		return nil, err
	}

	// Header JWTs nest the callback body under a payload claim.
	nested, ok := claims["payload"]
	if ok {
		return payloadFromAny(nested)
	}
	return payloadFromAny(map[string]any(claims))
}

func payloadFromClaims(claims map[string]any) (*callback.Payload, error) {
	return payloadFromAny(claims)
}

func payloadFromAny(value any) (*callback.Payload, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var payload callback.Payload
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
