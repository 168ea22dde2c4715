package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/connect"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/document"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/logger"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/token"
)

// ReferenceDataRouter resolves cross-document references: a spreadsheet
// formula pointing at another attachment asks here for a fresh download
// link and document key.
func ReferenceDataRouter(deps Deps) http.Handler {
	routes := &referenceRoutes{deps: deps}
	r := chi.NewRouter()
	r.Post("/", routes.postReferenceData)
	return r
}

// UsersInfoRouter resolves account ids to display names for the editor's
// collaboration UI.
func UsersInfoRouter(deps Deps) http.Handler {
	routes := &referenceRoutes{deps: deps}
	r := chi.NewRouter()
	r.Post("/", routes.postUsersInfo)
	return r
}

type referenceRoutes struct {
	deps Deps
}

type referenceDataRequest struct {
	ReferenceData document.ReferenceData `json:"referenceData"`
}

type referenceDataResponse struct {
	FileType      string                 `json:"fileType"`
	Key           string                 `json:"key"`
	URL           string                 `json:"url"`
	ReferenceData document.ReferenceData `json:"referenceData"`
}

func (rr *referenceRoutes) postReferenceData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tc, ok := connect.TenantFromContext(ctx)
	if !ok || tc.AccountID == "" {
		unauthorized(w)
		return
	}

	var body referenceDataRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// References never cross tenant installations.
	if body.ReferenceData.InstanceID != tc.ClientKey || body.ReferenceData.FileKey == "" {
		http.Error(w, "Unknown reference", http.StatusNotFound)
		return
	}
	attachmentID := body.ReferenceData.FileKey

	canRead, err := rr.deps.Confluence.CheckContentPermission(ctx, tc.ClientKey, tc.AccountID, attachmentID, "read")
	if err != nil {
		logger.Errorf("Failed to check read permission for reference: %v", err)
		writeContentStoreError(w, err)
		return
	}
	if !canRead {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	attachment, err := rr.deps.Confluence.GetAttachment(ctx, tc.ClientKey, attachmentID)
	if err != nil {
		logger.Errorf("Failed to fetch referenced attachment %s: %v", attachmentID, err)
		writeContentStoreError(w, err)
		return
	}

	downloadToken, err := rr.deps.Authority.Issue(ctx, tc.ClientKey, tc.AccountID,
		token.Target{PageID: attachment.PageID, AttachmentID: attachment.ID},
		token.OperationDownload)
	if err != nil {
		logger.Errorf("Failed to mint reference download token: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, referenceDataResponse{
		FileType: document.FileExtension(attachment.Title),
		Key:      document.Key(attachment.ID, attachment.Modified),
		URL:      strings.TrimSuffix(rr.deps.BaseURL, "/") + "/onlyoffice-download?token=" + downloadToken,
		ReferenceData: document.ReferenceData{
			FileKey:    attachment.ID,
			InstanceID: tc.ClientKey,
		},
	})
}

type usersInfoRequest struct {
	IDs []string `json:"ids"`
}

type usersInfoResponse struct {
	Users []document.User `json:"users"`
}

func (rr *referenceRoutes) postUsersInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tc, ok := connect.TenantFromContext(ctx)
	if !ok || tc.AccountID == "" {
		unauthorized(w)
		return
	}

	var body usersInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	users := make([]document.User, 0, len(body.IDs))
	for _, accountID := range body.IDs {
		user, err := rr.deps.Confluence.GetUser(ctx, tc.ClientKey, accountID)
		if err != nil {
			// A deleted account must not break the whole lookup.
			logger.Warnf("Failed to look up user %s: %v", accountID, err)
			continue
		}
		users = append(users, document.User{ID: user.AccountID, Name: user.DisplayName})
	}

	writeJSON(w, http.StatusOK, usersInfoResponse{Users: users})
}
