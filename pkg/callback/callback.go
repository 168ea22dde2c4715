// SPDX-FileCopyrightText: Copyright 2025 Ascensio System SIA
// SPDX-License-Identifier: Apache-2.0

// Package callback processes ONLYOFFICE Document Server callback
// notifications: the status reports the editor posts while a document is
// open and the save requests it posts when an editing session ends.
package callback

import (
	"context"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/errors"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/logger"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/networking"
)

// Document Server callback status codes.
const (
	// StatusEditing is posted while users have the document open.
	StatusEditing = 1

	// StatusMustSave is posted when the last user closes an edited document.
	StatusMustSave = 2

	// StatusCorrupted is posted when saving failed on the Document Server
	// side; the edited bytes are still retrievable and must be persisted.
	StatusCorrupted = 3

	// StatusClosed is posted when the document was closed with no changes.
	StatusClosed = 4

	// StatusForceSave and StatusCorruptedForceSave are posted for forced
	// saves, which this connector does not support.
	StatusForceSave          = 6
	StatusCorruptedForceSave = 7
)

// Action describes a user event inside the editing session.
type Action struct {
	Type   int    `json:"type"`
	UserID string `json:"userid"`
}

// Payload is the callback body posted by the Document Server. Only the
// fields the processor acts on are decoded.
type Payload struct {
	Key     string   `json:"key"`
	Status  int      `json:"status"`
	URL     string   `json:"url,omitempty"`
	Users   []string `json:"users,omitempty"`
	Actions []Action `json:"actions,omitempty"`
}

// Target identifies the attachment a callback was minted for. All fields
// come from the verified query token, never from the payload.
type Target struct {
	ClientKey    string
	UserID       string
	PageID       string
	AttachmentID string
}

// ContentStore is the subset of the content-store client the processor
// needs to persist an edited document.
//
//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=callback.go ContentStore
type ContentStore interface {
	// CheckUpdatePermission reports whether the user may update the
	// attachment right now.
	CheckUpdatePermission(ctx context.Context, clientKey, userID, attachmentID string) (bool, error)

	// UpdateAttachment writes data as a new version of the attachment.
	UpdateAttachment(ctx context.Context, clientKey, pageID, attachmentID string, data []byte) error
}

// Result is the outcome of a processed callback.
type Result struct {
	// Saved reports whether a content-store write happened.
	Saved bool
}

// Processor drives the callback state machine.
type Processor struct {
	store    ContentStore
	client   networking.HTTPClient
	maxFetch int64
}

// NewProcessor creates a Processor persisting through store and fetching
// edited documents with client.
func NewProcessor(store ContentStore, client networking.HTTPClient) *Processor {
	return &Processor{
		store:    store,
		client:   client,
		maxFetch: networking.DefaultMaxFetchSize,
	}
}

// Handle dispatches on the payload status. Statuses 2 and 3 fetch the
// edited document and write it back as a new attachment version; 1 and 4
// acknowledge without side effects; force-save statuses are rejected
// rather than silently acknowledged so the Document Server surfaces the
// failure to the user.
func (p *Processor) Handle(ctx context.Context, payload *Payload, target Target) (Result, error) {
	switch payload.Status {
	case StatusEditing, StatusClosed:
		return Result{}, nil

	case StatusMustSave, StatusCorrupted:
		return p.save(ctx, payload, target)

	case StatusForceSave, StatusCorruptedForceSave:
		return Result{}, errors.NewForceSaveUnsupportedError("force save is not supported", nil)

	default:
		return Result{}, errors.NewUnknownCallbackStatusError(
			"unexpected callback status", nil)
	}
}

func (p *Processor) save(ctx context.Context, payload *Payload, target Target) (Result, error) {
	if payload.URL == "" {
		return Result{}, errors.NewInternalError("save callback carries no document url", nil)
	}

	// The Document Server dropped its connection by the time a MustSave
	// arrives; the browser may be gone too. Detach from the request
	// context so a client disconnect cannot abandon a half-finished save.
	ctx = context.WithoutCancel(ctx)

	// The callback token can outlive a permission revocation, so the edit
	// permission is re-checked at save time rather than trusted from mint
	// time.
	allowed, err := p.store.CheckUpdatePermission(ctx, target.ClientKey, target.UserID, target.AttachmentID)
	if err != nil {
		return Result{}, err
	}
	if !allowed {
		return Result{}, errors.NewPermissionDeniedError(
			"user may no longer update the attachment", nil)
	}

	data, err := networking.FetchBytes(ctx, p.client, payload.URL, p.maxFetch)
	if err != nil {
		return Result{}, errors.NewInternalError("fetching edited document", err)
	}

	if err := p.store.UpdateAttachment(ctx, target.ClientKey, target.PageID, target.AttachmentID, data); err != nil {
		return Result{}, err
	}

	logger.Infow("saved edited document",
		"client_key", target.ClientKey,
		"attachment_id", target.AttachmentID,
		"status", payload.Status,
		"size", len(data))
	return Result{Saved: true}, nil
}
