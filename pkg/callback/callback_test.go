// SPDX-FileCopyrightText: Copyright 2025 Ascensio System SIA
// SPDX-License-Identifier: Apache-2.0

package callback

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/errors"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/networking"
)

type updateCall struct {
	clientKey    string
	pageID       string
	attachmentID string
	data         []byte
}

type fakeStore struct {
	allowed   bool
	permErr   error
	updateErr error
	updates   []updateCall
}

func (s *fakeStore) CheckUpdatePermission(_ context.Context, _, _, _ string) (bool, error) {
	if s.permErr != nil {
		return false, s.permErr
	}
	return s.allowed, nil
}

func (s *fakeStore) UpdateAttachment(_ context.Context, clientKey, pageID, attachmentID string, data []byte) error {
	s.updates = append(s.updates, updateCall{
		clientKey:    clientKey,
		pageID:       pageID,
		attachmentID: attachmentID,
		data:         data,
	})
	return s.updateErr
}

func testTarget() Target {
	return Target{
		ClientKey:    "client-1",
		UserID:       "acc-1",
		PageID:       "10001",
		AttachmentID: "42",
	}
}

func TestHandle_AckStatuses(t *testing.T) {
	t.Parallel()
	store := &fakeStore{allowed: true}
	processor := NewProcessor(store, networking.NewClient(time.Second))

	for _, status := range []int{StatusEditing, StatusClosed} {
		result, err := processor.Handle(context.Background(),
			&Payload{Status: status}, testTarget())
		require.NoError(t, err, "status %d", status)
		assert.False(t, result.Saved)
	}
	assert.Empty(t, store.updates)
}

func TestHandle_MustSave_WritesFetchedBytesOnce(t *testing.T) {
	t.Parallel()

	edited := []byte("edited document bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(edited)
	}))
	defer server.Close()

	store := &fakeStore{allowed: true}
	processor := NewProcessor(store, server.Client())

	result, err := processor.Handle(context.Background(), &Payload{
		Status:  StatusMustSave,
		URL:     server.URL + "/edited.docx",
		Actions: []Action{{UserID: "u1"}},
	}, testTarget())
	require.NoError(t, err)
	assert.True(t, result.Saved)

	require.Len(t, store.updates, 1)
	assert.Equal(t, "client-1", store.updates[0].clientKey)
	assert.Equal(t, "10001", store.updates[0].pageID)
	assert.Equal(t, "42", store.updates[0].attachmentID)
	assert.Equal(t, edited, store.updates[0].data)
}

func TestHandle_Corrupted_StillSaves(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("recovered bytes"))
	}))
	defer server.Close()

	store := &fakeStore{allowed: true}
	processor := NewProcessor(store, server.Client())

	result, err := processor.Handle(context.Background(),
		&Payload{Status: StatusCorrupted, URL: server.URL}, testTarget())
	require.NoError(t, err)
	assert.True(t, result.Saved)
	require.Len(t, store.updates, 1)
}

func TestHandle_SaveSurvivesCancelledRequestContext(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("bytes"))
	}))
	defer server.Close()

	store := &fakeStore{allowed: true}
	processor := NewProcessor(store, server.Client())

	// The browser disconnecting cancels the request context. The save must
	// complete regardless.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := processor.Handle(ctx,
		&Payload{Status: StatusMustSave, URL: server.URL}, testTarget())
	require.NoError(t, err)
	assert.True(t, result.Saved)
	require.Len(t, store.updates, 1)
}

func TestHandle_ForceSaveRejected(t *testing.T) {
	t.Parallel()
	store := &fakeStore{allowed: true}
	processor := NewProcessor(store, networking.NewClient(time.Second))

	for _, status := range []int{StatusForceSave, StatusCorruptedForceSave} {
		result, err := processor.Handle(context.Background(),
			&Payload{Status: status, URL: "http://ds/edited.docx"}, testTarget())
		require.Error(t, err, "status %d", status)
		assert.True(t, errors.IsForceSaveUnsupported(err))
		assert.False(t, result.Saved)
	}
	assert.Empty(t, store.updates)
}

func TestHandle_UnknownStatus(t *testing.T) {
	t.Parallel()
	store := &fakeStore{allowed: true}
	processor := NewProcessor(store, networking.NewClient(time.Second))

	for _, status := range []int{0, 5, 8, -1} {
		_, err := processor.Handle(context.Background(),
			&Payload{Status: status}, testTarget())
		require.Error(t, err, "status %d", status)
		assert.True(t, errors.IsUnknownCallbackStatus(err))
	}
	assert.Empty(t, store.updates)
}

func TestHandle_PermissionRevokedSinceMint(t *testing.T) {
	t.Parallel()
	store := &fakeStore{allowed: false}
	processor := NewProcessor(store, networking.NewClient(time.Second))

	_, err := processor.Handle(context.Background(),
		&Payload{Status: StatusMustSave, URL: "http://ds/edited.docx"}, testTarget())
	require.Error(t, err)
	assert.True(t, errors.IsPermissionDenied(err))
	assert.Empty(t, store.updates)
}

func TestHandle_MissingURL(t *testing.T) {
	t.Parallel()
	store := &fakeStore{allowed: true}
	processor := NewProcessor(store, networking.NewClient(time.Second))

	_, err := processor.Handle(context.Background(),
		&Payload{Status: StatusMustSave}, testTarget())
	require.Error(t, err)
	assert.Empty(t, store.updates)
}

func TestHandle_FetchFailurePropagates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	store := &fakeStore{allowed: true}
	processor := NewProcessor(store, server.Client())

	_, err := processor.Handle(context.Background(),
		&Payload{Status: StatusMustSave, URL: server.URL}, testTarget())
	require.Error(t, err)
	assert.True(t, errors.IsInternal(err))
	assert.Empty(t, store.updates)
}
