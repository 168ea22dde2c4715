// SPDX-FileCopyrightText: Copyright 2025 Ascensio System SIA
// SPDX-License-Identifier: Apache-2.0

// Package settings provides the tenant settings store for the connector.
//
// Confluence never sees this store; it holds the per-tenant installation
// record and the admin-configured Document Server properties, keyed by
// (namespace, key) where key is usually the tenant clientKey.
package settings

import (
	"context"
	"errors"
)

// Namespaces used by the connector.
const (
	// NamespaceClientInfo holds the installation record for a tenant,
	// including the Connect shared secret. Server-side only.
	NamespaceClientInfo = "clientInfo"

	// NamespaceClientProperties holds the admin-configured Document Server
	// overrides for a tenant.
	NamespaceClientProperties = "clientProperties"
)

// ErrNotFound is returned when a requested setting does not exist.
var ErrNotFound = errors.New("setting not found")

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store

// Store defines the interface for settings persistence.
type Store interface {
	// Get retrieves the value stored under (namespace, key).
	// Returns ErrNotFound if no value exists.
	Get(ctx context.Context, namespace, key string) ([]byte, error)

	// Set stores value under (namespace, key), replacing any previous value.
	Set(ctx context.Context, namespace, key string, value []byte) error

	// Delete removes the value stored under (namespace, key).
	// Deleting a missing value is not an error.
	Delete(ctx context.Context, namespace, key string) error

	// Close releases any resources held by the store.
	Close() error
}

// NamespaceSystem holds deployment-wide settings such as the remote
// format registry table.
const NamespaceSystem = "system"
