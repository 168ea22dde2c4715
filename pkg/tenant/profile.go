// SPDX-FileCopyrightText: Copyright 2025 Ascensio System SIA
// SPDX-License-Identifier: Apache-2.0

// Package tenant manages per-installation state for the connector.
//
// A tenant is one installation of the add-on into a single Confluence site,
// identified by its clientKey. The install webhook creates a Profile, the
// admin configuration screen layers Properties on top, and the uninstall
// webhook tombstones the Profile.
package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/settings"
)

// ErrUnknownTenant is returned when no active installation exists for a
// clientKey.
var ErrUnknownTenant = errors.New("unknown tenant")

// Profile is the installation record for a tenant. SharedSecret is the
// Connect shared secret issued by Confluence at install time; it signs and
// verifies query tokens and inbound Connect JWTs and must never be exposed
// to the browser or embedded in any token payload.
type Profile struct {
	ClientKey      string     `json:"clientKey"`
	SharedSecret   string     `json:"sharedSecret"`
	BaseURL        string     `json:"baseUrl"`
	ProductType    string     `json:"productType,omitempty"`
	Description    string     `json:"description,omitempty"`
	InstalledAt    time.Time  `json:"dateInstallation"`
	UninstalledAt  *time.Time `json:"dateUninstallation,omitempty"`
}

// Installed reports whether the profile describes an active installation.
func (p *Profile) Installed() bool {
	return p.UninstalledAt == nil
}

// Properties are the admin-configured Document Server overrides for a
// tenant. Empty fields fall back to the deployment defaults.
type Properties struct {
	DocAPIURL string `json:"docApiUrl,omitempty"`
	JWTSecret string `json:"jwtSecret,omitempty"`
	JWTHeader string `json:"jwtHeader,omitempty"`
}

// Registry persists tenant profiles and properties in the settings store.
type Registry struct {
	store settings.Store
}

// NewRegistry creates a Registry backed by store.
func NewRegistry(store settings.Store) *Registry {
	return &Registry{store: store}
}

// Install records a new installation (or re-installation) of the add-on.
// The caller is responsible for having authenticated the install webhook.
func (r *Registry) Install(ctx context.Context, profile Profile) error {
	if profile.ClientKey == "" {
		return fmt.Errorf("install: missing clientKey")
	}
	if profile.SharedSecret == "" {
		return fmt.Errorf("install: missing sharedSecret")
	}
	if profile.InstalledAt.IsZero() {
		profile.InstalledAt = time.Now().UTC()
	}
	profile.UninstalledAt = nil

	return r.save(ctx, profile)
}

// Uninstall tombstones the installation for clientKey. The record is kept
// so a later re-install can be authenticated against the old shared secret.
func (r *Registry) Uninstall(ctx context.Context, clientKey string) error {
	profile, err := r.load(ctx, clientKey)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	profile.UninstalledAt = &now
	return r.save(ctx, *profile)
}

// Get returns the profile for an active installation.
func (r *Registry) Get(ctx context.Context, clientKey string) (*Profile, error) {
	profile, err := r.load(ctx, clientKey)
	if err != nil {
		return nil, err
	}
	if !profile.Installed() {
		return nil, ErrUnknownTenant
	}
	return profile, nil
}

// Lookup returns the profile for clientKey regardless of installation
// state. Used by lifecycle handling, which must see tombstoned records.
func (r *Registry) Lookup(ctx context.Context, clientKey string) (*Profile, error) {
	return r.load(ctx, clientKey)
}

// SharedSecret returns the Connect shared secret for an active tenant.
func (r *Registry) SharedSecret(ctx context.Context, clientKey string) (string, error) {
	profile, err := r.Get(ctx, clientKey)
	if err != nil {
		return "", err
	}
	return profile.SharedSecret, nil
}

// GetProperties returns the admin-configured properties for a tenant.
// A tenant with no stored properties yields the zero value; absence is a
// normal state, not an error.
func (r *Registry) GetProperties(ctx context.Context, clientKey string) (Properties, error) {
	raw, err := r.store.Get(ctx, settings.NamespaceClientProperties, clientKey)
	if errors.Is(err, settings.ErrNotFound) {
		return Properties{}, nil
	}
	if err != nil {
		return Properties{}, fmt.Errorf("loading properties for %s: %w", clientKey, err)
	}

	var props Properties
	if err := json.Unmarshal(raw, &props); err != nil {
		return Properties{}, fmt.Errorf("decoding properties for %s: %w", clientKey, err)
	}
	return props, nil
}

// SetProperties stores the admin-configured properties for a tenant.
func (r *Registry) SetProperties(ctx context.Context, clientKey string, props Properties) error {
	raw, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("encoding properties for %s: %w", clientKey, err)
	}
	return r.store.Set(ctx, settings.NamespaceClientProperties, clientKey, raw)
}

func (r *Registry) save(ctx context.Context, profile Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encoding profile for %s: %w", profile.ClientKey, err)
	}
	return r.store.Set(ctx, settings.NamespaceClientInfo, profile.ClientKey, raw)
}

func (r *Registry) load(ctx context.Context, clientKey string) (*Profile, error) {
	raw, err := r.store.Get(ctx, settings.NamespaceClientInfo, clientKey)
	if errors.Is(err, settings.ErrNotFound) {
		return nil, ErrUnknownTenant
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile for %s: %w", clientKey, err)
	}

	var profile Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decoding profile for %s: %w", clientKey, err)
	}
	return &profile, nil
}
