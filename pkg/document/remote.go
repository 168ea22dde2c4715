package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/settings"
)

// FormatsSettingKey is the settings-store key under NamespaceSystem that
// holds the deployment's format table as JSON.
const FormatsSettingKey = "supportedFormats"

// SettingsRegistry is a Registry whose table is loaded from the settings
// store, falling back to a static table when no setting exists. It lets an
// operator enable or restrict formats without a redeploy.
type SettingsRegistry struct {
	store    settings.Store
	fallback Registry

	mu     sync.RWMutex
	loaded Registry
}

var _ Registry = (*SettingsRegistry)(nil)

// NewSettingsRegistry creates a registry reading its table from store,
// using fallback when the setting is absent or unreadable.
func NewSettingsRegistry(ctx context.Context, store settings.Store, fallback Registry) *SettingsRegistry {
	r := &SettingsRegistry{store: store, fallback: fallback}
	// A load failure at construction is not fatal; the fallback serves
	// until an explicit Reload succeeds.
	_ = r.Reload(ctx)
	return r
}

// Reload re-reads the format table from the settings store.
func (r *SettingsRegistry) Reload(ctx context.Context) error {
	raw, err := r.store.Get(ctx, settings.NamespaceSystem, FormatsSettingKey)
	if errors.Is(err, settings.ErrNotFound) {
		r.mu.Lock()
		r.loaded = nil
		r.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading format table: %w", err)
	}

	var table map[string]Format
	if err := json.Unmarshal(raw, &table); err != nil {
		return fmt.Errorf("decoding format table: %w", err)
	}

	r.mu.Lock()
	r.loaded = NewStaticRegistry(table)
	r.mu.Unlock()
	return nil
}

func (r *SettingsRegistry) current() Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.loaded != nil {
		return r.loaded
	}
	return r.fallback
}

// DocumentType returns the editor family for ext, or "".
func (r *SettingsRegistry) DocumentType(ext string) string {
	return r.current().DocumentType(ext)
}

// SupportsEdit reports whether ext supports full editing.
func (r *SettingsRegistry) SupportsEdit(ext string) bool {
	return r.current().SupportsEdit(ext)
}

// SupportsFill reports whether ext supports form filling.
func (r *SettingsRegistry) SupportsFill(ext string) bool {
	return r.current().SupportsFill(ext)
}
