package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/api"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/callback"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/confluence"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/document"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/logger"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/networking"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/settings"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/settings/sqlite"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/tenant"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/token"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the connector server",
	Long: `Start the connector HTTP server: the Connect descriptor and lifecycle
webhooks, the editor bootstrap page, and the Document Server download and
callback endpoints.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("address", ":8080", "Address to listen on")
	serveCmd.Flags().String("base-url", "", "Public base URL of this connector (required)")
	serveCmd.Flags().String("addon-key", "onlyoffice-confluence-cloud", "Atlassian Connect add-on key")
	serveCmd.Flags().String("docserver-url", "", "Default ONLYOFFICE Document Server address")
	serveCmd.Flags().String("docserver-jwt-secret", "", "Default Document Server JWT secret")
	serveCmd.Flags().String("docserver-jwt-header", "Authorization", "Default Document Server JWT header")
	serveCmd.Flags().String("settings-backend", "memory", "Settings store backend (memory or sqlite)")
	serveCmd.Flags().String("settings-db", "connector.db", "SQLite database path for the sqlite backend")
	serveCmd.Flags().Duration("token-ttl", token.DefaultQueryTokenTTL, "Lifetime of minted download and callback tokens")

	for _, flag := range []string{
		"address",
		"base-url",
		"addon-key",
		"docserver-url",
		"docserver-jwt-secret",
		"docserver-jwt-header",
		"settings-backend",
		"settings-db",
		"token-ttl",
	} {
		if err := viper.BindPFlag(flag, serveCmd.Flags().Lookup(flag)); err != nil {
			logger.Fatalf("Failed to bind %s flag: %v", flag, err)
		}
	}
	viper.SetEnvPrefix("ONLYOFFICE")
	viper.AutomaticEnv()
}

func newSettingsStore(ctx context.Context) (settings.Store, error) {
	switch backend := viper.GetString("settings-backend"); backend {
	case "memory":
		return settings.NewMemoryStore(), nil
	case "sqlite":
		return sqlite.NewStore(ctx, viper.GetString("settings-db"))
	default:
		return nil, fmt.Errorf("unknown settings backend %q", backend)
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	baseURL := viper.GetString("base-url")
	if baseURL == "" {
		return fmt.Errorf("base-url flag is required")
	}

	store, err := newSettingsStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to create settings store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Errorf("Failed to close settings store: %v", err)
		}
	}()

	tenants := tenant.NewRegistry(store)
	resolver := tenant.NewResolver(tenants, tenant.Defaults{
		DocServerURL: viper.GetString("docserver-url"),
		JWTSecret:    viper.GetString("docserver-jwt-secret"),
		JWTHeader:    viper.GetString("docserver-jwt-header"),
	})
	authority := token.NewAuthority(tenants, viper.GetDuration("token-ttl"))
	registry := document.NewSettingsRegistry(ctx, store, document.DefaultRegistry())

	httpClient := networking.NewClient(networking.DefaultTimeout)
	client := confluence.NewClient(httpClient, tenants, viper.GetString("addon-key"))

	deps := api.Deps{
		Store:      store,
		Tenants:    tenants,
		Resolver:   resolver,
		Authority:  authority,
		Builder:    document.NewBuilder(registry, authority),
		Processor:  callback.NewProcessor(client, httpClient),
		Confluence: client,
		BaseURL:    baseURL,
		AddonKey:   viper.GetString("addon-key"),
	}

	logger.Infof("Starting connector server on %s", viper.GetString("address"))
	return api.Serve(ctx, viper.GetString("address"), deps)
}
