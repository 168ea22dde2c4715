// Package app provides the commands for the connector binary.
package app

import (
	"github.com/spf13/cobra"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:               "onlyoffice-confluence",
	DisableAutoGenTag: true,
	Short:             "ONLYOFFICE connector for Confluence Cloud",
	Long: `The ONLYOFFICE connector embeds the ONLYOFFICE Document Server editors
into Confluence Cloud as an Atlassian Connect app: it serves the editor
bootstrap page, brokers document downloads and save callbacks between the
Document Server and the Confluence content store, and manages per-tenant
installation secrets.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		if err := cmd.Help(); err != nil {
			logger.Errorf("Error displaying help: %v", err)
		}
	},
}

// NewRootCmd creates the root command for the connector.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
