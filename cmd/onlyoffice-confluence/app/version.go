package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/logger"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/versions"
)

// newVersionCmd creates a new version command
func newVersionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the version of the connector",
		Long:  `Display detailed version information, including version number, git commit, build date, and Go version.`,
		Run: func(_ *cobra.Command, _ []string) {
			info := versions.GetVersionInfo()

			if jsonOutput {
				encoded, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					logger.Errorf("Failed to encode version information: %v", err)
					return
				}
				fmt.Println(string(encoded))
				return
			}

			fmt.Printf("ONLYOFFICE Confluence Cloud connector %s\n", info.Version)
			fmt.Printf("Commit: %s\n", info.Commit)
			fmt.Printf("Built: %s\n", info.BuildDate)
			fmt.Printf("Go version: %s\n", info.GoVersion)
			fmt.Printf("Platform: %s\n", info.Platform)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version information as JSON")

	return cmd
}
