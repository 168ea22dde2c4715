// Package main is the entry point for the ONLYOFFICE Confluence Cloud
// connector.
package main

import (
	"os"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/cmd/onlyoffice-confluence/app"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/logger"
)

func main() {
	// Initialize the logger
	logger.Initialize()

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
