package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// DescriptorRouter serves the Atlassian Connect app descriptor.
func DescriptorRouter(baseURL, addonKey string) http.Handler {
	routes := &descriptorRoutes{baseURL: strings.TrimSuffix(baseURL, "/"), addonKey: addonKey}
	r := chi.NewRouter()
	r.Get("/", routes.getDescriptor)
	return r
}

type descriptorRoutes struct {
	baseURL  string
	addonKey string
}

func (d *descriptorRoutes) getDescriptor(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"key":     d.addonKey,
		"name":    "ONLYOFFICE Connector for Confluence Cloud",
		"baseUrl": d.baseURL,
		"vendor": map[string]string{
			"name": "Ascensio System SIA",
			"url":  "https://www.onlyoffice.com",
		},
		"authentication": map[string]string{
			"type": "jwt",
		},
		"lifecycle": map[string]string{
			"installed":   "/installed",
			"uninstalled": "/uninstalled",
		},
		"scopes": []string{"READ", "WRITE"},
		"apiMigrations": map[string]bool{
			"signed-install": false,
		},
		"modules": map[string]any{
			"generalPages": []map[string]any{
				{
					"key": "onlyoffice-editor",
					"url": "/editor?pageId={content.id}&attachmentId={attachment.id}",
					"name": map[string]string{
						"value": "Edit in ONLYOFFICE",
					},
					"location": "none",
				},
			},
			"configurePage": map[string]any{
				"key": "onlyoffice-configure",
				"url": "/configure",
				"name": map[string]string{
					"value": "ONLYOFFICE Configuration",
				},
			},
			"webItems": []map[string]any{
				{
					"key": "onlyoffice-open",
					"url": "/editor?pageId={content.id}&attachmentId={attachment.id}&attachmentName={attachment.name}",
					"name": map[string]string{
						"value": "Edit in ONLYOFFICE",
					},
					"location": "system.attachment",
					"context":  "addon",
					"target": map[string]string{
						"type": "page",
					},
				},
			},
		},
	})
}
