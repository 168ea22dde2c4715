package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/errors"
)

// Attachment is the subset of Confluence attachment metadata the
// connector uses.
type Attachment struct {
	ID       string
	Title    string
	PageID   string
	Modified time.Time

	// DownloadPath is the site-relative download link.
	DownloadPath string
}

// User identifies a Confluence account.
type User struct {
	AccountID   string
	DisplayName string
}

type contentResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Container struct {
		ID string `json:"id"`
	} `json:"container"`
	Version struct {
		When string `json:"when"`
	} `json:"version"`
	Links struct {
		Download string `json:"download"`
	} `json:"_links"`
}

// GetAttachment fetches attachment metadata by content id.
func (c *Client) GetAttachment(ctx context.Context, clientKey, attachmentID string) (*Attachment, error) {
	var body contentResponse
	query := url.Values{"expand": {"container,version"}}
	if err := c.request(ctx, clientKey, http.MethodGet,
		"/rest/api/content/"+attachmentID, query, "", nil, &body); err != nil {
		return nil, err
	}

	modified, err := time.Parse(time.RFC3339, body.Version.When)
	if err != nil {
		return nil, errors.NewContentStoreError("attachment carries unparsable version timestamp", 0, err)
	}

	return &Attachment{
		ID:           body.ID,
		Title:        body.Title,
		PageID:       body.Container.ID,
		Modified:     modified,
		DownloadPath: body.Links.Download,
	}, nil
}

// DownloadURL resolves the absolute download link for an attachment.
func (c *Client) DownloadURL(ctx context.Context, clientKey, attachmentID string) (string, error) {
	attachment, err := c.GetAttachment(ctx, clientKey, attachmentID)
	if err != nil {
		return "", err
	}
	if attachment.DownloadPath == "" {
		return "", errors.NewContentStoreError("attachment has no download link", 0, nil)
	}

	profile, err := c.tenants.Get(ctx, clientKey)
	if err != nil {
		return "", err
	}
	u, err := buildURL(profile.BaseURL, attachment.DownloadPath, nil)
	if err != nil {
		return "", errors.NewInternalError("building download url", err)
	}
	return u.String(), nil
}

// GetUser fetches a user by Atlassian account id.
func (c *Client) GetUser(ctx context.Context, clientKey, accountID string) (*User, error) {
	var body struct {
		AccountID   string `json:"accountId"`
		DisplayName string `json:"displayName"`
	}
	query := url.Values{"accountId": {accountID}}
	if err := c.request(ctx, clientKey, http.MethodGet,
		"/rest/api/user", query, "", nil, &body); err != nil {
		return nil, err
	}
	return &User{AccountID: body.AccountID, DisplayName: body.DisplayName}, nil
}

// CheckContentPermission asks Confluence whether the user may perform the
// operation ("read" or "update") on the content.
func (c *Client) CheckContentPermission(ctx context.Context, clientKey, accountID, contentID, operation string) (bool, error) {
	payload, err := json.Marshal(map[string]any{
		"subject": map[string]string{
			"type":       "user",
			"identifier": accountID,
		},
		"operation": operation,
	})
	if err != nil {
		return false, errors.NewInternalError("encoding permission check", err)
	}

	var body struct {
		HasPermission bool `json:"hasPermission"`
	}
	if err := c.request(ctx, clientKey, http.MethodPost,
		"/rest/api/content/"+contentID+"/permission/check", nil,
		"application/json", payload, &body); err != nil {
		return false, err
	}
	return body.HasPermission, nil
}

// CheckUpdatePermission reports whether the user may update the
// attachment.
func (c *Client) CheckUpdatePermission(ctx context.Context, clientKey, accountID, attachmentID string) (bool, error) {
	return c.CheckContentPermission(ctx, clientKey, accountID, attachmentID, "update")
}

// UpdateAttachment uploads data as a new version of an existing
// attachment on the page.
func (c *Client) UpdateAttachment(ctx context.Context, clientKey, pageID, attachmentID string, data []byte) error {
	attachment, err := c.GetAttachment(ctx, clientKey, attachmentID)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", attachment.Title)
	if err != nil {
		return errors.NewInternalError("building upload body", err)
	}
	if _, err := part.Write(data); err != nil {
		return errors.NewInternalError("building upload body", err)
	}
	if err := writer.WriteField("minorEdit", "true"); err != nil {
		return errors.NewInternalError("building upload body", err)
	}
	if err := writer.Close(); err != nil {
		return errors.NewInternalError("building upload body", err)
	}

	return c.request(ctx, clientKey, http.MethodPost,
		"/rest/api/content/"+pageID+"/child/attachment/"+attachmentID+"/data",
		nil, writer.FormDataContentType(), buf.Bytes(), nil)
}
