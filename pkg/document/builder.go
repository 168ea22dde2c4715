package document

import (
	"context"
	"time"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/errors"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/token"
)

// FileInfo is the attachment metadata the builder needs.
type FileInfo struct {
	ID       string
	Title    string
	PageID   string
	Modified time.Time
}

// UserInfo identifies the user opening the document.
type UserInfo struct {
	ID   string
	Name string
}

// PermissionSet is the caller's resolved content permission.
type PermissionSet struct {
	Read   bool
	Update bool
}

// URLs are the base addresses configuration URLs are built against:
// LocalBase is this connector's public address, HostBase the Confluence
// site's.
type URLs struct {
	LocalBase string
	HostBase  string
}

// Builder assembles editor configurations.
type Builder struct {
	registry  Registry
	authority *token.Authority
}

// NewBuilder creates a Builder over the given format registry and query
// token authority.
func NewBuilder(registry Registry, authority *token.Authority) *Builder {
	return &Builder{registry: registry, authority: authority}
}

// Build assembles the editor configuration for an attachment.
//
// The download URL is always minted: anyone who reached this point passed
// the route's read authorization. The callback URL is minted only when the
// user can actually modify the attachment in a format the editor can
// write; its absence is what keeps read-only viewers from ever triggering
// a save. The caller signs the returned config before handing it to the
// browser.
func (b *Builder) Build(
	ctx context.Context,
	clientKey string,
	file FileInfo,
	user UserInfo,
	perms PermissionSet,
	urls URLs,
) (*Config, error) {
	fileType := FileExtension(file.Title)

	documentType := b.registry.DocumentType(fileType)
	if documentType == "" {
		return nil, errors.NewUnsupportedFormatError("file format is not supported: "+fileType, nil)
	}

	target := token.Target{PageID: file.PageID, AttachmentID: file.ID}

	downloadToken, err := b.authority.Issue(ctx, clientKey, user.ID, target, token.OperationDownload)
	if err != nil {
		return nil, err
	}

	canEdit := perms.Update && b.registry.SupportsEdit(fileType)
	canFill := perms.Update && b.registry.SupportsFill(fileType)

	mode := "view"
	callbackURL := ""
	if canEdit || canFill {
		mode = "edit"
		callbackToken, err := b.authority.Issue(ctx, clientKey, user.ID, target, token.OperationCallback)
		if err != nil {
			return nil, err
		}
		callbackURL = appendSlash(urls.LocalBase) + "onlyoffice-callback?token=" + callbackToken
	}

	return &Config{
		Type:         "desktop",
		Width:        "100%",
		Height:       "100%",
		DocumentType: documentType,
		Document: Document{
			Title:    file.Title,
			URL:      appendSlash(urls.LocalBase) + "onlyoffice-download?token=" + downloadToken,
			FileType: fileType,
			Key:      Key(file.ID, file.Modified),
			Info: Info{
				Uploaded: file.Modified.UTC().Format(time.RFC3339),
			},
			Permissions: Permissions{
				Edit:      canEdit,
				FillForms: canFill,
			},
			ReferenceData: ReferenceData{
				FileKey:    file.ID,
				InstanceID: clientKey,
			},
		},
		EditorConfig: EditorConfig{
			CallbackURL: callbackURL,
			Mode:        mode,
			Lang:        "en",
			User: User{
				ID:   user.ID,
				Name: user.Name,
			},
			Customization: Customization{
				GoBack: GoBack{
					URL: GoBackURL(urls.HostBase, file.PageID),
				},
			},
		},
	}, nil
}

// GoBackURL points the editor's back button at the page's attachment list.
func GoBackURL(hostBase, pageID string) string {
	return appendSlash(hostBase) + "pages/viewpageattachments.action?pageId=" + pageID
}

func appendSlash(url string) string {
	if url == "" || url[len(url)-1] == '/' {
		return url
	}
	return url + "/"
}
