package document

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/errors"
	"github.com/onlyoffice/onlyoffice-confluence-cloud/pkg/token"
)

type staticSecrets map[string]string

func (s staticSecrets) SharedSecret(_ context.Context, clientKey string) (string, error) {
	secret, ok := s[clientKey]
	if !ok {
		return "", errors.NewTokenRejectedError("unknown tenant", nil)
	}
	return secret, nil
}

func testBuilder(t *testing.T) (*Builder, *token.Authority) {
	t.Helper()
	authority := token.NewAuthority(
		staticSecrets{"client-1": "shared-secret"},
		token.DefaultQueryTokenTTL,
	)
	return NewBuilder(DefaultRegistry(), authority), authority
}

func testFile() FileInfo {
	return FileInfo{
		ID:       "20002",
		Title:    "report.docx",
		PageID:   "10001",
		Modified: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testURLs() URLs {
	return URLs{
		LocalBase: "https://connector.example.com",
		HostBase:  "https://tenant.atlassian.net/wiki",
	}
}

func queryToken(t *testing.T, rawURL string) string {
	t.Helper()
	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	tok := parsed.Query().Get("token")
	require.NotEmpty(t, tok)
	return tok
}

func TestBuilder_Build_Editable(t *testing.T) {
	t.Parallel()
	builder, authority := testBuilder(t)

	cfg, err := builder.Build(context.Background(), "client-1", testFile(),
		UserInfo{ID: "acc-1", Name: "Jamie"},
		PermissionSet{Read: true, Update: true},
		testURLs())
	require.NoError(t, err)

	assert.Equal(t, "word", cfg.DocumentType)
	assert.Equal(t, "desktop", cfg.Type)
	assert.Equal(t, "report.docx", cfg.Document.Title)
	assert.Equal(t, "docx", cfg.Document.FileType)
	assert.True(t, cfg.Document.Permissions.Edit)
	assert.False(t, cfg.Document.Permissions.FillForms)
	assert.Equal(t, "edit", cfg.EditorConfig.Mode)
	assert.Equal(t, "acc-1", cfg.EditorConfig.User.ID)
	assert.Equal(t, "Jamie", cfg.EditorConfig.User.Name)

	assert.True(t, strings.HasPrefix(cfg.Document.URL,
		"https://connector.example.com/onlyoffice-download?token="))
	assert.True(t, strings.HasPrefix(cfg.EditorConfig.CallbackURL,
		"https://connector.example.com/onlyoffice-callback?token="))
	assert.Equal(t,
		"https://tenant.atlassian.net/wiki/pages/viewpageattachments.action?pageId=10001",
		cfg.EditorConfig.Customization.GoBack.URL)

	// The minted tokens are operation scoped. The callback token carries
	// the attachment it was minted for and verifies only as a callback.
	claims, err := authority.Verify(context.Background(),
		queryToken(t, cfg.EditorConfig.CallbackURL), token.OperationCallback)
	require.NoError(t, err)
	assert.Equal(t, "client-1", claims.ClientKey)
	assert.Equal(t, "20002", claims.AttachmentID)
	assert.Equal(t, "10001", claims.PageID)
	assert.Equal(t, "acc-1", claims.UserID)

	_, err = authority.Verify(context.Background(),
		queryToken(t, cfg.Document.URL), token.OperationCallback)
	require.Error(t, err)

	_, err = authority.Verify(context.Background(),
		queryToken(t, cfg.Document.URL), token.OperationDownload)
	require.NoError(t, err)
}

func TestBuilder_Build_ViewOnly(t *testing.T) {
	t.Parallel()
	builder, authority := testBuilder(t)

	cfg, err := builder.Build(context.Background(), "client-1", testFile(),
		UserInfo{ID: "acc-1", Name: "Jamie"},
		PermissionSet{Read: true, Update: false},
		testURLs())
	require.NoError(t, err)

	assert.Equal(t, "view", cfg.EditorConfig.Mode)
	assert.Empty(t, cfg.EditorConfig.CallbackURL)
	assert.False(t, cfg.Document.Permissions.Edit)
	assert.False(t, cfg.Document.Permissions.FillForms)

	// A viewer still gets a working download token.
	_, err = authority.Verify(context.Background(),
		queryToken(t, cfg.Document.URL), token.OperationDownload)
	require.NoError(t, err)
}

func TestBuilder_Build_ViewableOnlyFormat(t *testing.T) {
	t.Parallel()
	builder, _ := testBuilder(t)

	file := testFile()
	file.Title = "legacy.doc"

	// Update permission does not grant edit on a format the editor
	// cannot write back.
	cfg, err := builder.Build(context.Background(), "client-1", file,
		UserInfo{ID: "acc-1", Name: "Jamie"},
		PermissionSet{Read: true, Update: true},
		testURLs())
	require.NoError(t, err)

	assert.Equal(t, "word", cfg.DocumentType)
	assert.Equal(t, "view", cfg.EditorConfig.Mode)
	assert.Empty(t, cfg.EditorConfig.CallbackURL)
	assert.False(t, cfg.Document.Permissions.Edit)
}

func TestBuilder_Build_FillableForm(t *testing.T) {
	t.Parallel()
	builder, _ := testBuilder(t)

	file := testFile()
	file.Title = "form.pdf"

	cfg, err := builder.Build(context.Background(), "client-1", file,
		UserInfo{ID: "acc-1", Name: "Jamie"},
		PermissionSet{Read: true, Update: true},
		testURLs())
	require.NoError(t, err)

	assert.Equal(t, "edit", cfg.EditorConfig.Mode)
	assert.False(t, cfg.Document.Permissions.Edit)
	assert.True(t, cfg.Document.Permissions.FillForms)
	assert.NotEmpty(t, cfg.EditorConfig.CallbackURL)
}

func TestBuilder_Build_UnsupportedFormat(t *testing.T) {
	t.Parallel()
	builder, _ := testBuilder(t)

	file := testFile()
	file.Title = "image.png"

	cfg, err := builder.Build(context.Background(), "client-1", file,
		UserInfo{ID: "acc-1", Name: "Jamie"},
		PermissionSet{Read: true, Update: true},
		testURLs())
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.True(t, errors.IsUnsupportedFormat(err))
}

func TestBuilder_Build_KeyTracksVersion(t *testing.T) {
	t.Parallel()
	builder, _ := testBuilder(t)

	first, err := builder.Build(context.Background(), "client-1", testFile(),
		UserInfo{ID: "acc-1", Name: "Jamie"}, PermissionSet{Read: true}, testURLs())
	require.NoError(t, err)

	updated := testFile()
	updated.Modified = updated.Modified.Add(time.Minute)
	second, err := builder.Build(context.Background(), "client-1", updated,
		UserInfo{ID: "acc-1", Name: "Jamie"}, PermissionSet{Read: true}, testURLs())
	require.NoError(t, err)

	assert.NotEqual(t, first.Document.Key, second.Document.Key)
}
