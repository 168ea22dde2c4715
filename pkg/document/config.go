package document

// Config is the editor configuration consumed by the Document Server
// front-end. It is transient and never persisted; the route layer signs
// the assembled value into Token before returning it to the browser.
type Config struct {
	Type         string       `json:"type"`
	Width        string       `json:"width"`
	Height       string       `json:"height"`
	DocumentType string       `json:"documentType"`
	Document     Document     `json:"document"`
	EditorConfig EditorConfig `json:"editorConfig"`
	Token        string       `json:"token,omitempty"`
}

// Document describes the file being opened.
type Document struct {
	Title         string        `json:"title"`
	URL           string        `json:"url"`
	FileType      string        `json:"fileType"`
	Key           string        `json:"key"`
	Info          Info          `json:"info"`
	Permissions   Permissions   `json:"permissions"`
	ReferenceData ReferenceData `json:"referenceData"`
}

// Info carries display metadata about the document.
type Info struct {
	Uploaded string `json:"uploaded,omitempty"`
}

// Permissions are the effective editor permissions. They must never grant
// more than the caller's resolved content permission allows.
type Permissions struct {
	Edit      bool `json:"edit"`
	FillForms bool `json:"fillForms"`
}

// ReferenceData identifies the document for cross-document references.
type ReferenceData struct {
	FileKey    string `json:"fileKey"`
	InstanceID string `json:"instanceId"`
}

// EditorConfig configures the editor session.
type EditorConfig struct {
	CallbackURL   string        `json:"callbackUrl,omitempty"`
	Mode          string        `json:"mode"`
	Lang          string        `json:"lang"`
	User          User          `json:"user"`
	Customization Customization `json:"customization"`
}

// User identifies the editing user to co-editors.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Customization adjusts the editor chrome.
type Customization struct {
	GoBack GoBack `json:"goback"`
}

// GoBack configures the editor's back navigation.
type GoBack struct {
	URL string `json:"url"`
}
