// Package document maps Confluence attachments to ONLYOFFICE editor
// configurations: file format capabilities, document keys, and the
// configuration payload the Document Server front-end renders against.
package document

import (
	"strings"
)

// Format describes what the editor can do with a file format.
type Format struct {
	// Type is the editor family: word, cell or slide.
	Type string `json:"type"`

	// Edit reports whether the format supports full editing.
	Edit bool `json:"edit,omitempty"`

	// Fill reports whether the format supports form filling.
	Fill bool `json:"fill,omitempty"`
}

// Registry resolves format capabilities by file extension. Lookups are
// case-insensitive; unregistered extensions yield the zero value.
type Registry interface {
	// DocumentType returns the editor family for ext, or "" if the
	// format is not supported.
	DocumentType(ext string) string

	// SupportsEdit reports whether ext supports full editing.
	SupportsEdit(ext string) bool

	// SupportsFill reports whether ext supports form filling.
	SupportsFill(ext string) bool
}

// StaticRegistry is a Registry backed by a fixed table.
type StaticRegistry struct {
	formats map[string]Format
}

var _ Registry = (*StaticRegistry)(nil)

// NewStaticRegistry creates a Registry over the given table. Keys are
// normalized to lower case.
func NewStaticRegistry(formats map[string]Format) *StaticRegistry {
	normalized := make(map[string]Format, len(formats))
	for ext, format := range formats {
		normalized[strings.ToLower(ext)] = format
	}
	return &StaticRegistry{formats: normalized}
}

// DefaultRegistry returns the built-in format table.
func DefaultRegistry() *StaticRegistry {
	return NewStaticRegistry(builtinFormats)
}

// DocumentType returns the editor family for ext, or "".
func (r *StaticRegistry) DocumentType(ext string) string {
	return r.formats[strings.ToLower(ext)].Type
}

// SupportsEdit reports whether ext supports full editing.
func (r *StaticRegistry) SupportsEdit(ext string) bool {
	return r.formats[strings.ToLower(ext)].Edit
}

// SupportsFill reports whether ext supports form filling.
func (r *StaticRegistry) SupportsFill(ext string) bool {
	return r.formats[strings.ToLower(ext)].Fill
}

// builtinFormats is the connector's built-in capability table.
var builtinFormats = map[string]Format{
	"djvu": {Type: "word"},
	"doc":  {Type: "word"},
	"docm": {Type: "word"},
	"docx": {Type: "word", Edit: true},
	"dot":  {Type: "word"},
	"dotm": {Type: "word"},
	"dotx": {Type: "word"},
	"epub": {Type: "word"},
	"fb2":  {Type: "word"},
	"fodt": {Type: "word"},
	"html": {Type: "word"},
	"mht":  {Type: "word"},
	"odt":  {Type: "word"},
	"ott":  {Type: "word"},
	"oxps": {Type: "word"},
	"pdf":  {Type: "word", Fill: true},
	"rtf":  {Type: "word"},
	"txt":  {Type: "word"},
	"xps":  {Type: "word"},
	"xml":  {Type: "word"},

	"csv":  {Type: "cell"},
	"fods": {Type: "cell"},
	"ods":  {Type: "cell"},
	"ots":  {Type: "cell"},
	"xls":  {Type: "cell"},
	"xlsm": {Type: "cell"},
	"xlsx": {Type: "cell", Edit: true},
	"xlt":  {Type: "cell"},
	"xltm": {Type: "cell"},
	"xltx": {Type: "cell"},

	"fodp": {Type: "slide"},
	"odp":  {Type: "slide"},
	"otp":  {Type: "slide"},
	"pot":  {Type: "slide"},
	"potm": {Type: "slide"},
	"potx": {Type: "slide"},
	"pps":  {Type: "slide"},
	"ppsm": {Type: "slide"},
	"ppsx": {Type: "slide"},
	"ppt":  {Type: "slide"},
	"pptm": {Type: "slide"},
	"pptx": {Type: "slide", Edit: true},
}
