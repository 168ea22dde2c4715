package document

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// FileExtension derives the file extension from an attachment title:
// lower-cased, the substring after the last dot. A title with no dot
// yields the whole title, matching the behavior the format registry and
// the Document Server have always been fed.
func FileExtension(title string) string {
	parts := strings.Split(strings.ToLower(title), ".")
	return parts[len(parts)-1]
}

// Key derives the Document Server document key for an attachment version.
// The Document Server uses it for co-editing session identity and caching,
// so it must change whenever the content changes and be stable otherwise.
// Base64 keeps it within the character set document keys allow.
func Key(attachmentID string, modified time.Time) string {
	raw := fmt.Sprintf("%s_%d", attachmentID, modified.UnixMilli())
	return base64.StdEncoding.EncodeToString([]byte(raw))
}
