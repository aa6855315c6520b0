package domain

import (
	"regexp"
	"strings"
)

var handlePattern = regexp.MustCompile(`[^a-z0-9]+`)

// HandleFromName derives a URL-safe handle from a display name: lower-cased,
// runs of non-alphanumerics collapsed to a single dash, edges trimmed.
func HandleFromName(name string) string {
	handle := strings.ToLower(name)
	handle = handlePattern.ReplaceAllString(handle, "-")
	return strings.Trim(handle, "-")
}
