package export

import (
	"regexp"
	"strings"

	"pagecrafter/internal/domain"
)

var unsafeSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)

// Slug turns a name into a lowercase, file-system safe identifier.
func Slug(name string) string {
	s := unsafeSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "page"
	}
	return s
}

// Filename builds the download name for an export of the named project.
func Filename(name string, format domain.ExportFormat) string {
	return Slug(name) + "." + string(format)
}
