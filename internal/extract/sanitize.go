package extract

import (
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("```[A-Za-z0-9_+.-]*")

// Sanitize removes every fenced-code delimiter (an opening fence with an
// optional language tag, or a bare closing fence) and trims the result.
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(raw string) string {
	s := raw
	for strings.Contains(s, "```") {
		s = fencePattern.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}
