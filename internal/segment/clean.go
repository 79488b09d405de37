package segment

import (
	"regexp"
	"strings"
)

// Patterns for the legacy cleaning pass. Markdown markers and decoration are
// stripped before synthesis; only CJK ideographs, Latin letters, digits and
// common punctuation survive.
var (
	markdownChars  = regexp.MustCompile("[#>*`_~\\-+=\\[\\]()<>]")
	whitespaceRun  = regexp.MustCompile(`\s+`)
	disallowedChar = regexp.MustCompile(`[^\x{4e00}-\x{9fff}A-Za-z0-9，。！？,.!?；;:、\s]`)
)

// CleanText strips formatting characters and anything outside the speakable
// allow-list. Used only on the legacy plain voice/rate/pitch path; the
// markup path escapes instead of stripping.
func CleanText(text string) string {
	text = markdownChars.ReplaceAllString(text, "")
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = disallowedChar.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
