package markup

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// slugDrop matches everything a slug cannot contain: characters that
	// are not letters, digits, underscores, whitespace, hyphens, or
	// symbols such as emoji.
	slugDrop = regexp.MustCompile(`[^\p{L}\p{N}_\s\-\p{So}]`)

	slugCollapse = regexp.MustCompile(`[-\s]+`)
)

// Slugify converts text to a lowercase hyphen-separated slug. The text is
// NFKC-normalized first so that compatibility forms compare equal, then
// forbidden characters are dropped, runs of hyphens and whitespace
// collapse to a single hyphen, and leading or trailing hyphens and
// underscores are trimmed. The result may be empty.
func Slugify(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	s = slugDrop.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-_")
}
