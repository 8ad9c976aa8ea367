// Package markup converts the semi-structured rich text stored in note
// fields into plain text, both for deriving filenames and for rendering
// note files.
package markup

import (
	"regexp"
	"strings"
)

// markupPattern matches a tag-like token or a character entity reference.
// A field value that matches anywhere is treated as marked up.
var markupPattern = regexp.MustCompile(`</?\s*[a-z-][^>]*\s*>|(&(?:[\w\d]+|#\d+|#x[a-f\d]+);)`)

var (
	emptyBold   = regexp.MustCompile(`<b>\s*</b>`)
	emptyItalic = regexp.MustCompile(`<i>\s*</i>`)
	emptyDiv    = regexp.MustCompile(`<div>\s*</div>`)
	styleBlock  = regexp.MustCompile(`(?s)<style>.*</style>`)
	brokenSrc   = regexp.MustCompile(`src= ?\n"`)
)

// HasMarkup reports whether s contains tag-like tokens or entity references.
func HasMarkup(s string) bool {
	return markupPattern.MatchString(s)
}

// unescape replaces the common entity references with their literal
// characters.
func unescape(s string) string {
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return s
}

// FilenameText reduces a field value to the plain text a filename is
// derived from.
//
// The markup check runs against the raw input. Plain input has its
// newlines rewritten to <br> markers, which the final tag strip then
// removes; marked-up input keeps its literal newlines. The asymmetry is
// deliberate and matches how collections have always been flattened.
func FilenameText(s string) string {
	if !HasMarkup(s) {
		s = strings.ReplaceAll(s, "\n", "<br>")
	} else {
		s = unescape(s)
		s = emptyBold.ReplaceAllString(s, "")
		s = emptyItalic.ReplaceAllString(s, "")
		s = emptyDiv.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(StripTags(s))
}

// StripTags removes markup tags with a single linear scan. A '<' discards
// everything through the next '>'; an unterminated tag consumes the rest
// of the string. Nesting and attribute quoting are not interpreted.
func StripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case inTag:
			if r == '>' {
				inTag = false
			}
		case r == '<':
			inTag = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Screen renders a field value the way it is written into a note file:
// style blocks are dropped, break tags become newlines, and LaTeX escapes
// and entity references are unescaped. Tags other than the ones handled
// here are left in place.
func Screen(s string) string {
	s = styleBlock.ReplaceAllString(s, "")

	s = strings.ReplaceAll(s, `\\\\`, `\\`)
	s = strings.ReplaceAll(s, `\\{`, `\{`)
	s = strings.ReplaceAll(s, `\\}`, `\}`)
	s = strings.ReplaceAll(s, `\*}`, `*}`)

	s = unescape(s)

	s = strings.ReplaceAll(s, "<br>", "\n")
	s = strings.ReplaceAll(s, "<br/>", "\n")
	s = strings.ReplaceAll(s, "<br />", "\n")

	s = brokenSrc.ReplaceAllString(s, `src="`)
	s = emptyBold.ReplaceAllString(s, "")

	return strings.TrimSpace(s)
}
