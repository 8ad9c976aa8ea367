package deckfs

import (
	"strings"

	"github.com/kitools/ki/internal/anki"
	"github.com/kitools/ki/internal/markup"
)

// Payload renders the markdown representation of a note: a header block
// carrying the guid and notetype, the tags, and one section per field in
// ordinal order.
func Payload(note anki.Note) string {
	lines := []string{
		"# Note",
		"```",
		"guid: " + note.GUID,
		"notetype: " + note.ModelName,
		"```",
		"",
		"### Tags",
		"```",
	}
	lines = append(lines, note.Tags...)
	lines = append(lines, "```", "")

	for _, name := range note.FieldNames {
		lines = append(lines, "## "+name, markup.Screen(note.Fields[name]), "")
	}

	return strings.Join(lines, "\n")
}
