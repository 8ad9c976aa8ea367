package anki

import (
	"fmt"
	"strings"

	"github.com/kitools/ki/internal/markup"
)

// SplitTags splits a raw tags blob on runs of whitespace, preserving
// order and duplicates.
func SplitTags(blob string) []string {
	return strings.Fields(blob)
}

// SplitFields splits a raw fields blob on the unit separator. An empty
// blob yields a single empty value, matching how the rows are encoded.
func SplitFields(blob string) []string {
	return strings.Split(blob, FieldSeparator)
}

// DecodeNotes decodes every raw note whose model resolved. Notes that
// reference an unresolved model are omitted from the result; warnings
// record each omission and every field-count mismatch.
func DecodeNotes(raws []RawNote, models map[ModelID]Model) (map[NoteID]Note, []string) {
	notes := make(map[NoteID]Note, len(raws))
	var warnings []string
	for _, raw := range raws {
		model, ok := models[raw.ModelID]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("note %d: model %d did not resolve, dropping note", raw.ID, raw.ModelID))
			continue
		}
		note, w := DecodeNote(raw, model)
		warnings = append(warnings, w...)
		notes[raw.ID] = note
	}
	return notes, warnings
}

// DecodeNote decodes one raw note against its resolved model. Field
// values are matched to the model's slots in ascending ordinal order; if
// the counts differ, the longer side's tail is silently ignored and a
// warning reports the mismatch.
func DecodeNote(raw RawNote, model Model) (Note, []string) {
	var warnings []string
	values := SplitFields(raw.Fields)
	fields := model.FieldsInOrder()
	if len(values) != len(fields) {
		warnings = append(warnings, fmt.Sprintf("note %d: %d field values for %d slots in model %q, truncating", raw.ID, len(values), len(fields), model.Name))
	}

	n := len(values)
	if len(fields) < n {
		n = len(fields)
	}
	fieldMap := make(map[string]string, n)
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		fieldMap[fields[i].Name] = values[i]
		names = append(names, fields[i].Name)
	}

	return Note{
		ID:         raw.ID,
		GUID:       raw.GUID,
		ModelID:    raw.ModelID,
		ModelName:  model.Name,
		Tags:       SplitTags(raw.Tags),
		Fields:     fieldMap,
		FieldNames: names,
		SortField:  raw.SortField,
		Title:      markup.FilenameText(raw.SortField),
	}, warnings
}
