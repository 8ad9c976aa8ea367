// Package anki models the relational schema of a flashcard collection and
// the reconciliation and decoding steps that turn raw rows into notes.
package anki

import "sort"

// ModelID identifies a note model. The identifier spaces of models,
// notes, decks, and cards are disjoint; distinct types keep them from
// being mixed up.
type ModelID int64

// NoteID identifies a note. Note identifiers double as creation
// timestamps in epoch milliseconds.
type NoteID int64

// DeckID identifies a deck.
type DeckID int64

// CardID identifies a card.
type CardID int64

// Ordinal is the zero-based position of a field or template within its
// model.
type Ordinal int

// FieldSeparator joins field values inside a raw note row.
const FieldSeparator = "\x1f"

// RawModel is one row of the notetypes table. Config is an opaque blob.
type RawModel struct {
	ID     ModelID
	Name   string
	Config []byte
}

// RawField is one row of the fields table. (ModelID, Ord) is unique
// within the table.
type RawField struct {
	ModelID ModelID
	Ord     Ordinal
	Name    string
	Config  []byte
}

// RawTemplate is one row of the templates table. (ModelID, Ord) is unique
// within the table.
type RawTemplate struct {
	ModelID ModelID
	Ord     Ordinal
	Name    string
	Config  []byte
}

// RawNote is one row of the notes table. Tags is a space-separated blob;
// Fields joins the field values with FieldSeparator in ascending ordinal
// order. SortField is the raw text of the note's sort field.
type RawNote struct {
	ID        NoteID
	GUID      string
	ModelID   ModelID
	Tags      string
	Fields    string
	SortField string
}

// RawDeck is one row of the decks table. Name components are joined with
// FieldSeparator or "::" depending on the schema version.
type RawDeck struct {
	ID   DeckID
	Name string
}

// RawCard is one row of the cards table.
type RawCard struct {
	ID     CardID
	NoteID NoteID
	DeckID DeckID
	Ord    Ordinal
}

// Slot pairs the field and template that share one ordinal within a model.
type Slot struct {
	Field    RawField
	Template RawTemplate
}

// Model is the reconciled view of one note model: exactly the slots whose
// ordinal appears in both the model's field rows and its template rows.
type Model struct {
	ID    ModelID
	Name  string
	Slots map[Ordinal]Slot
}

// FieldsInOrder returns the model's fields sorted by ascending ordinal.
// Decoding relies on this explicit ordering, never on map iteration.
func (m Model) FieldsInOrder() []RawField {
	ords := make([]Ordinal, 0, len(m.Slots))
	for ord := range m.Slots {
		ords = append(ords, ord)
	}
	sort.Slice(ords, func(i, j int) bool { return ords[i] < ords[j] })
	fields := make([]RawField, 0, len(ords))
	for _, ord := range ords {
		fields = append(fields, m.Slots[ord].Field)
	}
	return fields
}

// Note is a decoded note. Fields maps field names to values; FieldNames
// preserves the ascending-ordinal order the values were matched in.
type Note struct {
	ID         NoteID
	GUID       string
	ModelID    ModelID
	ModelName  string
	Tags       []string
	Fields     map[string]string
	FieldNames []string

	// SortField is the raw sort-field text from the row. Title is the
	// plain text derived from it; it may be empty.
	SortField string
	Title     string
}
