package deckfs

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kitools/ki/internal/anki"
	"github.com/kitools/ki/internal/paths"
)

func newRoot(t *testing.T) paths.Dir {
	t.Helper()
	root, err := paths.EnsureEmptyDir(filepath.Join(t.TempDir(), "target"))
	if err != nil {
		t.Fatalf("EnsureEmptyDir() failed: %v", err)
	}
	return root
}

func basicNote(id anki.NoteID, guid, front, back string) anki.Note {
	return anki.Note{
		ID:         id,
		GUID:       guid,
		ModelID:    1,
		ModelName:  "Basic",
		Tags:       []string{},
		Fields:     map[string]string{"Front": front, "Back": back},
		FieldNames: []string{"Front", "Back"},
		SortField:  front,
		Title:      front,
	}
}

func TestDeckComponents(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "single level", in: "Default", want: []string{"Default"}},
		{name: "double colon separator", in: "Languages::French", want: []string{"Languages", "French"}},
		{name: "unit separator", in: "Languages\x1fFrench", want: []string{"Languages", "French"}},
		{name: "slash removed from component", in: "a/b::c", want: []string{"ab", "c"}},
		{name: "empty component dropped", in: "a::::b", want: []string{"a", "b"}},
		{name: "empty name", in: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeckComponents(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DeckComponents(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWritePlacesNotesByFirstCard(t *testing.T) {
	root := newRoot(t)

	notes := map[anki.NoteID]anki.Note{
		100: basicNote(100, "g-capital", "Capital of France", "Paris"),
		200: basicNote(200, "g-greeting", "Bonjour", "Hello"),
	}
	decks := []anki.RawDeck{
		{ID: 1, Name: "Default"},
		{ID: 2, Name: "Languages\x1fFrench"},
	}
	cards := []anki.RawCard{
		// Note 100's first card sits in French; the later Default card
		// must not move it.
		{ID: 1000, NoteID: 100, DeckID: 2, Ord: 0},
		{ID: 1001, NoteID: 100, DeckID: 1, Ord: 1},
		{ID: 1002, NoteID: 200, DeckID: 1, Ord: 0},
	}

	res, err := Write(root, notes, decks, cards, nil)
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if res.NotesWritten != 2 {
		t.Errorf("NotesWritten = %d, want 2", res.NotesWritten)
	}
	if res.DeckCount != 2 {
		t.Errorf("DeckCount = %d, want 2", res.DeckCount)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}

	wantFiles := []string{
		filepath.Join("Languages", "French", "capital-of-france.md"),
		"bonjour.md",
	}
	for _, rel := range wantFiles {
		if _, err := os.Stat(root.Join(rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}

	// The note appears exactly once.
	if _, err := os.Stat(root.Join("Default", "capital-of-france.md")); err == nil {
		t.Error("note 100 was also written to its second deck")
	}
}

func TestWriteNotesWithoutCardsLandAtRoot(t *testing.T) {
	root := newRoot(t)
	notes := map[anki.NoteID]anki.Note{
		100: basicNote(100, "g", "Solo", "Note"),
	}

	res, err := Write(root, notes, nil, nil, nil)
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if res.NotesWritten != 1 {
		t.Errorf("NotesWritten = %d, want 1", res.NotesWritten)
	}
	if _, err := os.Stat(root.Join("solo.md")); err != nil {
		t.Errorf("missing solo.md at root: %v", err)
	}
}

func TestWriteDeduplicatesFilenames(t *testing.T) {
	root := newRoot(t)
	notes := map[anki.NoteID]anki.Note{
		100: basicNote(100, "g1", "Same", "first"),
		200: basicNote(200, "g2", "Same", "second"),
		300: basicNote(300, "g3", "Same", "third"),
	}

	if _, err := Write(root, notes, nil, nil, nil); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	for _, name := range []string{"same.md", "same_1.md", "same_2.md"} {
		if _, err := os.Stat(root.Join(name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	// Lower note ids claim the bare name.
	data, err := os.ReadFile(root.Join("same.md"))
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if !strings.Contains(string(data), "first") {
		t.Errorf("same.md holds the wrong note:\n%s", data)
	}
}

func TestNoteStemFallbacks(t *testing.T) {
	t.Run("sort field text", func(t *testing.T) {
		stem, warn := noteStem(basicNote(1, "g", "Hello World", "x"))
		if stem != "hello-world" || warn != "" {
			t.Errorf("noteStem() = %q, %q", stem, warn)
		}
	})

	t.Run("field values when sort text slugs empty", func(t *testing.T) {
		note := basicNote(1, "g", "???", "Useful text")
		note.Title = ""
		stem, warn := noteStem(note)
		if stem != "useful-text" || warn != "" {
			t.Errorf("noteStem() = %q, %q", stem, warn)
		}
	})

	t.Run("hash fallback warns", func(t *testing.T) {
		note := basicNote(1650000000000, "guid-x", "??", "!!")
		note.Title = ""
		stem, warn := noteStem(note)
		if warn == "" {
			t.Fatal("noteStem() did not warn on hash fallback")
		}
		if !strings.HasPrefix(stem, "Basic--") {
			t.Errorf("stem = %q, want Basic--<hash>--<time>", stem)
		}
		parts := strings.Split(stem, "--")
		if len(parts) != 4 {
			t.Fatalf("stem = %q, want model--hash--date--time", stem)
		}
		if len(parts[1]) != 64 {
			t.Errorf("hash part = %q, want 64 hex chars", parts[1])
		}
	})
}

func TestWriteSkipsMediaCollidingDeck(t *testing.T) {
	root := newRoot(t)
	notes := map[anki.NoteID]anki.Note{
		100: basicNote(100, "g", "Q", "A"),
	}
	decks := []anki.RawDeck{{ID: 1, Name: "_media"}}
	cards := []anki.RawCard{{ID: 1, NoteID: 100, DeckID: 1, Ord: 0}}

	res, err := Write(root, notes, decks, cards, nil)
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if len(res.Warnings) == 0 {
		t.Error("Write() did not warn about the colliding deck")
	}
	if _, err := os.Stat(root.Join("_media")); err == nil {
		t.Error("Write() created the colliding deck directory")
	}
	// The note still lands at the root.
	if _, err := os.Stat(root.Join("q.md")); err != nil {
		t.Errorf("missing q.md at root: %v", err)
	}
}

func TestWriteReportsProgress(t *testing.T) {
	root := newRoot(t)
	notes := map[anki.NoteID]anki.Note{
		100: basicNote(100, "g1", "One", "1"),
		200: basicNote(200, "g2", "Two", "2"),
	}

	var calls []int
	opts := &Options{Progress: func(written, total int) {
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
		calls = append(calls, written)
	}}
	if _, err := Write(root, notes, nil, nil, opts); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if !reflect.DeepEqual(calls, []int{1, 2}) {
		t.Errorf("progress calls = %v, want [1 2]", calls)
	}
}

func TestPayload(t *testing.T) {
	note := anki.Note{
		ID:         100,
		GUID:       "q9Yb(dEaw,",
		ModelName:  "Basic",
		Tags:       []string{"geography", "europe"},
		Fields:     map[string]string{"Front": "Capital of France?", "Back": "Paris<br>pop. 2M"},
		FieldNames: []string{"Front", "Back"},
	}

	want := strings.Join([]string{
		"# Note",
		"```",
		"guid: q9Yb(dEaw,",
		"notetype: Basic",
		"```",
		"",
		"### Tags",
		"```",
		"geography",
		"europe",
		"```",
		"",
		"## Front",
		"Capital of France?",
		"",
		"## Back",
		"Paris\npop. 2M",
		"",
	}, "\n")

	if got := Payload(note); got != want {
		t.Errorf("Payload() =\n%q\nwant\n%q", got, want)
	}
}

func TestPayloadNoTags(t *testing.T) {
	note := basicNote(1, "g", "Q", "A")
	payload := Payload(note)
	if !strings.Contains(payload, "### Tags\n```\n```\n") {
		t.Errorf("Payload() missing empty tags block:\n%s", payload)
	}
}
