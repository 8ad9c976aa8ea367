// Package deckfs materializes decoded notes as a deck-structured tree of
// markdown files under a target directory.
package deckfs

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/blake2s"

	"github.com/kitools/ki/internal/anki"
	"github.com/kitools/ki/internal/markup"
	"github.com/kitools/ki/internal/paths"
)

// maxStemLen caps the text a filename stem is derived from, in runes.
const maxStemLen = 60

// mediaDirName is reserved at the target root for collection media. Decks
// whose path would collide with it are skipped.
const mediaDirName = "_media"

// noteExt is the extension of every note file.
const noteExt = ".md"

// Options configures a materialization run.
type Options struct {
	// Progress, when non-nil, is called after each note is written.
	Progress func(written, total int)
}

// Result reports what a run produced.
type Result struct {
	NotesWritten int
	DeckCount    int
	Warnings     []string
}

// Write materializes notes under root. Each note is written once, into
// the directory of the deck owning its first card; notes without cards
// land at the root. Notes are processed in note id order so reruns
// produce identical trees.
func Write(root paths.Dir, notes map[anki.NoteID]anki.Note, decks []anki.RawDeck, cards []anki.RawCard, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	res := &Result{}

	deckDirs, warnings, err := makeDeckDirs(root, decks)
	if err != nil {
		return nil, err
	}
	res.Warnings = append(res.Warnings, warnings...)
	res.DeckCount = len(deckDirs)

	noteDeck := firstCardDeck(cards)

	ids := make([]anki.NoteID, 0, len(notes))
	for id := range notes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	used := make(map[string]bool)
	for _, id := range ids {
		note := notes[id]
		dir := root.Path()
		if d, ok := deckDirs[noteDeck[id]]; ok {
			dir = d
		}

		stem, warn := noteStem(note)
		if warn != "" {
			res.Warnings = append(res.Warnings, warn)
		}
		path := uniquePath(dir, stem, used)

		if err := os.WriteFile(path, []byte(Payload(note)), 0644); err != nil {
			return nil, fmt.Errorf("failed to write note %d: %w", id, err)
		}
		used[path] = true
		res.NotesWritten++
		if opts.Progress != nil {
			opts.Progress(res.NotesWritten, len(ids))
		}
	}
	return res, nil
}

// DeckComponents splits a raw deck name into its path components. Newer
// schemas join components with the unit separator, older ones with "::".
// Slashes inside a component would splinter the deck across directories,
// so they are removed.
func DeckComponents(name string) []string {
	name = strings.ReplaceAll(name, anki.FieldSeparator, "::")
	parts := strings.Split(name, "::")
	components := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ReplaceAll(part, "/", "")
		if part == "" {
			continue
		}
		components = append(components, part)
	}
	return components
}

// makeDeckDirs creates one directory per deck and returns the deck id to
// directory mapping. Decks are created in name order so parents appear
// before children.
func makeDeckDirs(root paths.Dir, decks []anki.RawDeck) (map[anki.DeckID]string, []string, error) {
	dirs := make(map[anki.DeckID]string, len(decks))
	var warnings []string

	sorted := append([]anki.RawDeck(nil), decks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, deck := range sorted {
		components := DeckComponents(deck.Name)
		if len(components) == 0 {
			warnings = append(warnings, fmt.Sprintf("deck %d: name %q has no usable components, skipping", deck.ID, deck.Name))
			continue
		}
		if components[0] == mediaDirName {
			warnings = append(warnings, fmt.Sprintf("deck %q collides with the reserved media directory, skipping", deck.Name))
			continue
		}
		dir := root.Join(components...)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create deck directory %q: %w", deck.Name, err)
		}
		dirs[deck.ID] = dir
	}
	return dirs, warnings, nil
}

// firstCardDeck maps each note to the deck of its lowest-id card. Card
// ids are creation-ordered, so this is the deck the note first appeared
// in.
func firstCardDeck(cards []anki.RawCard) map[anki.NoteID]anki.DeckID {
	sorted := append([]anki.RawCard(nil), cards...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	owner := make(map[anki.NoteID]anki.DeckID)
	for _, card := range sorted {
		if _, ok := owner[card.NoteID]; !ok {
			owner[card.NoteID] = card.DeckID
		}
	}
	return owner
}

// noteStem derives the filename stem for a note. It tries the note's
// title, then the raw sort field, then the joined field values, and as a
// last resort builds a name from the model, a hash of the guid, and the
// note's creation time. Only the last fallback warns.
func noteStem(note anki.Note) (string, string) {
	text := note.Title
	if text == "" {
		text = note.SortField
	}
	stem := markup.Slugify(truncate(text, maxStemLen))
	if stem != "" {
		return stem, ""
	}

	var values []string
	for _, name := range note.FieldNames {
		values = append(values, note.Fields[name])
	}
	stem = markup.Slugify(truncate(strings.Join(values, " "), maxStemLen))
	if stem != "" {
		return stem, ""
	}

	sum := blake2s.Sum256([]byte(note.GUID))
	created := time.UnixMilli(int64(note.ID)).UTC()
	stem = fmt.Sprintf("%s--%s--%s", note.ModelName, hex.EncodeToString(sum[:]), created.Format("2006-01-02--15h-04m-05s"))
	return stem, fmt.Sprintf("note %d: no usable filename text, falling back to %q", note.ID, stem)
}

// uniquePath returns dir/stem.md, appending _1, _2, ... before the
// extension until the name is free both on disk and among the paths this
// run already claimed.
func uniquePath(dir, stem string, used map[string]bool) string {
	path := filepath.Join(dir, stem+noteExt)
	for i := 1; used[path] || pathExists(path); i++ {
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, noteExt))
	}
	return path
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
