// Package collection provides read-only access to a flashcard collection
// database.
//
// A collection is a single SQLite file. Access goes through the pure Go
// ncruces/go-sqlite3 driver, so no cgo or system sqlite is required. The
// package only reads; the clone pipeline never writes back to the source.
package collection

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver" // database/sql driver
	_ "github.com/ncruces/go-sqlite3/embed"  // embedded sqlite build

	"github.com/kitools/ki/internal/anki"
	"github.com/kitools/ki/internal/paths"
)

// DB is a read-only connection to a collection database.
//
// The caller MUST call Close() when done.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens the collection file read-only and verifies the connection.
// Taking a paths.File means the file's existence was already checked; a
// database that fails to open here is corrupt or not a database at all.
func Open(file paths.File) (*DB, error) {
	connStr := fmt.Sprintf("file:%s?mode=ro", file.Path())
	conn, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", file.Path(), err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping collection %s: %w", file.Path(), err)
	}

	// The clone reads tables one after another; a single connection is
	// all that is ever in flight.
	conn.SetMaxOpenConns(1)

	return &DB{conn: conn, path: file.Path()}, nil
}

// Path returns the path of the underlying collection file.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close collection: %w", err)
	}
	db.conn = nil
	return nil
}

// Notes returns every row of the notes table in note id order.
func (db *DB) Notes() ([]anki.RawNote, error) {
	return db.NotesContext(context.Background())
}

// NotesContext returns every note row with context support.
func (db *DB) NotesContext(ctx context.Context) ([]anki.RawNote, error) {
	query := `SELECT nid, guid, mid, tags, flds, sfld FROM notes ORDER BY nid ASC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// Notetypes returns every row of the notetypes table.
func (db *DB) Notetypes() ([]anki.RawModel, error) {
	return db.NotetypesContext(context.Background())
}

// NotetypesContext returns every notetype row with context support.
func (db *DB) NotetypesContext(ctx context.Context) ([]anki.RawModel, error) {
	query := `SELECT id, name, config FROM notetypes ORDER BY id ASC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query notetypes: %w", err)
	}
	defer rows.Close()

	return scanModels(rows)
}

// Fields returns every row of the fields table.
func (db *DB) Fields() ([]anki.RawField, error) {
	return db.FieldsContext(context.Background())
}

// FieldsContext returns every field row with context support. Rows come
// out ordered by (notetype, ordinal) so duplicate ordinals resolve the
// same way on every run.
func (db *DB) FieldsContext(ctx context.Context) ([]anki.RawField, error) {
	query := `SELECT ntid, ord, name, config FROM fields ORDER BY ntid ASC, ord ASC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fields: %w", err)
	}
	defer rows.Close()

	return scanFields(rows)
}

// Templates returns every row of the templates table.
func (db *DB) Templates() ([]anki.RawTemplate, error) {
	return db.TemplatesContext(context.Background())
}

// TemplatesContext returns every template row with context support.
func (db *DB) TemplatesContext(ctx context.Context) ([]anki.RawTemplate, error) {
	query := `SELECT ntid, ord, name, config FROM templates ORDER BY ntid ASC, ord ASC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	return scanTemplates(rows)
}

// Decks returns every row of the decks table. Old collections may not
// have one; the caller decides how to degrade.
func (db *DB) Decks() ([]anki.RawDeck, error) {
	return db.DecksContext(context.Background())
}

// DecksContext returns every deck row with context support.
func (db *DB) DecksContext(ctx context.Context) ([]anki.RawDeck, error) {
	query := `SELECT id, name FROM decks ORDER BY id ASC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query decks: %w", err)
	}
	defer rows.Close()

	return scanDecks(rows)
}

// Cards returns every row of the cards table in card id order, which is
// creation order.
func (db *DB) Cards() ([]anki.RawCard, error) {
	return db.CardsContext(context.Background())
}

// CardsContext returns every card row with context support.
func (db *DB) CardsContext(ctx context.Context) ([]anki.RawCard, error) {
	query := `SELECT id, nid, did, ord FROM cards ORDER BY id ASC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	return scanCards(rows)
}

func scanNotes(rows *sql.Rows) ([]anki.RawNote, error) {
	var notes []anki.RawNote
	for rows.Next() {
		var n anki.RawNote
		if err := rows.Scan(&n.ID, &n.GUID, &n.ModelID, &n.Tags, &n.Fields, &n.SortField); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}
	return notes, nil
}

func scanModels(rows *sql.Rows) ([]anki.RawModel, error) {
	var models []anki.RawModel
	for rows.Next() {
		var m anki.RawModel
		if err := rows.Scan(&m.ID, &m.Name, &m.Config); err != nil {
			return nil, fmt.Errorf("failed to scan notetype: %w", err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notetypes: %w", err)
	}
	return models, nil
}

func scanFields(rows *sql.Rows) ([]anki.RawField, error) {
	var fields []anki.RawField
	for rows.Next() {
		var f anki.RawField
		if err := rows.Scan(&f.ModelID, &f.Ord, &f.Name, &f.Config); err != nil {
			return nil, fmt.Errorf("failed to scan field: %w", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fields: %w", err)
	}
	return fields, nil
}

func scanTemplates(rows *sql.Rows) ([]anki.RawTemplate, error) {
	var templates []anki.RawTemplate
	for rows.Next() {
		var t anki.RawTemplate
		if err := rows.Scan(&t.ModelID, &t.Ord, &t.Name, &t.Config); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}
	return templates, nil
}

func scanDecks(rows *sql.Rows) ([]anki.RawDeck, error) {
	var decks []anki.RawDeck
	for rows.Next() {
		var d anki.RawDeck
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decks: %w", err)
	}
	return decks, nil
}

func scanCards(rows *sql.Rows) ([]anki.RawCard, error) {
	var cards []anki.RawCard
	for rows.Next() {
		var c anki.RawCard
		if err := rows.Scan(&c.ID, &c.NoteID, &c.DeckID, &c.Ord); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}
	return cards, nil
}
