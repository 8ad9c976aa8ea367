// Package clone materializes a flashcard collection file into a fresh
// version-controlled directory tree.
//
// A clone runs five ordered stages: resolve the source and target paths,
// verify them, scaffold the target skeleton, materialize the collection
// contents, and finalize the result as a git repository with a single
// initial commit. Each stage is a hard gate; the first failure aborts the
// run. Rollback is handled by the Clone entry point, not the stages.
package clone

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/kitools/ki/internal/anki"
	"github.com/kitools/ki/internal/collection"
	"github.com/kitools/ki/internal/deckfs"
	"github.com/kitools/ki/internal/paths"
	"github.com/kitools/ki/internal/vcs"

	_ "github.com/kitools/ki/internal/vcs/git"
)

const (
	// CommitMessage is the message of the initial commit.
	CommitMessage = "Initial commit"

	// TagName marks the commit that matches the cloned collection state.
	TagName = "last-successful-ki-push"

	// DefaultBranch is the branch a new repository is initialized on.
	DefaultBranch = "main"

	gitignoreName = ".gitignore"
	kiDirName     = ".ki"
	mediaDirName  = "_media"
	configName    = "config"
	hashesName    = "hashes"
	backupsName   = "backups"
	lcaName       = "lca.anki2"
)

// Options configures a clone run. Source is the only required field.
type Options struct {
	// Source is the path to the collection database file.
	Source string

	// Target is the directory to clone into. Empty means a directory named
	// after the collection file stem in the current working directory.
	Target string

	// Branch overrides DefaultBranch for the new repository.
	Branch string

	// AuthorName and AuthorEmail set the repository identity used for the
	// initial commit when non-empty.
	AuthorName  string
	AuthorEmail string

	// Logger receives progress and warning lines. Nil means stderr.
	Logger *log.Logger

	// Progress, when set, is called after each note file is written.
	Progress func(written, total int)
}

// Result describes a completed clone.
type Result struct {
	Target       string
	MD5          string
	NotesWritten int
	DeckCount    int
	Commit       string
	Warnings     []string
}

// remoteConfig is the document written to .ki/config. It records where the
// cloned collection came from.
type remoteConfig struct {
	Remote struct {
		Path string `json:"path"`
	} `json:"remote"`
}

// contents is everything read from the collection database in one pass.
type contents struct {
	notes    map[anki.NoteID]anki.Note
	decks    []anki.RawDeck
	cards    []anki.RawCard
	warnings []string
}

// Clone copies the collection named by opts.Source into a fresh
// version-controlled directory and returns a summary of what was written.
//
// The target directory must be empty or absent. On failure after the target
// has been claimed, a directory created by this call is removed and a
// pre-existing one is emptied; verification failures leave the target
// untouched.
func Clone(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[clone] ", log.LstdFlags)
	}
	branch := opts.Branch
	if branch == "" {
		branch = DefaultBranch
	}

	// Resolve.
	srcPath, err := filepath.Abs(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve collection path: %w", err)
	}
	tgtPath := opts.Target
	if tgtPath == "" {
		base := filepath.Base(srcPath)
		tgtPath = strings.TrimSuffix(base, filepath.Ext(base))
	}
	tgtPath, err = filepath.Abs(tgtPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target path: %w", err)
	}

	// Verify. Both checks run before either result is consulted, and the
	// source error is reported first. The created flag records whether the
	// target existed before this call so cleanup knows what to undo.
	_, statErr := os.Stat(tgtPath)
	created := errors.Is(statErr, fs.ErrNotExist)

	src, srcErr := paths.ExistingFile(srcPath)
	target, tgtErr := paths.EnsureEmptyDir(tgtPath)
	if srcErr != nil {
		if created && tgtErr == nil {
			_ = target.Remove()
		}
		return nil, fmt.Errorf("failed to open collection: %w", srcErr)
	}
	if tgtErr != nil {
		return nil, fmt.Errorf("failed to claim target directory: %w", tgtErr)
	}

	res, err := run(ctx, src, target, branch, opts, logger)
	if err != nil {
		cleanup(target, created)
		return nil, err
	}
	return res, nil
}

// run executes the scaffold, materialize, and finalize stages against a
// verified source file and a claimed empty target directory.
func run(ctx context.Context, src paths.File, target paths.Dir, branch string, opts Options, logger *log.Logger) (*Result, error) {
	// Scaffold.
	md5sum, err := src.MD5()
	if err != nil {
		return nil, fmt.Errorf("failed to hash collection: %w", err)
	}
	logger.Printf("Cloning into %s", target.Path())

	ignore := kiDirName + "/" + backupsName + "\n"
	if err := os.WriteFile(target.Join(gitignoreName), []byte(ignore), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", gitignoreName, err)
	}
	kiDir, err := paths.EnsureEmptyDir(target.Join(kiDirName))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", kiDirName, err)
	}
	if _, err := paths.EnsureEmptyDir(target.Join(mediaDirName)); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", mediaDirName, err)
	}
	backups, err := paths.EnsureEmptyDir(kiDir.Join(backupsName))
	if err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}

	// Materialize.
	if err := writeRemoteConfig(kiDir, src); err != nil {
		return nil, err
	}
	cts, err := readCollection(ctx, src)
	if err != nil {
		return nil, err
	}
	written, err := deckfs.Write(target, cts.notes, cts.decks, cts.cards, &deckfs.Options{Progress: opts.Progress})
	if err != nil {
		return nil, fmt.Errorf("failed to write notes: %w", err)
	}
	if err := appendHash(kiDir, md5sum, src.Name()); err != nil {
		return nil, err
	}
	if _, err := src.CopyTo(backups.Join(lcaName)); err != nil {
		return nil, fmt.Errorf("failed to back up collection: %w", err)
	}

	res := &Result{
		Target:       target.Path(),
		MD5:          md5sum,
		NotesWritten: written.NotesWritten,
		DeckCount:    written.DeckCount,
		Warnings:     append(cts.warnings, written.Warnings...),
	}
	for _, w := range res.Warnings {
		logger.Printf("Warning: %s", w)
	}

	// Finalize.
	repo, err := vcs.InitRepo(vcs.TypeGit, target.Path(), branch)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}
	if opts.AuthorName != "" || opts.AuthorEmail != "" {
		if err := repo.SetIdentity(ctx, opts.AuthorName, opts.AuthorEmail); err != nil {
			return nil, fmt.Errorf("failed to set repository identity: %w", err)
		}
	}
	if err := repo.Add(ctx, "."); err != nil {
		return nil, fmt.Errorf("failed to stage clone: %w", err)
	}
	hash, err := repo.Commit(ctx, vcs.CommitOptions{Message: CommitMessage, NoGPGSign: true})
	if err != nil {
		return nil, fmt.Errorf("failed to commit clone: %w", err)
	}
	res.Commit = hash
	if err := repo.Tag(ctx, TagName); err != nil {
		return nil, fmt.Errorf("failed to tag initial commit: %w", err)
	}
	return res, nil
}

// readCollection opens the source database, reads every table the clone
// needs, and resolves the raw rows into decoded notes. The connection is
// scoped to this function and closed on every path.
//
// Deck and card tables are optional. When either cannot be read, notes fall
// back to a flat layout at the target root and a warning is recorded.
func readCollection(ctx context.Context, src paths.File) (*contents, error) {
	db, err := collection.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection database: %w", err)
	}
	defer db.Close()

	rawModels, err := db.NotetypesContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read notetypes: %w", err)
	}
	rawFields, err := db.FieldsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read fields: %w", err)
	}
	rawTemplates, err := db.TemplatesContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}
	rawNotes, err := db.NotesContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read notes: %w", err)
	}

	models, warnings := anki.Reconcile(rawModels, rawFields, rawTemplates)
	notes, decodeWarnings := anki.DecodeNotes(rawNotes, models)
	cts := &contents{notes: notes, warnings: append(warnings, decodeWarnings...)}

	decks, err := db.DecksContext(ctx)
	if err != nil {
		cts.warnings = append(cts.warnings, fmt.Sprintf("deck table unavailable, using flat layout: %v", err))
		return cts, nil
	}
	cards, err := db.CardsContext(ctx)
	if err != nil {
		cts.warnings = append(cts.warnings, fmt.Sprintf("card table unavailable, using flat layout: %v", err))
		return cts, nil
	}
	cts.decks = decks
	cts.cards = cards
	return cts, nil
}

// writeRemoteConfig records the absolute source path under .ki/config.
func writeRemoteConfig(kiDir paths.Dir, src paths.File) error {
	var cfg remoteConfig
	cfg.Remote.Path = src.Path()
	buf, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode remote config: %w", err)
	}
	buf = append(buf, '\n')
	if err := os.WriteFile(kiDir.Join(configName), buf, 0644); err != nil {
		return fmt.Errorf("failed to write remote config: %w", err)
	}
	return nil
}

// appendHash records the collection digest in the .ki/hashes ledger.
func appendHash(kiDir paths.Dir, md5sum, name string) error {
	f, err := os.OpenFile(kiDir.Join(hashesName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open hashes file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%s  %s\n", md5sum, name); err != nil {
		f.Close()
		return fmt.Errorf("failed to record collection hash: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close hashes file: %w", err)
	}
	return nil
}

// cleanup undoes a failed clone. A target created by this invocation is
// removed outright; a pre-existing one is emptied. Cleanup errors are
// discarded in favor of the failure that triggered them.
func cleanup(target paths.Dir, created bool) {
	if created {
		_ = target.Remove()
		return
	}
	_ = target.Clear()
}
