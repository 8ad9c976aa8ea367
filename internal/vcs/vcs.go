// Package vcs abstracts the version-control operations the clone pipeline
// needs: creating a repository, staging files, committing, and tagging.
//
// Implementations live in subpackages and register themselves at init
// time. Callers pick one by type:
//
//	repo, err := vcs.InitRepo(vcs.TypeGit, targetDir, "main")
//	if err != nil {
//	    return err
//	}
//	if err := repo.Add(ctx, "."); err != nil {
//	    return err
//	}
//	hash, err := repo.Commit(ctx, vcs.CommitOptions{Message: "Initial commit"})
package vcs

import "context"

// Type identifies a VCS implementation.
type Type string

const (
	// TypeGit is the git backend.
	TypeGit Type = "git"
)

// String returns the type as a string.
func (t Type) String() string {
	return string(t)
}

// CommitOptions controls commit creation.
type CommitOptions struct {
	// Message is the commit message. Required.
	Message string

	// Author overrides the commit author, in "Name <email>" form.
	// Empty uses the repository's configured identity.
	Author string

	// NoGPGSign disables commit signing even if the user's global
	// configuration requests it.
	NoGPGSign bool

	// AllowEmpty permits a commit with no staged changes.
	AllowEmpty bool
}

// VCS is the version-control surface the clone pipeline depends on.
//
// All methods that run subprocesses take a context; cancellation kills
// the underlying command.
type VCS interface {
	// Name returns the implementation type.
	Name() Type

	// RepoRoot returns the absolute path of the repository root.
	RepoRoot() (string, error)

	// SetIdentity sets the committer name and email for this repository
	// only. Empty values are left unset.
	SetIdentity(ctx context.Context, name, email string) error

	// Add stages the given paths. "." stages everything under the root.
	Add(ctx context.Context, paths ...string) error

	// Commit records the staged changes and returns the new commit hash.
	Commit(ctx context.Context, opts CommitOptions) (string, error)

	// Tag creates a lightweight tag pointing at the current head.
	Tag(ctx context.Context, name string) error
}
