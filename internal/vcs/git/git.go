// Package git provides the git implementation of the vcs interfaces.
//
// It shells out to the git binary. Importing the package registers the
// implementation with the vcs registry:
//
//	import _ "github.com/kitools/ki/internal/vcs/git"
package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kitools/ki/internal/vcs"
)

// defaultTimeout bounds every git invocation. Clone repositories are
// local, so nothing should take anywhere near this long.
const defaultTimeout = 30 * time.Second

// Git implements vcs.VCS by shelling out to the git binary.
type Git struct {
	repoRoot string
	gitDir   string
}

var _ vcs.VCS = (*Git)(nil)

// New opens the existing git repository containing path.
func New(path string) (*Git, error) {
	if !vcs.BinaryAvailable("git") {
		return nil, vcs.ErrVCSNotAvailable
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	out, err := vcs.ExecContext(context.Background(), defaultTimeout, abs, "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", vcs.ErrNotInVCS, abs)
	}
	root := vcs.TrimOutput(out)

	out, err = vcs.ExecContext(context.Background(), defaultTimeout, root, "git", "rev-parse", "--git-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to locate git dir: %w", err)
	}
	gitDir := vcs.TrimOutput(out)
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(root, gitDir)
	}

	return &Git{repoRoot: root, gitDir: gitDir}, nil
}

// Init creates a new git repository at path with the given initial branch
// and returns a handle to it. The directory must already exist.
func Init(path, branch string) (*Git, error) {
	if !vcs.BinaryAvailable("git") {
		return nil, vcs.ErrVCSNotAvailable
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	args := []string{"init"}
	if branch != "" {
		args = append(args, "--initial-branch", branch)
	}
	if _, err := vcs.ExecContext(context.Background(), defaultTimeout, abs, "git", args...); err != nil {
		return nil, fmt.Errorf("git init failed: %w", err)
	}

	return New(abs)
}

// Name returns the VCS type.
func (g *Git) Name() vcs.Type {
	return vcs.TypeGit
}

// RepoRoot returns the repository root directory.
func (g *Git) RepoRoot() (string, error) {
	return g.repoRoot, nil
}

// GitDir returns the .git directory path.
func (g *Git) GitDir() string {
	return g.gitDir
}

// exec runs a git command in the repository root.
func (g *Git) exec(ctx context.Context, args ...string) ([]byte, error) {
	out, err := vcs.ExecContext(ctx, defaultTimeout, g.repoRoot, "git", args...)
	if err != nil {
		return nil, fmt.Errorf("git %s failed: %w", strings.Join(args, " "), err)
	}
	return out, nil
}
