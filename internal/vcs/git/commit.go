package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/kitools/ki/internal/vcs"
)

// SetIdentity sets the committer name and email in the repository-local
// configuration. Empty values are skipped.
func (g *Git) SetIdentity(ctx context.Context, name, email string) error {
	if name != "" {
		if _, err := g.exec(ctx, "config", "user.name", name); err != nil {
			return err
		}
	}
	if email != "" {
		if _, err := g.exec(ctx, "config", "user.email", email); err != nil {
			return err
		}
	}
	return nil
}

// Add stages the given paths. "." stages everything under the root.
func (g *Git) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no paths to add")
	}
	args := append([]string{"add", "--"}, paths...)
	_, err := g.exec(ctx, args...)
	return err
}

// Commit records the staged changes and returns the new commit hash.
func (g *Git) Commit(ctx context.Context, opts vcs.CommitOptions) (string, error) {
	if opts.Message == "" {
		return "", fmt.Errorf("commit message is required")
	}

	args := []string{"commit", "-m", opts.Message}
	if opts.Author != "" {
		args = append(args, "--author", opts.Author)
	}
	if opts.NoGPGSign {
		args = append(args, "--no-gpg-sign")
	}
	if opts.AllowEmpty {
		args = append(args, "--allow-empty")
	}

	if _, err := g.exec(ctx, args...); err != nil {
		return "", err
	}

	out, err := g.exec(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return vcs.TrimOutput(out), nil
}

// Tag creates a lightweight tag pointing at the current head. Tagging a
// name that already exists returns ErrRefExists.
func (g *Git) Tag(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("tag name is required")
	}
	if _, err := g.exec(ctx, "tag", name); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("%w: %s", vcs.ErrRefExists, name)
		}
		return err
	}
	return nil
}
