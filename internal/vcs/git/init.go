package git

import "github.com/kitools/ki/internal/vcs"

// init registers the git implementation with the vcs registry.
// This is called automatically when the package is imported.
func init() {
	vcs.Register(vcs.TypeGit,
		func(path string) (vcs.VCS, error) {
			return New(path)
		},
		func(path, branch string) (vcs.VCS, error) {
			return Init(path, branch)
		})
}
