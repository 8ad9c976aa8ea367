package vcs

import "errors"

// Common errors returned by VCS operations.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, vcs.ErrVCSNotAvailable) {
//	    // git is not installed
//	}
var (
	// ErrNotInVCS is returned when the operation requires being inside
	// a repository but none was found.
	ErrNotInVCS = errors.New("not in a VCS repository")

	// ErrVCSNotAvailable is returned when the required VCS binary is
	// not installed or not in PATH.
	ErrVCSNotAvailable = errors.New("VCS binary not available")

	// ErrUnknownType is returned when no implementation is registered
	// for the requested type.
	ErrUnknownType = errors.New("unknown VCS type")

	// ErrRefExists is returned when attempting to create a reference
	// (branch or tag) that already exists.
	ErrRefExists = errors.New("reference already exists")

	// ErrTimeout is returned when a VCS operation exceeds its timeout.
	ErrTimeout = errors.New("operation timed out")
)

// IsFatal returns true if the error indicates a state no retry can fix:
// the binary is missing or the path is not a repository at all.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotInVCS) {
		return true
	}
	if errors.Is(err, ErrVCSNotAvailable) {
		return true
	}
	return false
}
