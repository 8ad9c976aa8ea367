// Package paths provides verified filesystem path handles.
//
// A File or Dir value can only be produced by the constructors in this
// package, each of which checks the state of the location on disk before
// returning. Code that accepts one of these types never has to re-check
// that the location exists or has the right kind. The only way back to a
// plain string is the explicit Path method.
package paths

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrMissingFile indicates no file exists at the path.
	ErrMissingFile = errors.New("file does not exist")

	// ErrMissingDir indicates no directory exists at the path.
	ErrMissingDir = errors.New("directory does not exist")

	// ErrNotAFile indicates a directory was found where a file was expected.
	ErrNotAFile = errors.New("expected a file, found a directory")

	// ErrNotADir indicates a file was found where a directory was expected.
	ErrNotADir = errors.New("expected a directory, found a file")

	// ErrDirNotEmpty indicates the directory already contains entries.
	ErrDirNotEmpty = errors.New("directory not empty")
)

// File is a handle to a regular file that existed when the handle was made.
type File struct {
	path string
}

// Dir is a handle to a directory that existed when the handle was made.
type Dir struct {
	path string
}

// ExistingFile returns a handle to the regular file at path. It fails with
// ErrMissingFile if nothing exists there and ErrNotAFile if a directory does.
func ExistingFile(path string) (File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return File{}, fmt.Errorf("%w: %s", ErrMissingFile, abs)
	}
	if err != nil {
		return File{}, fmt.Errorf("failed to stat %s: %w", abs, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%w: %s", ErrNotAFile, abs)
	}
	return File{path: abs}, nil
}

// EnsureFile returns a handle to the file at path, creating an empty file
// first if none exists.
func EnsureFile(path string) (File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	f, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return File{}, fmt.Errorf("failed to touch %s: %w", abs, err)
	}
	f.Close()
	return ExistingFile(abs)
}

// ExistingDir returns a handle to the directory at path. It fails with
// ErrMissingDir if nothing exists there and ErrNotADir if a file does.
func ExistingDir(path string) (Dir, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Dir{}, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return Dir{}, fmt.Errorf("%w: %s", ErrMissingDir, abs)
	}
	if err != nil {
		return Dir{}, fmt.Errorf("failed to stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return Dir{}, fmt.Errorf("%w: %s", ErrNotADir, abs)
	}
	return Dir{path: abs}, nil
}

// EnsureEmptyDir returns a handle to the directory at path, creating it and
// any missing parents first. The directory must contain no entries.
//
// Creation happens before the emptiness check, so the directory may be left
// on disk even when an error is returned.
func EnsureEmptyDir(path string) (Dir, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Dir{}, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return Dir{}, fmt.Errorf("failed to create directory %s: %w", abs, err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return Dir{}, fmt.Errorf("failed to read directory %s: %w", abs, err)
	}
	if len(entries) > 0 {
		return Dir{}, fmt.Errorf("%w: %s", ErrDirNotEmpty, abs)
	}
	return Dir{path: abs}, nil
}

// EnsureDir returns a handle to the directory at path, creating it and any
// missing parents first. Existing contents are left alone.
func EnsureDir(path string) (Dir, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Dir{}, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return Dir{}, fmt.Errorf("failed to create directory %s: %w", abs, err)
	}
	return Dir{path: abs}, nil
}

// Path returns the verified absolute path as a plain string. This is the
// single sanctioned downgrade from a handle.
func (f File) Path() string { return f.path }

// Name returns the base name of the file.
func (f File) Name() string { return filepath.Base(f.path) }

// Stem returns the base name of the file without its extension.
func (f File) Stem() string {
	base := filepath.Base(f.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// MD5 returns the hex-encoded MD5 digest of the file contents.
func (f File) MD5() (string, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", f.path, err)
	}
	defer fh.Close()
	h := md5.New()
	if _, err := io.Copy(h, fh); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", f.path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// CopyTo copies the file contents to dest, creating or truncating it, and
// returns a handle to the copy.
func (f File) CopyTo(dest string) (File, error) {
	src, err := os.Open(f.path)
	if err != nil {
		return File{}, fmt.Errorf("failed to open %s: %w", f.path, err)
	}
	defer src.Close()
	out, err := os.Create(dest)
	if err != nil {
		return File{}, fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return File{}, fmt.Errorf("failed to copy to %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return File{}, fmt.Errorf("failed to flush %s: %w", dest, err)
	}
	return ExistingFile(dest)
}

// Path returns the verified absolute path as a plain string. This is the
// single sanctioned downgrade from a handle.
func (d Dir) Path() string { return d.path }

// Name returns the base name of the directory.
func (d Dir) Name() string { return filepath.Base(d.path) }

// Join returns the path of elem resolved under the directory. The result
// is a plain string: joining names a location, it does not verify one.
func (d Dir) Join(elem ...string) string {
	return filepath.Join(append([]string{d.path}, elem...)...)
}

// IsEmpty reports whether the directory contains no entries.
func (d Dir) IsEmpty() (bool, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return false, fmt.Errorf("failed to read directory %s: %w", d.path, err)
	}
	return len(entries) == 0, nil
}

// Remove deletes the directory and everything under it.
func (d Dir) Remove() error {
	return os.RemoveAll(d.path)
}

// Clear removes every entry in the directory but keeps the directory itself.
func (d Dir) Clear() error {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", d.path, err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(d.path, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}
