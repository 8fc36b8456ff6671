// Package mirror manages the copy-on-write dataset mirror: a full structural
// copy of the source tree that receives all edited rasters, leaving the
// source untouched.
package mirror

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Suffix marks the mirror directory as the edited variant of its source.
const Suffix = "-edited"

// StorageError reports a failure creating the mirror or writing to it.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("mirror: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Root returns the mirror path for a source root: a sibling directory with
// the edited-variant suffix.
func Root(sourceRoot string) string {
	return filepath.Clean(sourceRoot) + Suffix
}

// EnsureMirror creates the mirror of sourceRoot if it does not exist yet and
// returns its path. An existing mirror is returned untouched, preserving any
// prior edits.
func EnsureMirror(sourceRoot string) (string, error) {
	if _, err := os.Stat(sourceRoot); err != nil {
		return "", &StorageError{Op: "stat source", Path: sourceRoot, Err: err}
	}

	mirrorRoot := Root(sourceRoot)
	if _, err := os.Stat(mirrorRoot); err == nil {
		return mirrorRoot, nil
	}

	if err := copyTree(sourceRoot, mirrorRoot); err != nil {
		return "", err
	}
	return mirrorRoot, nil
}

// copyTree replicates every directory and byte-copies every regular file
// from src to dst, preserving permissions and modification times.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &StorageError{Op: "walk", Path: path, Err: err}
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return &StorageError{Op: "rel", Path: path, Err: err}
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return &StorageError{Op: "stat", Path: path, Err: err}
		}

		if d.IsDir() {
			if err := os.MkdirAll(target, info.Mode().Perm()); err != nil {
				return &StorageError{Op: "mkdir", Path: target, Err: err}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if err := copyFile(path, target, info); err != nil {
			return err
		}
		return nil
	})
}

func copyFile(src, dst string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return &StorageError{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return &StorageError{Op: "create", Path: dst, Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return &StorageError{Op: "copy", Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return &StorageError{Op: "close", Path: dst, Err: err}
	}
	// Carry the source timestamps so an untouched mirror file is
	// indistinguishable from its original.
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return &StorageError{Op: "chtimes", Path: dst, Err: err}
	}
	return nil
}

// MirroredPath rewrites a path under sourceRoot to the corresponding path
// under mirrorRoot.
func MirroredPath(sourceRoot, mirrorRoot, sourcePath string) (string, error) {
	rel, err := filepath.Rel(sourceRoot, sourcePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", &StorageError{Op: "mirror path", Path: sourcePath,
			Err: fmt.Errorf("not under source root %s", sourceRoot)}
	}
	return filepath.Join(mirrorRoot, rel), nil
}
