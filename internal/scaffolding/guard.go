package scaffolding

import (
	"os"

	ferrors "github.com/conneroisu/forge/internal/errors"
)

// EnsureAbsent fails with AlreadyExists when anything (file, directory or
// dangling symlink) exists at path. It never writes.
func EnsureAbsent(path string) error {
	_, err := os.Lstat(path)
	if err == nil {
		return ferrors.ErrAlreadyExistsAt(path).WithComponent("guard")
	}
	if os.IsNotExist(err) {
		return nil
	}
	return ferrors.ErrIOFailureAt("stat", path, err).WithComponent("guard")
}
