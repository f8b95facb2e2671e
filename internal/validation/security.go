// Package validation provides input checks for names that end up as
// filesystem path components, preventing path traversal out of the working
// directory or the templates root.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// maxComponentLength is the common NAME_MAX on Linux and macOS.
const maxComponentLength = 255

// ValidatePathComponent checks that name is usable as exactly one path
// element: non-empty, not "." or "..", and free of separators and NUL bytes.
func ValidatePathComponent(name string) error {
	if name == "" {
		return fmt.Errorf("cannot be empty")
	}

	if strings.TrimSpace(name) != name {
		return fmt.Errorf("must not start or end with whitespace")
	}

	if name == "." || name == ".." {
		return fmt.Errorf("must not be '.' or '..'")
	}

	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("contains NUL byte")
	}

	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("must be a single path component")
	}

	if len(name) > maxComponentLength {
		return fmt.Errorf("longer than %d bytes", maxComponentLength)
	}

	return nil
}

// ValidateProjectName validates the destination directory name of a new project.
func ValidateProjectName(name string) error {
	if err := ValidatePathComponent(name); err != nil {
		return err
	}

	// Leading dashes are parsed as flags by most tools run inside the project.
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("must not start with '-'")
	}

	return nil
}

// ValidateTemplateID validates a template identifier before it is joined
// onto the templates root.
func ValidateTemplateID(id string) error {
	if err := ValidatePathComponent(id); err != nil {
		return err
	}

	if strings.HasPrefix(id, ".") {
		return fmt.Errorf("must not start with '.'")
	}

	return nil
}

// ValidatePath validates a configured path to prevent traversal out of base.
// An empty base only cleans and checks for emptiness.
func ValidatePath(base, path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if base == "" {
		return nil
	}

	rel, err := filepath.Rel(filepath.Clean(base), filepath.Join(base, path))
	if err != nil {
		return fmt.Errorf("invalid path %s: %w", path, err)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path traversal detected: %s", path)
	}

	return nil
}
