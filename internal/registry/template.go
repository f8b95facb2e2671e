// Package registry maps template identifiers to source directories on disk.
//
// Base templates live one directory per identifier under a templates root.
// The CI and infrastructure overlays each live at a single location shared
// by every template. The registry never interprets template content; it
// only checks that the directories it hands out exist.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/forge/internal/config"
	ferrors "github.com/conneroisu/forge/internal/errors"
	"github.com/conneroisu/forge/internal/validation"
)

// Sources are the existing directories a scaffold copies from. An overlay
// path is empty when that overlay was not requested.
type Sources struct {
	TemplateID   string
	Base         string
	CIOverlay    string
	InfraOverlay string
}

// TemplateInfo describes one base template found under the root.
type TemplateInfo struct {
	Name        string   `json:"name" yaml:"name"`
	Path        string   `json:"path" yaml:"path"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Manifest is the optional metadata file at the top of a template.
type Manifest struct {
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// Registry resolves template identifiers against the filesystem.
type Registry struct {
	root         string
	ciOverlay    string
	infraOverlay string
	manifestName string
}

// New creates a registry from the templates section of the configuration.
func New(cfg config.TemplatesConfig) *Registry {
	return &Registry{
		root:         cfg.Root,
		ciOverlay:    cfg.CIOverlay,
		infraOverlay: cfg.InfraOverlay,
		manifestName: config.DefaultManifestName,
	}
}

// Root returns the templates root directory.
func (r *Registry) Root() string { return r.root }

// Resolve maps templateID to its base directory and, when requested, the
// overlay directories. The flags are the effective ones: callers apply the
// infra-implies-CI rule before resolving.
func (r *Registry) Resolve(templateID string, withCI, withInfra bool) (*Sources, error) {
	base := filepath.Join(r.root, templateID)

	if err := validation.ValidateTemplateID(templateID); err != nil {
		tErr := ferrors.ErrTemplateNotFoundFor(templateID, base)
		tErr.Cause = err
		return nil, tErr.WithComponent("registry")
	}

	if ok, err := isDir(base); err != nil {
		return nil, ferrors.ErrIOFailureAt("stat", base, err).WithComponent("registry")
	} else if !ok {
		return nil, ferrors.ErrTemplateNotFoundFor(templateID, base).WithComponent("registry")
	}

	sources := &Sources{TemplateID: templateID, Base: base}

	if withCI {
		if err := requireDir(r.ciOverlay); err != nil {
			return nil, err
		}
		sources.CIOverlay = r.ciOverlay
	}

	if withInfra {
		if err := requireDir(r.infraOverlay); err != nil {
			return nil, err
		}
		sources.InfraOverlay = r.infraOverlay
	}

	return sources, nil
}

// List returns every template under the root, sorted by name. Hidden
// directories and directories holding an overlay are skipped.
func (r *Registry) List() ([]TemplateInfo, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.ErrSourceNotFoundAt(r.root, err).WithComponent("registry")
		}
		return nil, ferrors.ErrIOFailureAt("read", r.root, err).WithComponent("registry")
	}

	var templates []TemplateInfo
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(r.root, name)
		if r.holdsOverlay(path) {
			continue
		}

		info := TemplateInfo{Name: name, Path: path}
		manifest, err := r.readManifest(path)
		if err != nil {
			return nil, err
		}
		if manifest != nil {
			info.Description = manifest.Description
			info.Tags = manifest.Tags
		}

		templates = append(templates, info)
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })

	return templates, nil
}

func (r *Registry) readManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, r.manifestName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ferrors.ErrIOFailureAt("read", path, err).WithComponent("registry")
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, ferrors.WrapConfig(err, fmt.Sprintf("invalid template manifest %s", path))
	}

	return &manifest, nil
}

// holdsOverlay reports whether an overlay directory sits inside dir.
func (r *Registry) holdsOverlay(dir string) bool {
	for _, overlay := range []string{r.ciOverlay, r.infraOverlay} {
		rel, err := filepath.Rel(absOrClean(dir), absOrClean(overlay))
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func requireDir(path string) error {
	ok, err := isDir(path)
	if err != nil {
		return ferrors.ErrIOFailureAt("stat", path, err).WithComponent("registry")
	}
	if !ok {
		return ferrors.ErrSourceNotFoundAt(path, nil).WithComponent("registry")
	}
	return nil
}

func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

func absOrClean(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
