package scaffolding

import (
	"path/filepath"

	"github.com/conneroisu/forge/internal/registry"
)

// Overlay is an optional tree copied into a fixed subdirectory of the project.
type Overlay string

const (
	OverlayCI    Overlay = "ci"
	OverlayInfra Overlay = "infra"
)

// Dir is the project subdirectory the overlay is materialized into.
func (o Overlay) Dir() string {
	switch o {
	case OverlayCI:
		return ".github"
	case OverlayInfra:
		return "terraform"
	default:
		return ""
	}
}

// Label is the human readable name used in summaries.
func (o Overlay) Label() string {
	switch o {
	case OverlayCI:
		return "GitHub CI"
	case OverlayInfra:
		return "Terraform"
	default:
		return string(o)
	}
}

// Compose applies the overlay implication rule: infrastructure needs the CI
// pipeline that deploys it, so enabling infra always enables CI.
func Compose(withCI, withInfra bool) (ci, infra bool) {
	return withCI || withInfra, withInfra
}

// Task is one materialization: copy Source into Dest. Overlay is empty for
// the base template.
type Task struct {
	Source  string
	Dest    string
	Overlay Overlay
}

// Plan orders the materializations for sources into projectRoot: the base
// template first, then CI, then infrastructure. Destinations are disjoint.
func Plan(sources *registry.Sources, projectRoot string) []Task {
	tasks := []Task{{Source: sources.Base, Dest: projectRoot}}

	if sources.CIOverlay != "" {
		tasks = append(tasks, Task{
			Source:  sources.CIOverlay,
			Dest:    filepath.Join(projectRoot, OverlayCI.Dir()),
			Overlay: OverlayCI,
		})
	}

	if sources.InfraOverlay != "" {
		tasks = append(tasks, Task{
			Source:  sources.InfraOverlay,
			Dest:    filepath.Join(projectRoot, OverlayInfra.Dir()),
			Overlay: OverlayInfra,
		})
	}

	return tasks
}
