// Package scaffolding composes a base template with optional overlays and
// materializes them into a new project directory.
//
// A scaffold runs as a small state machine:
//
//	Idle -> Resolving -> Guarding -> CopyingBase -> CopyingOverlays -> Done
//
// with Failed reachable from every intermediate state. All copies go into a
// staging directory next to the destination, which is renamed into place
// only after every copy succeeded. A failed scaffold therefore never leaves
// the destination path behind.
package scaffolding

import (
	"context"
	"os"
	"path/filepath"

	ferrors "github.com/conneroisu/forge/internal/errors"
	"github.com/conneroisu/forge/internal/logging"
	"github.com/conneroisu/forge/internal/registry"
	"github.com/conneroisu/forge/internal/validation"
)

const stagingPattern = ".forge-staging-*"

// State is a step of the scaffold state machine.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateGuarding
	StateCopyingBase
	StateCopyingOverlays
	StateDone
	StateFailed
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateGuarding:
		return "guarding"
	case StateCopyingBase:
		return "copying-base"
	case StateCopyingOverlays:
		return "copying-overlays"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Request asks for one new project.
type Request struct {
	ProjectName string
	TemplateID  string
	WithCI      bool
	WithInfra   bool
}

// Result describes a created project.
type Result struct {
	ProjectRoot     string
	Template        string
	AppliedOverlays []Overlay
	Stats           Stats
}

// Applied reports whether overlay o was materialized.
func (r *Result) Applied(o Overlay) bool {
	for _, applied := range r.AppliedOverlays {
		if applied == o {
			return true
		}
	}
	return false
}

// Resolver maps a template identifier to existing source directories.
type Resolver interface {
	Resolve(templateID string, withCI, withInfra bool) (*registry.Sources, error)
}

// Options configures a Scaffolder.
type Options struct {
	// BaseDir is the directory new projects are created in. Empty means
	// the working directory.
	BaseDir string
	Workers int
	Logger  logging.Logger
	// OnTransition, when set, observes every state change.
	OnTransition func(from, to State)
}

// Scaffolder runs scaffold requests.
type Scaffolder struct {
	resolver     Resolver
	materializer *Materializer
	baseDir      string
	logger       logging.Logger
	onTransition func(from, to State)
}

// New creates a Scaffolder resolving templates through resolver.
func New(resolver Resolver, opts Options) *Scaffolder {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	baseDir := opts.BaseDir
	if baseDir == "" {
		baseDir = "."
	}

	return &Scaffolder{
		resolver: resolver,
		materializer: NewMaterializer(MaterializerOptions{
			Workers: opts.Workers,
			Logger:  logger,
		}),
		baseDir:      baseDir,
		logger:       logger.WithComponent("scaffolder"),
		onTransition: opts.OnTransition,
	}
}

// run tracks the state of one scaffold.
type run struct {
	s     *Scaffolder
	ctx   context.Context
	state State
}

func (r *run) to(next State) {
	prev := r.state
	r.state = next
	r.s.logger.Debug(r.ctx, "State transition", "from", prev.String(), "to", next.String())
	if r.s.onTransition != nil {
		r.s.onTransition(prev, next)
	}
}

func (r *run) fail(err error) error {
	r.to(StateFailed)
	return err
}

// prepare runs Resolving and Guarding. Nothing is written.
func (r *run) prepare(req Request) (*registry.Sources, string, error) {
	r.to(StateResolving)

	if err := validation.ValidateProjectName(req.ProjectName); err != nil {
		return nil, "", r.fail(ferrors.ErrInvalidProjectName(req.ProjectName, err.Error()))
	}

	withCI, withInfra := Compose(req.WithCI, req.WithInfra)
	sources, err := r.s.resolver.Resolve(req.TemplateID, withCI, withInfra)
	if err != nil {
		return nil, "", r.fail(err)
	}

	r.to(StateGuarding)

	root := filepath.Join(r.s.baseDir, req.ProjectName)
	if err := EnsureAbsent(root); err != nil {
		return nil, "", r.fail(err)
	}

	return sources, root, nil
}

// Plan resolves and guards req and returns the tasks a scaffold would run,
// with destinations under the final project root. Nothing is written.
func (s *Scaffolder) Plan(ctx context.Context, req Request) ([]Task, error) {
	r := &run{s: s, ctx: ctx}
	sources, root, err := r.prepare(req)
	if err != nil {
		return nil, err
	}
	return Plan(sources, root), nil
}

// Scaffold creates a new project for req. On failure the original error is
// returned unchanged and neither the project root nor the staging directory
// remains.
func (s *Scaffolder) Scaffold(ctx context.Context, req Request) (*Result, error) {
	r := &run{s: s, ctx: ctx}
	perf := logging.StartOperation(s.logger, "scaffold")

	result, err := r.scaffold(req)
	if err != nil {
		perf.EndWithError(ctx, err)
		return nil, err
	}

	perf.End(ctx, "project", result.ProjectRoot, "files", result.Stats.Files)
	return result, nil
}

func (r *run) scaffold(req Request) (result *Result, err error) {
	sources, root, err := r.prepare(req)
	if err != nil {
		return nil, err
	}

	staging, err := os.MkdirTemp(filepath.Dir(root), stagingPattern)
	if err != nil {
		return nil, r.fail(ferrors.ErrIOFailureAt("create staging in", filepath.Dir(root), err).WithComponent("scaffolder"))
	}
	defer func() {
		if err == nil {
			return
		}
		if rmErr := os.RemoveAll(staging); rmErr != nil {
			r.s.logger.Warn(r.ctx, rmErr, "Failed to remove staging directory", "path", staging)
		}
	}()

	// MkdirTemp creates 0700; the project should look like a plain mkdir.
	if err := os.Chmod(staging, dirPerm); err != nil {
		return nil, r.fail(ferrors.ErrIOFailureAt("chmod", staging, err).WithComponent("scaffolder"))
	}

	result = &Result{ProjectRoot: root, Template: sources.TemplateID}

	for _, task := range Plan(sources, staging) {
		if task.Overlay == "" {
			r.to(StateCopyingBase)
		} else if r.state != StateCopyingOverlays {
			r.to(StateCopyingOverlays)
		}

		stats, err := r.s.materializer.Materialize(r.ctx, task.Source, task.Dest)
		result.Stats.add(stats)
		if err != nil {
			return nil, r.fail(err)
		}

		if task.Overlay != "" {
			result.AppliedOverlays = append(result.AppliedOverlays, task.Overlay)
		}
	}

	// rename(2) replaces an empty directory, so the destination is checked
	// again right before publishing.
	if err := EnsureAbsent(root); err != nil {
		return nil, r.fail(err)
	}
	if err := os.Rename(staging, root); err != nil {
		return nil, r.fail(ferrors.ErrIOFailureAt("rename", root, err).WithComponent("scaffolder"))
	}

	r.to(StateDone)
	r.s.logger.Debug(r.ctx, "Project scaffolded",
		"project", root,
		"template", result.Template,
		"overlays", len(result.AppliedOverlays),
	)

	return result, nil
}
