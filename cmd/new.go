package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	ferrors "github.com/conneroisu/forge/internal/errors"
	"github.com/conneroisu/forge/internal/registry"
	"github.com/conneroisu/forge/internal/scaffolding"
)

var newCmd = &cobra.Command{
	Use:     "new <project-name>",
	Aliases: []string{"create", "n"},
	Short:   "Create a new project from a template",
	Long: `Create a new project directory in the current working directory from a
base template, optionally adding overlays on top of it.

The project directory must not exist yet. Nothing is left behind when a
scaffold fails part way through.

Overlays:
  --with-ci      GitHub CI workflows in .github/
  --with-infra   Terraform in terraform/ (also adds CI, which deploys it)

Examples:
  forge new myapp                      # Default template
  forge new svc -t grpc                # grpc template
  forge new svc -t grpc --with-infra   # grpc plus CI and Terraform
  forge new svc --with-ci --dry-run    # Show what would be copied`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

var (
	newTemplate  string
	newWithCI    bool
	newWithInfra bool
	newDryRun    bool
)

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().StringVarP(&newTemplate, "template", "t", "", "Template to use (default from config, rest)")
	newCmd.Flags().BoolVar(&newWithCI, "with-ci", false, "Include GitHub CI workflows")
	newCmd.Flags().BoolVar(&newWithInfra, "with-infra", false, "Include Terraform infrastructure (implies --with-ci)")
	newCmd.Flags().BoolVar(&newDryRun, "dry-run", false, "Show the copies that would run without writing anything")

	AddFlagValidation(newCmd, "template", ValidateTemplateFlag)
}

func runNew(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	templateID := newTemplate
	if templateID == "" {
		templateID = cfg.Templates.Default
	}

	scaffolder := scaffolding.New(registry.New(cfg.Templates), scaffolding.Options{
		BaseDir: ".",
		Workers: cfg.Scaffold.Workers,
		Logger:  logger,
	})

	req := scaffolding.Request{
		ProjectName: args[0],
		TemplateID:  templateID,
		WithCI:      newWithCI,
		WithInfra:   newWithInfra,
	}

	if newDryRun {
		tasks, err := scaffolder.Plan(ctx, req)
		if err != nil {
			return withHint(err)
		}
		printPlan(cmd.OutOrStdout(), req, tasks)
		return nil
	}

	result, err := scaffolder.Scaffold(ctx, req)
	if err != nil {
		return withHint(err)
	}

	logger.Debug(ctx, "Project created",
		"project", result.ProjectRoot,
		"files", result.Stats.Files,
		"bytes", result.Stats.Bytes,
	)
	printSummary(cmd.OutOrStdout(), args[0], result)

	return nil
}

// withHint appends the next step for failures a user can fix. The error
// stays on one line and keeps its chain.
func withHint(err error) error {
	var hint string
	switch {
	case ferrors.IsAlreadyExists(err):
		hint = "choose another name or remove the directory"
	case ferrors.IsTemplateNotFound(err):
		hint = "run 'forge templates' to see what is available"
	case ferrors.IsSourceNotFound(err):
		hint = "check templates.ci_overlay and templates.infra_overlay"
	case ferrors.HasErrorCode(err, ferrors.ErrCodeInvalidProjectName):
		hint = "use a plain directory name"
	case ferrors.IsIOFailure(err):
		hint = "nothing was created"
	case ferrors.IsInternal(err):
		hint = "interrupted, nothing was created"
	default:
		return err
	}
	return fmt.Errorf("%w (%s)", err, hint)
}

// summaryStyles renders against w so that colors are dropped when w is not
// a terminal.
type summaryStyles struct {
	check lipgloss.Style
	name  lipgloss.Style
	dim   lipgloss.Style
}

func newSummaryStyles(w io.Writer) summaryStyles {
	r := lipgloss.NewRenderer(w)
	return summaryStyles{
		check: r.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		name:  r.NewStyle().Bold(true),
		dim:   r.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

func printSummary(w io.Writer, name string, result *scaffolding.Result) {
	st := newSummaryStyles(w)

	fmt.Fprintf(w, "%s Project '%s' created using '%s' template.\n",
		st.check.Render("✓"), st.name.Render(name), st.name.Render(result.Template))

	for _, overlay := range result.AppliedOverlays {
		fmt.Fprintf(w, "%s Included %s (%s/)\n",
			st.check.Render("✓"), overlay.Label(), overlay.Dir())
	}
}

func printPlan(w io.Writer, req scaffolding.Request, tasks []scaffolding.Task) {
	st := newSummaryStyles(w)

	fmt.Fprintf(w, "Would create '%s' using '%s' template:\n",
		st.name.Render(req.ProjectName), st.name.Render(req.TemplateID))

	for _, task := range tasks {
		label := "base"
		if task.Overlay != "" {
			label = task.Overlay.Label()
		}
		fmt.Fprintf(w, "  %s %s -> %s\n", st.dim.Render(fmt.Sprintf("%-10s", label)), task.Source, task.Dest)
	}
}
