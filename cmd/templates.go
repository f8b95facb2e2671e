package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/forge/internal/registry"
)

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"ls"},
	Short:   "List available templates",
	Long: `List the base templates found under the templates root, with the
description and tags from each template's template.yaml when present.

Examples:
  forge templates             # Table
  forge templates -o json     # JSON
  forge ls -o yaml            # YAML`,
	Args: cobra.NoArgs,
	RunE: runTemplates,
}

var templatesOutput string

func init() {
	rootCmd.AddCommand(templatesCmd)

	templatesCmd.Flags().StringVarP(&templatesOutput, "output", "o", "table", "Output format (table|json|yaml)")

	AddFlagValidation(templatesCmd, "output", func(format string) error {
		return ValidateFormatWithSuggestion(format, []string{"table", "json", "yaml"})
	})
}

func runTemplates(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, _, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	reg := registry.New(cfg.Templates)
	templates, err := reg.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	switch strings.ToLower(templatesOutput) {
	case "json":
		return outputTemplatesJSON(out, templates)
	case "yaml":
		return outputTemplatesYAML(out, templates)
	case "table":
		if len(templates) == 0 {
			fmt.Fprintf(out, "No templates found in %s.\n", reg.Root())
			return nil
		}
		return outputTemplatesTable(out, templates, cfg.Templates.Default)
	default:
		return fmt.Errorf("unsupported format: %s", templatesOutput)
	}
}

func outputTemplatesJSON(w io.Writer, templates []registry.TemplateInfo) error {
	if templates == nil {
		templates = []registry.TemplateInfo{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(templates)
}

func outputTemplatesYAML(w io.Writer, templates []registry.TemplateInfo) error {
	if templates == nil {
		templates = []registry.TemplateInfo{}
	}
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(templates)
}

func outputTemplatesTable(w io.Writer, templates []registry.TemplateInfo, defaultID string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "NAME\tTITLE\tDESCRIPTION\tTAGS")
	fmt.Fprintln(tw, "----\t-----\t-----------\t----")

	title := cases.Title(language.English)
	for _, t := range templates {
		name := t.Name
		if name == defaultID {
			name += " (default)"
		}
		display := title.String(strings.NewReplacer("-", " ", "_", " ").Replace(t.Name))
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, display, t.Description, strings.Join(t.Tags, ", "))
	}

	fmt.Fprintf(tw, "\nTotal: %d templates\n", len(templates))
	return tw.Flush()
}
