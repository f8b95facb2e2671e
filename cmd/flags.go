package cmd

import (
	"fmt"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/conneroisu/forge/internal/validation"
)

// AddFlagValidation adds validation for a specific flag. Invalid values are
// rejected while the command line is parsed, before RunE runs.
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidateFormatWithSuggestion accepts format if it is one of valid, case
// insensitively, and otherwise names the closest valid format.
func ValidateFormatWithSuggestion(format string, valid []string) error {
	for _, v := range valid {
		if strings.EqualFold(format, v) {
			return nil
		}
	}

	msg := fmt.Sprintf("invalid format %q, must be one of: %s", format, strings.Join(valid, ", "))
	if closest := closestMatch(strings.ToLower(format), valid); closest != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", closest)
	}
	return fmt.Errorf("%s", msg)
}

// ValidateTemplateFlag rejects template identifiers that could escape the
// templates root.
func ValidateTemplateFlag(id string) error {
	if err := validation.ValidateTemplateID(id); err != nil {
		return fmt.Errorf("invalid template %q: %w", id, err)
	}
	return nil
}

// closestMatch returns the candidate within edit distance 2 of s, if any.
func closestMatch(s string, candidates []string) string {
	best, bestDist := "", 3
	for _, c := range candidates {
		if d := levenshtein.Distance(s, c, nil); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
