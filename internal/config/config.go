// Package config provides configuration management for forge using Viper
// for flexible loading from files, environment variables and command-line
// flags.
//
// The configuration system supports a YAML file (.forge.yml), environment
// variable overrides with the FORGE_ prefix, an optional .env file and
// validation. It locates the template registry on disk (templates root and
// the shared CI and infrastructure overlays), tunes the materializer and
// configures logging.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	ferrors "github.com/conneroisu/forge/internal/errors"
	"github.com/conneroisu/forge/internal/validation"
)

// Defaults mirror the directory layout shipped next to the forge binary.
// DefaultManifestName is read by forge templates and copied like any other
// file when scaffolding.
const (
	DefaultTemplatesRoot = "templates"
	DefaultTemplate      = "rest"
	DefaultCIOverlay     = "extras/.github"
	DefaultInfraOverlay  = "extras/terraform"
	DefaultManifestName  = "template.yaml"
	DefaultWorkers       = 1
	MaxWorkers           = 64
)

type Config struct {
	Templates TemplatesConfig `mapstructure:"templates" yaml:"templates"`
	Scaffold  ScaffoldConfig  `mapstructure:"scaffold" yaml:"scaffold"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

type TemplatesConfig struct {
	Root         string `mapstructure:"root" yaml:"root"`
	Default      string `mapstructure:"default" yaml:"default"`
	CIOverlay    string `mapstructure:"ci_overlay" yaml:"ci_overlay"`
	InfraOverlay string `mapstructure:"infra_overlay" yaml:"infra_overlay"`
}

type ScaffoldConfig struct {
	// Workers bounds concurrent file copies inside one directory. 1 copies
	// sequentially.
	Workers int `mapstructure:"workers" yaml:"workers"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Load reads the configuration currently held by viper, applies defaults
// for anything unset and validates the result.
func Load() (*Config, error) {
	// Defaults also register every key, which lets AutomaticEnv pick up
	// FORGE_* overrides during Unmarshal.
	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, ferrors.WrapConfig(err, "failed to decode configuration")
	}

	// log-level is bound to the root persistent flag
	if viper.IsSet("log-level") {
		config.Log.Level = viper.GetString("log-level")
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("templates.root", DefaultTemplatesRoot)
	viper.SetDefault("templates.default", DefaultTemplate)
	viper.SetDefault("templates.ci_overlay", DefaultCIOverlay)
	viper.SetDefault("templates.infra_overlay", DefaultInfraOverlay)
	viper.SetDefault("scaffold.workers", DefaultWorkers)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the
// process environment. Missing files are skipped; variables already set
// in the environment win.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return ferrors.WrapConfig(err, "failed to stat env file "+path)
		}
		if err := godotenv.Load(path); err != nil {
			return ferrors.WrapConfig(err, "failed to load env file "+path)
		}
	}

	return nil
}

// validateConfig validates configuration values for correctness
func validateConfig(config *Config) error {
	if err := validateTemplatesConfig(&config.Templates); err != nil {
		return ferrors.WrapConfig(err, "templates config")
	}

	if config.Scaffold.Workers < 1 || config.Scaffold.Workers > MaxWorkers {
		return ferrors.NewConfigError(
			ferrors.ErrCodeConfigInvalid,
			fmt.Sprintf("scaffold config: workers %d is not in valid range 1-%d", config.Scaffold.Workers, MaxWorkers),
		)
	}

	switch config.Log.Format {
	case "text", "json":
	default:
		return ferrors.NewConfigError(
			ferrors.ErrCodeConfigInvalid,
			fmt.Sprintf("log config: unsupported format %q (text, json)", config.Log.Format),
		)
	}

	return nil
}

// validateTemplatesConfig validates the registry locations
func validateTemplatesConfig(config *TemplatesConfig) error {
	paths := map[string]string{
		"root":          config.Root,
		"default":       config.Default,
		"ci_overlay":    config.CIOverlay,
		"infra_overlay": config.InfraOverlay,
	}
	for name, path := range paths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}
		if strings.ContainsRune(path, 0) {
			return fmt.Errorf("%s contains NUL byte", name)
		}
	}

	// The default template is joined onto the root, so it must stay inside it.
	if err := validation.ValidatePath(config.Root, config.Default); err != nil {
		return fmt.Errorf("default: %w", err)
	}

	return nil
}
