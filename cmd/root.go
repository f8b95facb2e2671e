// Package cmd provides the command-line interface for forge with configuration
// loaded from several sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --templates-dir, etc.) - highest priority
//	2. FORGE_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (FORGE_TEMPLATES_ROOT, etc.)
//	4. Configuration files (.forge.yml) - lowest priority
//
// A .env file in the working directory is loaded before environment
// variables are read, so FORGE_* values may also live there.
//
// Environment Variables:
//
//	FORGE_CONFIG_FILE: Path to custom configuration file
//	FORGE_TEMPLATES_ROOT: Override the templates directory
//	FORGE_TEMPLATES_DEFAULT: Template used when --template is omitted
//	FORGE_SCAFFOLD_WORKERS: Concurrent file copies per directory
//	And the rest following the FORGE_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/forge/internal/config"
	"github.com/conneroisu/forge/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "Scaffold backend projects from templates",
	Long: `Forge creates a new backend project directory from a named template and
can layer a GitHub CI pipeline and Terraform infrastructure on top of it.

Quick Start:
  forge new myapp                      Create ./myapp from the default template
  forge new svc -t grpc --with-infra   grpc template plus CI and Terraform
  forge templates                      List available templates

Command Aliases (for faster typing):
  new (create, n), templates (ls)`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .forge.yml, can also use FORGE_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("templates-dir", "", "directory holding the base templates (default is templates)")

	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("templates.root", rootCmd.PersistentFlags().Lookup("templates-dir"))
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. FORGE_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .forge.yml in current directory
//
// Values from .env are exported before the FORGE_ prefix binding is set up,
// so they behave exactly like real environment variables.
func initConfig() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("FORGE_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".forge")
	}

	// FORGE_TEMPLATES_ROOT, FORGE_SCAFFOLD_WORKERS, ...
	viper.SetEnvPrefix("FORGE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// A missing config file falls back to defaults; an explicit one that
	// cannot be read is reported.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && viper.ConfigFileUsed() != "" {
			fmt.Fprintln(os.Stderr, "Warning: failed to read config file:", err)
		}
	}
}

// loadRuntime loads the configuration and builds the command logger from it.
func loadRuntime(cmd *cobra.Command) (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid flags: %w", err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    cmd.ErrOrStderr(),
		Component: "cli",
	})

	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug(cmd.Context(), "Using config file", "path", used)
	}

	return cfg, logger, nil
}
