// Package internal contains the core implementation packages for forge.
//
// # Package Organization
//
//   - config: Viper backed configuration with .env loading and validation
//   - errors: Structured errors with the scaffold failure taxonomy
//   - logging: Structured logging over log/slog
//   - registry: Template lookup and listing under the templates root
//   - scaffolding: Overlay composition, directory materialization and the
//     scaffold state machine
//   - validation: Path component checks for project and template names
//   - version: Build information
//
// # Data Flow
//
// The new command loads config, builds a registry and hands a request to
// the scaffolding package. The scaffolder resolves sources through the
// registry, guards the destination, materializes the base template and the
// overlays into a staging directory and renames it into place.
//
// # Testing Strategy
//
//   - Unit tests with testify for every package
//   - Property tests with gopter behind the property build tag
//   - End-to-end command tests in cmd against temporary directories
package internal
