package scaffolding

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conneroisu/forge/internal/config"
	"github.com/conneroisu/forge/internal/registry"
)

// writeTree creates files under root. Keys ending in "/" are directories.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(root, 0755))
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// snapshotTree returns every entry under root keyed by slash path relative
// to root. Directories map to "/" and files to their content.
func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	snap := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			snap[rel+"/"] = "/"
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		snap[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return snap
}

// filesOnly drops directory entries from a snapshot.
func filesOnly(snap map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range snap {
		if !strings.HasSuffix(k, "/") {
			out[k] = v
		}
	}
	return out
}

// withPrefix returns the file entries of snap under prefix, relative to it.
func withPrefix(snap map[string]string, prefix string) map[string]string {
	out := map[string]string{}
	for k, v := range filesOnly(snap) {
		if strings.HasPrefix(k, prefix+"/") {
			out[strings.TrimPrefix(k, prefix+"/")] = v
		}
	}
	return out
}

var (
	restTemplate = map[string]string{
		"Cargo.toml":                "[package]\nname = \"app\"\n",
		"src/main.rs":               "fn main() {}\n",
		"src/routes/auth.rs":        "pub fn login() {}\n",
		"src/data/database.rs":      "pub const USERS_TABLE: &str = \"users\";\n",
		"src/utils/rate_limiter.rs": "pub struct RateLimiter;\n",
		"migrations/":               "",
		"assets/logo.bin":           "\x00\x01\x02\xff\xfe",
	}
	grpcTemplate = map[string]string{
		"Cargo.toml":          "[package]\nname = \"svc\"\n",
		"proto/service.proto": "syntax = \"proto3\";\n",
		"src/main.rs":         "fn main() { serve(); }\n",
	}
	ciOverlay = map[string]string{
		"workflows/ci.yml": "on: [push]\n",
	}
	infraOverlay = map[string]string{
		"main.tf":      "provider \"aws\" {}\n",
		"variables.tf": "variable \"region\" {}\n",
	}
)

// fixture is a working directory plus a template registry next to it.
type fixture struct {
	dir      string
	work     string
	registry *registry.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	writeTree(t, filepath.Join(dir, "templates", "rest"), restTemplate)
	writeTree(t, filepath.Join(dir, "templates", "grpc"), grpcTemplate)
	writeTree(t, filepath.Join(dir, "extras", ".github"), ciOverlay)
	writeTree(t, filepath.Join(dir, "extras", "terraform"), infraOverlay)

	work := filepath.Join(dir, "work")
	require.NoError(t, os.MkdirAll(work, 0755))

	return &fixture{
		dir:  dir,
		work: work,
		registry: registry.New(config.TemplatesConfig{
			Root:         filepath.Join(dir, "templates"),
			CIOverlay:    filepath.Join(dir, "extras", ".github"),
			InfraOverlay: filepath.Join(dir, "extras", "terraform"),
		}),
	}
}

func (f *fixture) scaffolder(opts Options) *Scaffolder {
	opts.BaseDir = f.work
	return New(f.registry, opts)
}

// stubResolver returns fixed sources.
type stubResolver struct {
	sources *registry.Sources
	err     error
}

func (s stubResolver) Resolve(templateID string, withCI, withInfra bool) (*registry.Sources, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := *s.sources
	out.TemplateID = templateID
	if !withCI {
		out.CIOverlay = ""
	}
	if !withInfra {
		out.InfraOverlay = ""
	}
	return &out, nil
}
