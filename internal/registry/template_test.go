package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/forge/internal/config"
	ferrors "github.com/conneroisu/forge/internal/errors"
)

// newTestRegistry lays out templates/{rest,grpc} and extras/{.github,terraform}
// under a temp dir.
func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()

	for _, d := range []string{
		"templates/rest/src",
		"templates/grpc/proto",
		"templates/.cache",
		"extras/.github/workflows",
		"extras/terraform",
	} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, d), 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "templates", "README.md"), []byte("not a template"), 0644))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "templates", "rest", config.DefaultManifestName),
		[]byte("description: REST API backend\ntags: [http, sql]\n"),
		0644,
	))

	reg := New(config.TemplatesConfig{
		Root:         filepath.Join(dir, "templates"),
		CIOverlay:    filepath.Join(dir, "extras", ".github"),
		InfraOverlay: filepath.Join(dir, "extras", "terraform"),
	})
	return reg, dir
}

func TestResolve(t *testing.T) {
	reg, dir := newTestRegistry(t)

	t.Run("base only", func(t *testing.T) {
		src, err := reg.Resolve("rest", false, false)
		require.NoError(t, err)
		assert.Equal(t, "rest", src.TemplateID)
		assert.Equal(t, filepath.Join(dir, "templates", "rest"), src.Base)
		assert.Empty(t, src.CIOverlay)
		assert.Empty(t, src.InfraOverlay)
	})

	t.Run("with overlays", func(t *testing.T) {
		src, err := reg.Resolve("grpc", true, true)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "extras", ".github"), src.CIOverlay)
		assert.Equal(t, filepath.Join(dir, "extras", "terraform"), src.InfraOverlay)
	})

	t.Run("unknown template", func(t *testing.T) {
		_, err := reg.Resolve("nonexistent", false, false)
		require.Error(t, err)
		assert.True(t, ferrors.IsTemplateNotFound(err))
	})

	t.Run("template id escaping the root", func(t *testing.T) {
		_, err := reg.Resolve("../extras", false, false)
		require.Error(t, err)
		assert.True(t, ferrors.IsTemplateNotFound(err))
	})

	t.Run("template id naming a file", func(t *testing.T) {
		_, err := reg.Resolve("README.md", false, false)
		require.Error(t, err)
		assert.True(t, ferrors.IsTemplateNotFound(err))
	})
}

func TestResolveMissingOverlay(t *testing.T) {
	reg, dir := newTestRegistry(t)
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "extras", "terraform")))

	src, err := reg.Resolve("rest", true, false)
	require.NoError(t, err)
	assert.NotEmpty(t, src.CIOverlay)

	_, err = reg.Resolve("rest", true, true)
	require.Error(t, err)
	assert.True(t, ferrors.IsSourceNotFound(err))
}

func TestList(t *testing.T) {
	reg, _ := newTestRegistry(t)

	templates, err := reg.List()
	require.NoError(t, err)
	require.Len(t, templates, 2)

	assert.Equal(t, "grpc", templates[0].Name)
	assert.Empty(t, templates[0].Description)

	assert.Equal(t, "rest", templates[1].Name)
	assert.Equal(t, "REST API backend", templates[1].Description)
	assert.Equal(t, []string{"http", "sql"}, templates[1].Tags)
}

func TestListSkipsOverlayDirectories(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"rest", "extras/.github", "extras/terraform"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, d), 0755))
	}

	reg := New(config.TemplatesConfig{
		Root:         dir,
		CIOverlay:    filepath.Join(dir, "extras", ".github"),
		InfraOverlay: filepath.Join(dir, "extras", "terraform"),
	})

	templates, err := reg.List()
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "rest", templates[0].Name)
}

func TestListErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		reg := New(config.TemplatesConfig{Root: filepath.Join(t.TempDir(), "absent")})
		_, err := reg.List()
		assert.True(t, ferrors.IsSourceNotFound(err))
	})

	t.Run("broken manifest", func(t *testing.T) {
		reg, dir := newTestRegistry(t)
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, "templates", "grpc", config.DefaultManifestName),
			[]byte("description: [unterminated\n"),
			0644,
		))
		_, err := reg.List()
		require.Error(t, err)
		assert.True(t, ferrors.HasErrorType(err, ferrors.ErrorTypeConfig))
	})
}
