package scaffolding

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/forge/internal/registry"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name              string
		withCI, withInfra bool
		wantCI, wantInfra bool
	}{
		{"nothing", false, false, false, false},
		{"ci only", true, false, true, false},
		{"infra implies ci", false, true, true, true},
		{"both", true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ci, infra := Compose(tt.withCI, tt.withInfra)
			assert.Equal(t, tt.wantCI, ci)
			assert.Equal(t, tt.wantInfra, infra)
		})
	}
}

func TestPlan(t *testing.T) {
	root := filepath.Join("work", "svc")

	t.Run("base only", func(t *testing.T) {
		tasks := Plan(&registry.Sources{Base: "templates/rest"}, root)
		require.Len(t, tasks, 1)
		assert.Equal(t, Task{Source: "templates/rest", Dest: root}, tasks[0])
	})

	t.Run("all overlays in order", func(t *testing.T) {
		tasks := Plan(&registry.Sources{
			Base:         "templates/grpc",
			CIOverlay:    "extras/.github",
			InfraOverlay: "extras/terraform",
		}, root)

		require.Len(t, tasks, 3)
		assert.Equal(t, Task{Source: "templates/grpc", Dest: root}, tasks[0])
		assert.Equal(t, Task{Source: "extras/.github", Dest: filepath.Join(root, ".github"), Overlay: OverlayCI}, tasks[1])
		assert.Equal(t, Task{Source: "extras/terraform", Dest: filepath.Join(root, "terraform"), Overlay: OverlayInfra}, tasks[2])
	})
}

func TestOverlayNames(t *testing.T) {
	assert.Equal(t, ".github", OverlayCI.Dir())
	assert.Equal(t, "terraform", OverlayInfra.Dir())
	assert.Equal(t, "", Overlay("docs").Dir())

	assert.Equal(t, "GitHub CI", OverlayCI.Label())
	assert.Equal(t, "Terraform", OverlayInfra.Label())
	assert.Equal(t, "docs", Overlay("docs").Label())
}
