package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/components"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "anima.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadApplicationConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[application]
name = "testbed"
max_frames = 10
log_level = "warn"

[renderer]
backend = "headless"

[camera]
fov = 60.0
`)
	config, err := LoadApplicationConfig(path)
	if err != nil {
		t.Fatalf("LoadApplicationConfig() error: %v", err)
	}

	if config.Application.Name != "testbed" || config.Application.MaxFrames != 10 {
		t.Errorf("application section not decoded: %+v", config.Application)
	}
	if config.LogLevel != core.LogLevelWarn {
		t.Errorf("expected log level warn, got %s", config.LogLevel)
	}
	if config.BackendType != metadata.RendererBackendTypeHeadless {
		t.Errorf("expected headless backend, got %d", config.BackendType)
	}
	if config.Camera.FOV != 60 {
		t.Errorf("expected fov 60, got %g", config.Camera.FOV)
	}

	defaults := DefaultApplicationConfig()
	if config.Application.StartWidth != defaults.Application.StartWidth {
		t.Errorf("start_width should keep its default %d, got %d", defaults.Application.StartWidth, config.Application.StartWidth)
	}
	if config.Renderer.ShaderFile != defaults.Renderer.ShaderFile {
		t.Errorf("shader_file should keep its default, got `%s`", config.Renderer.ShaderFile)
	}
	if config.Camera.Speed != components.DefaultCameraSpeed {
		t.Errorf("camera speed should keep its default, got %g", config.Camera.Speed)
	}
}

func TestLoadApplicationConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"unknown backend", "[renderer]\nbackend = \"vulkan\"\n", "renderer.backend"},
		{"bad log level", "[application]\nlog_level = \"loud\"\n", "application.log_level"},
		{"empty name", "[application]\nname = \"\"\n", "application.name"},
		{"zero width", "[application]\nstart_width = 0\n", "application.start_width"},
		{"no workers", "[assets]\nworkers = 0\n", "assets.workers"},
		{"far before near", "[camera]\nnear = 10.0\nfar = 5.0\n", "camera.far"},
		{"fov out of range", "[camera]\nfov = 180.0\n", "camera.fov"},
		{"unknown key", "[renderer]\nmsaa = 4\n", "msaa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadApplicationConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error should name `%s`, got: %v", tt.field, err)
			}
		})
	}
}

func TestLoadApplicationConfigMissingFile(t *testing.T) {
	if _, err := LoadApplicationConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestCameraSectionApply(t *testing.T) {
	config := DefaultApplicationConfig()
	config.Camera.Speed = 7
	config.Camera.Far = 500

	camera := components.NewCamera(mgl32.Vec3{0, 0, 5})
	config.Camera.Apply(camera)
	if camera.Speed != 7 || camera.Far != 500 {
		t.Errorf("camera not updated: speed %g far %g", camera.Speed, camera.Far)
	}
}
