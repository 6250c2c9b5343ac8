package systems

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anima/engine/assets"
	"github.com/spaghettifunk/anima/engine/renderer/headless"
)

const testShaderFile = "shaders/shaders.glsl"

// newTestAssets lays out an assets directory holding the engine shader file
// and a few small textures.
func newTestAssets(t *testing.T) (*assets.AssetManager, string) {
	t.Helper()
	dir := t.TempDir()

	src, err := os.ReadFile("../../assets/shaders/shaders.glsl")
	if err != nil {
		t.Fatalf("reading shader file: %v", err)
	}
	writeFile(t, filepath.Join(dir, testShaderFile), src)
	writePNG(t, filepath.Join(dir, "textures", "red.png"), color.RGBA{255, 0, 0, 255})
	writePNG(t, filepath.Join(dir, "textures", "blue.png"), color.RGBA{0, 0, 255, 255})

	am, err := assets.NewAssetManager()
	if err != nil {
		t.Fatal(err)
	}
	if err := am.Initialize(dir, false); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { am.Shutdown() })
	return am, dir
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func writePNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func newTestManager(t *testing.T, width, height uint32) (*SystemManager, *headless.Backend, string) {
	t.Helper()
	am, dir := newTestAssets(t)
	backend := headless.New()
	sm, err := NewSystemManager(&SystemManagerConfig{
		ApplicationName:  "systems test",
		Width:            width,
		Height:           height,
		ShaderFile:       testShaderFile,
		Workers:          2,
		MaxShaderCount:   8,
		MaxTextureCount:  16,
		MaxMaterialCount: 16,
		MaxMeshCount:     16,
	}, backend, am)
	if err != nil {
		t.Fatal(err)
	}
	if err := sm.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	t.Cleanup(func() { sm.Shutdown() })
	return sm, backend, dir
}
