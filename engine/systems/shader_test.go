package systems

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/anima/engine/assets"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// touchShader rewrites the shader file and moves its timestamp forward.
func touchShader(t *testing.T, dir string, content []byte, offset time.Duration) {
	t.Helper()
	path := filepath.Join(dir, testShaderFile)
	writeFile(t, path, content)
	stamp := time.Now().Add(offset)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatal(err)
	}
}

func builtinPrograms(sm *SystemManager) []*metadata.Program {
	rvs := sm.RenderViewSystem
	return []*metadata.Program{rvs.Geometry.Program, rvs.Lighting.Program, rvs.PostProcess.Program}
}

func TestShaderLoadBindsUniformBlocks(t *testing.T) {
	sm, _, _ := newTestManager(t, 16, 16)
	ss := sm.ShaderSystem

	geometry := ss.GetByName(metadata.BUILTIN_SHADER_NAME_GEOMETRY)
	if geometry == nil {
		t.Fatal("geometry program not registered")
	}
	if len(geometry.VertexInputLayout.Attributes) != 3 {
		t.Errorf("geometry program reads %d inputs, want 3", len(geometry.VertexInputLayout.Attributes))
	}
	if geometry.Generation != 1 {
		t.Errorf("generation = %d, want 1", geometry.Generation)
	}
	// the same technique resolves to the same slot
	if idx := ss.Load(testShaderFile, metadata.BUILTIN_SHADER_NAME_GEOMETRY); ss.Get(idx) != geometry {
		t.Error("loading a technique twice created a second program")
	}
}

func TestShaderLoadMissingTechniqueKeepsHandle(t *testing.T) {
	sm, _, _ := newTestManager(t, 16, 16)

	idx := sm.ShaderSystem.Load(testShaderFile, "NOT_A_PASS")
	if idx == metadata.InvalidIndex {
		t.Fatal("a program that fails reflection still has a handle and must be registered")
	}
	if p := sm.ShaderSystem.Get(idx); !p.Handle.Valid() {
		t.Error("registered program has no handle")
	}
	if idx := sm.ShaderSystem.Load("shaders/missing.glsl", "GEOMETRY_COPY"); idx != metadata.InvalidIndex {
		t.Errorf("Load() of a missing file = %d, want InvalidIndex", idx)
	}
}

func TestShaderHotReload(t *testing.T) {
	sm, backend, dir := newTestManager(t, 32, 32)
	sc := newTestScene(t, sm)
	ss := sm.ShaderSystem
	ss.Config.HotReload = true

	renderFrame(t, sm, sc)
	quad := sm.RenderViewSystem.Lighting.Quad
	if len(quad.Submeshes[0].Bindings) != 2 {
		t.Fatalf("quad has %d bindings, want 2", len(quad.Submeshes[0].Bindings))
	}
	programs := builtinPrograms(sm)
	oldHandles := make([]metadata.ProgramHandle, len(programs))
	for i, p := range programs {
		oldHandles[i] = p.Handle
	}

	// nothing changed yet
	if n := ss.ProcessChanges(); n != 0 {
		t.Fatalf("ProcessChanges() = %d before any edit", n)
	}

	src, err := os.ReadFile(filepath.Join(dir, testShaderFile))
	if err != nil {
		t.Fatal(err)
	}
	touchShader(t, dir, append(src, []byte("\n// edited\n")...), time.Hour)

	if n := ss.ProcessChanges(); n != 3 {
		t.Fatalf("ProcessChanges() = %d, want 3", n)
	}
	for i, p := range programs {
		if p.Generation != 2 {
			t.Errorf("program `%s` generation = %d, want 2", p.Name, p.Generation)
		}
		if p.Handle == oldHandles[i] {
			t.Errorf("program `%s` kept its old handle", p.Name)
		}
		if _, stale := quad.Submeshes[0].Bindings[oldHandles[i]]; stale {
			t.Errorf("binding for the old `%s` handle survived the reload", p.Name)
		}
	}

	before := backend.Stats().VertexArraysCreated
	renderFrame(t, sm, sc)
	if got := backend.Stats().VertexArraysCreated - before; got != 3 {
		t.Errorf("vertex arrays rebuilt after reload = %d, want 3", got)
	}
}

func TestShaderReloadFailureKeepsProgram(t *testing.T) {
	sm, backend, dir := newTestManager(t, 32, 32)
	sc := newTestScene(t, sm)
	ss := sm.ShaderSystem
	ss.Config.HotReload = true

	programs := builtinPrograms(sm)
	handles := make([]metadata.ProgramHandle, len(programs))
	for i, p := range programs {
		handles[i] = p.Handle
	}

	touchShader(t, dir, []byte("void main() {}\n"), time.Hour)
	if n := ss.ProcessChanges(); n != 0 {
		t.Fatalf("ProcessChanges() = %d for a broken file, want 0", n)
	}
	for i, p := range programs {
		if p.Handle != handles[i] || p.Generation != 1 {
			t.Errorf("program `%s` changed after a failed reload", p.Name)
		}
	}
	renderFrame(t, sm, sc)

	// the broken source is not rebuilt every frame
	created := backend.Stats().ProgramsCreated
	ss.ProcessChanges()
	if got := backend.Stats().ProgramsCreated; got != created {
		t.Errorf("programs created went from %d to %d without an edit", created, got)
	}
}

func TestShaderChangeFeed(t *testing.T) {
	sm, _, dir := newTestManager(t, 16, 16)
	ss := sm.ShaderSystem
	ss.Config.HotReload = true
	changes := make(chan assets.AssetEvent, 4)
	ss.WatchForChanges(changes)

	src, err := os.ReadFile(filepath.Join(dir, testShaderFile))
	if err != nil {
		t.Fatal(err)
	}
	touchShader(t, dir, src, time.Hour)

	// a newer file without a change event is left alone
	if n := ss.ProcessChanges(); n != 0 {
		t.Fatalf("ProcessChanges() = %d without events, want 0", n)
	}

	changes <- assets.AssetEvent{Path: filepath.Join(dir, "textures", "red.png"), Type: metadata.ResourceTypeImage}
	changes <- assets.AssetEvent{Path: filepath.Join(dir, testShaderFile), Type: metadata.ResourceTypeShader}
	if n := ss.ProcessChanges(); n != 3 {
		t.Fatalf("ProcessChanges() = %d, want 3", n)
	}
}

func TestBrokenTechniqueRendersWithoutGeometry(t *testing.T) {
	sm, backend, _ := newTestManager(t, 32, 32)
	sc := newTestScene(t, sm)

	broken := sm.ShaderSystem.Get(sm.ShaderSystem.Load(testShaderFile, "NOT_A_PASS"))
	if broken == nil {
		t.Fatal("broken technique not registered")
	}
	sm.RenderViewSystem.Geometry.Program = broken

	renderFrame(t, sm, sc)
	// only the lighting and post-processing quads reach the backend
	if got := backend.Stats().DrawCalls; got != 2 {
		t.Errorf("draw calls = %d, want 2", got)
	}
}
