package systems

import (
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

func TestMaterialSystemLoad(t *testing.T) {
	sm, _, dir := newTestManager(t, 16, 16)
	writeFile(t, filepath.Join(dir, "materials", "red.amt"), []byte(
		"name = red\nshininess = 12\nspecular = 0.25\ndiffuse_map_name = ../textures/red.png\n"))

	idx := sm.MaterialSystem.Load("materials/red.amt")
	if idx == metadata.InvalidIndex {
		t.Fatal("Load() returned an invalid index")
	}
	m := sm.MaterialSystem.Get(idx)
	if m.Name != "red" || m.Smoothness != 12 || m.Specular != 0.25 {
		t.Errorf("material = %+v", m)
	}
	if m.AlbedoTextureIdx == metadata.InvalidIndex {
		t.Error("albedo texture was not loaded")
	}

	if again := sm.MaterialSystem.Load("materials/red.amt"); again != idx {
		t.Errorf("second Load() = %d, want %d", again, idx)
	}
}

func TestMaterialSystemLoadMissing(t *testing.T) {
	sm, _, _ := newTestManager(t, 16, 16)
	if idx := sm.MaterialSystem.Load("materials/nope.amt"); idx != metadata.InvalidIndex {
		t.Errorf("Load() = %d, want InvalidIndex", idx)
	}
}
