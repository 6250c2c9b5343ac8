package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

func vertexPosition(data metadata.SubmeshData, idx uint32) mgl32.Vec3 {
	v := data.Vertices[idx*8:]
	return mgl32.Vec3{v[0], v[1], v[2]}
}

func TestGenerateCubeWindingAndExtents(t *testing.T) {
	data := GenerateCube(2, 4, 6, 1, 1)

	if got := len(data.Vertices) / 8; got != 24 {
		t.Fatalf("expected 24 vertices, got %d", got)
	}
	if len(data.Indices) != 36 {
		t.Fatalf("expected 36 indices, got %d", len(data.Indices))
	}

	for i := 0; i < len(data.Vertices); i += 8 {
		p := mgl32.Vec3{data.Vertices[i], data.Vertices[i+1], data.Vertices[i+2]}
		if mgl32.Abs(p.X()) != 1 || mgl32.Abs(p.Y()) != 2 || mgl32.Abs(p.Z()) != 3 {
			t.Fatalf("vertex %d at %v is not a corner of the 2x4x6 box", i/8, p)
		}
	}

	// every triangle must wind counter-clockwise around its face normal
	for tri := 0; tri < len(data.Indices); tri += 3 {
		a := vertexPosition(data, data.Indices[tri])
		b := vertexPosition(data, data.Indices[tri+1])
		c := vertexPosition(data, data.Indices[tri+2])
		n := data.Vertices[data.Indices[tri]*8+3:]
		normal := mgl32.Vec3{n[0], n[1], n[2]}
		if b.Sub(a).Cross(c.Sub(a)).Dot(normal) <= 0 {
			t.Errorf("triangle %d winds away from its normal %v", tri/3, normal)
		}
		if a.Dot(normal) <= 0 {
			t.Errorf("triangle %d normal %v points inwards", tri/3, normal)
		}
	}
}

func TestGenerateCubeDefaultsZeroSizes(t *testing.T) {
	data := GenerateCube(0, 0, 0, 0, 0)
	p := vertexPosition(data, 0)
	if mgl32.Abs(p.X()) != 0.5 || mgl32.Abs(p.Y()) != 0.5 || mgl32.Abs(p.Z()) != 0.5 {
		t.Errorf("zero sizes should default to a unit cube, got corner %v", p)
	}
}

func TestCreateCube(t *testing.T) {
	sm, backend, _ := newTestManager(t, 32, 32)
	before := backend.Stats().BuffersCreated

	modelIdx, err := sm.MeshSystem.CreateCube("marker", mgl32.Vec3{0.2, 0.2, 0.2}, metadata.InvalidIndex)
	if err != nil {
		t.Fatalf("CreateCube() error: %v", err)
	}
	model := sm.MeshSystem.GetModel(modelIdx)
	if model == nil {
		t.Fatal("model not registered")
	}
	mesh := sm.MeshSystem.GetMesh(model.MeshIdx)
	if len(mesh.Submeshes) != 1 || len(mesh.Submeshes[0].Indices) != 36 {
		t.Errorf("unexpected cube submeshes: %+v", mesh.Submeshes)
	}
	if got := backend.Stats().BuffersCreated - before; got != 2 {
		t.Errorf("expected a vertex and an index buffer, got %d buffers", got)
	}
}
