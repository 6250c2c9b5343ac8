package renderer

import (
	"errors"
	"strings"
	"testing"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/headless"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

const testTechnique = `
#ifdef TEST_PASS
#ifdef VERTEX
layout(location = 0) in vec3 aPosition;
layout(location = 2) in vec2 aTexCoord;
void main() {}
#endif
#ifdef FRAGMENT
void main() {}
#endif
#endif
`

func newTestMesh(t *testing.T, backend RendererBackend, submeshes int) *metadata.Mesh {
	t.Helper()
	mesh := &metadata.Mesh{Name: "test_mesh"}
	var vertices []float32
	var indices []uint32
	for i := 0; i < submeshes; i++ {
		sub := metadata.SubmeshData{
			Layout:   metadata.LayoutPositionNormalUV,
			Vertices: make([]float32, 3*8),
			Indices:  []uint32{0, 1, 2},
		}
		mesh.Submeshes = append(mesh.Submeshes, &metadata.Submesh{
			VertexBufferLayout: sub.Layout,
			Vertices:           sub.Vertices,
			Indices:            sub.Indices,
			VertexOffset:       uint32(len(vertices) * 4),
			IndexOffset:        uint32(len(indices) * 4),
			Bindings:           make(map[metadata.ProgramHandle]*metadata.VertexBinding),
		})
		vertices = append(vertices, sub.Vertices...)
		indices = append(indices, sub.Indices...)
	}
	var err error
	if mesh.VertexBuffer, err = backend.BufferCreate(metadata.BufferKindVertex, metadata.BufferUsageStatic, uint32(len(vertices)*4), Float32Bytes(vertices)); err != nil {
		t.Fatal(err)
	}
	if mesh.IndexBuffer, err = backend.BufferCreate(metadata.BufferKindIndex, metadata.BufferUsageStatic, uint32(len(indices)*4), Uint32Bytes(indices)); err != nil {
		t.Fatal(err)
	}
	return mesh
}

func newTestProgram(t *testing.T, backend RendererBackend) *metadata.Program {
	t.Helper()
	handle, layout, err := backend.ProgramCreate(metadata.ProgramSource{Name: "TEST_PASS", Source: testTechnique})
	if err != nil {
		t.Fatalf("ProgramCreate() error: %v", err)
	}
	return &metadata.Program{Handle: handle, Name: "TEST_PASS", Generation: 1, VertexInputLayout: layout}
}

func TestReconcileOncePerProgram(t *testing.T) {
	backend := headless.New()
	reconciler := NewReconciler(backend)
	mesh := newTestMesh(t, backend, 2)
	program := newTestProgram(t, backend)

	const frames = 10
	for frame := 0; frame < frames; frame++ {
		for i := range mesh.Submeshes {
			if _, err := reconciler.Find(mesh, i, program); err != nil {
				t.Fatalf("frame %d submesh %d: %v", frame, i, err)
			}
		}
	}
	if got := backend.Stats().VertexArraysCreated; got != 2 {
		t.Errorf("vertex arrays created = %d over %d frames, want 2", got, frames)
	}
	if reconciler.Reconciled() != 2 {
		t.Errorf("Reconciled() = %d, want 2", reconciler.Reconciled())
	}
}

func TestReconcileUsesSubmeshOffset(t *testing.T) {
	backend := headless.New()
	reconciler := NewReconciler(backend)
	mesh := newTestMesh(t, backend, 2)
	program := newTestProgram(t, backend)

	binding, err := reconciler.Find(mesh, 1, program)
	if err != nil {
		t.Fatal(err)
	}
	attrs := backend.VertexArrayAttributes(binding.Handle)
	if len(attrs) != 2 {
		t.Fatalf("attributes = %d, want the 2 the program reads", len(attrs))
	}
	base := mesh.Submeshes[1].VertexOffset
	if attrs[0].Location != 0 || attrs[0].Offset != base || attrs[0].ComponentCount != 3 {
		t.Errorf("position attribute = %+v, want offset %d", attrs[0], base)
	}
	if attrs[1].Location != 2 || attrs[1].Offset != base+24 || attrs[1].Stride != 32 {
		t.Errorf("uv attribute = %+v", attrs[1])
	}
}

func TestReconcileMismatchNamesLocation(t *testing.T) {
	backend := headless.New()
	reconciler := NewReconciler(backend)
	mesh := newTestMesh(t, backend, 1)
	mesh.Submeshes[0].VertexBufferLayout = metadata.LayoutScreenQuad
	program := newTestProgram(t, backend)

	_, err := reconciler.Find(mesh, 0, program)
	if !errors.Is(err, core.ErrAttributeMismatch) {
		t.Fatalf("Find() error = %v, want attribute mismatch", err)
	}
	if !strings.Contains(err.Error(), "location 2") {
		t.Errorf("error %q does not name the missing location", err)
	}
	if backend.Stats().VertexArraysCreated != 0 {
		t.Error("a vertex array was created for a mismatched layout")
	}
}

func TestReconcileAfterProgramReload(t *testing.T) {
	backend := headless.New()
	reconciler := NewReconciler(backend)
	mesh := newTestMesh(t, backend, 1)
	program := newTestProgram(t, backend)

	first, err := reconciler.Find(mesh, 0, program)
	if err != nil {
		t.Fatal(err)
	}

	// rebuilt program keeps its handle slot but bumps the generation
	program.Generation++
	second, err := reconciler.Find(mesh, 0, program)
	if err != nil {
		t.Fatal(err)
	}
	if first.Handle == second.Handle {
		t.Error("stale binding was reused after the program generation changed")
	}

	if dropped := reconciler.InvalidateProgram([]*metadata.Mesh{mesh}, program.Handle); dropped != 1 {
		t.Errorf("InvalidateProgram() dropped %d bindings, want 1", dropped)
	}
	if len(mesh.Submeshes[0].Bindings) != 0 {
		t.Error("binding cache not cleared")
	}
}
