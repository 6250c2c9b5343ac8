package renderer

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// Reconciler builds vertex bindings between submeshes and programs and
// caches them on the submesh, keyed by program handle.
type Reconciler struct {
	backend RendererBackend

	// number of vertex arrays created, for diagnostics
	reconciled uint64
}

func NewReconciler(backend RendererBackend) *Reconciler {
	return &Reconciler{backend: backend}
}

// Reconcile matches every vertex input of program against the submesh
// layout and creates the backend binding. A program input the submesh does
// not provide is a configuration error and nothing is created.
func (r *Reconciler) Reconcile(mesh *metadata.Mesh, submesh *metadata.Submesh, program *metadata.Program) (*metadata.VertexBinding, error) {
	layout := &submesh.VertexBufferLayout
	attributes := make([]metadata.VertexAttributeBinding, 0, len(program.VertexInputLayout.Attributes))

	for _, input := range program.VertexInputLayout.Attributes {
		attr, ok := layout.Find(input.Location)
		if !ok {
			return nil, errors.Wrapf(core.ErrAttributeMismatch,
				"program `%s` reads location %d (%d components) which mesh `%s` does not provide",
				program.Name, input.Location, input.ComponentCount, mesh.Name)
		}
		attributes = append(attributes, metadata.VertexAttributeBinding{
			Location:       attr.Location,
			ComponentCount: attr.ComponentCount,
			Stride:         layout.Stride,
			Offset:         attr.Offset + submesh.VertexOffset,
		})
	}

	handle, err := r.backend.VertexArrayCreate(mesh.VertexBuffer, mesh.IndexBuffer, attributes)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create vertex array for program `%s` and mesh `%s`", program.Name, mesh.Name)
	}
	r.reconciled++

	return &metadata.VertexBinding{
		Handle:     handle,
		Program:    program.Handle,
		Generation: program.Generation,
	}, nil
}

// Find returns the cached binding of submesh for program, reconciling on
// first use or when the program was rebuilt since the binding was made.
func (r *Reconciler) Find(mesh *metadata.Mesh, submeshIdx int, program *metadata.Program) (*metadata.VertexBinding, error) {
	if submeshIdx < 0 || submeshIdx >= len(mesh.Submeshes) {
		return nil, errors.Wrapf(core.ErrInvalidHandle, "mesh `%s` has no submesh %d", mesh.Name, submeshIdx)
	}
	submesh := mesh.Submeshes[submeshIdx]

	if binding, ok := submesh.Bindings[program.Handle]; ok {
		if binding.Generation == program.Generation {
			return binding, nil
		}
		r.backend.VertexArrayDestroy(binding.Handle)
		delete(submesh.Bindings, program.Handle)
	}

	binding, err := r.Reconcile(mesh, submesh, program)
	if err != nil {
		return nil, err
	}
	if submesh.Bindings == nil {
		submesh.Bindings = make(map[metadata.ProgramHandle]*metadata.VertexBinding)
	}
	submesh.Bindings[program.Handle] = binding
	return binding, nil
}

// InvalidateProgram drops every binding that references handle. They are
// rebuilt the next time the program draws the submesh.
func (r *Reconciler) InvalidateProgram(meshes []*metadata.Mesh, handle metadata.ProgramHandle) int {
	dropped := 0
	for _, mesh := range meshes {
		for _, submesh := range mesh.Submeshes {
			if binding, ok := submesh.Bindings[handle]; ok {
				r.backend.VertexArrayDestroy(binding.Handle)
				delete(submesh.Bindings, handle)
				dropped++
			}
		}
	}
	return dropped
}

// ReleaseMesh destroys all bindings of mesh. Call it before the mesh
// buffers are destroyed.
func (r *Reconciler) ReleaseMesh(mesh *metadata.Mesh) {
	for _, submesh := range mesh.Submeshes {
		for handle, binding := range submesh.Bindings {
			r.backend.VertexArrayDestroy(binding.Handle)
			delete(submesh.Bindings, handle)
		}
	}
}

// Reconciled returns how many bindings have been created so far.
func (r *Reconciler) Reconciled() uint64 {
	return r.reconciled
}
