package systems

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type MeshSystemConfig struct {
	/** @brief The maximum number of meshes that can be created. */
	MaxMeshCount uint32
}

// MeshSystem uploads geometry into one vertex and one index buffer per mesh
// and pairs meshes with materials into models.
type MeshSystem struct {
	Config *MeshSystemConfig

	meshes []*metadata.Mesh
	models []*metadata.Model
	lookup map[string]uint32

	backend      renderer.RendererBackend
	reconciler   *renderer.Reconciler
	assetManager AssetLoader
	materials    *MaterialSystem
}

func NewMeshSystem(config *MeshSystemConfig, backend renderer.RendererBackend, reconciler *renderer.Reconciler, am AssetLoader, ms *MaterialSystem) (*MeshSystem, error) {
	if config.MaxMeshCount == 0 {
		err := errors.New("func NewMeshSystem - config.MaxMeshCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if backend == nil || reconciler == nil {
		return nil, errors.New("func NewMeshSystem - backend and reconciler are required")
	}
	return &MeshSystem{
		Config:       config,
		lookup:       make(map[string]uint32),
		backend:      backend,
		reconciler:   reconciler,
		assetManager: am,
		materials:    ms,
	}, nil
}

// Create uploads the submeshes back to back into shared buffers and returns
// the mesh index. Indices stay relative to their submesh; the byte offset of
// each submesh is recorded so attribute pointers can start at it.
func (mls *MeshSystem) Create(name string, submeshes []metadata.SubmeshData) (uint32, error) {
	if idx, ok := mls.lookup[name]; ok {
		return idx, nil
	}
	if uint32(len(mls.meshes)) >= mls.Config.MaxMeshCount {
		return metadata.InvalidIndex, errors.Errorf("func Create - mesh limit of %d reached, cannot create `%s`", mls.Config.MaxMeshCount, name)
	}
	if len(submeshes) == 0 {
		return metadata.InvalidIndex, errors.Errorf("func Create - mesh `%s` has no submeshes", name)
	}

	mesh := &metadata.Mesh{Name: name}
	var vertices []float32
	var indices []uint32
	for i, data := range submeshes {
		if data.Layout.Stride == 0 || len(data.Vertices)*4%int(data.Layout.Stride) != 0 {
			return metadata.InvalidIndex, errors.Errorf("func Create - submesh %d of `%s` does not match its layout stride %d", i, name, data.Layout.Stride)
		}
		vertexCount := uint32(len(data.Vertices)*4) / data.Layout.Stride
		for _, idx := range data.Indices {
			if idx >= vertexCount {
				return metadata.InvalidIndex, errors.Errorf("func Create - submesh %d of `%s` indexes vertex %d of %d", i, name, idx, vertexCount)
			}
		}
		mesh.Submeshes = append(mesh.Submeshes, &metadata.Submesh{
			VertexBufferLayout: data.Layout,
			Vertices:           data.Vertices,
			Indices:            data.Indices,
			VertexOffset:       uint32(len(vertices) * 4),
			IndexOffset:        uint32(len(indices) * 4),
			Bindings:           make(map[metadata.ProgramHandle]*metadata.VertexBinding),
		})
		vertices = append(vertices, data.Vertices...)
		indices = append(indices, data.Indices...)
	}

	vb, err := mls.backend.BufferCreate(metadata.BufferKindVertex, metadata.BufferUsageStatic, uint32(len(vertices)*4), renderer.Float32Bytes(vertices))
	if err != nil {
		return metadata.InvalidIndex, errors.Wrapf(err, "func Create - vertex buffer of `%s`", name)
	}
	ib, err := mls.backend.BufferCreate(metadata.BufferKindIndex, metadata.BufferUsageStatic, uint32(len(indices)*4), renderer.Uint32Bytes(indices))
	if err != nil {
		mls.backend.BufferDestroy(vb)
		return metadata.InvalidIndex, errors.Wrapf(err, "func Create - index buffer of `%s`", name)
	}
	mesh.VertexBuffer = vb
	mesh.IndexBuffer = ib

	mls.meshes = append(mls.meshes, mesh)
	idx := uint32(len(mls.meshes) - 1)
	mls.lookup[name] = idx
	core.LogDebug("mesh `%s` created: %d submeshes, %d vertices bytes, %d indices", name, len(mesh.Submeshes), len(vertices)*4, len(indices))
	return idx, nil
}

// CreateModel pairs a mesh with one material per submesh and returns the
// model index.
func (mls *MeshSystem) CreateModel(meshIdx uint32, materialIdx []uint32) (uint32, error) {
	mesh := mls.GetMesh(meshIdx)
	if mesh == nil {
		return metadata.InvalidIndex, errors.Wrapf(core.ErrInvalidHandle, "func CreateModel - no mesh at index %d", meshIdx)
	}
	materials := make([]uint32, len(mesh.Submeshes))
	for i := range materials {
		materials[i] = metadata.InvalidIndex
		if i < len(materialIdx) {
			materials[i] = materialIdx[i]
		}
	}
	mls.models = append(mls.models, &metadata.Model{MeshIdx: meshIdx, MaterialIdx: materials})
	return uint32(len(mls.models) - 1), nil
}

// LoadModel imports a model file with its materials and textures and
// returns the model index.
func (mls *MeshSystem) LoadModel(path string) (uint32, error) {
	if mls.assetManager == nil {
		return metadata.InvalidIndex, errors.New("func LoadModel - no asset manager")
	}
	res, err := mls.assetManager.LoadAsset(path, metadata.ResourceTypeModel, nil)
	if err != nil {
		core.LogError(err.Error())
		return metadata.InvalidIndex, err
	}
	data, ok := res.Data.(*metadata.ModelData)
	if !ok {
		return metadata.InvalidIndex, errors.Errorf("func LoadModel - `%s` did not decode to a model", path)
	}

	var materialIndices []uint32
	if mls.materials != nil {
		materialIndices = mls.materials.CreateFromData(data.Materials)
	}

	meshIdx, err := mls.Create(path, data.Submeshes)
	if err != nil {
		core.LogError(err.Error())
		return metadata.InvalidIndex, err
	}

	perSubmesh := make([]uint32, len(data.Submeshes))
	for i, s := range data.Submeshes {
		perSubmesh[i] = metadata.InvalidIndex
		if s.MaterialIndex >= 0 && s.MaterialIndex < len(materialIndices) {
			perSubmesh[i] = materialIndices[s.MaterialIndex]
		}
	}
	return mls.CreateModel(meshIdx, perSubmesh)
}

// CreatePlane builds a unit quad in the XY plane facing +Z, drawn with the
// given material, and returns the model index.
func (mls *MeshSystem) CreatePlane(name string, materialIdx uint32) (uint32, error) {
	meshIdx, err := mls.Create(name, []metadata.SubmeshData{{
		Layout: metadata.LayoutPositionNormalUV,
		Vertices: []float32{
			0, 0, 0, 0, 0, 1, 0, 0,
			1, 0, 0, 0, 0, 1, 1, 0,
			1, 1, 0, 0, 0, 1, 1, 1,
			0, 1, 0, 0, 0, 1, 0, 1,
		},
		Indices:       []uint32{0, 1, 2, 0, 2, 3},
		MaterialIndex: 0,
	}})
	if err != nil {
		return metadata.InvalidIndex, err
	}
	return mls.CreateModel(meshIdx, []uint32{materialIdx})
}

func (mls *MeshSystem) GetMesh(idx uint32) *metadata.Mesh {
	if idx == metadata.InvalidIndex || int(idx) >= len(mls.meshes) {
		return nil
	}
	return mls.meshes[idx]
}

func (mls *MeshSystem) GetModel(idx uint32) *metadata.Model {
	if idx == metadata.InvalidIndex || int(idx) >= len(mls.models) {
		return nil
	}
	return mls.models[idx]
}

func (mls *MeshSystem) Meshes() []*metadata.Mesh {
	return mls.meshes
}

func (mls *MeshSystem) Models() []*metadata.Model {
	return mls.models
}

func (mls *MeshSystem) Shutdown() error {
	for _, mesh := range mls.meshes {
		mls.reconciler.ReleaseMesh(mesh)
		if mesh.VertexBuffer.Valid() {
			mls.backend.BufferDestroy(mesh.VertexBuffer)
		}
		if mesh.IndexBuffer.Valid() {
			mls.backend.BufferDestroy(mesh.IndexBuffer)
		}
	}
	mls.meshes = nil
	mls.models = nil
	mls.lookup = make(map[string]uint32)
	return nil
}
