package metadata

/**
 * @brief Links one submesh to one program. Valid only while the mesh
 * buffers are alive and the program has not been recompiled since.
 */
type VertexBinding struct {
	Handle  VertexArrayHandle
	Program ProgramHandle
	/** @brief The program generation the binding was reconciled against. */
	Generation uint32
}

/**
 * @brief A drawable region inside the shared buffers of a Mesh.
 */
type Submesh struct {
	VertexBufferLayout VertexBufferLayout
	Vertices           []float32
	Indices            []uint32
	/** @brief Byte offset of the first vertex inside the mesh vertex buffer. */
	VertexOffset uint32
	/** @brief Byte offset of the first index inside the mesh index buffer. */
	IndexOffset uint32
	/** @brief Lazily populated bindings, one per program. */
	Bindings map[ProgramHandle]*VertexBinding
}

type Mesh struct {
	Name         string
	Submeshes    []*Submesh
	VertexBuffer BufferHandle
	IndexBuffer  BufferHandle
}

/**
 * @brief A mesh plus the material each submesh is drawn with.
 */
type Model struct {
	MeshIdx     uint32
	MaterialIdx []uint32
}

/**
 * @brief Importer output for one submesh. Vertices follow Layout.
 */
type SubmeshData struct {
	Layout        VertexBufferLayout
	Vertices      []float32
	Indices       []uint32
	MaterialIndex int
}

/**
 * @brief Everything an importer produces for one model file.
 */
type ModelData struct {
	Name      string
	Submeshes []SubmeshData
	Materials []MaterialData
}
