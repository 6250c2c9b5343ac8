package metadata

/**
 * @brief One attribute of a mesh's interleaved vertex data.
 */
type VertexBufferAttribute struct {
	/** @brief The shader input location the attribute feeds. */
	Location uint32
	/** @brief Number of float components (1 to 4). */
	ComponentCount uint8
	/** @brief Byte offset of the attribute inside one vertex. */
	Offset uint32
}

/**
 * @brief Describes how a submesh stores its vertices.
 */
type VertexBufferLayout struct {
	Attributes []VertexBufferAttribute
	/** @brief Size in bytes of one vertex. */
	Stride uint32
}

// Find returns the attribute bound to `location`, if the layout provides one.
func (l *VertexBufferLayout) Find(location uint32) (VertexBufferAttribute, bool) {
	for _, attr := range l.Attributes {
		if attr.Location == location {
			return attr, true
		}
	}
	return VertexBufferAttribute{}, false
}

/**
 * @brief An active vertex input reflected from a linked program.
 */
type VertexShaderAttribute struct {
	Location       uint32
	ComponentCount uint8
}

/**
 * @brief The vertex inputs a program expects.
 */
type VertexShaderLayout struct {
	Attributes []VertexShaderAttribute
}

/**
 * @brief A single resolved attribute pointer handed to the backend when
 * creating a vertex array.
 */
type VertexAttributeBinding struct {
	Location       uint32
	ComponentCount uint8
	Stride         uint32
	/** @brief Absolute byte offset into the shared vertex buffer. */
	Offset uint32
}

// Layouts used by the built-in geometry.
var (
	// position (3), normal (3), uv (2)
	LayoutPositionNormalUV = VertexBufferLayout{
		Attributes: []VertexBufferAttribute{
			{Location: 0, ComponentCount: 3, Offset: 0},
			{Location: 1, ComponentCount: 3, Offset: 12},
			{Location: 2, ComponentCount: 2, Offset: 24},
		},
		Stride: 32,
	}
	// position (2), uv (2)
	LayoutScreenQuad = VertexBufferLayout{
		Attributes: []VertexBufferAttribute{
			{Location: 0, ComponentCount: 2, Offset: 0},
			{Location: 1, ComponentCount: 2, Offset: 8},
		},
		Stride: 16,
	}
)
