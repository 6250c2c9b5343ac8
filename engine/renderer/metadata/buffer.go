package metadata

/** @brief The kind of GPU buffer, which determines its binding target. */
type BufferKind int

const (
	/** @brief Interleaved vertex data. */
	BufferKindVertex BufferKind = iota
	/** @brief 32-bit triangle indices. */
	BufferKindIndex
	/** @brief Uniform block storage, bound by ranges. */
	BufferKindUniform
)

func (k BufferKind) String() string {
	switch k {
	case BufferKindVertex:
		return "vertex"
	case BufferKindIndex:
		return "index"
	case BufferKindUniform:
		return "uniform"
	}
	return "unknown"
}

/** @brief How often the buffer contents are expected to change. */
type BufferUsage int

const (
	/** @brief Written once at load time. */
	BufferUsageStatic BufferUsage = iota
	/** @brief Rewritten every frame. */
	BufferUsageStream
)

/** @brief A byte range inside a buffer. */
type BufferRange struct {
	/** @brief The Offset in bytes. */
	Offset uint32
	/** @brief The size in bytes. */
	Size uint32
}

// End returns the first byte past the range.
func (r BufferRange) End() uint32 {
	return r.Offset + r.Size
}
