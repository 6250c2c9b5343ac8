package metadata

// Handles wrap backend object names per resource category. The zero value
// of every handle means "not created".

type BufferHandle uint32

func (h BufferHandle) Valid() bool { return h != 0 }

type TextureHandle uint32

func (h TextureHandle) Valid() bool { return h != 0 }

type ProgramHandle uint32

func (h ProgramHandle) Valid() bool { return h != 0 }

type FramebufferHandle uint32

func (h FramebufferHandle) Valid() bool { return h != 0 }

type VertexArrayHandle uint32

func (h VertexArrayHandle) Valid() bool { return h != 0 }

/** @brief Sentinel returned by the registries when a resource could not be created. */
const InvalidIndex uint32 = ^uint32(0)
