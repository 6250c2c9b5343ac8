package headless

import "github.com/spaghettifunk/anima/engine/renderer/metadata"

type Op int

const (
	OpBeginFrame Op = iota
	OpEndFrame
	OpBufferCreate
	OpBufferMap
	OpBufferUnmap
	OpBindRange
	OpTextureCreate
	OpTextureBind
	OpProgramCreate
	OpProgramUse
	OpUniform
	OpVertexArrayCreate
	OpVertexArrayBind
	OpFramebufferCreate
	OpFramebufferBind
	OpPipelineState
	OpClear
	OpViewport
	OpDraw
)

var opNames = map[Op]string{
	OpBeginFrame:        "begin_frame",
	OpEndFrame:          "end_frame",
	OpBufferCreate:      "buffer_create",
	OpBufferMap:         "buffer_map",
	OpBufferUnmap:       "buffer_unmap",
	OpBindRange:         "bind_range",
	OpTextureCreate:     "texture_create",
	OpTextureBind:       "texture_bind",
	OpProgramCreate:     "program_create",
	OpProgramUse:        "program_use",
	OpUniform:           "uniform",
	OpVertexArrayCreate: "vertex_array_create",
	OpVertexArrayBind:   "vertex_array_bind",
	OpFramebufferCreate: "framebuffer_create",
	OpFramebufferBind:   "framebuffer_bind",
	OpPipelineState:     "pipeline_state",
	OpClear:             "clear",
	OpViewport:          "viewport",
	OpDraw:              "draw",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return "unknown"
}

// Command is one recorded backend call.
type Command struct {
	Op     Op
	Target string
	Value  uint32
}

func (b *Backend) record(op Op, target string, value uint32) {
	b.commands = append(b.commands, Command{Op: op, Target: target, Value: value})
}

// Commands returns the recorded calls in submission order.
func (b *Backend) Commands() []Command {
	return b.commands
}

// ResetCommands drops the recorded calls, keeping every resource alive.
func (b *Backend) ResetCommands() {
	b.commands = b.commands[:0]
}

func (b *Backend) Stats() Stats {
	return b.stats
}

// BufferData returns the backing storage of a buffer.
func (b *Backend) BufferData(handle metadata.BufferHandle) []byte {
	if buf, ok := b.buffers[handle]; ok {
		return buf.data
	}
	return nil
}

// BoundRange returns the buffer range last bound to a uniform binding point.
func (b *Backend) BoundRange(binding uint32) (metadata.BufferHandle, metadata.BufferRange, bool) {
	r, ok := b.uniformRanges[binding]
	return r.buffer, r.rng, ok
}

// UniformInt returns the last integer uniform set on a program.
func (b *Backend) UniformInt(handle metadata.ProgramHandle, name string) (int32, bool) {
	p, ok := b.programs[handle]
	if !ok {
		return 0, false
	}
	v, ok := p.ints[name]
	return v, ok
}

// UniformFloat returns the last float uniform set on a program.
func (b *Backend) UniformFloat(handle metadata.ProgramHandle, name string) (float32, bool) {
	p, ok := b.programs[handle]
	if !ok {
		return 0, false
	}
	v, ok := p.floats[name]
	return v, ok
}

// VertexArrayAttributes returns the attribute pointers of a vertex array.
func (b *Backend) VertexArrayAttributes(handle metadata.VertexArrayHandle) []metadata.VertexAttributeBinding {
	if vao, ok := b.vertexArrays[handle]; ok {
		return vao.attributes
	}
	return nil
}

// TextureAlive reports whether a texture handle has not been destroyed.
func (b *Backend) TextureAlive(handle metadata.TextureHandle) bool {
	_, ok := b.textures[handle]
	return ok
}

// TextureConfig returns the creation parameters of a texture.
func (b *Backend) TextureConfig(handle metadata.TextureHandle) (metadata.TextureConfig, bool) {
	c, ok := b.textures[handle]
	if !ok {
		return metadata.TextureConfig{}, false
	}
	return *c, true
}
