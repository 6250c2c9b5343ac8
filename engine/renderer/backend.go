package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// RendererBackend is the graphics API call surface the engine renders
// through. Every call happens on the goroutine that owns the context.
type RendererBackend interface {
	Initialize(config *metadata.RendererBackendConfig) error
	Shutdown() error
	Info() *metadata.DeviceInfo
	Limits() metadata.DeviceLimits
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error

	BufferCreate(kind metadata.BufferKind, usage metadata.BufferUsage, size uint32, data []byte) (metadata.BufferHandle, error)
	BufferDestroy(handle metadata.BufferHandle)
	// BufferMap exposes the whole buffer for writing until BufferUnmap.
	BufferMap(handle metadata.BufferHandle) ([]byte, error)
	BufferUnmap(handle metadata.BufferHandle) error
	BufferBindRange(handle metadata.BufferHandle, binding uint32, r metadata.BufferRange)

	TextureCreate(config *metadata.TextureConfig, pixels []uint8) (metadata.TextureHandle, error)
	TextureDestroy(handle metadata.TextureHandle)
	TextureBind(unit uint32, handle metadata.TextureHandle)

	// ProgramCreate compiles both stages of the technique and links them.
	// On compile or link failure the returned error carries the driver log
	// and the handle is still usable for bookkeeping. Such a program can be
	// bound, but its uniforms are ignored and draws issued with it are skipped.
	ProgramCreate(source metadata.ProgramSource) (metadata.ProgramHandle, metadata.VertexShaderLayout, error)
	ProgramDestroy(handle metadata.ProgramHandle)
	ProgramUse(handle metadata.ProgramHandle)
	ProgramSetInt(handle metadata.ProgramHandle, name string, value int32)
	ProgramSetFloat(handle metadata.ProgramHandle, name string, value float32)
	ProgramBindUniformBlock(handle metadata.ProgramHandle, block string, binding uint32)

	VertexArrayCreate(vertexBuffer, indexBuffer metadata.BufferHandle, attributes []metadata.VertexAttributeBinding) (metadata.VertexArrayHandle, error)
	VertexArrayDestroy(handle metadata.VertexArrayHandle)
	VertexArrayBind(handle metadata.VertexArrayHandle)

	// FramebufferCreate attaches the given textures and reports completeness.
	FramebufferCreate(width, height uint32, attachments []*metadata.Attachment) (metadata.FramebufferHandle, metadata.FramebufferStatus, error)
	FramebufferDestroy(handle metadata.FramebufferHandle)
	// FramebufferBind binds fb for drawing. nil selects the visible surface.
	FramebufferBind(fb *metadata.Framebuffer)

	SetPipelineState(state metadata.PipelineState)
	Clear(color mgl32.Vec4, flags metadata.ClearFlag)
	Viewport(width, height uint32)
	DrawIndexed(indexCount uint32, indexByteOffset uint32) error
}
