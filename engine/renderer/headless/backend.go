package headless

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// maxTextureUnits mirrors the minimum combined texture unit count of GL 4.3.
const maxTextureUnits = 16

// maxColorAttachments mirrors GL_MAX_COLOR_ATTACHMENTS on common hardware.
const maxColorAttachments = 8

var DefaultLimits = metadata.DeviceLimits{
	MaxUniformBlockSize:          65536,
	UniformBufferOffsetAlignment: 256,
}

type buffer struct {
	kind   metadata.BufferKind
	usage  metadata.BufferUsage
	data   []byte
	mapped bool
}

type program struct {
	name   string
	layout metadata.VertexShaderLayout
	// false when compilation or reflection failed
	linked bool
	warned bool
	ints   map[string]int32
	floats map[string]float32
	blocks map[string]uint32
}

type vertexArray struct {
	vertexBuffer metadata.BufferHandle
	indexBuffer  metadata.BufferHandle
	attributes   []metadata.VertexAttributeBinding
}

type boundRange struct {
	buffer metadata.BufferHandle
	rng    metadata.BufferRange
}

// Stats counts backend objects and calls since creation.
type Stats struct {
	BuffersCreated      int
	TexturesCreated     int
	ProgramsCreated     int
	VertexArraysCreated int
	FramebuffersCreated int
	DrawCalls           int
	Frames              int
}

// Backend is a renderer backend that keeps every resource in memory and
// records the commands it receives. It runs without a window or driver.
type Backend struct {
	config *metadata.RendererBackendConfig
	info   *metadata.DeviceInfo
	limits metadata.DeviceLimits

	nextHandle uint32

	buffers      map[metadata.BufferHandle]*buffer
	textures     map[metadata.TextureHandle]*metadata.TextureConfig
	programs     map[metadata.ProgramHandle]*program
	vertexArrays map[metadata.VertexArrayHandle]*vertexArray
	framebuffers map[metadata.FramebufferHandle]*metadata.Framebuffer

	boundFramebuffer *metadata.Framebuffer
	boundProgram     metadata.ProgramHandle
	boundVertexArray metadata.VertexArrayHandle
	boundTextures    [maxTextureUnits]metadata.TextureHandle
	// units written since the current framebuffer was bound
	passTextures  map[uint32]metadata.TextureHandle
	uniformRanges map[uint32]boundRange
	state         metadata.PipelineState

	commands []Command
	stats    Stats
}

type Option func(*Backend)

// WithLimits overrides the reported device limits.
func WithLimits(limits metadata.DeviceLimits) Option {
	return func(b *Backend) {
		b.limits = limits
	}
}

func New(options ...Option) *Backend {
	b := &Backend{
		limits: DefaultLimits,
		info: &metadata.DeviceInfo{
			Version:                "4.3 headless",
			Renderer:               "anima headless recorder",
			Vendor:                 "anima",
			ShadingLanguageVersion: "4.30",
		},
		buffers:       make(map[metadata.BufferHandle]*buffer),
		textures:      make(map[metadata.TextureHandle]*metadata.TextureConfig),
		programs:      make(map[metadata.ProgramHandle]*program),
		vertexArrays:  make(map[metadata.VertexArrayHandle]*vertexArray),
		framebuffers:  make(map[metadata.FramebufferHandle]*metadata.Framebuffer),
		passTextures:  make(map[uint32]metadata.TextureHandle),
		uniformRanges: make(map[uint32]boundRange),
	}
	for _, o := range options {
		o(b)
	}
	return b
}

func (b *Backend) Initialize(config *metadata.RendererBackendConfig) error {
	b.config = config
	core.LogInfo("Headless renderer initialized (max uniform block %d bytes, offset alignment %d).",
		b.limits.MaxUniformBlockSize, b.limits.UniformBufferOffsetAlignment)
	return nil
}

func (b *Backend) Shutdown() error {
	for h := range b.vertexArrays {
		b.VertexArrayDestroy(h)
	}
	for h := range b.framebuffers {
		b.FramebufferDestroy(h)
	}
	for h := range b.textures {
		b.TextureDestroy(h)
	}
	for h := range b.programs {
		b.ProgramDestroy(h)
	}
	for h := range b.buffers {
		b.BufferDestroy(h)
	}
	return nil
}

func (b *Backend) Info() *metadata.DeviceInfo { return b.info }

func (b *Backend) Limits() metadata.DeviceLimits { return b.limits }

func (b *Backend) BeginFrame(deltaTime float64) error {
	b.record(OpBeginFrame, "", 0)
	return nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	b.stats.Frames++
	b.record(OpEndFrame, "", 0)
	return nil
}

func (b *Backend) newHandle() uint32 {
	b.nextHandle++
	return b.nextHandle
}

func (b *Backend) BufferCreate(kind metadata.BufferKind, usage metadata.BufferUsage, size uint32, data []byte) (metadata.BufferHandle, error) {
	if data != nil && uint32(len(data)) > size {
		return 0, errors.Errorf("func BufferCreate - %d bytes of data do not fit a %d byte %s buffer", len(data), size, kind)
	}
	h := metadata.BufferHandle(b.newHandle())
	storage := make([]byte, size)
	copy(storage, data)
	b.buffers[h] = &buffer{kind: kind, usage: usage, data: storage}
	b.stats.BuffersCreated++
	b.record(OpBufferCreate, kind.String(), uint32(h))
	return h, nil
}

func (b *Backend) BufferDestroy(handle metadata.BufferHandle) {
	delete(b.buffers, handle)
}

func (b *Backend) BufferMap(handle metadata.BufferHandle) ([]byte, error) {
	buf, ok := b.buffers[handle]
	if !ok {
		return nil, errors.Wrapf(core.ErrInvalidHandle, "buffer %d", handle)
	}
	if buf.mapped {
		return nil, errors.Wrapf(core.ErrBufferMapped, "buffer %d", handle)
	}
	buf.mapped = true
	b.record(OpBufferMap, buf.kind.String(), uint32(handle))
	return buf.data, nil
}

func (b *Backend) BufferUnmap(handle metadata.BufferHandle) error {
	buf, ok := b.buffers[handle]
	if !ok {
		return errors.Wrapf(core.ErrInvalidHandle, "buffer %d", handle)
	}
	buf.mapped = false
	b.record(OpBufferUnmap, buf.kind.String(), uint32(handle))
	return nil
}

func (b *Backend) BufferBindRange(handle metadata.BufferHandle, binding uint32, r metadata.BufferRange) {
	b.uniformRanges[binding] = boundRange{buffer: handle, rng: r}
	b.record(OpBindRange, fmt.Sprintf("binding %d [%d,%d)", binding, r.Offset, r.End()), binding)
}

func (b *Backend) TextureCreate(config *metadata.TextureConfig, pixels []uint8) (metadata.TextureHandle, error) {
	if pixels != nil {
		channels := uint32(4)
		if config.Format == metadata.TextureFormatRGB8 {
			channels = 3
		}
		if want := config.Width * config.Height * channels; uint32(len(pixels)) < want {
			return 0, errors.Errorf("func TextureCreate - expected %d bytes of pixels, got %d", want, len(pixels))
		}
	}
	h := metadata.TextureHandle(b.newHandle())
	c := *config
	b.textures[h] = &c
	b.stats.TexturesCreated++
	b.record(OpTextureCreate, config.Format.String(), uint32(h))
	return h, nil
}

func (b *Backend) TextureDestroy(handle metadata.TextureHandle) {
	delete(b.textures, handle)
}

func (b *Backend) TextureBind(unit uint32, handle metadata.TextureHandle) {
	if unit < maxTextureUnits {
		b.boundTextures[unit] = handle
	}
	b.passTextures[unit] = handle
	b.record(OpTextureBind, fmt.Sprintf("unit %d", unit), uint32(handle))
}

func (b *Backend) ProgramCreate(source metadata.ProgramSource) (metadata.ProgramHandle, metadata.VertexShaderLayout, error) {
	h := metadata.ProgramHandle(b.newHandle())
	layout, err := reflectVertexInputs(source)
	b.programs[h] = &program{
		name:   source.Name,
		layout: layout,
		linked: err == nil,
		ints:   make(map[string]int32),
		floats: make(map[string]float32),
		blocks: make(map[string]uint32),
	}
	b.stats.ProgramsCreated++
	b.record(OpProgramCreate, source.Name, uint32(h))
	return h, layout, err
}

func (b *Backend) ProgramDestroy(handle metadata.ProgramHandle) {
	delete(b.programs, handle)
}

// ProgramUse binds a program. An unlinked program stays bound so its draws
// can be dropped, and is reported once.
func (b *Backend) ProgramUse(handle metadata.ProgramHandle) {
	b.boundProgram = handle
	name := ""
	if p, ok := b.programs[handle]; ok {
		name = p.name
		if !p.linked && !p.warned {
			core.LogWarn("program `%s` is not linked, its draws are skipped", p.name)
			p.warned = true
		}
	}
	b.record(OpProgramUse, name, uint32(handle))
}

func (b *Backend) ProgramSetInt(handle metadata.ProgramHandle, name string, value int32) {
	if p, ok := b.programs[handle]; ok {
		p.ints[name] = value
	}
	b.record(OpUniform, name, uint32(value))
}

func (b *Backend) ProgramSetFloat(handle metadata.ProgramHandle, name string, value float32) {
	if p, ok := b.programs[handle]; ok {
		p.floats[name] = value
	}
	b.record(OpUniform, name, 0)
}

func (b *Backend) ProgramBindUniformBlock(handle metadata.ProgramHandle, block string, binding uint32) {
	if p, ok := b.programs[handle]; ok && p.linked {
		p.blocks[block] = binding
	}
}

func (b *Backend) VertexArrayCreate(vertexBuffer, indexBuffer metadata.BufferHandle, attributes []metadata.VertexAttributeBinding) (metadata.VertexArrayHandle, error) {
	if _, ok := b.buffers[vertexBuffer]; !ok {
		return 0, errors.Wrapf(core.ErrInvalidHandle, "vertex buffer %d", vertexBuffer)
	}
	if _, ok := b.buffers[indexBuffer]; !ok {
		return 0, errors.Wrapf(core.ErrInvalidHandle, "index buffer %d", indexBuffer)
	}
	h := metadata.VertexArrayHandle(b.newHandle())
	b.vertexArrays[h] = &vertexArray{
		vertexBuffer: vertexBuffer,
		indexBuffer:  indexBuffer,
		attributes:   append([]metadata.VertexAttributeBinding(nil), attributes...),
	}
	b.stats.VertexArraysCreated++
	b.record(OpVertexArrayCreate, "", uint32(h))
	return h, nil
}

func (b *Backend) VertexArrayDestroy(handle metadata.VertexArrayHandle) {
	delete(b.vertexArrays, handle)
	if b.boundVertexArray == handle {
		b.boundVertexArray = 0
	}
}

func (b *Backend) VertexArrayBind(handle metadata.VertexArrayHandle) {
	b.boundVertexArray = handle
	b.record(OpVertexArrayBind, "", uint32(handle))
}

func (b *Backend) FramebufferCreate(width, height uint32, attachments []*metadata.Attachment) (metadata.FramebufferHandle, metadata.FramebufferStatus, error) {
	h := metadata.FramebufferHandle(b.newHandle())
	status := b.checkFramebuffer(width, height, attachments)
	b.framebuffers[h] = &metadata.Framebuffer{Handle: h, Width: width, Height: height, Attachments: attachments}
	b.stats.FramebuffersCreated++
	b.record(OpFramebufferCreate, status.String(), uint32(h))
	return h, status, nil
}

func (b *Backend) checkFramebuffer(width, height uint32, attachments []*metadata.Attachment) metadata.FramebufferStatus {
	if len(attachments) == 0 {
		return metadata.FramebufferIncompleteMissingAttachment
	}
	colors, depths := 0, 0
	for _, a := range attachments {
		if a == nil || a.Texture == nil {
			return metadata.FramebufferIncompleteAttachment
		}
		config, ok := b.textures[a.Texture.Handle]
		if !ok || config.Width == 0 || config.Height == 0 {
			return metadata.FramebufferIncompleteAttachment
		}
		switch a.Type {
		case metadata.AttachmentTypeColor:
			if config.Format.IsDepth() {
				return metadata.FramebufferIncompleteAttachment
			}
			colors++
		case metadata.AttachmentTypeDepth:
			if !config.Format.IsDepth() {
				return metadata.FramebufferIncompleteAttachment
			}
			depths++
		}
	}
	if depths > 1 {
		return metadata.FramebufferUnsupported
	}
	if colors > maxColorAttachments {
		return metadata.FramebufferIncompleteDrawBuffer
	}
	return metadata.FramebufferComplete
}

func (b *Backend) FramebufferDestroy(handle metadata.FramebufferHandle) {
	delete(b.framebuffers, handle)
}

func (b *Backend) FramebufferBind(fb *metadata.Framebuffer) {
	b.boundFramebuffer = fb
	clear(b.passTextures)
	name := "default"
	if fb != nil {
		name = fb.Name
	}
	b.record(OpFramebufferBind, name, 0)
}

func (b *Backend) SetPipelineState(state metadata.PipelineState) {
	b.state = state
	detail := "depth off"
	if state.DepthTest {
		detail = "depth on"
	}
	b.record(OpPipelineState, detail, uint32(state.CullMode))
}

func (b *Backend) Clear(color mgl32.Vec4, flags metadata.ClearFlag) {
	b.record(OpClear, "", uint32(flags))
}

func (b *Backend) Viewport(width, height uint32) {
	b.record(OpViewport, fmt.Sprintf("%dx%d", width, height), 0)
}

// DrawIndexed validates the bound state the way a debug driver would: a
// program and vertex array must be bound, no buffer may be mapped, and no
// texture bound during this pass may belong to the framebuffer being drawn.
// Draws with an unlinked program are dropped without error.
func (b *Backend) DrawIndexed(indexCount uint32, indexByteOffset uint32) error {
	p, ok := b.programs[b.boundProgram]
	if !ok {
		return errors.Wrap(core.ErrInvalidHandle, "func DrawIndexed - no program bound")
	}
	if !p.linked {
		return nil
	}
	vao, ok := b.vertexArrays[b.boundVertexArray]
	if !ok {
		return errors.Wrap(core.ErrInvalidHandle, "func DrawIndexed - no vertex array bound")
	}
	for h, buf := range b.buffers {
		if buf.mapped {
			return errors.Wrapf(core.ErrBufferMapped, "func DrawIndexed - %s buffer %d is mapped", buf.kind, h)
		}
	}
	if ib := b.buffers[vao.indexBuffer]; ib != nil {
		if end := uint64(indexByteOffset) + uint64(indexCount)*4; end > uint64(len(ib.data)) {
			return errors.Errorf("func DrawIndexed - reading indices up to byte %d of a %d byte index buffer", end, len(ib.data))
		}
	}
	if b.boundFramebuffer != nil {
		for unit, tex := range b.passTextures {
			if b.boundFramebuffer.Owns(tex) {
				return errors.Wrapf(core.ErrFeedbackLoop, "func DrawIndexed - texture %d on unit %d is an attachment of `%s`",
					tex, unit, b.boundFramebuffer.Name)
			}
		}
	}
	b.stats.DrawCalls++
	b.record(OpDraw, "", indexCount)
	return nil
}
