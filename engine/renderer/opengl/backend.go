package opengl

import (
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// Backend renders through an OpenGL 4.3 core context. The context must be
// current on the calling goroutine before Initialize.
type Backend struct {
	config *metadata.RendererBackendConfig
	info   *metadata.DeviceInfo
	limits metadata.DeviceLimits

	buffers  map[metadata.BufferHandle]*buffer
	programs map[metadata.ProgramHandle]*program
	// nil while no linked program is bound
	current *program
	// number of buffers currently mapped
	mapped int

	state       metadata.PipelineState
	initialized bool
}

func New() *Backend {
	return &Backend{
		buffers:  make(map[metadata.BufferHandle]*buffer),
		programs: make(map[metadata.ProgramHandle]*program),
	}
}

func (b *Backend) Initialize(config *metadata.RendererBackendConfig) error {
	if err := gl.Init(); err != nil {
		return errors.Wrap(err, "func Initialize - failed to load OpenGL functions")
	}
	b.config = config
	b.info = queryDeviceInfo()
	b.limits = queryDeviceLimits()

	if config.DebugContext {
		if !enableDebugOutput() {
			core.LogWarn("debug output requested but the context has no debug flag")
		}
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	b.state = metadata.PipelineState{DepthTest: true}
	b.initialized = true
	return nil
}

func (b *Backend) Shutdown() error {
	if !b.initialized {
		return nil
	}
	for h := range b.programs {
		b.ProgramDestroy(h)
	}
	for h := range b.buffers {
		b.BufferDestroy(h)
	}
	b.initialized = false
	return nil
}

func (b *Backend) Info() *metadata.DeviceInfo { return b.info }

func (b *Backend) Limits() metadata.DeviceLimits { return b.limits }

func (b *Backend) BeginFrame(deltaTime float64) error {
	return nil
}

// EndFrame checks for errors raised during the frame. Presenting is done by
// the platform.
func (b *Backend) EndFrame(deltaTime float64) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return errors.Errorf("func EndFrame - OpenGL error 0x%x", code)
	}
	return nil
}

func queryDeviceInfo() *metadata.DeviceInfo {
	info := &metadata.DeviceInfo{
		Version:                gl.GoStr(gl.GetString(gl.VERSION)),
		Renderer:               gl.GoStr(gl.GetString(gl.RENDERER)),
		Vendor:                 gl.GoStr(gl.GetString(gl.VENDOR)),
		ShadingLanguageVersion: gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
	}
	var count int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &count)
	info.Extensions = make([]string, 0, count)
	for i := int32(0); i < count; i++ {
		info.Extensions = append(info.Extensions, gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i))))
	}
	return info
}

func queryDeviceLimits() metadata.DeviceLimits {
	var blockSize, alignment int32
	gl.GetIntegerv(gl.MAX_UNIFORM_BLOCK_SIZE, &blockSize)
	gl.GetIntegerv(gl.UNIFORM_BUFFER_OFFSET_ALIGNMENT, &alignment)
	return metadata.DeviceLimits{
		MaxUniformBlockSize:          uint32(blockSize),
		UniformBufferOffsetAlignment: uint32(alignment),
	}
}

func (b *Backend) SetPipelineState(state metadata.PipelineState) {
	if state.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	switch state.CullMode {
	case metadata.FaceCullModeNone:
		gl.Disable(gl.CULL_FACE)
	case metadata.FaceCullModeFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	case metadata.FaceCullModeBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	case metadata.FaceCullModeFrontAndBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT_AND_BACK)
	}
	b.state = state
}

func (b *Backend) Clear(color mgl32.Vec4, flags metadata.ClearFlag) {
	var mask uint32
	if flags&metadata.ClearFlagColor != 0 {
		gl.ClearColor(color.X(), color.Y(), color.Z(), color.W())
		mask |= gl.COLOR_BUFFER_BIT
	}
	if flags&metadata.ClearFlagDepth != 0 {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func (b *Backend) Viewport(width, height uint32) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (b *Backend) DrawIndexed(indexCount uint32, indexByteOffset uint32) error {
	if b.mapped > 0 {
		return errors.Wrapf(core.ErrBufferMapped, "func DrawIndexed - %d buffers still mapped", b.mapped)
	}
	if b.current == nil {
		return nil
	}
	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(indexCount), gl.UNSIGNED_INT, uintptr(indexByteOffset))
	return nil
}
