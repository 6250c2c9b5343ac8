package metadata

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

type RendererBackendType int

const (
	RendererBackendTypeOpenGL RendererBackendType = iota
	RendererBackendTypeHeadless
)

func ParseRendererBackendType(name string) (RendererBackendType, bool) {
	switch strings.ToLower(name) {
	case "opengl", "gl", "":
		return RendererBackendTypeOpenGL, true
	case "headless":
		return RendererBackendTypeHeadless, true
	}
	return RendererBackendTypeOpenGL, false
}

type RendererBackendConfig struct {
	/** @brief The name of the application */
	ApplicationName string
	/** @brief Enables the driver debug message callback when the context supports it. */
	DebugContext bool
	Width        uint32
	Height       uint32
}

/**
 * @brief Strings describing the device, queried once at startup.
 */
type DeviceInfo struct {
	Version                string
	Renderer               string
	Vendor                 string
	ShadingLanguageVersion string
	Extensions             []string
}

/**
 * @brief Hardware limits the uniform packer honors.
 */
type DeviceLimits struct {
	/** @brief Largest uniform block, in bytes. Also the size of the shared uniform buffer. */
	MaxUniformBlockSize uint32
	/** @brief Bound uniform ranges must start at a multiple of this. */
	UniformBufferOffsetAlignment uint32
}

/** @brief Which intermediate image the lighting pass outputs, for debugging. */
type RenderTarget int32

const (
	RenderTargetFinalColor RenderTarget = iota
	RenderTargetPosition
	RenderTargetNormal
	RenderTargetAlbedo
	RenderTargetSpecular
	RenderTargetCount
)

var renderTargetNames = [RenderTargetCount]string{
	"final color",
	"position color",
	"normal color",
	"albedo color",
	"spec color",
}

func (rt RenderTarget) String() string {
	if rt < 0 || rt >= RenderTargetCount {
		return "unknown"
	}
	return renderTargetNames[rt]
}

// Next cycles through the render targets.
func (rt RenderTarget) Next() RenderTarget {
	return (rt + 1) % RenderTargetCount
}

/** @brief Clear flags for a render pass. */
type ClearFlag uint8

const (
	ClearFlagNone  ClearFlag = 0x0
	ClearFlagColor ClearFlag = 0x1
	ClearFlagDepth ClearFlag = 0x2
)

/**
 * @brief Everything the pass sequencer needs to render one frame. Built by
 * the scene after the uniform buffer has been written and unmapped.
 */
type FramePacket struct {
	FrameNumber uint64
	DeltaTime   float64
	Width       uint32
	Height      uint32

	UniformBuffer BufferHandle
	GlobalRange   BufferRange

	Entities  []*Entity
	Models    []*Model
	Meshes    []*Mesh
	Materials []*Material
	Textures  []*Texture

	RenderTarget RenderTarget
	ClearColor   mgl32.Vec4
}
