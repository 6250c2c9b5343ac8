package systems

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type RendererSystemConfig struct {
	ApplicationName string
	Width           uint32
	Height          uint32
	DebugContext    bool
}

// RendererSystem owns the backend together with the per-device objects the
// registries and passes share: the uniform buffer and the layout reconciler.
type RendererSystem struct {
	backend renderer.RendererBackend
	config  *RendererSystemConfig

	UniformBuffer *renderer.UniformBuffer
	Reconciler    *renderer.Reconciler

	// The current window framebuffer width.
	FramebufferWidth uint32
	// The current window framebuffer height.
	FramebufferHeight uint32
	FrameNumber       uint64
}

func NewRendererSystem(config *RendererSystemConfig, backend renderer.RendererBackend) (*RendererSystem, error) {
	if config == nil {
		return nil, errors.New("func NewRendererSystem - config is required")
	}
	if backend == nil {
		return nil, errors.New("func NewRendererSystem - backend is required")
	}
	return &RendererSystem{
		backend:           backend,
		config:            config,
		FramebufferWidth:  config.Width,
		FramebufferHeight: config.Height,
	}, nil
}

func (r *RendererSystem) Initialize() error {
	if err := r.backend.Initialize(&metadata.RendererBackendConfig{
		ApplicationName: r.config.ApplicationName,
		DebugContext:    r.config.DebugContext,
		Width:           r.config.Width,
		Height:          r.config.Height,
	}); err != nil {
		core.LogError(err.Error())
		return err
	}

	info := r.backend.Info()
	limits := r.backend.Limits()
	core.LogInfo("renderer: %s (%s), version %s, GLSL %s", info.Renderer, info.Vendor, info.Version, info.ShadingLanguageVersion)
	core.LogDebug("max uniform block size %d, uniform offset alignment %d", limits.MaxUniformBlockSize, limits.UniformBufferOffsetAlignment)

	ub, err := renderer.NewUniformBuffer(r.backend, limits)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	r.UniformBuffer = ub
	r.Reconciler = renderer.NewReconciler(r.backend)
	return nil
}

func (r *RendererSystem) Backend() renderer.RendererBackend {
	return r.backend
}

func (r *RendererSystem) Info() *metadata.DeviceInfo {
	return r.backend.Info()
}

func (r *RendererSystem) Limits() metadata.DeviceLimits {
	return r.backend.Limits()
}

func (r *RendererSystem) BeginFrame(deltaTime float64) error {
	return r.backend.BeginFrame(deltaTime)
}

func (r *RendererSystem) EndFrame(deltaTime float64) error {
	if err := r.backend.EndFrame(deltaTime); err != nil {
		return err
	}
	r.FrameNumber++
	return nil
}

// OnResize records the new surface size. Returns false when the size is
// unchanged or degenerate.
func (r *RendererSystem) OnResize(width, height uint32) bool {
	if width == 0 || height == 0 {
		return false
	}
	if width == r.FramebufferWidth && height == r.FramebufferHeight {
		return false
	}
	r.FramebufferWidth = width
	r.FramebufferHeight = height
	return true
}

func (r *RendererSystem) Shutdown() error {
	if r.UniformBuffer != nil {
		r.UniformBuffer.Destroy()
		r.UniformBuffer = nil
	}
	return r.backend.Shutdown()
}
