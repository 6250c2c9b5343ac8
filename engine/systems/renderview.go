package systems

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
	"github.com/spaghettifunk/anima/engine/renderer/views"
)

type RenderViewSystemConfig struct {
	// Shader file holding the geometry, lighting and post-processing techniques.
	ShaderFile string
	Width      uint32
	Height     uint32
}

// RenderViewSystem runs the passes of a frame in their fixed order:
// geometry, lighting, post-processing.
type RenderViewSystem struct {
	Config *RenderViewSystemConfig

	Geometry    *views.RenderViewGeometry
	Lighting    *views.RenderViewLighting
	PostProcess *views.RenderViewPostProcess
	views       []views.RenderView

	renderer     *RendererSystem
	framebuffers *FramebufferSystem
	shaders      *ShaderSystem
	meshes       *MeshSystem
	textures     *TextureSystem
}

func NewRenderViewSystem(config *RenderViewSystemConfig, r *RendererSystem, fs *FramebufferSystem, ss *ShaderSystem, ms *MeshSystem, ts *TextureSystem) (*RenderViewSystem, error) {
	if config.ShaderFile == "" {
		err := errors.New("func NewRenderViewSystem - config.ShaderFile is required")
		core.LogError(err.Error())
		return nil, err
	}
	if r == nil || fs == nil || ss == nil || ms == nil || ts == nil {
		return nil, errors.New("func NewRenderViewSystem - missing sub systems")
	}
	return &RenderViewSystem{
		Config:       config,
		renderer:     r,
		framebuffers: fs,
		shaders:      ss,
		meshes:       ms,
		textures:     ts,
	}, nil
}

// Initialize builds the three programs, the screen quad and the pass
// framebuffers.
func (rvs *RenderViewSystem) Initialize() error {
	programs := make(map[string]*metadata.Program, 3)
	for _, name := range []string{
		metadata.BUILTIN_SHADER_NAME_GEOMETRY,
		metadata.BUILTIN_SHADER_NAME_LIGHTING,
		metadata.BUILTIN_SHADER_NAME_POST_PROCESS,
	} {
		idx := rvs.shaders.Load(rvs.Config.ShaderFile, name)
		if idx == metadata.InvalidIndex {
			err := errors.Errorf("func Initialize - could not create program `%s`", name)
			core.LogError(err.Error())
			return err
		}
		programs[name] = rvs.shaders.Get(idx)
	}

	quadIdx, err := rvs.meshes.Create(views.ScreenQuadName, []metadata.SubmeshData{views.ScreenQuad()})
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	quad := rvs.meshes.GetMesh(quadIdx)

	backend := rvs.renderer.Backend()
	reconciler := rvs.renderer.Reconciler

	rvs.Geometry = views.NewRenderViewGeometry(backend, reconciler, rvs.framebuffers, programs[metadata.BUILTIN_SHADER_NAME_GEOMETRY], rvs.textures.DefaultTexture)
	rvs.Lighting = views.NewRenderViewLighting(backend, reconciler, rvs.framebuffers, programs[metadata.BUILTIN_SHADER_NAME_LIGHTING], quad, rvs.Geometry)
	rvs.PostProcess = views.NewRenderViewPostProcess(backend, reconciler, programs[metadata.BUILTIN_SHADER_NAME_POST_PROCESS], quad, rvs.Lighting)
	rvs.views = []views.RenderView{rvs.Geometry, rvs.Lighting, rvs.PostProcess}

	for _, view := range rvs.views {
		if err := view.OnCreate(rvs.Config.Width, rvs.Config.Height); err != nil {
			err = errors.Wrapf(err, "func Initialize - creating view `%s`", view.Name())
			core.LogError(err.Error())
			return err
		}
	}
	return nil
}

// Views returns the passes in execution order.
func (rvs *RenderViewSystem) Views() []views.RenderView {
	return rvs.views
}

// Render runs every pass against the packet. The first failing pass aborts
// the frame.
func (rvs *RenderViewSystem) Render(packet *metadata.FramePacket) error {
	if packet.Width == 0 || packet.Height == 0 {
		packet.Width, packet.Height = rvs.Config.Width, rvs.Config.Height
	}
	for _, view := range rvs.views {
		if err := view.OnRender(packet); err != nil {
			return errors.Wrapf(err, "pass `%s`", view.Name())
		}
	}
	return nil
}

// OnWindowResize recreates the pass framebuffers at the new size.
func (rvs *RenderViewSystem) OnWindowResize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	rvs.Config.Width, rvs.Config.Height = width, height
	if err := rvs.framebuffers.Resize(width, height); err != nil {
		return errors.Wrap(err, "func OnWindowResize")
	}
	for _, view := range rvs.views {
		if err := view.OnResize(width, height); err != nil {
			return errors.Wrapf(err, "func OnWindowResize - view `%s`", view.Name())
		}
	}
	return nil
}

func (rvs *RenderViewSystem) Shutdown() error {
	for i := len(rvs.views) - 1; i >= 0; i-- {
		if err := rvs.views[i].OnDestroy(); err != nil {
			return err
		}
	}
	rvs.views = nil
	return nil
}
