package views

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// RenderViewPostProcess presents the lit image on the visible surface.
type RenderViewPostProcess struct {
	backend    renderer.RendererBackend
	reconciler *renderer.Reconciler

	Program  *metadata.Program
	Quad     *metadata.Mesh
	Lighting *RenderViewLighting
}

func NewRenderViewPostProcess(backend renderer.RendererBackend, reconciler *renderer.Reconciler, program *metadata.Program, quad *metadata.Mesh, lighting *RenderViewLighting) *RenderViewPostProcess {
	return &RenderViewPostProcess{
		backend:    backend,
		reconciler: reconciler,
		Program:    program,
		Quad:       quad,
		Lighting:   lighting,
	}
}

func (v *RenderViewPostProcess) Name() string { return "post_processing" }

// The visible surface is owned by the platform; nothing to allocate.
func (v *RenderViewPostProcess) OnCreate(width, height uint32) error { return nil }

func (v *RenderViewPostProcess) OnResize(width, height uint32) error { return nil }

func (v *RenderViewPostProcess) OnDestroy() error { return nil }

func (v *RenderViewPostProcess) OnRender(packet *metadata.FramePacket) error {
	source := v.Lighting.OutputTexture()
	if source == nil {
		return errors.New("func OnRender - lighting output is not available")
	}
	b := v.backend
	program := v.Program

	b.FramebufferBind(nil)
	b.SetPipelineState(metadata.PipelineState{DepthTest: false, CullMode: metadata.FaceCullModeNone})
	b.Clear(packet.ClearColor, metadata.ClearFlagColor|metadata.ClearFlagDepth)
	b.Viewport(packet.Width, packet.Height)

	b.ProgramUse(program.Handle)
	binding, err := v.reconciler.Find(v.Quad, 0, program)
	if err != nil {
		return err
	}
	b.VertexArrayBind(binding.Handle)

	b.TextureBind(0, source.Handle)
	b.ProgramSetInt(program.Handle, "uFinalImage", 0)

	return b.DrawIndexed(quadIndexCount, 0)
}
