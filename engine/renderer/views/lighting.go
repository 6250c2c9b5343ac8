package views

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// gbufferSamplers pairs each GBuffer attachment with its texture unit and
// sampler uniform.
var gbufferSamplers = []struct {
	attachment string
	sampler    string
}{
	{AttachmentPosition, "gPosition"},
	{AttachmentNormal, "gNormal"},
	{AttachmentAlbedo, "gAlbedo"},
	{AttachmentSpecular, "gSpecular"},
}

// RenderViewLighting resolves the GBuffer into a single lit color.
type RenderViewLighting struct {
	backend      renderer.RendererBackend
	reconciler   *renderer.Reconciler
	framebuffers FramebufferAllocator

	Program *metadata.Program
	Quad    *metadata.Mesh
	// source written by the geometry pass
	Geometry *RenderViewGeometry
	Output   *metadata.Framebuffer
}

func NewRenderViewLighting(backend renderer.RendererBackend, reconciler *renderer.Reconciler, framebuffers FramebufferAllocator, program *metadata.Program, quad *metadata.Mesh, geometry *RenderViewGeometry) *RenderViewLighting {
	return &RenderViewLighting{
		backend:      backend,
		reconciler:   reconciler,
		framebuffers: framebuffers,
		Program:      program,
		Quad:         quad,
		Geometry:     geometry,
	}
}

func (v *RenderViewLighting) Name() string { return "lighting" }

func (v *RenderViewLighting) OnCreate(width, height uint32) error {
	fb, err := v.framebuffers.Create("post", width, height, []metadata.AttachmentConfig{
		{Name: AttachmentFinalColor, Type: metadata.AttachmentTypeColor, Format: metadata.TextureFormatRGBA8},
	})
	if err != nil {
		return err
	}
	v.Output = fb
	return nil
}

func (v *RenderViewLighting) OnResize(width, height uint32) error {
	if v.Output != nil {
		return nil
	}
	return v.OnCreate(width, height)
}

func (v *RenderViewLighting) OnDestroy() error {
	if v.Output != nil {
		v.framebuffers.Destroy(v.Output)
		v.Output = nil
	}
	return nil
}

func (v *RenderViewLighting) OnRender(packet *metadata.FramePacket) error {
	if v.Output == nil || v.Geometry == nil || v.Geometry.GBuffer == nil {
		return errors.New("func OnRender - lighting view is missing its framebuffers")
	}
	b := v.backend
	program := v.Program
	gbuffer := v.Geometry.GBuffer

	b.FramebufferBind(v.Output)
	b.SetPipelineState(metadata.PipelineState{DepthTest: false, CullMode: metadata.FaceCullModeNone})
	b.Clear(packet.ClearColor, metadata.ClearFlagColor)
	b.Viewport(packet.Width, packet.Height)

	b.BufferBindRange(packet.UniformBuffer, metadata.UniformBindingGlobal, packet.GlobalRange)
	b.ProgramUse(program.Handle)

	binding, err := v.reconciler.Find(v.Quad, 0, program)
	if err != nil {
		return err
	}
	b.VertexArrayBind(binding.Handle)

	for unit, s := range gbufferSamplers {
		attachment := gbuffer.Attachment(s.attachment)
		if attachment == nil {
			return errors.Errorf("gbuffer has no `%s` attachment", s.attachment)
		}
		b.TextureBind(uint32(unit), attachment.Texture.Handle)
		b.ProgramSetInt(program.Handle, s.sampler, int32(unit))
	}
	b.ProgramSetInt(program.Handle, "uRenderTarget", int32(packet.RenderTarget))

	return b.DrawIndexed(quadIndexCount, 0)
}

// OutputTexture is the lit color the post-processing pass samples.
func (v *RenderViewLighting) OutputTexture() *metadata.Texture {
	if v.Output == nil {
		return nil
	}
	if a := v.Output.Attachment(AttachmentFinalColor); a != nil {
		return a.Texture
	}
	return nil
}
