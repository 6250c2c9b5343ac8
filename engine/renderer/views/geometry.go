package views

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// RenderViewGeometry draws every entity into the GBuffer attachments.
type RenderViewGeometry struct {
	backend      renderer.RendererBackend
	reconciler   *renderer.Reconciler
	framebuffers FramebufferAllocator

	Program        *metadata.Program
	DefaultTexture *metadata.Texture
	GBuffer        *metadata.Framebuffer

	fallbackMaterial metadata.Material
}

func NewRenderViewGeometry(backend renderer.RendererBackend, reconciler *renderer.Reconciler, framebuffers FramebufferAllocator, program *metadata.Program, defaultTexture *metadata.Texture) *RenderViewGeometry {
	return &RenderViewGeometry{
		backend:          backend,
		reconciler:       reconciler,
		framebuffers:     framebuffers,
		Program:          program,
		DefaultTexture:   defaultTexture,
		fallbackMaterial: metadata.NewMaterial(metadata.DEFAULT_MATERIAL_NAME),
	}
}

func (v *RenderViewGeometry) Name() string { return "geometry" }

// GBufferLayout lists the attachments written by the geometry pass.
func GBufferLayout() []metadata.AttachmentConfig {
	return []metadata.AttachmentConfig{
		{Name: AttachmentPosition, Type: metadata.AttachmentTypeColor, Format: metadata.TextureFormatRGBA16F},
		{Name: AttachmentNormal, Type: metadata.AttachmentTypeColor, Format: metadata.TextureFormatRGBA16F},
		{Name: AttachmentAlbedo, Type: metadata.AttachmentTypeColor, Format: metadata.TextureFormatRGBA8},
		{Name: AttachmentSpecular, Type: metadata.AttachmentTypeColor, Format: metadata.TextureFormatRGBA8},
		{Name: AttachmentDepth, Type: metadata.AttachmentTypeDepth, Format: metadata.TextureFormatDepth24},
	}
}

func (v *RenderViewGeometry) OnCreate(width, height uint32) error {
	fb, err := v.framebuffers.Create("gbuffer", width, height, GBufferLayout())
	if err != nil {
		return err
	}
	v.GBuffer = fb
	return nil
}

// The allocator resizes the gbuffer in place; only a missing one is rebuilt.
func (v *RenderViewGeometry) OnResize(width, height uint32) error {
	if v.GBuffer != nil {
		return nil
	}
	return v.OnCreate(width, height)
}

func (v *RenderViewGeometry) OnDestroy() error {
	if v.GBuffer != nil {
		v.framebuffers.Destroy(v.GBuffer)
		v.GBuffer = nil
	}
	return nil
}

func (v *RenderViewGeometry) OnRender(packet *metadata.FramePacket) error {
	if v.GBuffer == nil {
		return errors.New("func OnRender - geometry view has no gbuffer")
	}
	b := v.backend
	program := v.Program

	b.FramebufferBind(v.GBuffer)
	b.SetPipelineState(metadata.PipelineState{DepthTest: true, CullMode: metadata.FaceCullModeBack})
	b.Clear(mgl32.Vec4{0, 0, 0, 0}, metadata.ClearFlagColor|metadata.ClearFlagDepth)
	b.Viewport(packet.Width, packet.Height)

	b.BufferBindRange(packet.UniformBuffer, metadata.UniformBindingGlobal, packet.GlobalRange)
	b.ProgramUse(program.Handle)
	b.ProgramSetInt(program.Handle, "uMaterial.diffuse", 0)

	for _, entity := range packet.Entities {
		if int(entity.ModelIndex) >= len(packet.Models) {
			return errors.Errorf("entity `%s` references model %d of %d", entity.Name, entity.ModelIndex, len(packet.Models))
		}
		model := packet.Models[entity.ModelIndex]
		if int(model.MeshIdx) >= len(packet.Meshes) {
			return errors.Errorf("model %d references mesh %d of %d", entity.ModelIndex, model.MeshIdx, len(packet.Meshes))
		}
		mesh := packet.Meshes[model.MeshIdx]

		b.BufferBindRange(packet.UniformBuffer, metadata.UniformBindingLocal, entity.LocalParams)

		for i, submesh := range mesh.Submeshes {
			binding, err := v.reconciler.Find(mesh, i, program)
			if err != nil {
				return err
			}
			b.VertexArrayBind(binding.Handle)

			material := v.materialFor(packet, model, i)
			albedo := resolveTexture(packet.Textures, material.AlbedoTextureIdx, v.DefaultTexture)
			b.TextureBind(0, albedo.Handle)
			b.ProgramSetFloat(program.Handle, "uMaterial.specular", material.Specular)
			b.ProgramSetFloat(program.Handle, "uMaterial.shininess", material.Smoothness)

			if err := b.DrawIndexed(uint32(len(submesh.Indices)), submesh.IndexOffset); err != nil {
				return errors.Wrapf(err, "drawing entity `%s` submesh %d", entity.Name, i)
			}
		}
	}
	return nil
}

func (v *RenderViewGeometry) materialFor(packet *metadata.FramePacket, model *metadata.Model, submesh int) *metadata.Material {
	if submesh < len(model.MaterialIdx) {
		idx := model.MaterialIdx[submesh]
		if idx != metadata.InvalidIndex && int(idx) < len(packet.Materials) {
			return packet.Materials[idx]
		}
	}
	return &v.fallbackMaterial
}
