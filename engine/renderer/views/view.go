package views

import (
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// Attachment names shared between the passes.
const (
	AttachmentPosition   = "position"
	AttachmentNormal     = "normal"
	AttachmentAlbedo     = "albedo"
	AttachmentSpecular   = "specular"
	AttachmentDepth      = "depth"
	AttachmentFinalColor = "final_color"
)

// RenderView is one pass of the frame.
type RenderView interface {
	Name() string
	OnCreate(width, height uint32) error
	OnResize(width, height uint32) error
	OnRender(packet *metadata.FramePacket) error
	OnDestroy() error
}

// FramebufferAllocator creates validated framebuffers with their attachments.
type FramebufferAllocator interface {
	Create(name string, width, height uint32, configs []metadata.AttachmentConfig) (*metadata.Framebuffer, error)
	Destroy(fb *metadata.Framebuffer)
}

func resolveTexture(textures []*metadata.Texture, idx uint32, fallback *metadata.Texture) *metadata.Texture {
	if idx == metadata.InvalidIndex || int(idx) >= len(textures) || textures[idx] == nil || !textures[idx].Handle.Valid() {
		return fallback
	}
	return textures[idx]
}
