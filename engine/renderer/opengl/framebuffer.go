package opengl

import (
	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

func framebufferStatus(status uint32) metadata.FramebufferStatus {
	switch status {
	case gl.FRAMEBUFFER_COMPLETE:
		return metadata.FramebufferComplete
	case gl.FRAMEBUFFER_UNDEFINED:
		return metadata.FramebufferUndefined
	case gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT:
		return metadata.FramebufferIncompleteAttachment
	case gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT:
		return metadata.FramebufferIncompleteMissingAttachment
	case gl.FRAMEBUFFER_INCOMPLETE_DRAW_BUFFER:
		return metadata.FramebufferIncompleteDrawBuffer
	case gl.FRAMEBUFFER_INCOMPLETE_READ_BUFFER:
		return metadata.FramebufferIncompleteReadBuffer
	case gl.FRAMEBUFFER_UNSUPPORTED:
		return metadata.FramebufferUnsupported
	case gl.FRAMEBUFFER_INCOMPLETE_MULTISAMPLE:
		return metadata.FramebufferIncompleteMultisample
	case gl.FRAMEBUFFER_INCOMPLETE_LAYER_TARGETS:
		return metadata.FramebufferIncompleteLayerTargets
	}
	return metadata.FramebufferStatusUnknown
}

// FramebufferCreate attaches color textures in order to consecutive color
// attachment points, enables them as draw buffers and checks completeness.
func (b *Backend) FramebufferCreate(width, height uint32, attachments []*metadata.Attachment) (metadata.FramebufferHandle, metadata.FramebufferStatus, error) {
	var id uint32
	gl.GenFramebuffers(1, &id)
	gl.BindFramebuffer(gl.FRAMEBUFFER, id)

	drawBuffers := make([]uint32, 0, len(attachments))
	for _, a := range attachments {
		var texture uint32
		if a.Texture != nil {
			texture = uint32(a.Texture.Handle)
		}
		switch a.Type {
		case metadata.AttachmentTypeColor:
			point := gl.COLOR_ATTACHMENT0 + uint32(len(drawBuffers))
			gl.FramebufferTexture2D(gl.FRAMEBUFFER, point, gl.TEXTURE_2D, texture, 0)
			drawBuffers = append(drawBuffers, point)
		case metadata.AttachmentTypeDepth:
			gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, texture, 0)
		}
	}
	if len(drawBuffers) > 0 {
		gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])
	} else {
		gl.DrawBuffer(gl.NONE)
	}

	status := framebufferStatus(gl.CheckFramebufferStatus(gl.FRAMEBUFFER))
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return metadata.FramebufferHandle(id), status, nil
}

func (b *Backend) FramebufferDestroy(handle metadata.FramebufferHandle) {
	if !handle.Valid() {
		return
	}
	id := uint32(handle)
	gl.DeleteFramebuffers(1, &id)
}

func (b *Backend) FramebufferBind(fb *metadata.Framebuffer) {
	if fb == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb.Handle))
}
