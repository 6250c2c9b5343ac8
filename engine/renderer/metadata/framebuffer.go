package metadata

/** @brief Where an attachment is plugged into its framebuffer. */
type AttachmentType int

const (
	AttachmentTypeColor AttachmentType = iota
	AttachmentTypeDepth
)

/**
 * @brief Describes one attachment of a framebuffer to be created.
 */
type AttachmentConfig struct {
	Name   string
	Type   AttachmentType
	Format TextureFormat
	/** @brief Overrides the framebuffer size when non-zero. Only used to request odd sizes. */
	Width  uint32
	Height uint32
}

/**
 * @brief A created attachment: a texture the framebuffer renders into.
 */
type Attachment struct {
	Name    string
	Type    AttachmentType
	Texture *Texture
}

/**
 * @brief A framebuffer and the attachments it owns.
 */
type Framebuffer struct {
	Handle      FramebufferHandle
	Name        string
	Width       uint32
	Height      uint32
	Configs     []AttachmentConfig
	Attachments []*Attachment
}

// Attachment returns the named attachment or nil.
func (fb *Framebuffer) Attachment(name string) *Attachment {
	for _, a := range fb.Attachments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// ColorAttachments returns the color attachments in draw buffer order.
func (fb *Framebuffer) ColorAttachments() []*Attachment {
	out := make([]*Attachment, 0, len(fb.Attachments))
	for _, a := range fb.Attachments {
		if a.Type == AttachmentTypeColor {
			out = append(out, a)
		}
	}
	return out
}

// Owns reports whether the texture is one of the framebuffer attachments.
func (fb *Framebuffer) Owns(handle TextureHandle) bool {
	for _, a := range fb.Attachments {
		if a.Texture != nil && a.Texture.Handle == handle {
			return true
		}
	}
	return false
}

/**
 * @brief Result of a framebuffer completeness check.
 */
type FramebufferStatus int

const (
	FramebufferComplete FramebufferStatus = iota
	FramebufferUndefined
	FramebufferIncompleteAttachment
	FramebufferIncompleteMissingAttachment
	FramebufferIncompleteDrawBuffer
	FramebufferIncompleteReadBuffer
	FramebufferUnsupported
	FramebufferIncompleteMultisample
	FramebufferIncompleteLayerTargets
	FramebufferStatusUnknown
)

func (s FramebufferStatus) String() string {
	switch s {
	case FramebufferComplete:
		return "complete"
	case FramebufferUndefined:
		return "undefined: the default framebuffer does not exist"
	case FramebufferIncompleteAttachment:
		return "incomplete attachment: an attachment is not renderable or has zero size"
	case FramebufferIncompleteMissingAttachment:
		return "missing attachment: no image is attached"
	case FramebufferIncompleteDrawBuffer:
		return "incomplete draw buffer: a draw buffer names an empty attachment point"
	case FramebufferIncompleteReadBuffer:
		return "incomplete read buffer: the read buffer names an empty attachment point"
	case FramebufferUnsupported:
		return "unsupported: the attachment format combination is not supported"
	case FramebufferIncompleteMultisample:
		return "incomplete multisample: attachments disagree on sample count"
	case FramebufferIncompleteLayerTargets:
		return "incomplete layer targets: attachments disagree on layering"
	}
	return "unknown framebuffer status"
}
