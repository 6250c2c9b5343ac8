package core

import (
	"errors"
)

var (
	// fatal configuration errors
	ErrAttributeMismatch     = errors.New("vertex attribute mismatch between shader and mesh")
	ErrFramebufferIncomplete = errors.New("framebuffer incomplete")

	// capacity errors
	ErrUniformBufferOverflow = errors.New("uniform buffer capacity exceeded")
	ErrUniformBufferUnmapped = errors.New("uniform buffer is not mapped")
	ErrBufferMapped          = errors.New("buffer is still mapped")

	// pass ordering
	ErrFeedbackLoop = errors.New("attachment sampled while bound as render target")

	ErrInvalidHandle  = errors.New("invalid resource handle")
	ErrUnknownBackend = errors.New("unknown renderer backend")
	ErrUnknown        = errors.New("unknown")
)
