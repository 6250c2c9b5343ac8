package opengl

import (
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type buffer struct {
	target uint32
	kind   metadata.BufferKind
	size   uint32
	mapped bool
}

func bufferTarget(kind metadata.BufferKind) uint32 {
	switch kind {
	case metadata.BufferKindIndex:
		return gl.ELEMENT_ARRAY_BUFFER
	case metadata.BufferKindUniform:
		return gl.UNIFORM_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func bufferUsage(usage metadata.BufferUsage) uint32 {
	if usage == metadata.BufferUsageStream {
		return gl.STREAM_DRAW
	}
	return gl.STATIC_DRAW
}

func (b *Backend) BufferCreate(kind metadata.BufferKind, usage metadata.BufferUsage, size uint32, data []byte) (metadata.BufferHandle, error) {
	if uint32(len(data)) > size {
		return 0, errors.Errorf("func BufferCreate - %d bytes of data do not fit a %d byte %s buffer", len(data), size, kind)
	}
	target := bufferTarget(kind)
	var id uint32
	gl.GenBuffers(1, &id)
	if id == 0 {
		return 0, errors.Errorf("func BufferCreate - could not allocate a %s buffer", kind)
	}

	// index buffers bind to the vertex array, keep whatever array is bound
	// intact
	if kind == metadata.BufferKindIndex {
		gl.BindVertexArray(0)
	}
	gl.BindBuffer(target, id)
	gl.BufferData(target, int(size), nil, bufferUsage(usage))
	if len(data) > 0 {
		gl.BufferSubData(target, 0, len(data), gl.Ptr(data))
	}
	gl.BindBuffer(target, 0)

	h := metadata.BufferHandle(id)
	b.buffers[h] = &buffer{target: target, kind: kind, size: size}
	return h, nil
}

func (b *Backend) BufferDestroy(handle metadata.BufferHandle) {
	buf, ok := b.buffers[handle]
	if !ok {
		return
	}
	if buf.mapped {
		_ = b.BufferUnmap(handle)
	}
	id := uint32(handle)
	gl.DeleteBuffers(1, &id)
	delete(b.buffers, handle)
}

// BufferMap maps the whole buffer write-only and discards its previous
// contents.
func (b *Backend) BufferMap(handle metadata.BufferHandle) ([]byte, error) {
	buf, ok := b.buffers[handle]
	if !ok {
		return nil, errors.Wrapf(core.ErrInvalidHandle, "buffer %d", handle)
	}
	if buf.mapped {
		return nil, errors.Wrapf(core.ErrBufferMapped, "buffer %d", handle)
	}
	gl.BindBuffer(buf.target, uint32(handle))
	ptr := gl.MapBufferRange(buf.target, 0, int(buf.size), gl.MAP_WRITE_BIT|gl.MAP_INVALIDATE_BUFFER_BIT)
	if ptr == nil {
		gl.BindBuffer(buf.target, 0)
		return nil, errors.Errorf("func BufferMap - driver refused to map %s buffer %d", buf.kind, handle)
	}
	buf.mapped = true
	b.mapped++
	return unsafe.Slice((*byte)(ptr), buf.size), nil
}

func (b *Backend) BufferUnmap(handle metadata.BufferHandle) error {
	buf, ok := b.buffers[handle]
	if !ok {
		return errors.Wrapf(core.ErrInvalidHandle, "buffer %d", handle)
	}
	if !buf.mapped {
		return nil
	}
	gl.BindBuffer(buf.target, uint32(handle))
	ok = gl.UnmapBuffer(buf.target)
	gl.BindBuffer(buf.target, 0)
	buf.mapped = false
	b.mapped--
	if !ok {
		// the store was lost, typically on a mode switch; the next frame
		// rewrites it
		return errors.Errorf("func BufferUnmap - contents of %s buffer %d were corrupted", buf.kind, handle)
	}
	return nil
}

func (b *Backend) BufferBindRange(handle metadata.BufferHandle, binding uint32, r metadata.BufferRange) {
	buf, ok := b.buffers[handle]
	if !ok {
		return
	}
	gl.BindBufferRange(buf.target, binding, uint32(handle), int(r.Offset), int(r.Size))
}
