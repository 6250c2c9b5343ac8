package opengl

import (
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

func (b *Backend) VertexArrayCreate(vertexBuffer, indexBuffer metadata.BufferHandle, attributes []metadata.VertexAttributeBinding) (metadata.VertexArrayHandle, error) {
	if _, ok := b.buffers[vertexBuffer]; !ok {
		return 0, errors.Wrapf(core.ErrInvalidHandle, "vertex buffer %d", vertexBuffer)
	}
	if _, ok := b.buffers[indexBuffer]; !ok {
		return 0, errors.Wrapf(core.ErrInvalidHandle, "index buffer %d", indexBuffer)
	}

	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(vertexBuffer))
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(indexBuffer))
	for _, a := range attributes {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointerWithOffset(a.Location, int32(a.ComponentCount), gl.FLOAT, false, int32(a.Stride), uintptr(a.Offset))
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	return metadata.VertexArrayHandle(vao), nil
}

func (b *Backend) VertexArrayDestroy(handle metadata.VertexArrayHandle) {
	if !handle.Valid() {
		return
	}
	id := uint32(handle)
	gl.DeleteVertexArrays(1, &id)
}

func (b *Backend) VertexArrayBind(handle metadata.VertexArrayHandle) {
	gl.BindVertexArray(uint32(handle))
}
