package renderer

import (
	"encoding/binary"
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

const (
	scalarAlignment = 4
	vectorAlignment = 16

	sizeFloat = 4
	sizeUInt  = 4
	sizeVec3  = 12
	sizeMat4  = 64
)

// UniformBuffer is the single shared uniform buffer. It is written once per
// frame between Map and Unmap with a forward-only head, and bound by ranges.
type UniformBuffer struct {
	backend RendererBackend

	Handle metadata.BufferHandle
	// Capacity in bytes. Matches the device max uniform block size.
	Capacity uint32
	// Minimum offset alignment for ranges bound to a binding point.
	Alignment uint32

	head   uint32
	data   []byte
	mapped bool
}

// NewUniformBuffer allocates the shared buffer sized from the device limits.
func NewUniformBuffer(backend RendererBackend, limits metadata.DeviceLimits) (*UniformBuffer, error) {
	if limits.MaxUniformBlockSize == 0 {
		return nil, errors.Errorf("func NewUniformBuffer - device reports a zero max uniform block size")
	}
	handle, err := backend.BufferCreate(metadata.BufferKindUniform, metadata.BufferUsageStream, limits.MaxUniformBlockSize, nil)
	if err != nil {
		return nil, errors.Wrap(err, "func NewUniformBuffer - failed to create buffer")
	}
	return &UniformBuffer{
		backend:   backend,
		Handle:    handle,
		Capacity:  limits.MaxUniformBlockSize,
		Alignment: limits.UniformBufferOffsetAlignment,
	}, nil
}

// Map opens the buffer for writing and resets the head.
func (ub *UniformBuffer) Map() error {
	if ub.mapped {
		return errors.Wrap(core.ErrBufferMapped, "func Map - uniform buffer mapped twice")
	}
	data, err := ub.backend.BufferMap(ub.Handle)
	if err != nil {
		return err
	}
	ub.data = data
	ub.mapped = true
	ub.head = 0
	return nil
}

// Unmap closes the buffer. Draws may read it afterwards.
func (ub *UniformBuffer) Unmap() error {
	if !ub.mapped {
		return nil
	}
	ub.data = nil
	ub.mapped = false
	return ub.backend.BufferUnmap(ub.Handle)
}

func (ub *UniformBuffer) Mapped() bool {
	return ub.mapped
}

// Head is the offset of the next write.
func (ub *UniformBuffer) Head() uint32 {
	return ub.head
}

// AlignHead pads the head up to the next multiple of boundary.
func (ub *UniformBuffer) AlignHead(boundary uint32) error {
	aligned := math.AlignUp(ub.head, boundary)
	if aligned > ub.Capacity {
		return errors.Wrapf(core.ErrUniformBufferOverflow, "aligning head %d to %d exceeds capacity %d", ub.head, boundary, ub.Capacity)
	}
	if ub.mapped {
		clear(ub.data[ub.head:aligned])
	}
	ub.head = aligned
	return nil
}

// reserve aligns the head and returns the slice the caller writes into.
func (ub *UniformBuffer) reserve(alignment, size uint32) ([]byte, error) {
	if !ub.mapped {
		return nil, core.ErrUniformBufferUnmapped
	}
	start := math.AlignUp(ub.head, alignment)
	if uint64(start)+uint64(size) > uint64(ub.Capacity) {
		return nil, errors.Wrapf(core.ErrUniformBufferOverflow, "writing %d bytes at %d exceeds capacity %d", size, start, ub.Capacity)
	}
	clear(ub.data[ub.head:start])
	ub.head = start + size
	return ub.data[start:ub.head], nil
}

func (ub *UniformBuffer) PushFloat(value float32) error {
	dst, err := ub.reserve(scalarAlignment, sizeFloat)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(dst, gomath.Float32bits(value))
	return nil
}

func (ub *UniformBuffer) PushUInt(value uint32) error {
	dst, err := ub.reserve(scalarAlignment, sizeUInt)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(dst, value)
	return nil
}

// PushVec3 writes the three components followed by one padding word so the
// value occupies a full 16-byte slot.
func (ub *UniformBuffer) PushVec3(value mgl32.Vec3) error {
	dst, err := ub.reserve(vectorAlignment, vectorAlignment)
	if err != nil {
		return err
	}
	putFloats(dst, value[:])
	clear(dst[sizeVec3:])
	return nil
}

// PushMat4 writes the matrix in column-major order.
func (ub *UniformBuffer) PushMat4(value mgl32.Mat4) error {
	dst, err := ub.reserve(vectorAlignment, sizeMat4)
	if err != nil {
		return err
	}
	putFloats(dst, value[:])
	return nil
}

// Bytes returns the mapped bytes of r. Only valid while mapped.
func (ub *UniformBuffer) Bytes(r metadata.BufferRange) []byte {
	if !ub.mapped || r.End() > uint32(len(ub.data)) {
		return nil
	}
	return ub.data[r.Offset:r.End()]
}

// Bind binds r of the buffer to the given uniform block binding point.
func (ub *UniformBuffer) Bind(binding uint32, r metadata.BufferRange) {
	ub.backend.BufferBindRange(ub.Handle, binding, r)
}

func (ub *UniformBuffer) Destroy() {
	if ub.mapped {
		_ = ub.Unmap()
	}
	if ub.Handle.Valid() {
		ub.backend.BufferDestroy(ub.Handle)
		ub.Handle = 0
	}
}

func putFloats(dst []byte, values []float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], gomath.Float32bits(v))
	}
}

// Float32Bytes encodes values the way vertex and uniform buffers expect them.
func Float32Bytes(values []float32) []byte {
	out := make([]byte, len(values)*4)
	putFloats(out, values)
	return out
}

// Uint32Bytes encodes index data.
func Uint32Bytes(values []uint32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// ReadFloats decodes little-endian floats, the inverse of the push helpers.
func ReadFloats(src []byte) []float32 {
	out := make([]float32, len(src)/4)
	for i := range out {
		out[i] = gomath.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return out
}
