package math

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima/engine/core"
)

// GenerateNormals writes a face normal into every vertex of an interleaved
// triangle list. stride and normalOffset count floats, and positions sit at
// offset zero. Vertices shared between faces keep the last face written.
func GenerateNormals(vertices []float32, stride, normalOffset int, indices []uint32) {
	if stride < 3 || normalOffset+3 > stride {
		core.LogWarn("func GenerateNormals - normal offset %d does not fit stride %d", normalOffset, stride)
		return
	}
	count := uint32(len(vertices) / stride)
	position := func(i uint32) mgl32.Vec3 {
		base := int(i) * stride
		return mgl32.Vec3{vertices[base], vertices[base+1], vertices[base+2]}
	}

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if i0 >= count || i1 >= count || i2 >= count {
			core.LogWarn("func GenerateNormals - triangle %d references a vertex out of range", i/3)
			continue
		}

		p0 := position(i0)
		normal := position(i1).Sub(p0).Cross(position(i2).Sub(p0))
		if normal.Len() == 0 {
			// degenerate triangle
			continue
		}
		normal = normal.Normalize()

		for _, v := range [3]uint32{i0, i1, i2} {
			base := int(v)*stride + normalOffset
			copy(vertices[base:base+3], normal[:])
		}
	}
}
