package views

import "github.com/spaghettifunk/anima/engine/renderer/metadata"

const ScreenQuadName = "screen_quad"

// ScreenQuad returns a quad covering clip space, two triangles with
// position and uv per vertex.
func ScreenQuad() metadata.SubmeshData {
	return metadata.SubmeshData{
		Layout: metadata.LayoutScreenQuad,
		Vertices: []float32{
			-1, -1, 0, 0,
			1, -1, 1, 0,
			1, 1, 1, 1,
			-1, 1, 0, 1,
		},
		Indices:       []uint32{0, 1, 2, 0, 2, 3},
		MaterialIndex: -1,
	}
}

// quadIndexCount is the number of indices drawn by the fullscreen passes.
const quadIndexCount = 6
