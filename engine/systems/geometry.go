package systems

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// cubeFaces lists each side of a unit cube as its outward normal and four
// corners, counter-clockwise when seen from outside. The corners map to the
// uvs (0,0) (1,1) (0,1) (1,0).
var cubeFaces = [6]struct {
	normal  mgl32.Vec3
	corners [4]mgl32.Vec3
}{
	// front
	{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-1, -1, 1}, {1, 1, 1}, {-1, 1, 1}, {1, -1, 1}}},
	// back
	{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{1, -1, -1}, {-1, 1, -1}, {1, 1, -1}, {-1, -1, -1}}},
	// left
	{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-1, -1, -1}, {-1, 1, 1}, {-1, 1, -1}, {-1, -1, 1}}},
	// right
	{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{1, -1, 1}, {1, 1, -1}, {1, 1, 1}, {1, -1, -1}}},
	// bottom
	{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{1, -1, 1}, {-1, -1, -1}, {1, -1, -1}, {-1, -1, 1}}},
	// top
	{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-1, 1, 1}, {1, 1, -1}, {-1, 1, -1}, {1, 1, 1}}},
}

/**
 * @brief Generates a box centered on the origin, in the position, normal,
 * uv layout. Sides do not share vertices so every face keeps a flat normal.
 * @param width The overall width of the box. Must be non-zero.
 * @param height The overall height of the box. Must be non-zero.
 * @param depth The overall depth of the box. Must be non-zero.
 * @param tileX The number of times the texture should tile across each face on the x-axis. Must be non-zero.
 * @param tileY The number of times the texture should tile across each face on the y-axis. Must be non-zero.
 */
func GenerateCube(width, height, depth, tileX, tileY float32) metadata.SubmeshData {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one.")
		tileX = 1.0
	}
	if tileY == 0 {
		core.LogWarn("tileY must be nonzero. Defaulting to one.")
		tileY = 1.0
	}

	half := mgl32.Vec3{width * 0.5, height * 0.5, depth * 0.5}
	uvs := [4][2]float32{{0, 0}, {tileX, tileY}, {0, tileY}, {tileX, 0}}

	data := metadata.SubmeshData{
		Layout:   metadata.LayoutPositionNormalUV,
		Vertices: make([]float32, 0, 6*4*8),
		Indices:  make([]uint32, 0, 6*6),
	}
	for i, face := range cubeFaces {
		for c, corner := range face.corners {
			data.Vertices = append(data.Vertices,
				corner.X()*half.X(), corner.Y()*half.Y(), corner.Z()*half.Z(),
				face.normal.X(), face.normal.Y(), face.normal.Z(),
				uvs[c][0], uvs[c][1],
			)
		}
		v := uint32(i * 4)
		data.Indices = append(data.Indices, v+0, v+1, v+2, v+0, v+3, v+1)
	}
	return data
}

// CreateCube registers a generated box drawn with one material and returns
// the model index.
func (mls *MeshSystem) CreateCube(name string, size mgl32.Vec3, materialIdx uint32) (uint32, error) {
	meshIdx, err := mls.Create(name, []metadata.SubmeshData{GenerateCube(size.X(), size.Y(), size.Z(), 1, 1)})
	if err != nil {
		return metadata.InvalidIndex, err
	}
	return mls.CreateModel(meshIdx, []uint32{materialIdx})
}
