package metadata

import "github.com/go-gl/mathgl/mgl32"

type LightType uint32

const (
	LightTypeDirectional LightType = iota
	LightTypePoint
)

func (t LightType) String() string {
	if t == LightTypeDirectional {
		return "directional"
	}
	return "point"
}

// Light is static scene data. Directional lights use Direction, point
// lights use Position and attenuate with Constant.
type Light struct {
	Type      LightType
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Ambient   mgl32.Vec3
	Diffuse   mgl32.Vec3
	Specular  mgl32.Vec3
	Constant  float32
}
