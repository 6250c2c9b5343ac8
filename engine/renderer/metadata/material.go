package metadata

import "github.com/go-gl/mathgl/mgl32"

const (
	/** @brief The default material name. */
	DEFAULT_MATERIAL_NAME string = "default"
)

/**
 * @brief Surface reflectance parameters and the textures that modulate
 * them. Texture fields index the global texture table. Immutable once
 * registered.
 */
type Material struct {
	Name       string
	Albedo     mgl32.Vec3
	Emissive   mgl32.Vec3
	Smoothness float32
	Specular   float32

	AlbedoTextureIdx   uint32
	EmissiveTextureIdx uint32
	SpecularTextureIdx uint32
	NormalsTextureIdx  uint32
	BumpTextureIdx     uint32
}

// NewMaterial returns a material with every texture slot unset.
func NewMaterial(name string) Material {
	return Material{
		Name:               name,
		Albedo:             mgl32.Vec3{1, 1, 1},
		AlbedoTextureIdx:   InvalidIndex,
		EmissiveTextureIdx: InvalidIndex,
		SpecularTextureIdx: InvalidIndex,
		NormalsTextureIdx:  InvalidIndex,
		BumpTextureIdx:     InvalidIndex,
	}
}

/**
 * @brief Importer output for one material. Texture paths are already
 * resolved against the model location; an empty path means no texture.
 */
type MaterialData struct {
	Name            string
	Albedo          mgl32.Vec3
	Emissive        mgl32.Vec3
	Smoothness      float32
	Specular        float32
	AlbedoTexture   string
	EmissiveTexture string
	SpecularTexture string
	NormalsTexture  string
	BumpTexture     string
}
