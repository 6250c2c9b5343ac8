package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Not an asset the engine knows how to load. */
	ResourceTypeNone ResourceType = iota
	/** @brief Text resource type. */
	ResourceTypeText
	/** @brief Image resource type. */
	ResourceTypeImage
	/** @brief Shader source resource type. One file holds every technique. */
	ResourceTypeShader
	/** @brief Model resource type (meshes plus materials). */
	ResourceTypeModel
	/** @brief Material library sitting next to a model. Loaded through the model. */
	ResourceTypeMaterial
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeText:
		return "text"
	case ResourceTypeImage:
		return "image"
	case ResourceTypeShader:
		return "shader"
	case ResourceTypeModel:
		return "model"
	case ResourceTypeMaterial:
		return "material"
	}
	return "none"
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The resource type. */
	Type ResourceType
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data: *ImageResourceData, string or *ModelData. */
	Data interface{}
}
