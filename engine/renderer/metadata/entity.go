package metadata

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

/**
 * @brief A placed instance of a model.
 */
type Entity struct {
	ID          uuid.UUID
	Name        string
	WorldMatrix mgl32.Mat4
	ModelIndex  uint32
	/** @brief This frame's transform block inside the shared uniform buffer. Rewritten every frame. */
	LocalParams BufferRange
}

func NewEntity(name string, world mgl32.Mat4, modelIndex uint32) *Entity {
	return &Entity{
		ID:          uuid.New(),
		Name:        name,
		WorldMatrix: world,
		ModelIndex:  modelIndex,
	}
}
