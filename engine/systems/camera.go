package systems

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/components"
)

/** @brief The name under which the default camera is always available. */
const DefaultCameraName = "default"

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/**
	 * @brief NOTE: The maximum number of named cameras that can be managed by
	 * the system. The default camera does not count against it.
	 */
	MaxCameraCount uint16
	/** @brief Where the default camera starts. */
	DefaultPosition mgl32.Vec3
}

type cameraLookup struct {
	camera         *components.Camera
	referenceCount uint16
}

// CameraSystem hands out named cameras, reference counted, plus a default
// camera that always exists.
type CameraSystem struct {
	Config *CameraSystemConfig
	// A default, non-registered camera that always exists as a fallback.
	DefaultCamera *components.Camera

	cameras map[string]*cameraLookup
}

func NewCameraSystem(config *CameraSystemConfig) (*CameraSystem, error) {
	if config == nil || config.MaxCameraCount == 0 {
		err := errors.New("func NewCameraSystem - config.MaxCameraCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &CameraSystem{
		Config:        config,
		DefaultCamera: components.NewCamera(config.DefaultPosition),
		cameras:       make(map[string]*cameraLookup, config.MaxCameraCount),
	}, nil
}

func (cs *CameraSystem) Shutdown() error {
	cs.cameras = make(map[string]*cameraLookup)
	return nil
}

/**
 * @brief Acquires a camera by name. If one is not found, a new one is
 * created at the default camera's starting position and returned.
 * Internal reference counter is incremented.
 *
 * @param name The name of the camera to acquire.
 * @return The camera, or an error when no slot is left.
 */
func (cs *CameraSystem) Acquire(name string) (*components.Camera, error) {
	if name == DefaultCameraName {
		return cs.DefaultCamera, nil
	}
	lookup, ok := cs.cameras[name]
	if !ok {
		if len(cs.cameras) >= int(cs.Config.MaxCameraCount) {
			err := errors.Errorf("func Acquire - no slot left for camera `%s`, adjust MaxCameraCount to allow more", name)
			core.LogError(err.Error())
			return nil, err
		}
		core.LogDebug("Creating new camera named '%s'...", name)
		lookup = &cameraLookup{camera: components.NewCamera(cs.Config.DefaultPosition)}
		cs.cameras[name] = lookup
	}
	lookup.referenceCount++
	return lookup.camera, nil
}

/**
 * @brief Releases a camera with the given name. Internal reference
 * counter is decremented. If this reaches 0, the camera is dropped and
 * the name is usable by a new camera.
 */
func (cs *CameraSystem) Release(name string) {
	if name == DefaultCameraName {
		core.LogDebug("Cannot release default camera. Nothing was done.")
		return
	}
	lookup, ok := cs.cameras[name]
	if !ok {
		core.LogWarn("Release failed lookup for camera `%s`. Nothing was done.", name)
		return
	}
	lookup.referenceCount--
	if lookup.referenceCount == 0 {
		delete(cs.cameras, name)
	}
}

func (cs *CameraSystem) GetDefault() *components.Camera {
	return cs.DefaultCamera
}
