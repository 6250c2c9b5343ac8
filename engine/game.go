package engine

import (
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
	"github.com/spaghettifunk/anima/engine/scene"
	"github.com/spaghettifunk/anima/engine/systems"
)

// Game is the application plugged into the engine. Only FnInitialize is
// required; the other hooks may be nil.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

// Initialize builds the scene once every system is up.
type Initialize func(sm *systems.SystemManager, sc *scene.Scene) error

// Update runs after the camera has moved and before the uniforms are written.
type Update func(deltaTime float64, input *core.Input) error

// Render may adjust the packet before the passes run.
type Render func(packet *metadata.FramePacket, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
