package testbed

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima/engine"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/components"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
	"github.com/spaghettifunk/anima/engine/scene"
	"github.com/spaghettifunk/anima/engine/systems"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	scene *scene.Scene

	spinning *metadata.Entity
	cameras  [2]*components.Camera
	active   int
	width    uint32
	height   uint32
}

func NewTestGame(config *engine.ApplicationConfig) (*TestGame, error) {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

// Initialize builds the demo: two dice, a floor and five lights, each point
// light marked by a small cube.
func (g *TestGame) Initialize(sm *systems.SystemManager, sc *scene.Scene) error {
	core.LogInfo("initializing testbed...")
	state := g.state()
	state.scene = sc

	cube, err := sm.MeshSystem.LoadModel("models/cube.obj")
	if err != nil {
		return err
	}

	p1 := metadata.NewEntity("p1", mgl32.Translate3D(-1, 0, -3), cube)
	p2 := metadata.NewEntity("p2", mgl32.Translate3D(10, 5, 0).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(-60))), cube)
	sc.AddEntity(p1)
	sc.AddEntity(p2)
	state.spinning = p1

	plane, err := sm.MeshSystem.CreatePlane("plane", sm.MaterialSystem.Load("materials/plane_mat.amt"))
	if err != nil {
		return err
	}
	world := mgl32.Translate3D(-0.5, -3.5, -0.5).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(-90))).
		Mul4(mgl32.Scale3D(40, 40, 40))
	sc.AddEntity(metadata.NewEntity("plane", world, plane))

	lights := []metadata.Light{
		{
			Type:      metadata.LightTypeDirectional,
			Direction: mgl32.Vec3{-0.2, -1, -0.3},
			Ambient:   mgl32.Vec3{0, 0, 0.4},
			Diffuse:   mgl32.Vec3{0.25, 0.25, 0.25},
			Specular:  mgl32.Vec3{0.5, 0.5, 0.5},
		},
		{
			Type:     metadata.LightTypePoint,
			Position: mgl32.Vec3{-4, 1.5, -5},
			Diffuse:  mgl32.Vec3{1, 0, 0},
			Specular: mgl32.Vec3{1, 0, 0},
			Constant: 0.005,
		},
		{
			Type:     metadata.LightTypePoint,
			Position: mgl32.Vec3{5, 0, -6},
			Diffuse:  mgl32.Vec3{0, 1, 0},
			Specular: mgl32.Vec3{0, 1, 0},
			Constant: 0.005,
		},
		{
			Type:     metadata.LightTypePoint,
			Position: mgl32.Vec3{-0.5, 0.5, 4},
			Ambient:  mgl32.Vec3{0.05, 0.05, 0},
			Diffuse:  mgl32.Vec3{0.8, 0.8, 0},
			Specular: mgl32.Vec3{1, 1, 0},
			Constant: 1,
		},
		{
			Type:     metadata.LightTypePoint,
			Position: mgl32.Vec3{6.5, 6.5, 4.5},
			Ambient:  mgl32.Vec3{1, 1, 1},
			Diffuse:  mgl32.Vec3{1, 1, 1},
			Specular: mgl32.Vec3{1, 1, 1},
			Constant: 0.01,
		},
	}
	marker := metadata.NewMaterial("light_marker")
	marker.AlbedoTextureIdx = sm.TextureSystem.Load("textures/color_white.png")
	markerModel, err := sm.MeshSystem.CreateCube("light_marker", mgl32.Vec3{0.2, 0.2, 0.2}, sm.MaterialSystem.Create(marker))
	if err != nil {
		return err
	}
	for i, l := range lights {
		if err := sc.AddLight(l); err != nil {
			return err
		}
		if l.Type == metadata.LightTypePoint {
			name := fmt.Sprintf("light_%d", i)
			sc.AddEntity(metadata.NewEntity(name, mgl32.Translate3D(l.Position.X(), l.Position.Y(), l.Position.Z()), markerModel))
		}
	}

	overview, err := sm.CameraSystem.Acquire("overview")
	if err != nil {
		return err
	}
	g.ApplicationConfig.Camera.Apply(overview)
	overview.SetPosition(mgl32.Vec3{0, 12, 14})
	overview.SetRotation(-90, -40)
	state.cameras = [2]*components.Camera{sc.Camera, overview}

	sc.ClearColor = mgl32.Vec4{0.05, 0.05, 0.08, 1}
	return nil
}

// Update turns the first die slowly around its vertical axis. F3 switches
// between the free camera and the overview.
func (g *TestGame) Update(deltaTime float64, input *core.Input) error {
	state := g.state()
	if input.KeyPressed(core.KEY_F3) && state.cameras[1] != nil {
		state.active = 1 - state.active
		state.scene.Camera = state.cameras[state.active]
	}
	if state.spinning == nil {
		return nil
	}
	rotation := mgl32.HomogRotate3DY(float32(0.5 * deltaTime))
	state.spinning.WorldMatrix = state.spinning.WorldMatrix.Mul4(rotation)
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.state()
	state.width = width
	state.height = height
	core.LogDebug("testbed surface is now %dx%d", width, height)
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("shutting down testbed...")
	return nil
}
