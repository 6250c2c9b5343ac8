package engine

import (
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/assets"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/platform"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/headless"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
	"github.com/spaghettifunk/anima/engine/renderer/opengl"
	"github.com/spaghettifunk/anima/engine/scene"
	"github.com/spaghettifunk/anima/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

const (
	maxShaderCount   = 16
	maxTextureCount  = 256
	maxMaterialCount = 256
	maxMeshCount     = 256
	maxCameraCount   = 8
)

var defaultCameraPosition = mgl32.Vec3{0, 0, 5}

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *ApplicationConfig

	isRunning   atomic.Bool
	isSuspended bool

	// nil when rendering headless
	platform      *platform.Platform
	events        *core.EventBus
	input         *core.Input
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	scene         *scene.Scene
	debug         *metadata.DebugPanel

	width         uint32
	height        uint32
	pendingResize bool

	clock    *core.Clock
	metrics  *core.Metrics
	lastTime float64
	frames   uint64

	// last time the debug panel contents were logged
	lastStats float64
}

func newBackend(backendType metadata.RendererBackendType) (renderer.RendererBackend, error) {
	switch backendType {
	case metadata.RendererBackendTypeOpenGL:
		return opengl.New(), nil
	case metadata.RendererBackendTypeHeadless:
		return headless.New(), nil
	}
	return nil, errors.Wrapf(core.ErrUnknownBackend, "backend type %d", backendType)
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.FnInitialize == nil {
		return nil, errors.New("func New - a game with an initialize hook is required")
	}
	config := g.ApplicationConfig
	if config == nil {
		config = DefaultApplicationConfig()
		g.ApplicationConfig = config
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	core.SetLogLevel(config.LogLevel)

	backend, err := newBackend(config.BackendType)
	if err != nil {
		return nil, err
	}

	events := core.NewEventBus()
	input := core.NewInput()

	var p *platform.Platform
	if config.BackendType != metadata.RendererBackendTypeHeadless {
		if p, err = platform.New(input, events); err != nil {
			return nil, err
		}
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	app := config.Application
	sm, err := systems.NewSystemManager(&systems.SystemManagerConfig{
		ApplicationName:  app.Name,
		Width:            app.StartWidth,
		Height:           app.StartHeight,
		DebugContext:     config.Renderer.DebugContext,
		ShaderFile:       config.Renderer.ShaderFile,
		HotReload:        config.Assets.HotReload,
		Workers:          config.Assets.Workers,
		MaxShaderCount:   maxShaderCount,
		MaxTextureCount:  maxTextureCount,
		MaxMaterialCount: maxMaterialCount,
		MaxMeshCount:     maxMeshCount,
		MaxCameraCount:   maxCameraCount,
		CameraPosition:   defaultCameraPosition,
	}, backend, am)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	e := &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		config:        config,
		platform:      p,
		events:        events,
		input:         input,
		assetManager:  am,
		systemManager: sm,
		debug:         &metadata.DebugPanel{},
		width:         app.StartWidth,
		height:        app.StartHeight,
		clock:         core.NewClock(),
		metrics:       core.NewMetrics(),
	}
	return e, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	app := e.config.Application
	if e.platform != nil {
		if err := e.platform.Startup(platform.WindowConfig{
			Name:   app.Name,
			X:      app.StartPosX,
			Y:      app.StartPosY,
			Width:  app.StartWidth,
			Height: app.StartHeight,
			VSync:  e.config.Renderer.VSync,
			Debug:  e.config.Renderer.DebugContext,
		}); err != nil {
			return err
		}
		// the drawable can be larger than the window on high density displays
		e.width, e.height = e.platform.FramebufferSize()
	}

	if err := e.assetManager.Initialize(e.config.Assets.Directory, e.config.Assets.HotReload); err != nil {
		return err
	}
	if err := e.systemManager.Initialize(); err != nil {
		return err
	}
	if e.width != app.StartWidth || e.height != app.StartHeight {
		e.pendingResize = true
	}

	camera := e.systemManager.CameraSystem.GetDefault()
	e.config.Camera.Apply(camera)
	e.scene = scene.New(camera)

	e.debug.Info = e.systemManager.RendererSystem.Info()

	if err := e.gameInstance.FnInitialize(e.systemManager, e.scene); err != nil {
		return err
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// logStats reports what the visible debug panels show.
func (e *Engine) logStats() {
	if e.debug.ShowInfo && e.debug.Info != nil {
		info := e.debug.Info
		core.LogDebug("%s | %s | GL %s | %s", info.Vendor, info.Renderer, info.Version, e.debug.RenderTarget)
	}
	if e.debug.ShowEngine {
		core.LogInfo("%.0f fps, %.2f ms per frame", e.debug.FPS, e.debug.FrameTimeMS)
	}
}

// Run drives frames until quit is requested, max_frames is reached or a
// frame fails.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return errors.New("func Run - engine is not initialized")
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	maxFrames := e.config.Application.MaxFrames
	for e.isRunning.Load() {
		if e.platform != nil {
			e.platform.PumpMessages()
		}
		if e.pendingResize {
			if err := e.applyResize(); err != nil {
				return err
			}
		}
		if e.isSuspended {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if err := e.frame(delta); err != nil {
			core.LogError("frame %d failed: %s", e.frames, err)
			e.isRunning.Store(false)
			return err
		}

		e.clock.Update()
		e.metrics.Update(e.clock.Elapsed() - currentTime)
		e.debug.FPS, e.debug.FrameTimeMS = e.metrics.Frame()
		if currentTime-e.lastStats >= 1 {
			e.logStats()
			e.lastStats = currentTime
		}

		e.input.Update()
		e.lastTime = currentTime

		e.frames++
		if maxFrames > 0 && e.frames >= maxFrames {
			e.isRunning.Store(false)
		}
	}
	e.clock.Stop()
	return nil
}

func (e *Engine) frame(delta float64) error {
	sm := e.systemManager
	rs := sm.RendererSystem

	if n := sm.ShaderSystem.ProcessChanges(); n > 0 {
		core.LogInfo("reloaded %d shader program(s)", n)
	}

	e.scene.Update(delta, e.input)
	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta, e.input); err != nil {
			return errors.Wrap(err, "game update")
		}
	}

	if err := rs.BeginFrame(delta); err != nil {
		return err
	}
	aspect := float32(rs.FramebufferWidth) / float32(rs.FramebufferHeight)
	if err := e.scene.WriteUniforms(rs.UniformBuffer, aspect, sm.MeshSystem.Models()); err != nil {
		return errors.Wrap(err, "writing uniforms")
	}

	packet := e.scene.Packet(sm.FramePacket(delta))
	packet.RenderTarget = e.debug.RenderTarget
	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(packet, delta); err != nil {
			return errors.Wrap(err, "game render")
		}
	}
	if err := sm.RenderViewSystem.Render(packet); err != nil {
		return err
	}
	if err := rs.EndFrame(delta); err != nil {
		return err
	}

	if e.platform != nil {
		e.platform.SwapBuffers()
	}
	return nil
}

func (e *Engine) applyResize() error {
	e.pendingResize = false
	if e.width == 0 || e.height == 0 {
		// minimized
		if !e.isSuspended {
			core.LogInfo("window minimized, suspending")
		}
		e.isSuspended = true
		return nil
	}
	if e.isSuspended {
		core.LogInfo("window restored, resuming")
		e.isSuspended = false
	}
	if !e.systemManager.RendererSystem.OnResize(e.width, e.height) {
		return nil
	}
	if err := e.systemManager.RenderViewSystem.OnWindowResize(e.width, e.height); err != nil {
		return err
	}
	if e.gameInstance.FnOnResize != nil {
		return e.gameInstance.FnOnResize(e.width, e.height)
	}
	return nil
}

// Stop asks the frame loop to exit after the current frame. Safe to call
// from any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown: %s", err)
		}
	}
	if err := e.systemManager.Shutdown(); err != nil {
		return err
	}
	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}
	e.events.Shutdown()
	e.currentStage = EngineStageUninitialized
	if e.platform != nil {
		return e.platform.Shutdown()
	}
	return nil
}

// Scene is the state the game populates during initialization.
func (e *Engine) Scene() *scene.Scene { return e.scene }

func (e *Engine) Debug() *metadata.DebugPanel { return e.debug }

func (e *Engine) Events() *core.EventBus { return e.events }

func (e *Engine) SystemManager() *systems.SystemManager { return e.systemManager }

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down")
		e.isRunning.Store(false)
		return true
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	switch core.KeyCode(data.Data.U16[0]) {
	case core.KEY_ESCAPE:
		// other listeners may want to know about the quit as well
		e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
		return true
	case core.KEY_F1:
		e.debug.ShowInfo = !e.debug.ShowInfo
		if info := e.debug.Info; e.debug.ShowInfo && info != nil {
			core.LogInfo("%s | %s | GL %s | GLSL %s | %d extensions", info.Vendor, info.Renderer, info.Version, info.ShadingLanguageVersion, len(info.Extensions))
		}
		return true
	case core.KEY_F2:
		e.debug.ShowEngine = !e.debug.ShowEngine
		if e.debug.ShowEngine {
			core.LogInfo("%.0f fps, %.2f ms per frame", e.debug.FPS, e.debug.FrameTimeMS)
		}
		return true
	case core.KEY_TAB:
		e.debug.RenderTarget = e.debug.RenderTarget.Next()
		core.LogInfo("showing %s", e.debug.RenderTarget)
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	width, height := data.Data.U32[0], data.Data.U32[1]
	if width != e.width || height != e.height {
		e.width, e.height = width, height
		e.pendingResize = true
	}
	// let other listeners see it too
	return false
}
