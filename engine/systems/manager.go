package systems

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/assets"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type SystemManagerConfig struct {
	ApplicationName string
	Width           uint32
	Height          uint32
	DebugContext    bool

	ShaderFile string
	HotReload  bool
	// number of workers decoding assets
	Workers int

	MaxShaderCount   uint16
	MaxTextureCount  uint32
	MaxMaterialCount uint32
	MaxMeshCount     uint32
	MaxCameraCount   uint16
	// where the default camera starts
	CameraPosition mgl32.Vec3
}

type SystemManager struct {
	RendererSystem    *RendererSystem
	JobSystem         *JobSystem
	TextureSystem     *TextureSystem
	ShaderSystem      *ShaderSystem
	MaterialSystem    *MaterialSystem
	MeshSystem        *MeshSystem
	FramebufferSystem *FramebufferSystem
	RenderViewSystem  *RenderViewSystem
	CameraSystem      *CameraSystem

	config       *SystemManagerConfig
	assetManager *assets.AssetManager
}

func NewSystemManager(config *SystemManagerConfig, backend renderer.RendererBackend, am *assets.AssetManager) (*SystemManager, error) {
	if config == nil || am == nil {
		return nil, errors.New("func NewSystemManager - config and asset manager are required")
	}
	workers := config.Workers
	if workers <= 0 {
		workers = 1
	}
	js, err := NewJobSystem(workers, workers*4)
	if err != nil {
		return nil, err
	}
	cameras := config.MaxCameraCount
	if cameras == 0 {
		cameras = 1
	}
	cs, err := NewCameraSystem(&CameraSystemConfig{
		MaxCameraCount:  cameras,
		DefaultPosition: config.CameraPosition,
	})
	if err != nil {
		return nil, err
	}
	rs, err := NewRendererSystem(&RendererSystemConfig{
		ApplicationName: config.ApplicationName,
		Width:           config.Width,
		Height:          config.Height,
		DebugContext:    config.DebugContext,
	}, backend)
	if err != nil {
		return nil, err
	}
	return &SystemManager{
		RendererSystem: rs,
		JobSystem:      js,
		CameraSystem:   cs,
		config:         config,
		assetManager:   am,
	}, nil
}

// Initialize brings the backend up and builds every registry and pass on
// top of it. Must run on the goroutine owning the graphics context.
func (sm *SystemManager) Initialize() error {
	if err := sm.RendererSystem.Initialize(); err != nil {
		return err
	}
	backend := sm.RendererSystem.Backend()
	reconciler := sm.RendererSystem.Reconciler

	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: sm.config.MaxTextureCount,
	}, sm.JobSystem, sm.assetManager, backend)
	if err != nil {
		return err
	}
	if err := ts.Initialize(); err != nil {
		return err
	}
	sm.TextureSystem = ts

	ms, err := NewMaterialSystem(&MaterialSystemConfig{
		MaxMaterialCount: sm.config.MaxMaterialCount,
	}, ts, sm.assetManager)
	if err != nil {
		return err
	}
	sm.MaterialSystem = ms

	mesh, err := NewMeshSystem(&MeshSystemConfig{
		MaxMeshCount: sm.config.MaxMeshCount,
	}, backend, reconciler, sm.assetManager, ms)
	if err != nil {
		return err
	}
	sm.MeshSystem = mesh

	ss, err := NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount: sm.config.MaxShaderCount,
		HotReload:      sm.config.HotReload,
	}, sm.assetManager, backend, reconciler, mesh)
	if err != nil {
		return err
	}
	if sm.config.HotReload {
		ss.WatchForChanges(sm.assetManager.Changes())
	}
	sm.ShaderSystem = ss

	fs, err := NewFramebufferSystem(backend)
	if err != nil {
		return err
	}
	sm.FramebufferSystem = fs

	rvs, err := NewRenderViewSystem(&RenderViewSystemConfig{
		ShaderFile: sm.config.ShaderFile,
		Width:      sm.config.Width,
		Height:     sm.config.Height,
	}, sm.RendererSystem, fs, ss, mesh, ts)
	if err != nil {
		return err
	}
	if err := rvs.Initialize(); err != nil {
		return err
	}
	sm.RenderViewSystem = rvs

	core.LogInfo("systems initialized")
	return nil
}

// FramePacket gathers the registries a frame draws from. Scene owned
// fields are filled by the caller.
func (sm *SystemManager) FramePacket(deltaTime float64) *metadata.FramePacket {
	rs := sm.RendererSystem
	return &metadata.FramePacket{
		FrameNumber:   rs.FrameNumber,
		DeltaTime:     deltaTime,
		Width:         rs.FramebufferWidth,
		Height:        rs.FramebufferHeight,
		UniformBuffer: rs.UniformBuffer.Handle,
		Models:        sm.MeshSystem.Models(),
		Meshes:        sm.MeshSystem.Meshes(),
		Materials:     sm.MaterialSystem.All(),
		Textures:      sm.TextureSystem.All(),
	}
}

func (sm *SystemManager) Shutdown() error {
	if sm.RenderViewSystem != nil {
		if err := sm.RenderViewSystem.Shutdown(); err != nil {
			return err
		}
	}
	if sm.FramebufferSystem != nil {
		if err := sm.FramebufferSystem.Shutdown(); err != nil {
			return err
		}
	}
	if sm.MeshSystem != nil {
		if err := sm.MeshSystem.Shutdown(); err != nil {
			return err
		}
	}
	if sm.MaterialSystem != nil {
		if err := sm.MaterialSystem.Shutdown(); err != nil {
			return err
		}
	}
	if sm.ShaderSystem != nil {
		if err := sm.ShaderSystem.Shutdown(); err != nil {
			return err
		}
	}
	if sm.TextureSystem != nil {
		if err := sm.TextureSystem.Shutdown(); err != nil {
			return err
		}
	}
	if err := sm.CameraSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.JobSystem.Shutdown(); err != nil {
		return err
	}
	return sm.RendererSystem.Shutdown()
}
