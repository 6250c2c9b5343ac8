package systems

import (
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/assets"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// ShaderAssets resolves and loads shader files.
type ShaderAssets interface {
	AssetLoader
	Resolve(name string) string
	ModTime(name string) (time.Time, error)
}

// MeshProvider lists the meshes whose bindings must be dropped when a
// program is rebuilt.
type MeshProvider interface {
	Meshes() []*metadata.Mesh
}

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of programs held in the system. */
	MaxShaderCount uint16
	/** @brief Rebuild programs when their source file changes on disk. */
	HotReload bool
}

type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig
	// A lookup table for program name->index
	Lookup map[string]uint32
	// A collection of created programs. Pointers stay stable across reloads.
	Shaders []*metadata.Program
	// sub systems
	assetManager ShaderAssets
	backend      renderer.RendererBackend
	reconciler   *renderer.Reconciler
	meshes       MeshProvider
	changes      <-chan assets.AssetEvent
}

func NewShaderSystem(config *ShaderSystemConfig, am ShaderAssets, backend renderer.RendererBackend, reconciler *renderer.Reconciler, meshes MeshProvider) (*ShaderSystem, error) {
	if config.MaxShaderCount == 0 {
		err := errors.New("NewShaderSystem - config.MaxShaderCount must be greater than 0")
		core.LogError(err.Error())
		return nil, err
	}
	if am == nil || backend == nil || reconciler == nil {
		return nil, errors.New("NewShaderSystem - asset manager, backend and reconciler are required")
	}

	return &ShaderSystem{
		Config:       config,
		Lookup:       make(map[string]uint32),
		Shaders:      make([]*metadata.Program, 0, config.MaxShaderCount),
		assetManager: am,
		backend:      backend,
		reconciler:   reconciler,
		meshes:       meshes,
	}, nil
}

// WatchForChanges feeds asset change notifications into ProcessChanges.
// Without a feed, ProcessChanges polls the timestamp of every program file.
func (shaderSystem *ShaderSystem) WatchForChanges(changes <-chan assets.AssetEvent) {
	shaderSystem.changes = changes
}

/**
 * @brief Shuts down the shader system, destroying every program.
 */
func (shaderSystem *ShaderSystem) Shutdown() error {
	for _, p := range shaderSystem.Shaders {
		if p.Handle.Valid() {
			shaderSystem.backend.ProgramDestroy(p.Handle)
			p.Handle = 0
		}
	}
	shaderSystem.Shaders = shaderSystem.Shaders[:0]
	shaderSystem.Lookup = make(map[string]uint32)
	return nil
}

/**
 * @brief Builds the technique `name` out of the shader file at path and
 * returns its index. A compile or link failure is logged and the program is
 * kept; metadata.InvalidIndex is returned only when nothing could be created.
 */
func (shaderSystem *ShaderSystem) Load(path, name string) uint32 {
	if idx, ok := shaderSystem.Lookup[name]; ok {
		return idx
	}
	if len(shaderSystem.Shaders) >= int(shaderSystem.Config.MaxShaderCount) {
		core.LogError("func Load - shader limit of %d reached, cannot load `%s`", shaderSystem.Config.MaxShaderCount, name)
		return metadata.InvalidIndex
	}

	handle, layout, stamp, err := shaderSystem.build(path, name)
	if err != nil {
		core.LogError(err.Error())
		if !handle.Valid() {
			return metadata.InvalidIndex
		}
	}

	program := &metadata.Program{
		Handle:             handle,
		Name:               name,
		FilePath:           path,
		LastWriteTimestamp: stamp,
		Generation:         1,
		VertexInputLayout:  layout,
	}
	shaderSystem.Shaders = append(shaderSystem.Shaders, program)
	idx := uint32(len(shaderSystem.Shaders) - 1)
	shaderSystem.Lookup[name] = idx
	core.LogDebug("program `%s` created from `%s` with %d vertex inputs", name, path, len(layout.Attributes))
	return idx
}

func (shaderSystem *ShaderSystem) build(path, name string) (metadata.ProgramHandle, metadata.VertexShaderLayout, time.Time, error) {
	stamp, err := shaderSystem.assetManager.ModTime(path)
	if err != nil {
		return 0, metadata.VertexShaderLayout{}, stamp, errors.Wrapf(err, "func Load - cannot stat shader `%s`", path)
	}
	res, err := shaderSystem.assetManager.LoadAsset(path, metadata.ResourceTypeShader, nil)
	if err != nil {
		return 0, metadata.VertexShaderLayout{}, stamp, errors.Wrapf(err, "func Load - failed to read shader `%s`", path)
	}
	source, ok := res.Data.(string)
	if !ok {
		return 0, metadata.VertexShaderLayout{}, stamp, errors.Errorf("func Load - shader `%s` is not text", path)
	}

	handle, layout, err := shaderSystem.backend.ProgramCreate(metadata.ProgramSource{Name: name, Source: source})
	if handle.Valid() {
		shaderSystem.backend.ProgramBindUniformBlock(handle, "GlobalParams", metadata.UniformBindingGlobal)
		shaderSystem.backend.ProgramBindUniformBlock(handle, "LocalParams", metadata.UniformBindingLocal)
	}
	if err != nil {
		return handle, layout, stamp, errors.Wrapf(err, "func Load - program `%s`", name)
	}
	return handle, layout, stamp, nil
}

// Get returns the program at idx or nil.
func (shaderSystem *ShaderSystem) Get(idx uint32) *metadata.Program {
	if idx == metadata.InvalidIndex || int(idx) >= len(shaderSystem.Shaders) {
		return nil
	}
	return shaderSystem.Shaders[idx]
}

func (shaderSystem *ShaderSystem) GetByName(name string) *metadata.Program {
	idx, ok := shaderSystem.Lookup[name]
	if !ok {
		return nil
	}
	return shaderSystem.Get(idx)
}

/**
 * @brief Rebuilds the program at idx from its file. When the new source
 * fails the previous program stays in use. On success every vertex binding
 * made against the old program is dropped before it is destroyed.
 */
func (shaderSystem *ShaderSystem) Reload(idx uint32) error {
	program := shaderSystem.Get(idx)
	if program == nil {
		return errors.Wrapf(core.ErrInvalidHandle, "func Reload - no program at index %d", idx)
	}

	handle, layout, stamp, err := shaderSystem.build(program.FilePath, program.Name)
	if err != nil {
		if handle.Valid() {
			shaderSystem.backend.ProgramDestroy(handle)
		}
		// don't retry the same broken source every frame
		program.LastWriteTimestamp = stamp
		core.LogError(err.Error())
		return err
	}

	if shaderSystem.meshes != nil {
		dropped := shaderSystem.reconciler.InvalidateProgram(shaderSystem.meshes.Meshes(), program.Handle)
		core.LogDebug("program `%s` reloaded, %d vertex bindings dropped", program.Name, dropped)
	}
	if program.Handle.Valid() {
		shaderSystem.backend.ProgramDestroy(program.Handle)
	}
	program.Handle = handle
	program.VertexInputLayout = layout
	program.LastWriteTimestamp = stamp
	program.Generation++
	core.LogInfo("program `%s` reloaded (generation %d)", program.Name, program.Generation)
	return nil
}

// ProcessChanges rebuilds every program whose source changed since it was
// built. Must run on the goroutine owning the backend.
func (shaderSystem *ShaderSystem) ProcessChanges() int {
	if !shaderSystem.Config.HotReload {
		return 0
	}

	dirty := make(map[string]bool)
	if shaderSystem.changes != nil {
	drain:
		for {
			select {
			case e, ok := <-shaderSystem.changes:
				if !ok {
					shaderSystem.changes = nil
					break drain
				}
				if e.Type == metadata.ResourceTypeShader {
					dirty[filepath.Clean(e.Path)] = true
				}
			default:
				break drain
			}
		}
		if len(dirty) == 0 {
			return 0
		}
	}

	reloaded := 0
	for i, program := range shaderSystem.Shaders {
		// without a change feed every file is polled
		if shaderSystem.changes != nil && !dirty[shaderSystem.assetManager.Resolve(program.FilePath)] {
			continue
		}
		stamp, err := shaderSystem.assetManager.ModTime(program.FilePath)
		if err != nil || !stamp.After(program.LastWriteTimestamp) {
			continue
		}
		if err := shaderSystem.Reload(uint32(i)); err == nil {
			reloaded++
		}
	}
	return reloaded
}
