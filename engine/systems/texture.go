package systems

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// AssetLoader reads assets from disk. Implemented by assets.AssetManager.
type AssetLoader interface {
	LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error)
}

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
}

// TextureSystem owns every sampled texture. Indices returned by Load stay
// valid until Shutdown.
type TextureSystem struct {
	Config         *TextureSystemConfig
	DefaultTexture *metadata.Texture
	// Array of registered textures, indexed by the values Load returns.
	RegisteredTextures []*metadata.Texture
	// sub systems
	jobSystem    *JobSystem
	assetManager AssetLoader
	backend      renderer.RendererBackend
}

func NewTextureSystem(config *TextureSystemConfig, js *JobSystem, am AssetLoader, backend renderer.RendererBackend) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := errors.New("func NewTextureSystem - config.MaxTextureCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if am == nil || backend == nil {
		return nil, errors.New("func NewTextureSystem - asset loader and backend are required")
	}

	return &TextureSystem{
		Config:             config,
		RegisteredTextures: make([]*metadata.Texture, 0, config.MaxTextureCount),
		jobSystem:          js,
		assetManager:       am,
		backend:            backend,
	}, nil
}

// Initialize creates the 1x1 white texture substituted for missing ones.
func (ts *TextureSystem) Initialize() error {
	pixels := []uint8{255, 255, 255, 255}
	handle, err := ts.backend.TextureCreate(&metadata.TextureConfig{
		Width:         1,
		Height:        1,
		Format:        metadata.TextureFormatRGBA8,
		FilterMinify:  metadata.TextureFilterModeNearest,
		FilterMagnify: metadata.TextureFilterModeNearest,
		Repeat:        metadata.TextureRepeatRepeat,
	}, pixels)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	ts.DefaultTexture = &metadata.Texture{
		Handle:       handle,
		Name:         metadata.DEFAULT_TEXTURE_NAME,
		Width:        1,
		Height:       1,
		ChannelCount: 4,
		Format:       metadata.TextureFormatRGBA8,
	}
	return nil
}

func (ts *TextureSystem) Shutdown() error {
	for _, t := range ts.RegisteredTextures {
		if t.Handle.Valid() {
			ts.backend.TextureDestroy(t.Handle)
		}
	}
	ts.RegisteredTextures = ts.RegisteredTextures[:0]
	if ts.DefaultTexture != nil {
		ts.backend.TextureDestroy(ts.DefaultTexture.Handle)
		ts.DefaultTexture = nil
	}
	return nil
}

// Load returns the index of the texture stored at path, decoding and
// uploading it on first use. Failures are logged and reported as
// metadata.InvalidIndex so callers fall back to the default texture.
func (ts *TextureSystem) Load(path string) uint32 {
	if idx, ok := ts.find(path); ok {
		return idx
	}
	data, err := ts.decode(path)
	if err != nil {
		core.LogError(err.Error())
		return metadata.InvalidIndex
	}
	idx, err := ts.upload(path, data)
	if err != nil {
		core.LogError(err.Error())
		return metadata.InvalidIndex
	}
	return idx
}

type textureLoadResult struct {
	data *metadata.ImageResourceData
	err  error
}

// LoadAll decodes every path not yet registered on the job system and
// uploads the results on the calling goroutine. The returned indices follow
// the order of paths.
func (ts *TextureSystem) LoadAll(paths []string) []uint32 {
	indices := make([]uint32, len(paths))
	results := make(map[string]*textureLoadResult)
	var mu sync.Mutex
	var jobs []metadata.JobTask

	for _, path := range paths {
		if _, ok := ts.find(path); ok {
			continue
		}
		if _, queued := results[path]; queued {
			continue
		}
		results[path] = &textureLoadResult{}
		if ts.jobSystem == nil {
			continue
		}
		jobs = append(jobs, metadata.JobTask{
			JobType:     metadata.JOB_TYPE_RESOURCE_LOAD,
			InputParams: path,
			OnStart: func(params interface{}) (interface{}, error) {
				return ts.decode(params.(string))
			},
			OnComplete: func(result interface{}) {
				mu.Lock()
				results[path].data = result.(*metadata.ImageResourceData)
				mu.Unlock()
			},
			OnFailure: func(err error) {
				mu.Lock()
				results[path].err = err
				mu.Unlock()
			},
		})
	}
	if ts.jobSystem != nil {
		ts.jobSystem.RunAll(jobs)
	}

	for i, path := range paths {
		if idx, ok := ts.find(path); ok {
			indices[i] = idx
			continue
		}
		r := results[path]
		if r.data == nil && r.err == nil {
			// no job system, decode inline
			r.data, r.err = ts.decode(path)
		}
		if r.err != nil {
			core.LogError(r.err.Error())
			indices[i] = metadata.InvalidIndex
			// cache the failure so duplicates do not retry
			r.data = nil
			continue
		}
		idx, err := ts.upload(path, r.data)
		if err != nil {
			core.LogError(err.Error())
			r.err = err
			indices[i] = metadata.InvalidIndex
			continue
		}
		indices[i] = idx
	}
	return indices
}

// Get returns the texture at idx or nil.
func (ts *TextureSystem) Get(idx uint32) *metadata.Texture {
	if idx == metadata.InvalidIndex || int(idx) >= len(ts.RegisteredTextures) {
		return nil
	}
	return ts.RegisteredTextures[idx]
}

// Default returns the 1x1 white texture.
func (ts *TextureSystem) Default() *metadata.Texture {
	return ts.DefaultTexture
}

// Resolve returns the texture at idx, or the default texture when idx does
// not name a live texture.
func (ts *TextureSystem) Resolve(idx uint32) *metadata.Texture {
	if t := ts.Get(idx); t != nil && t.Handle.Valid() {
		return t
	}
	return ts.DefaultTexture
}

func (ts *TextureSystem) All() []*metadata.Texture {
	return ts.RegisteredTextures
}

func (ts *TextureSystem) find(path string) (uint32, bool) {
	for i, t := range ts.RegisteredTextures {
		if t.Path == path {
			return uint32(i), true
		}
	}
	return 0, false
}

func (ts *TextureSystem) decode(path string) (*metadata.ImageResourceData, error) {
	res, err := ts.assetManager.LoadAsset(path, metadata.ResourceTypeImage, &metadata.ImageResourceParams{FlipY: true})
	if err != nil {
		return nil, errors.Wrapf(err, "func Load - failed to load texture `%s`", path)
	}
	data, ok := res.Data.(*metadata.ImageResourceData)
	if !ok {
		return nil, errors.Errorf("func Load - `%s` did not decode to an image", path)
	}
	return data, nil
}

func (ts *TextureSystem) upload(path string, data *metadata.ImageResourceData) (uint32, error) {
	if uint32(len(ts.RegisteredTextures)) >= ts.Config.MaxTextureCount {
		return metadata.InvalidIndex, errors.Errorf("func Load - texture limit of %d reached, cannot load `%s`", ts.Config.MaxTextureCount, path)
	}
	var format metadata.TextureFormat
	switch data.ChannelCount {
	case 3:
		format = metadata.TextureFormatRGB8
	case 4:
		format = metadata.TextureFormatRGBA8
	default:
		return metadata.InvalidIndex, errors.Errorf("func Load - texture `%s` has %d channels, only 3 or 4 are supported", path, data.ChannelCount)
	}

	handle, err := ts.backend.TextureCreate(&metadata.TextureConfig{
		Width:         data.Width,
		Height:        data.Height,
		Format:        format,
		FilterMinify:  metadata.TextureFilterModeLinearMipmapLinear,
		FilterMagnify: metadata.TextureFilterModeLinear,
		Repeat:        metadata.TextureRepeatClampToEdge,
		Mipmaps:       true,
	}, data.Pixels)
	if err != nil {
		return metadata.InvalidIndex, errors.Wrapf(err, "func Load - failed to upload texture `%s`", path)
	}

	ts.RegisteredTextures = append(ts.RegisteredTextures, &metadata.Texture{
		Handle:       handle,
		Path:         path,
		Name:         path,
		Width:        data.Width,
		Height:       data.Height,
		ChannelCount: data.ChannelCount,
		Format:       format,
	})
	core.LogDebug("texture `%s` loaded (%dx%d, %s)", path, data.Width, data.Height, format)
	return uint32(len(ts.RegisteredTextures) - 1), nil
}
