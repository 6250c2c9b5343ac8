package systems

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type MaterialSystemConfig struct {
	/** @brief The maximum number of materials that can be registered. */
	MaxMaterialCount uint32
}

// MaterialSystem stores materials by index. Registered materials are never
// modified.
type MaterialSystem struct {
	Config    *MaterialSystemConfig
	materials []*metadata.Material
	lookup    map[string]uint32
	textures  *TextureSystem
	assets    AssetLoader
}

func NewMaterialSystem(config *MaterialSystemConfig, ts *TextureSystem, am AssetLoader) (*MaterialSystem, error) {
	if config.MaxMaterialCount == 0 {
		err := errors.New("func NewMaterialSystem - config.MaxMaterialCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &MaterialSystem{
		Config:    config,
		materials: make([]*metadata.Material, 0, config.MaxMaterialCount),
		lookup:    make(map[string]uint32),
		textures:  ts,
		assets:    am,
	}, nil
}

// Create registers the material and returns its index. A material whose
// name is already registered resolves to the existing index.
func (ms *MaterialSystem) Create(material metadata.Material) uint32 {
	if idx, ok := ms.lookup[material.Name]; ok && material.Name != "" {
		return idx
	}
	if uint32(len(ms.materials)) >= ms.Config.MaxMaterialCount {
		core.LogError("func Create - material limit of %d reached, cannot create `%s`", ms.Config.MaxMaterialCount, material.Name)
		return metadata.InvalidIndex
	}
	m := material
	ms.materials = append(ms.materials, &m)
	idx := uint32(len(ms.materials) - 1)
	if m.Name != "" {
		ms.lookup[m.Name] = idx
	}
	return idx
}

// CreateFromData registers imported materials, loading their textures
// through the texture system in one batch.
func (ms *MaterialSystem) CreateFromData(data []metadata.MaterialData) []uint32 {
	var paths []string
	for _, d := range data {
		for _, p := range []string{d.AlbedoTexture, d.EmissiveTexture, d.SpecularTexture, d.NormalsTexture, d.BumpTexture} {
			if p != "" {
				paths = append(paths, p)
			}
		}
	}

	loaded := make(map[string]uint32)
	if ms.textures != nil && len(paths) > 0 {
		for i, idx := range ms.textures.LoadAll(paths) {
			loaded[paths[i]] = idx
		}
	}
	texture := func(path string) uint32 {
		if idx, ok := loaded[path]; ok {
			return idx
		}
		return metadata.InvalidIndex
	}

	indices := make([]uint32, len(data))
	for i, d := range data {
		m := metadata.NewMaterial(d.Name)
		m.Albedo = d.Albedo
		m.Emissive = d.Emissive
		m.Smoothness = d.Smoothness
		m.Specular = d.Specular
		m.AlbedoTextureIdx = texture(d.AlbedoTexture)
		m.EmissiveTextureIdx = texture(d.EmissiveTexture)
		m.SpecularTextureIdx = texture(d.SpecularTexture)
		m.NormalsTextureIdx = texture(d.NormalsTexture)
		m.BumpTextureIdx = texture(d.BumpTexture)
		indices[i] = ms.Create(m)
	}
	return indices
}

// Load reads a material definition file and registers it with its
// textures. A material whose name is already registered resolves to the
// existing index. Failures are logged and return InvalidIndex.
func (ms *MaterialSystem) Load(path string) uint32 {
	if ms.assets == nil {
		core.LogError("func Load - material system has no asset loader")
		return metadata.InvalidIndex
	}
	res, err := ms.assets.LoadAsset(path, metadata.ResourceTypeMaterial, nil)
	if err != nil {
		core.LogError(err.Error())
		return metadata.InvalidIndex
	}
	data, ok := res.Data.(*metadata.MaterialData)
	if !ok {
		core.LogError("func Load - `%s` did not decode to a material", path)
		return metadata.InvalidIndex
	}
	if idx, ok := ms.lookup[data.Name]; ok {
		return idx
	}
	return ms.CreateFromData([]metadata.MaterialData{*data})[0]
}

func (ms *MaterialSystem) Get(idx uint32) *metadata.Material {
	if idx == metadata.InvalidIndex || int(idx) >= len(ms.materials) {
		return nil
	}
	return ms.materials[idx]
}

func (ms *MaterialSystem) GetByName(name string) (uint32, bool) {
	idx, ok := ms.lookup[name]
	return idx, ok
}

func (ms *MaterialSystem) All() []*metadata.Material {
	return ms.materials
}

func (ms *MaterialSystem) Shutdown() error {
	ms.materials = ms.materials[:0]
	ms.lookup = make(map[string]uint32)
	return nil
}
