package loaders

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// ModelLoader imports a model file into submeshes laid out as
// position, normal and uv, plus the materials they reference.
type ModelLoader struct{}

func (ml *ModelLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	var (
		model *metadata.ModelData
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		model, err = loadOBJ(path)
	case ".gltf", ".glb":
		model, err = loadGLTF(path)
	default:
		return nil, errors.Errorf("unsupported model format `%s`", ext)
	}
	if err != nil {
		return nil, err
	}
	if len(model.Submeshes) == 0 {
		return nil, errors.Errorf("model `%s` has no geometry", path)
	}

	var size uint64
	for _, s := range model.Submeshes {
		size += uint64(len(s.Vertices)*4 + len(s.Indices)*4)
	}
	return &metadata.Resource{
		Name:     model.Name,
		FullPath: path,
		DataSize: size,
		Data:     model,
	}, nil
}

func (ml *ModelLoader) Unload(res *metadata.Resource) error {
	res.Data = nil
	return nil
}

func modelName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// resolveRelative joins a texture reference found inside a model file with
// the directory of that file.
func resolveRelative(modelPath, ref string) string {
	if ref == "" || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(filepath.Dir(modelPath), filepath.FromSlash(ref))
}

// vertexWriter appends interleaved position, normal, uv vertices.
type vertexWriter struct {
	data metadata.SubmeshData
}

func newVertexWriter(materialIndex int) *vertexWriter {
	return &vertexWriter{data: metadata.SubmeshData{
		Layout:        metadata.LayoutPositionNormalUV,
		MaterialIndex: materialIndex,
	}}
}

func (w *vertexWriter) push(pos, normal [3]float32, uv [2]float32) uint32 {
	idx := uint32(len(w.data.Vertices) / 8)
	w.data.Vertices = append(w.data.Vertices,
		pos[0], pos[1], pos[2],
		normal[0], normal[1], normal[2],
		uv[0], uv[1],
	)
	return idx
}
