package loaders

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type objVertexKey struct {
	position, uv, normal int
}

func loadOBJ(path string) (*metadata.ModelData, error) {
	meshFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer meshFile.Close()

	var matReader io.Reader = strings.NewReader("")
	if mtlPath := findMaterialLibrary(path); mtlPath != "" {
		matFile, err := os.Open(mtlPath)
		if err == nil {
			defer matFile.Close()
			matReader = matFile
		}
	}

	decoder, err := obj.DecodeReader(meshFile, matReader)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding obj `%s`", path)
	}

	model := &metadata.ModelData{Name: modelName(path)}

	materialIdx := make(map[string]int)
	writers := make(map[string]*vertexWriter)
	uniques := make(map[string]map[objVertexKey]uint32)
	var order []string

	for _, decodedObj := range decoder.Objects {
		for _, face := range decodedObj.Faces {
			w, ok := writers[face.Material]
			if !ok {
				idx, known := materialIdx[face.Material]
				if !known {
					idx = -1
					if mat, found := decoder.Materials[face.Material]; found && mat != nil {
						idx = len(model.Materials)
						model.Materials = append(model.Materials, objMaterial(path, mat))
					}
					materialIdx[face.Material] = idx
				}
				w = newVertexWriter(idx)
				writers[face.Material] = w
				uniques[face.Material] = make(map[objVertexKey]uint32)
				order = append(order, face.Material)
			}
			unique := uniques[face.Material]
			flat := faceNormal(decoder, face)

			add := func(i int) {
				key := objVertexKey{position: face.Vertices[i], uv: -1, normal: -1}
				if i < len(face.Uvs) {
					key.uv = face.Uvs[i]
				}
				if i < len(face.Normals) {
					key.normal = face.Normals[i]
				}
				index, exists := unique[key]
				if !exists {
					normal, ok := vec3At(decoder.Normals, key.normal)
					if !ok {
						normal = flat
					}
					pos, _ := vec3At(decoder.Vertices, key.position)
					uv, _ := vec2At(decoder.Uvs, key.uv)
					index = w.push(pos, normal, uv)
					unique[key] = index
				}
				w.data.Indices = append(w.data.Indices, index)
			}

			// faces are triangulated as a fan
			for i := 2; i < len(face.Vertices); i++ {
				add(0)
				add(i - 1)
				add(i)
			}
		}
	}

	for _, name := range order {
		if w := writers[name]; len(w.data.Indices) > 0 {
			model.Submeshes = append(model.Submeshes, w.data)
		}
	}
	return model, nil
}

func objMaterial(modelPath string, mat *obj.Material) metadata.MaterialData {
	return metadata.MaterialData{
		Name:          mat.Name,
		Albedo:        mgl32.Vec3{mat.Diffuse.R, mat.Diffuse.G, mat.Diffuse.B},
		Emissive:      mgl32.Vec3{mat.Emissive.R, mat.Emissive.G, mat.Emissive.B},
		Smoothness:    mat.Shininess,
		Specular:      (mat.Specular.R + mat.Specular.G + mat.Specular.B) / 3,
		AlbedoTexture: resolveRelative(modelPath, mat.MapKd),
	}
}

// findMaterialLibrary returns the mtllib referenced by the obj file, or a
// sibling .mtl file with the same base name.
func findMaterialLibrary(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if name, ok := strings.CutPrefix(line, "mtllib "); ok {
			return resolveRelative(path, strings.TrimSpace(name))
		}
	}
	sibling := strings.TrimSuffix(path, filepath.Ext(path)) + ".mtl"
	if _, err := os.Stat(sibling); err == nil {
		return sibling
	}
	return ""
}

func faceNormal(decoder *obj.Decoder, face obj.Face) [3]float32 {
	if len(face.Vertices) < 3 {
		return [3]float32{0, 1, 0}
	}
	a, _ := vec3At(decoder.Vertices, face.Vertices[0])
	b, _ := vec3At(decoder.Vertices, face.Vertices[1])
	c, _ := vec3At(decoder.Vertices, face.Vertices[2])
	n := mgl32.Vec3(b).Sub(mgl32.Vec3(a)).Cross(mgl32.Vec3(c).Sub(mgl32.Vec3(a)))
	if n.Len() == 0 {
		return [3]float32{0, 1, 0}
	}
	return n.Normalize()
}

func vec3At(values []float32, idx int) ([3]float32, bool) {
	if idx < 0 || idx*3+2 >= len(values) {
		return [3]float32{}, false
	}
	return [3]float32{values[idx*3], values[idx*3+1], values[idx*3+2]}, true
}

func vec2At(values []float32, idx int) ([2]float32, bool) {
	if idx < 0 || idx*2+1 >= len(values) {
		return [2]float32{}, false
	}
	return [2]float32{values[idx*2], values[idx*2+1]}, true
}
