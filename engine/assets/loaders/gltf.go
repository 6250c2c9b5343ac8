package loaders

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

func loadGLTF(path string) (*metadata.ModelData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening gltf `%s`", path)
	}

	model := &metadata.ModelData{Name: modelName(path)}
	for _, mat := range doc.Materials {
		model.Materials = append(model.Materials, gltfMaterial(path, doc, mat))
	}

	for _, mesh := range doc.Meshes {
		for i, prim := range mesh.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				core.LogWarn("mesh `%s` primitive %d is not a triangle list, skipping", mesh.Name, i)
				continue
			}
			submesh, err := loadPrimitive(doc, prim)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh `%s` primitive %d", mesh.Name, i)
			}
			model.Submeshes = append(model.Submeshes, submesh)
		}
	}
	return model, nil
}

func loadPrimitive(doc *gltf.Document, prim *gltf.Primitive) (metadata.SubmeshData, error) {
	materialIndex := -1
	if prim.Material != nil {
		materialIndex = int(*prim.Material)
	}
	w := newVertexWriter(materialIndex)

	posAccessorIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return w.data, errors.New("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posAccessorIdx], nil)
	if err != nil {
		return w.data, errors.Wrap(err, "reading positions")
	}

	var normals [][3]float32
	if normalIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[normalIdx], nil); err != nil {
			return w.data, errors.Wrap(err, "reading normals")
		}
	}

	var texCoords [][2]float32
	if texIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if texCoords, err = modeler.ReadTextureCoord(doc, doc.Accessors[texIdx], nil); err != nil {
			return w.data, errors.Wrap(err, "reading texture coordinates")
		}
	}

	for i, pos := range positions {
		normal := [3]float32{0, 1, 0}
		if i < len(normals) {
			normal = normals[i]
		}
		var uv [2]float32
		if i < len(texCoords) {
			// glTF puts v=0 at the top of the image
			uv = [2]float32{texCoords[i][0], 1 - texCoords[i][1]}
		}
		w.push(pos, normal, uv)
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return w.data, errors.Wrap(err, "reading indices")
		}
		w.data.Indices = indices
	} else {
		w.data.Indices = make([]uint32, len(positions))
		for i := range w.data.Indices {
			w.data.Indices[i] = uint32(i)
		}
	}
	if normals == nil {
		math.GenerateNormals(w.data.Vertices, 8, 3, w.data.Indices)
	}
	return w.data, nil
}

func gltfMaterial(modelPath string, doc *gltf.Document, mat *gltf.Material) metadata.MaterialData {
	data := metadata.MaterialData{
		Name:       mat.Name,
		Albedo:     mgl32.Vec3{1, 1, 1},
		Smoothness: 32,
		Specular:   0.5,
	}
	e := mat.EmissiveFactor
	data.Emissive = mgl32.Vec3{float32(e[0]), float32(e[1]), float32(e[2])}

	if pbr := mat.PBRMetallicRoughness; pbr != nil {
		if f := pbr.BaseColorFactor; f != nil {
			data.Albedo = mgl32.Vec3{float32(f[0]), float32(f[1]), float32(f[2])}
		}
		if r := pbr.RoughnessFactor; r != nil {
			data.Smoothness = (1 - float32(*r)) * 128
		}
		if m := pbr.MetallicFactor; m != nil {
			data.Specular = float32(*m)
		}
		if pbr.BaseColorTexture != nil {
			data.AlbedoTexture = gltfTexturePath(modelPath, doc, int(pbr.BaseColorTexture.Index))
		}
	}
	if mat.NormalTexture != nil && mat.NormalTexture.Index != nil {
		data.NormalsTexture = gltfTexturePath(modelPath, doc, int(*mat.NormalTexture.Index))
	}
	if mat.EmissiveTexture != nil {
		data.EmissiveTexture = gltfTexturePath(modelPath, doc, int(mat.EmissiveTexture.Index))
	}
	return data
}

// gltfTexturePath resolves a texture to an image file. Images embedded in
// buffer views have no path and are skipped.
func gltfTexturePath(modelPath string, doc *gltf.Document, textureIdx int) string {
	if textureIdx < 0 || textureIdx >= len(doc.Textures) {
		return ""
	}
	tex := doc.Textures[textureIdx]
	if tex.Source == nil || int(*tex.Source) >= len(doc.Images) {
		return ""
	}
	img := doc.Images[*tex.Source]
	if img.URI == "" || img.IsEmbeddedResource() {
		core.LogWarn("texture %d of `%s` is embedded, skipping", textureIdx, modelPath)
		return ""
	}
	return resolveRelative(modelPath, img.URI)
}
