package loaders

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestImageLoaderFlipsRows(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(0, 1, color.NRGBA{0, 0, 255, 128})
	img.SetNRGBA(1, 1, color.NRGBA{0, 0, 255, 128})

	path := filepath.Join(t.TempDir(), "rows.png")
	writePNG(t, path, img)

	loader := &ImageLoader{}
	res, err := loader.Load(path, metadata.ResourceTypeImage, &metadata.ImageResourceParams{FlipY: true})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	data := res.Data.(*metadata.ImageResourceData)
	if data.Width != 2 || data.Height != 2 || data.ChannelCount != 4 {
		t.Fatalf("got %dx%d with %d channels", data.Width, data.Height, data.ChannelCount)
	}
	// the bottom row (blue) comes first once flipped
	if data.Pixels[0] != 0 || data.Pixels[2] != 255 || data.Pixels[3] != 128 {
		t.Errorf("first pixel = %v, want blue", data.Pixels[:4])
	}
	if data.Pixels[8] != 255 || data.Pixels[10] != 0 {
		t.Errorf("third pixel = %v, want red", data.Pixels[8:12])
	}
}

func TestDecodePixelsChannelCount(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want uint8
	}{
		{"gray", image.NewGray(image.Rect(0, 0, 3, 2)), 1},
		{"ycbcr", image.NewYCbCr(image.Rect(0, 0, 3, 2), image.YCbCrSubsampleRatio444), 3},
		{"rgba", image.NewRGBA(image.Rect(0, 0, 3, 2)), 4},
		{"paletted", image.NewPaletted(image.Rect(0, 0, 3, 2), color.Palette{color.Black}), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := DecodePixels(tt.img)
			if data.ChannelCount != tt.want {
				t.Fatalf("channels = %d, want %d", data.ChannelCount, tt.want)
			}
			if len(data.Pixels) != 3*2*int(tt.want) {
				t.Errorf("len(pixels) = %d, want %d", len(data.Pixels), 3*2*int(tt.want))
			}
		})
	}
}

func TestImageLoaderMissingFile(t *testing.T) {
	loader := &ImageLoader{}
	if _, err := loader.Load(filepath.Join(t.TempDir(), "nope.png"), metadata.ResourceTypeImage, nil); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

const quadOBJ = `mtllib quad.mtl
o quad
v -1 0 -1
v 1 0 -1
v 1 0 1
v -1 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 1 0
usemtl tiles
f 1/1/1 4/4/1 3/3/1 2/2/1
`

const quadMTL = `newmtl tiles
Kd 0.5 0.25 1
Ks 1 1 1
Ns 64
map_Kd tiles.png
`

func TestModelLoaderOBJ(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "quad.obj"), []byte(quadOBJ), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "quad.mtl"), []byte(quadMTL), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := &ModelLoader{}
	res, err := loader.Load(filepath.Join(dir, "quad.obj"), metadata.ResourceTypeModel, nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	model := res.Data.(*metadata.ModelData)
	if model.Name != "quad" {
		t.Errorf("name = %q, want quad", model.Name)
	}
	if len(model.Submeshes) != 1 {
		t.Fatalf("submeshes = %d, want 1", len(model.Submeshes))
	}
	sub := model.Submeshes[0]
	if sub.Layout.Stride != metadata.LayoutPositionNormalUV.Stride {
		t.Errorf("stride = %d", sub.Layout.Stride)
	}
	if len(sub.Indices) != 6 {
		t.Errorf("indices = %d, want 6 after triangulation", len(sub.Indices))
	}
	if len(sub.Vertices) != 4*8 {
		t.Errorf("vertices = %d floats, want 32 after deduplication", len(sub.Vertices))
	}
	if sub.MaterialIndex != 0 || len(model.Materials) != 1 {
		t.Fatalf("material index = %d with %d materials", sub.MaterialIndex, len(model.Materials))
	}
	mat := model.Materials[0]
	if mat.Smoothness != 64 || mat.Albedo.X() != 0.5 {
		t.Errorf("material = %+v", mat)
	}
	if mat.AlbedoTexture != filepath.Join(dir, "tiles.png") {
		t.Errorf("albedo texture = %q", mat.AlbedoTexture)
	}
}

func TestModelLoaderRejectsUnknownFormat(t *testing.T) {
	loader := &ModelLoader{}
	if _, err := loader.Load("mesh.fbx", metadata.ResourceTypeModel, nil); err == nil {
		t.Fatal("expected an error for an unsupported format")
	}
}

func TestMaterialLoaderAMT(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "floor.amt")
	content := `# floor
name = floor
diffuse_colour = 1.0 0.5 0.25 1.0
shininess = 64
specular = 0.75
diffuse_map_name = ../textures/floor.png
bogus line
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := (&MaterialLoader{}).Load(path, metadata.ResourceTypeMaterial, nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	mat := res.Data.(*metadata.MaterialData)
	if mat.Name != "floor" || res.Name != "floor" {
		t.Errorf("name = %q", mat.Name)
	}
	if mat.Albedo.Y() != 0.5 || mat.Smoothness != 64 || mat.Specular != 0.75 {
		t.Errorf("material = %+v", mat)
	}
	if want := filepath.Join(filepath.Dir(dir), "textures", "floor.png"); mat.AlbedoTexture != want {
		t.Errorf("albedo texture = %q, want %q", mat.AlbedoTexture, want)
	}
}

func TestMaterialLoaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"no name", "a.amt", "shininess = 2\n"},
		{"colour out of range", "b.amt", "name = b\ndiffuse_colour = 2 0 0\n"},
		{"bad number", "c.amt", "name = c\nshininess = shiny\n"},
		{"wrong extension", "d.mtl", "name = d\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := (&MaterialLoader{}).Load(path, metadata.ResourceTypeMaterial, nil); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestModelLoaderGLBWithoutNormals(t *testing.T) {
	doc := gltf.NewDocument()
	positions := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	indices := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(indices),
			Attributes: gltf.Attribute{gltf.POSITION: positions},
		}},
	}}
	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary() error: %v", err)
	}

	res, err := (&ModelLoader{}).Load(path, metadata.ResourceTypeModel, nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	model := res.Data.(*metadata.ModelData)
	if model.Name != "tri" || len(model.Submeshes) != 1 {
		t.Fatalf("model = %q with %d submeshes", model.Name, len(model.Submeshes))
	}
	sub := model.Submeshes[0]
	if len(sub.Indices) != 3 || len(sub.Vertices) != 24 {
		t.Fatalf("submesh has %d indices and %d floats", len(sub.Indices), len(sub.Vertices))
	}
	if n := sub.Vertices[3:6]; n[0] != 0 || n[1] != 0 || n[2] != 1 {
		t.Errorf("generated normal = %v, want [0 0 1]", n)
	}
}
