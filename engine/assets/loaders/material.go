package loaders

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// MaterialLoader reads standalone material definitions (.amt): one
// `key = value` pair per line, `#` starts a comment. Map paths are relative
// to the definition file.
type MaterialLoader struct{}

func (ml *MaterialLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".amt" {
		return nil, errors.Errorf("unsupported material format `%s`", ext)
	}
	data, err := parseAMTFile(path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     data.Name,
		FullPath: path,
		Data:     data,
	}, nil
}

func (ml *MaterialLoader) Unload(res *metadata.Resource) error {
	res.Data = nil
	return nil
}

func parseAMTFile(filename string) (*metadata.MaterialData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	material := &metadata.MaterialData{
		Albedo:     mgl32.Vec3{1, 1, 1},
		Smoothness: 32,
		Specular:   0.5,
	}

	scanner := bufio.NewScanner(file)
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		// Split key-value pairs by the first "=" sign
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			core.LogWarn("%s:%d: skipping invalid line `%s`", filename, lineNumber, line)
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "name":
			material.Name = value
		case "diffuse_colour":
			if material.Albedo, err = parseColour(value); err != nil {
				return nil, errors.Wrapf(err, "%s:%d: diffuse_colour", filename, lineNumber)
			}
		case "emissive_colour":
			if material.Emissive, err = parseColour(value); err != nil {
				return nil, errors.Wrapf(err, "%s:%d: emissive_colour", filename, lineNumber)
			}
		case "shininess":
			if material.Smoothness, err = parseFloat(value); err != nil {
				return nil, errors.Wrapf(err, "%s:%d: shininess", filename, lineNumber)
			}
		case "specular":
			if material.Specular, err = parseFloat(value); err != nil {
				return nil, errors.Wrapf(err, "%s:%d: specular", filename, lineNumber)
			}
		case "diffuse_map_name":
			material.AlbedoTexture = resolveRelative(filename, value)
		case "specular_map_name":
			material.SpecularTexture = resolveRelative(filename, value)
		case "normal_map_name":
			material.NormalsTexture = resolveRelative(filename, value)
		case "emissive_map_name":
			material.EmissiveTexture = resolveRelative(filename, value)
		default:
			core.LogWarn("%s:%d: unknown key '%s'. Skipping...", filename, lineNumber, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := validateMaterial(material); err != nil {
		return nil, errors.Wrapf(err, "material `%s`", filename)
	}
	return material, nil
}

func parseFloat(value string) (float32, error) {
	f, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return 0, errors.Errorf("invalid number `%s`", value)
	}
	return float32(f), nil
}

// parseColour accepts three or four components; alpha is ignored.
func parseColour(value string) (mgl32.Vec3, error) {
	fields := strings.Fields(value)
	if len(fields) != 3 && len(fields) != 4 {
		return mgl32.Vec3{}, errors.Errorf("expected 3 or 4 values, got %d", len(fields))
	}
	var c mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := parseFloat(fields[i])
		if err != nil {
			return mgl32.Vec3{}, err
		}
		c[i] = f
	}
	return c, nil
}

func validateMaterial(material *metadata.MaterialData) error {
	if material.Name == "" {
		return errors.New("material name is required")
	}
	for _, c := range []mgl32.Vec3{material.Albedo, material.Emissive} {
		for _, v := range c {
			if math.Clamp(v, 0, 1) != v {
				return errors.Errorf("colour values must be between 0.0 and 1.0, got %v", c)
			}
		}
	}
	if material.Smoothness < 0 {
		return errors.New("shininess must be a non-negative value")
	}
	if math.Clamp(material.Specular, 0, 1) != material.Specular {
		return errors.Errorf("specular must be between 0.0 and 1.0, got %g", material.Specular)
	}
	return nil
}
