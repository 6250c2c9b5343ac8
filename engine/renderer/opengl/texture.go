package opengl

import (
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type textureFormat struct {
	internal int32
	format   uint32
	xtype    uint32
	channels uint32
}

func glTextureFormat(f metadata.TextureFormat) (textureFormat, bool) {
	switch f {
	case metadata.TextureFormatRGB8:
		return textureFormat{gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE, 3}, true
	case metadata.TextureFormatRGBA8:
		return textureFormat{gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE, 4}, true
	case metadata.TextureFormatRGBA16F:
		return textureFormat{gl.RGBA16F, gl.RGBA, gl.FLOAT, 4}, true
	case metadata.TextureFormatDepth24:
		return textureFormat{gl.DEPTH_COMPONENT24, gl.DEPTH_COMPONENT, gl.UNSIGNED_INT, 1}, true
	}
	return textureFormat{}, false
}

func glFilter(mode metadata.TextureFilterMode) int32 {
	switch mode {
	case metadata.TextureFilterModeLinear:
		return gl.LINEAR
	case metadata.TextureFilterModeLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	}
	return gl.NEAREST
}

func glWrap(repeat metadata.TextureRepeat) int32 {
	if repeat == metadata.TextureRepeatClampToEdge {
		return gl.CLAMP_TO_EDGE
	}
	return gl.REPEAT
}

func (b *Backend) TextureCreate(config *metadata.TextureConfig, pixels []uint8) (metadata.TextureHandle, error) {
	format, ok := glTextureFormat(config.Format)
	if !ok {
		return 0, errors.Errorf("func TextureCreate - unsupported format %s", config.Format)
	}
	if pixels != nil && format.xtype == gl.UNSIGNED_BYTE {
		if want := config.Width * config.Height * format.channels; uint32(len(pixels)) < want {
			return 0, errors.Errorf("func TextureCreate - expected %d bytes of pixels, got %d", want, len(pixels))
		}
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	var data unsafe.Pointer
	if len(pixels) > 0 {
		data = gl.Ptr(pixels)
	}
	// RGB rows are not 4-byte aligned
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, format.internal, int32(config.Width), int32(config.Height), 0, format.format, format.xtype, data)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(config.Repeat))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(config.Repeat))
	minify := config.FilterMinify
	if !config.Mipmaps && minify == metadata.TextureFilterModeLinearMipmapLinear {
		minify = metadata.TextureFilterModeLinear
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter(minify))
	// magnification never samples mip levels
	magnify := config.FilterMagnify
	if magnify == metadata.TextureFilterModeLinearMipmapLinear {
		magnify = metadata.TextureFilterModeLinear
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter(magnify))
	if config.Mipmaps && data != nil {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return metadata.TextureHandle(id), nil
}

func (b *Backend) TextureDestroy(handle metadata.TextureHandle) {
	if !handle.Valid() {
		return
	}
	id := uint32(handle)
	gl.DeleteTextures(1, &id)
}

func (b *Backend) TextureBind(unit uint32, handle metadata.TextureHandle) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, uint32(handle))
}
