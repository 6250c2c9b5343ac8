package metadata

const (
	/** @brief The default texture name. */
	DEFAULT_TEXTURE_NAME string = "default"
)

/** @brief The pixel storage format of a texture. */
type TextureFormat int

const (
	TextureFormatRGB8 TextureFormat = iota
	TextureFormatRGBA8
	TextureFormatRGBA16F
	TextureFormatDepth24
)

func (f TextureFormat) String() string {
	switch f {
	case TextureFormatRGB8:
		return "RGB8"
	case TextureFormatRGBA8:
		return "RGBA8"
	case TextureFormatRGBA16F:
		return "RGBA16F"
	case TextureFormatDepth24:
		return "DEPTH24"
	}
	return "unknown"
}

// IsDepth reports whether the format can only be attached as depth.
func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatDepth24
}

/** @brief Filter modes used when sampling. */
type TextureFilterMode int

const (
	TextureFilterModeNearest TextureFilterMode = iota
	TextureFilterModeLinear
	/** @brief Trilinear filtering across mip levels. Minify only. */
	TextureFilterModeLinearMipmapLinear
)

type TextureRepeat int

const (
	TextureRepeatRepeat TextureRepeat = iota
	TextureRepeatClampToEdge
)

/**
 * @brief Creation parameters for a 2D texture.
 */
type TextureConfig struct {
	Width         uint32
	Height        uint32
	Format        TextureFormat
	FilterMinify  TextureFilterMode
	FilterMagnify TextureFilterMode
	Repeat        TextureRepeat
	Mipmaps       bool
}

/**
 * @brief Represents a texture.
 */
type Texture struct {
	Handle TextureHandle
	/** @brief The source path, used for deduplication. Empty for generated textures. */
	Path string
	/** @brief The texture Name. */
	Name         string
	Width        uint32
	Height       uint32
	ChannelCount uint8
	Format       TextureFormat
}
