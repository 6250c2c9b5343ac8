package loaders

import (
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type ImageLoader struct{}

func (il *ImageLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	flip := false
	if typedParams, ok := params.(*metadata.ImageResourceParams); ok && typedParams != nil {
		flip = typedParams.FlipY
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding image `%s`", path)
	}

	data := DecodePixels(img)
	if flip {
		data.FlipVertical()
	}

	return &metadata.Resource{
		Name:     format,
		FullPath: path,
		DataSize: uint64(len(data.Pixels)),
		Data:     data,
	}, nil
}

func (il *ImageLoader) Unload(res *metadata.Resource) error {
	res.Data = nil
	return nil
}

// DecodePixels converts a decoded image into tightly packed rows. Images
// without an alpha channel keep three channels, grayscale keeps one.
func DecodePixels(img image.Image) *metadata.ImageResourceData {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	channels := channelCount(img)
	pixels := make([]uint8, 0, width*height*channels)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			switch channels {
			case 1:
				g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
				pixels = append(pixels, g.Y)
			case 3:
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				pixels = append(pixels, c.R, c.G, c.B)
			default:
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				pixels = append(pixels, c.R, c.G, c.B, c.A)
			}
		}
	}

	return &metadata.ImageResourceData{
		ChannelCount: uint8(channels),
		Width:        uint32(width),
		Height:       uint32(height),
		Pixels:       pixels,
	}
}

func channelCount(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.YCbCr, *image.CMYK:
		return 3
	default:
		return 4
	}
}
