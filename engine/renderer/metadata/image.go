package metadata

/**
 * @brief A structure to hold decoded image data.
 */
type ImageResourceData struct {
	/** @brief The number of channels. */
	ChannelCount uint8
	/** @brief The width of the image. */
	Width uint32
	/** @brief The height of the image. */
	Height uint32
	/** @brief The pixel data of the image, tightly packed rows. */
	Pixels []uint8
}

/** @brief Parameters used when loading an image. */
type ImageResourceParams struct {
	/** @brief Indicates if the image should be flipped on the y-axis when loaded. */
	FlipY bool
}

// RowSize is the byte length of one row of pixels.
func (img *ImageResourceData) RowSize() int {
	return int(img.Width) * int(img.ChannelCount)
}

// FlipVertical swaps rows in place so the first row becomes the bottom of
// the image, which is where texture coordinate v=0 samples.
func (img *ImageResourceData) FlipVertical() {
	row := img.RowSize()
	if row == 0 {
		return
	}
	tmp := make([]uint8, row)
	for top, bottom := 0, int(img.Height)-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := img.Pixels[top*row : (top+1)*row]
		b := img.Pixels[bottom*row : (bottom+1)*row]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
