package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MAX_EDGE is the longest side, in pixels, of an image handed to an engine.
const MAX_EDGE = 2000

// MAX_PIXELS caps the declared pixel count of an image before it is decoded.
const MAX_PIXELS = 40_000_000

// PrepareImage decodes data, shrinks it so neither side exceeds MAX_EDGE,
// converts it to grayscale & re-encodes it as PNG.
func PrepareImage(data []byte, maxBytes int64) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrImageTooLarge
	}

	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	if config.Width <= 0 || config.Height <= 0 {
		return nil, ErrEmptyImage
	}

	if int64(config.Width)*int64(config.Height) > MAX_PIXELS {
		return nil, ErrImageTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, ErrEmptyImage
	}

	width, height := scaledSize(bounds.Dx(), bounds.Dy())
	dst := image.NewGray(image.Rect(0, 0, width, height))
	if dst.Bounds().Size() == bounds.Size() {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %v", err)
	}

	return buf.Bytes(), nil
}

func scaledSize(width, height int) (int, int) {
	longest := width
	if height > longest {
		longest = height
	}

	if longest <= MAX_EDGE {
		return width, height
	}

	return max(1, width*MAX_EDGE/longest), max(1, height*MAX_EDGE/longest)
}
