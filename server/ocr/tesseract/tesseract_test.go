package tesseract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os/exec"
	"testing"

	"github.com/Daskott/zantag/server/ocr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

// renderCard draws lines in a basic font & scales the result up so tesseract
// gets glyphs of a readable size.
func renderCard(t *testing.T, lines ...string) []byte {
	small := image.NewRGBA(image.Rect(0, 0, 240, 20*len(lines)+20))
	draw.Draw(small, small.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	for i, line := range lines {
		d := &font.Drawer{
			Dst:  small,
			Src:  image.Black,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(10, 20*(i+1)),
		}
		d.DrawString(line)
	}

	big := image.NewRGBA(image.Rect(0, 0, small.Bounds().Dx()*4, small.Bounds().Dy()*4))
	draw.NearestNeighbor.Scale(big, big.Bounds(), small, small.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	require.Nil(t, png.Encode(&buf, big))
	return buf.Bytes()
}

func TestTesseractEngineScanCard(t *testing.T) {
	ensureTesseractAvailable(t)

	engine := NewTesseractEngine()
	assert.Equal(t, "tesseract", engine.Name())

	scan, err := ocr.ScanCard(context.Background(), engine, renderCard(t, "John Doe", "john@doe.io"), 0)
	require.Nil(t, err)
	assert.Contains(t, scan.RawText, "John")
}

func TestTesseractEngineHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTesseractEngine().Recognize(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
