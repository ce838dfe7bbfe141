package qrcode

import (
	"image"

	"github.com/skykywind/qrcodec/bitutil"
	"github.com/skykywind/qrcodec/qrcode/decoder"
	"github.com/skykywind/qrcodec/qrcode/encoder"
)

// DefaultMargin is the quiet zone, in modules, the QR standard asks for.
const DefaultMargin = 4

// Symbol is an encoded QR code: a square grid of dark and light modules.
type Symbol struct {
	code *encoder.QRCode
}

// Size returns the number of modules on a side.
func (s *Symbol) Size() int { return s.code.Matrix.Width() }

// Dark reports whether module (x, y) is dark. Coordinates outside the grid
// are light.
func (s *Symbol) Dark(x, y int) bool {
	n := s.Size()
	if x < 0 || y < 0 || x >= n || y >= n {
		return false
	}
	return s.code.Matrix.Get(x, y)
}

// Bitmap returns the grid as rows of booleans, true meaning dark.
func (s *Symbol) Bitmap() [][]bool {
	n := s.Size()
	rows := make([][]bool, n)
	for y := range rows {
		rows[y] = make([]bool, n)
		for x := range rows[y] {
			rows[y][x] = s.code.Matrix.Get(x, y)
		}
	}
	return rows
}

// Matrix returns a copy of the module grid.
func (s *Symbol) Matrix() *bitutil.BitMatrix { return s.code.Matrix.Clone() }

func (s *Symbol) Version() int                        { return s.code.Version.Number }
func (s *Symbol) Level() decoder.ErrorCorrectionLevel { return s.code.ECLevel }
func (s *Symbol) MaskPattern() int                    { return s.code.MaskPattern }

// Render draws the symbol with each module as a scale x scale square and a
// light border of margin modules. Scale is at least 1.
func (s *Symbol) Render(scale, margin int) *bitutil.BitMatrix {
	scale, margin = max(scale, 1), max(margin, 0)
	n := s.Size()
	out := bitutil.NewBitMatrix((n + 2*margin) * scale)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if s.code.Matrix.Get(x, y) {
				out.SetRegion((x+margin)*scale, (y+margin)*scale, scale, scale)
			}
		}
	}
	return out
}

// Pixels renders the symbol into a row-major grayscale buffer with 0 for
// dark and 255 for light, returning it with its width and height.
func (s *Symbol) Pixels(scale, margin int) ([]byte, int, int) {
	m := s.Render(scale, margin)
	w, h := m.Width(), m.Height()
	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !m.Get(x, y) {
				pix[y*w+x] = 0xFF
			}
		}
	}
	return pix, w, h
}

// Image renders the symbol as a grayscale image.
func (s *Symbol) Image(scale, margin int) *image.Gray {
	pix, w, h := s.Pixels(scale, margin)
	return &image.Gray{Pix: pix, Stride: w, Rect: image.Rect(0, 0, w, h)}
}

// String draws the symbol with two characters per module.
func (s *Symbol) String() string { return s.code.String() }
