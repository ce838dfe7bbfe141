package qrcodec

import (
	"fmt"
	"image"
)

// GrayLuminanceSource is a LuminanceSource over an in-memory row-major
// greyscale buffer.
type GrayLuminanceSource struct {
	luminances []byte
	width      int
	height     int
}

// NewGrayLuminanceSource wraps a row-major greyscale buffer of width*height
// bytes. A binary buffer works as well when it uses 0 for dark and any value
// above the threshold for light. The buffer is not copied and must not be
// modified while the source is in use.
func NewGrayLuminanceSource(pixels []byte, width, height int) (*GrayLuminanceSource, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidArgument, width, height)
	}
	if len(pixels) != width*height {
		return nil, fmt.Errorf("%w: buffer holds %d bytes, want %d", ErrInvalidArgument, len(pixels), width*height)
	}
	return &GrayLuminanceSource{luminances: pixels, width: width, height: height}, nil
}

// NewImageLuminanceSource converts img to luminance values using
// (306*R + 601*G + 117*B + 0x200) >> 10 on 8-bit components. Fully
// transparent pixels count as white.
func NewImageLuminanceSource(img image.Image) *GrayLuminanceSource {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	luminances := make([]byte, w*h)

	if gray, ok := img.(*image.Gray); ok {
		for y := 0; y < h; y++ {
			off := gray.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(luminances[y*w:(y+1)*w], gray.Pix[off:off+w])
		}
		return &GrayLuminanceSource{luminances: luminances, width: w, height: h}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if a == 0 {
				luminances[y*w+x] = 0xFF
				continue
			}
			r8, g8, b8 := r>>8, g>>8, b>>8
			luminances[y*w+x] = byte((306*r8 + 601*g8 + 117*b8 + 0x200) >> 10)
		}
	}
	return &GrayLuminanceSource{luminances: luminances, width: w, height: h}
}

// Row returns row y, or nil when y is out of range.
func (s *GrayLuminanceSource) Row(y int, row []byte) []byte {
	if y < 0 || y >= s.height {
		return nil
	}
	if len(row) < s.width {
		row = make([]byte, s.width)
	}
	copy(row, s.luminances[y*s.width:(y+1)*s.width])
	return row
}

// Matrix returns a copy of the luminance buffer.
func (s *GrayLuminanceSource) Matrix() []byte {
	out := make([]byte, len(s.luminances))
	copy(out, s.luminances)
	return out
}

func (s *GrayLuminanceSource) Width() int  { return s.width }
func (s *GrayLuminanceSource) Height() int { return s.height }
