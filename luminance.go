package qrcodec

import "github.com/skykywind/qrcodec/bitutil"

// LuminanceSource provides greyscale luminance values for an image, one byte
// per pixel, 0 being darkest.
type LuminanceSource interface {
	// Row returns row y. If row is non-nil and large enough it is reused.
	Row(y int, row []byte) []byte

	// Matrix returns the whole image in row-major order.
	Matrix() []byte

	Width() int
	Height() int
}

// Binarizer converts luminance data to dark/light modules.
type Binarizer interface {
	// BlackRow returns row y thresholded to a bit array.
	BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error)

	// BlackMatrix returns the thresholded image.
	BlackMatrix() (*bitutil.BitMatrix, error)

	LuminanceSource() LuminanceSource
	Width() int
	Height() int
}
