// Package qrcodec holds the types shared by the QR code encoder and decoder:
// pixel sources, binarized bitmaps, decode results, options and errors.
package qrcodec

import (
	"math"
	"time"

	"github.com/skykywind/qrcodec/bitutil"
)

// ResultMetadataKey identifies a type of metadata about a decoded symbol.
type ResultMetadataKey int

const (
	MetadataByteSegments ResultMetadataKey = iota
	MetadataErrorCorrectionLevel
	MetadataErrorsCorrected
	MetadataVersion
	MetadataMaskPattern
	MetadataMirrored
	MetadataSymbologyIdentifier
)

// ResultPoint is a point of interest in an image, in pixel coordinates.
type ResultPoint struct {
	X, Y float64
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b ResultPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// CrossProductZ returns the z component of (b-a) x (c-a).
func CrossProductZ(a, b, c ResultPoint) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// OrderBestPatterns orders three finder centres as bottom-left, top-left and
// top-right. The top-left centre is the one opposite the longest side; the
// other two are ordered so the turn from bottom-left through top-left to
// top-right is clockwise in image coordinates.
func OrderBestPatterns(p [3]ResultPoint) (bottomLeft, topLeft, topRight ResultPoint) {
	d01 := Distance(p[0], p[1])
	d12 := Distance(p[1], p[2])
	d02 := Distance(p[0], p[2])

	var a, c ResultPoint
	switch {
	case d12 >= d01 && d12 >= d02:
		topLeft, a, c = p[0], p[1], p[2]
	case d02 >= d01 && d02 >= d12:
		topLeft, a, c = p[1], p[0], p[2]
	default:
		topLeft, a, c = p[2], p[0], p[1]
	}
	if CrossProductZ(topLeft, a, c) > 0 {
		a, c = c, a
	}
	return a, topLeft, c
}

// Result is a decoded symbol.
type Result struct {
	Text      string
	RawBytes  []byte
	NumBits   int
	Points    []ResultPoint
	Metadata  map[ResultMetadataKey]interface{}
	Timestamp time.Time
}

// NewResult creates a Result stamped with the current time.
func NewResult(text string, rawBytes []byte, points []ResultPoint) *Result {
	return &Result{
		Text:      text,
		RawBytes:  rawBytes,
		NumBits:   8 * len(rawBytes),
		Points:    points,
		Metadata:  make(map[ResultMetadataKey]interface{}),
		Timestamp: time.Now(),
	}
}

// PutMetadata adds a metadata key/value pair.
func (r *Result) PutMetadata(key ResultMetadataKey, value interface{}) {
	r.Metadata[key] = value
}

// BinaryBitmap is a thresholded image. The black matrix is computed once and
// cached, so a BinaryBitmap must not be shared between goroutines before its
// first BlackMatrix call.
type BinaryBitmap struct {
	binarizer Binarizer
	matrix    *bitutil.BitMatrix
}

// NewBinaryBitmap creates a BinaryBitmap over the given Binarizer.
func NewBinaryBitmap(binarizer Binarizer) *BinaryBitmap {
	return &BinaryBitmap{binarizer: binarizer}
}

func (b *BinaryBitmap) Width() int  { return b.binarizer.Width() }
func (b *BinaryBitmap) Height() int { return b.binarizer.Height() }

// BlackRow returns one thresholded row.
func (b *BinaryBitmap) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	return b.binarizer.BlackRow(y, row)
}

// BlackMatrix returns the thresholded image.
func (b *BinaryBitmap) BlackMatrix() (*bitutil.BitMatrix, error) {
	if b.matrix != nil {
		return b.matrix, nil
	}
	m, err := b.binarizer.BlackMatrix()
	if err != nil {
		return nil, err
	}
	b.matrix = m
	return m, nil
}
