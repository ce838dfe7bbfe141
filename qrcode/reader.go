// Package qrcode encodes text into QR code symbols and reads it back from
// grayscale pixel buffers.
package qrcode

import (
	"fmt"
	"image"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/binarizer"
	"github.com/skykywind/qrcodec/bitutil"
	"github.com/skykywind/qrcodec/internal"
	"github.com/skykywind/qrcodec/qrcode/decoder"
	"github.com/skykywind/qrcodec/qrcode/detector"
)

// Decode reads the QR code in a row-major grayscale buffer of width x
// height bytes and returns its text.
func Decode(pixels []byte, width, height int) (string, error) {
	result, err := DecodeWithOptions(pixels, width, height, nil)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// DecodeWithOptions is Decode with options, returning the full result.
func DecodeWithOptions(pixels []byte, width, height int, opts *qrcodec.DecodeOptions) (*qrcodec.Result, error) {
	source, err := qrcodec.NewGrayLuminanceSource(pixels, width, height)
	if err != nil {
		return nil, err
	}
	return decodeSource(source, opts)
}

// DecodeImage reads the QR code in img.
func DecodeImage(img image.Image, opts *qrcodec.DecodeOptions) (*qrcodec.Result, error) {
	return decodeSource(qrcodec.NewImageLuminanceSource(img), opts)
}

func decodeSource(source qrcodec.LuminanceSource, opts *qrcodec.DecodeOptions) (*qrcodec.Result, error) {
	mode := qrcodec.ThresholdLocal
	if opts != nil {
		mode = opts.Thresholding
	}
	return NewReader().Decode(qrcodec.NewBinaryBitmap(binarizer.New(source, mode)), opts)
}

// Reader decodes QR codes from binary images.
type Reader struct {
	dec *decoder.Decoder
}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{dec: decoder.NewDecoder()}
}

// Decode locates and decodes the QR code in image.
func (r *Reader) Decode(image *qrcodec.BinaryBitmap, opts *qrcodec.DecodeOptions) (*qrcodec.Result, error) {
	if opts == nil {
		opts = &qrcodec.DecodeOptions{}
	}
	log := internal.Logger(opts.Logger)

	matrix, err := image.BlackMatrix()
	if err != nil {
		return nil, err
	}

	var (
		bits   *bitutil.BitMatrix
		points []qrcodec.ResultPoint
	)
	if opts.PureBarcode {
		if bits, err = extractPureBits(matrix); err != nil {
			return nil, err
		}
	} else {
		det, err := detector.NewDetector(matrix).Detect(opts)
		if err != nil {
			return nil, err
		}
		bits, points = det.Bits, det.Points
	}

	dr, err := r.dec.Decode(bits, opts.CharacterSet)
	if err != nil {
		log.WithError(err).WithField("stage", "decode").Debug("grid did not decode")
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"stage":     "decode",
		"version":   dr.Version,
		"level":     dr.ECLevel,
		"mask":      dr.MaskPattern,
		"corrected": dr.ErrorsCorrected,
		"mirrored":  dr.Mirrored,
	}).Debug("symbol decoded")

	if dr.Mirrored && len(points) >= 3 {
		// A mirrored read swaps the roles of the outer finders.
		points[0], points[2] = points[2], points[0]
	}
	result := qrcodec.NewResult(dr.Text, dr.RawBytes, points)
	populateMetadata(result, dr)
	return result, nil
}

func populateMetadata(result *qrcodec.Result, dr *internal.DecoderResult) {
	if dr.ByteSegments != nil {
		result.PutMetadata(qrcodec.MetadataByteSegments, dr.ByteSegments)
	}
	if dr.ECLevel != "" {
		result.PutMetadata(qrcodec.MetadataErrorCorrectionLevel, dr.ECLevel)
	}
	result.PutMetadata(qrcodec.MetadataVersion, dr.Version)
	result.PutMetadata(qrcodec.MetadataMaskPattern, dr.MaskPattern)
	result.PutMetadata(qrcodec.MetadataErrorsCorrected, dr.ErrorsCorrected)
	result.PutMetadata(qrcodec.MetadataMirrored, dr.Mirrored)
	result.PutMetadata(qrcodec.MetadataSymbologyIdentifier, fmt.Sprintf("]Q%d", dr.SymbologyModifier))
}

// extractPureBits reads an unrotated, unskewed symbol surrounded only by its
// quiet zone. The module size comes from the diagonal run through the
// top-left finder pattern.
func extractPureBits(image *bitutil.BitMatrix) (*bitutil.BitMatrix, error) {
	left, top, ok := image.TopLeftOnBit()
	right, bottom, ok2 := image.BottomRightOnBit()
	if !ok || !ok2 {
		return nil, fmt.Errorf("%w: no dark pixels", qrcodec.ErrNotFound)
	}
	moduleSize, err := pureModuleSize(image, left, top)
	if err != nil {
		return nil, err
	}
	if left >= right || top >= bottom {
		return nil, fmt.Errorf("%w: degenerate symbol bounds", qrcodec.ErrNotFound)
	}
	if bottom-top != right-left {
		// Trust the height; the right edge may end in light modules.
		right = left + (bottom - top)
		if right >= image.Width() {
			return nil, fmt.Errorf("%w: symbol runs off the right edge", qrcodec.ErrNotFound)
		}
	}

	dimension := int(math.Round(float64(right-left+1) / moduleSize))
	if dimension <= 0 || dimension != int(math.Round(float64(bottom-top+1)/moduleSize)) {
		return nil, fmt.Errorf("%w: symbol is not square", qrcodec.ErrNotFound)
	}

	// Sample module centres, pulling back in if rounding pushed the last
	// column or row past the symbol.
	nudge := int(moduleSize / 2)
	top += nudge
	left += nudge
	if over := left + int(float64(dimension-1)*moduleSize) - right; over > 0 {
		if over > nudge {
			return nil, fmt.Errorf("%w: module grid overruns the symbol", qrcodec.ErrNotFound)
		}
		left -= over
	}
	if over := top + int(float64(dimension-1)*moduleSize) - bottom; over > 0 {
		if over > nudge {
			return nil, fmt.Errorf("%w: module grid overruns the symbol", qrcodec.ErrNotFound)
		}
		top -= over
	}

	bits := bitutil.NewBitMatrix(dimension)
	for y := 0; y < dimension; y++ {
		py := top + int(float64(y)*moduleSize)
		for x := 0; x < dimension; x++ {
			if image.Get(left+int(float64(x)*moduleSize), py) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

// pureModuleSize walks down-right from the top-left dark pixel across the
// finder pattern's five runs, which span 7 modules.
func pureModuleSize(image *bitutil.BitMatrix, x0, y0 int) (float64, error) {
	x, y := x0, y0
	dark := true
	transitions := 0
	for ; x < image.Width() && y < image.Height(); x, y = x+1, y+1 {
		if image.Get(x, y) != dark {
			transitions++
			if transitions == 5 {
				break
			}
			dark = !dark
		}
	}
	if x == image.Width() || y == image.Height() {
		return 0, fmt.Errorf("%w: finder pattern runs off the image", qrcodec.ErrNotFound)
	}
	return float64(x-x0) / 7, nil
}
