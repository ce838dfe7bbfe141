package qrcodec

import "github.com/sirupsen/logrus"

// Thresholding selects how luminance is converted to dark/light modules.
type Thresholding int

const (
	// ThresholdLocal computes a black point per 8x8 block from its
	// neighbourhood. Images smaller than 40 pixels on a side fall back to
	// ThresholdGlobal.
	ThresholdLocal Thresholding = iota

	// ThresholdGlobal uses one black point estimated from the luminance
	// histogram of the whole image.
	ThresholdGlobal
)

// FinderTolerance bounds how far a candidate may stray from an ideal finder
// pattern. Zero fields take the defaults of DefaultFinderTolerance.
type FinderTolerance struct {
	// ModuleVariance is the allowed deviation of each 1:1:3:1:1 run from its
	// expected width, as a fraction of the module size.
	ModuleVariance float64

	// DiagonalVariance is ModuleVariance for the diagonal cross-check, which
	// is looser because diagonal runs quantise worse.
	DiagonalVariance float64

	// ModuleSizeRatio is the largest allowed ratio between the biggest and
	// smallest estimated module size in a triple.
	ModuleSizeRatio float64

	// LegRatio is the largest allowed ratio between the two sides meeting
	// at the top-left centre.
	LegRatio float64

	// RightAngleCosine is the largest allowed |cos| of the angle at the
	// top-left centre.
	RightAngleCosine float64
}

// DefaultFinderTolerance returns the tolerances used when none are given.
func DefaultFinderTolerance() FinderTolerance {
	return FinderTolerance{
		ModuleVariance:   0.5,
		DiagonalVariance: 0.75,
		ModuleSizeRatio:  1.4,
		LegRatio:         1.5,
		RightAngleCosine: 0.3,
	}
}

// Normalized returns t with zero fields replaced by defaults.
func (t FinderTolerance) Normalized() FinderTolerance {
	d := DefaultFinderTolerance()
	if t.ModuleVariance <= 0 {
		t.ModuleVariance = d.ModuleVariance
	}
	if t.DiagonalVariance <= 0 {
		t.DiagonalVariance = d.DiagonalVariance
	}
	if t.ModuleSizeRatio <= 0 {
		t.ModuleSizeRatio = d.ModuleSizeRatio
	}
	if t.LegRatio <= 0 {
		t.LegRatio = d.LegRatio
	}
	if t.RightAngleCosine <= 0 {
		t.RightAngleCosine = d.RightAngleCosine
	}
	return t
}

// DecodeOptions configures decoding. A nil *DecodeOptions means defaults.
type DecodeOptions struct {
	// PureBarcode hints that the image holds an unrotated symbol and its
	// quiet zone only, which skips finder detection.
	PureBarcode bool

	// TryHarder scans every row for finder patterns instead of sampling.
	TryHarder bool

	// CharacterSet names the encoding of byte segments that carry no ECI
	// designator. Empty means UTF-8 when valid, ISO-8859-1 otherwise.
	CharacterSet string

	Thresholding Thresholding
	Finder       FinderTolerance

	// Logger receives debug traces of each stage. Nil disables logging.
	Logger logrus.FieldLogger
}

// Reader decodes a symbol from a BinaryBitmap.
type Reader interface {
	Decode(image *BinaryBitmap, opts *DecodeOptions) (*Result, error)
}
