package internal

import (
	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/bitutil"
)

// DetectorResult is a sampled module grid and the image points it was
// sampled from: bottom-left, top-left and top-right finder centres, then
// the alignment pattern when one was found.
type DetectorResult struct {
	Bits   *bitutil.BitMatrix
	Points []qrcodec.ResultPoint
}

// NewDetectorResult creates a DetectorResult.
func NewDetectorResult(bits *bitutil.BitMatrix, points []qrcodec.ResultPoint) *DetectorResult {
	return &DetectorResult{Bits: bits, Points: points}
}
