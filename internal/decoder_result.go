// Package internal holds the stage results passed between the detector, the
// decoder and the reader.
package internal

// DecoderResult is the outcome of reading a sampled module grid.
type DecoderResult struct {
	RawBytes          []byte
	NumBits           int
	Text              string
	ByteSegments      [][]byte
	ECLevel           string
	Version           int
	MaskPattern       int
	ErrorsCorrected   int
	Mirrored          bool
	SymbologyModifier int
}

// NewDecoderResult creates a DecoderResult over the corrected data
// codewords.
func NewDecoderResult(rawBytes []byte, text string, byteSegments [][]byte, ecLevel string) *DecoderResult {
	return &DecoderResult{
		RawBytes:     rawBytes,
		NumBits:      8 * len(rawBytes),
		Text:         text,
		ByteSegments: byteSegments,
		ECLevel:      ecLevel,
	}
}
