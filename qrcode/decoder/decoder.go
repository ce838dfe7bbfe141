package decoder

import (
	"errors"
	"fmt"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/bitutil"
	"github.com/skykywind/qrcodec/internal"
	"github.com/skykywind/qrcodec/reedsolomon"
)

// Decoder turns a sampled module grid into text.
type Decoder struct {
	rsDecoder *reedsolomon.Decoder
}

// NewDecoder creates a Decoder. A Decoder is safe for concurrent use.
func NewDecoder() *Decoder {
	return &Decoder{
		rsDecoder: reedsolomon.NewDecoder(reedsolomon.QRCodeField256()),
	}
}

// Decode reads bits, which is left unmodified. When the grid does not read
// as is, it is read again as a mirror image; if that fails too the error of
// the first attempt is returned.
func (d *Decoder) Decode(bits *bitutil.BitMatrix, characterSet string) (*internal.DecoderResult, error) {
	parser, err := NewBitMatrixParser(bits.Clone())
	if err != nil {
		return nil, err
	}

	result, err := d.decodeParser(parser, characterSet)
	if err == nil {
		return result, nil
	}

	parser.Remask()
	parser.SetMirror(true)
	if _, verr := parser.ReadVersion(); verr != nil {
		return nil, err
	}
	if _, ferr := parser.ReadFormatInformation(); ferr != nil {
		return nil, err
	}
	parser.Mirror()

	result, merr := d.decodeParser(parser, characterSet)
	if merr != nil {
		return nil, err
	}
	result.Mirrored = true
	return result, nil
}

func (d *Decoder) decodeParser(parser *BitMatrixParser, characterSet string) (*internal.DecoderResult, error) {
	version, err := parser.ReadVersion()
	if err != nil {
		return nil, err
	}
	formatInfo, err := parser.ReadFormatInformation()
	if err != nil {
		return nil, err
	}
	ecLevel := formatInfo.ECLevel

	codewords, err := parser.ReadCodewords()
	if err != nil {
		return nil, err
	}
	dataBlocks, err := GetDataBlocks(codewords, version, ecLevel)
	if err != nil {
		return nil, err
	}

	data, errorsCorrected, err := d.Correct(dataBlocks)
	if err != nil {
		return nil, err
	}

	result, err := DecodeBitStream(data, version, ecLevel, characterSet)
	if err != nil {
		return nil, err
	}
	result.Version = version.Number
	result.MaskPattern = int(formatInfo.DataMask)
	result.ErrorsCorrected = errorsCorrected
	return result, nil
}

// Correct repairs every block in place and returns the concatenated data
// codewords with the total number of corrected codewords.
func (d *Decoder) Correct(blocks []DataBlock) ([]byte, int, error) {
	total := 0
	for _, b := range blocks {
		total += b.NumDataCodewords
	}
	data := make([]byte, 0, total)
	corrected := 0
	for i, b := range blocks {
		n, err := d.rsDecoder.Decode(b.Codewords, len(b.Codewords)-b.NumDataCodewords)
		if err != nil {
			if errors.Is(err, reedsolomon.ErrReedSolomon) {
				return nil, 0, fmt.Errorf("%w: block %d: %v", qrcodec.ErrUncorrectableBlock, i, err)
			}
			return nil, 0, err
		}
		corrected += n
		data = append(data, b.Codewords[:b.NumDataCodewords]...)
	}
	return data, corrected, nil
}
