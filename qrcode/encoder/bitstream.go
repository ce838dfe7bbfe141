package encoder

import (
	"fmt"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/bitutil"
	"github.com/skykywind/qrcodec/charset"
	"github.com/skykywind/qrcodec/qrcode/decoder"
)

// Pad codewords filling unused data capacity, alternately.
const (
	padCodeword1 = 0xEC
	padCodeword2 = 0x11
)

// segmentBits returns the number of bits the message takes in version,
// before the terminator.
func segmentBits(n int, version *decoder.Version, eci bool) int {
	bits := 4 + decoder.ModeByte.CharacterCountBits(version) + 8*n
	if eci {
		bits += 4 + 8
	}
	return bits
}

// EncodeSegments returns the data codewords of (version, ecLevel) holding
// message as one byte mode segment: optional UTF-8 ECI designator, mode
// indicator, character count, payload, terminator, then pad codewords.
func EncodeSegments(message []byte, version *decoder.Version, ecLevel decoder.ErrorCorrectionLevel, eci bool) ([]byte, error) {
	numDataBytes := version.DataCodewords(ecLevel)
	capacity := 8 * numDataBytes
	if need := segmentBits(len(message), version, eci); need > capacity {
		return nil, fmt.Errorf("%w: %d bits in version %d-%s holding %d", qrcodec.ErrCapacityExceeded, need, version.Number, ecLevel, capacity)
	}

	bits := bitutil.NewBitArray(0)
	if eci {
		bits.AppendBits(uint32(decoder.ModeECI.Bits()), 4)
		bits.AppendBits(charset.ECIValueUTF8, 8)
	}
	bits.AppendBits(uint32(decoder.ModeByte.Bits()), 4)
	bits.AppendBits(uint32(len(message)), decoder.ModeByte.CharacterCountBits(version))
	for _, b := range message {
		bits.AppendBits(uint32(b), 8)
	}

	for i := 0; i < 4 && bits.Size() < capacity; i++ {
		bits.AppendBit(false)
	}
	for bits.Size()&0x07 != 0 {
		bits.AppendBit(false)
	}
	out := bits.Bytes()
	for i := 0; len(out) < numDataBytes; i++ {
		if i%2 == 0 {
			out = append(out, padCodeword1)
		} else {
			out = append(out, padCodeword2)
		}
	}
	return out, nil
}
