package decoder

import (
	"fmt"
	"math/bits"

	"github.com/skykywind/qrcodec"
)

const (
	formatInfoPoly  = 0x537  // x^10 + x^8 + x^5 + x^4 + x^2 + x + 1
	versionInfoPoly = 0x1F25 // x^12 + x^11 + x^10 + x^9 + x^8 + x^5 + x^2 + 1
	formatInfoMask  = 0x5412
)

// FormatInformation is the error correction level and data mask read from
// the 15 format bits.
type FormatInformation struct {
	ECLevel  ErrorCorrectionLevel
	DataMask byte
}

// bchRemainder returns value * x^(deg poly) mod poly.
func bchRemainder(value, poly int) int {
	deg := bits.Len(uint(poly)) - 1
	value <<= uint(deg)
	for bits.Len(uint(value)) > deg {
		value ^= poly << uint(bits.Len(uint(value))-1-deg)
	}
	return value
}

// FormatInfoBits returns the masked 15-bit format information for a level
// and data mask, as written into the symbol.
func FormatInfoBits(ecLevel ErrorCorrectionLevel, mask int) int {
	data := ecLevel.Bits()<<3 | mask
	return (data<<10 | bchRemainder(data, formatInfoPoly)) ^ formatInfoMask
}

// DecodeFormatInformation returns the format whose codeword is nearest to
// either read copy, accepting at most 3 differing bits.
func DecodeFormatInformation(copy1, copy2 int) (*FormatInformation, error) {
	best, bestDiff := -1, 16
	for data := 0; data < 32; data++ {
		level, _ := ECLevelForBits(data >> 3)
		target := FormatInfoBits(level, data&0x07)
		for _, read := range [2]int{copy1, copy2} {
			if diff := bits.OnesCount(uint(read ^ target)); diff < bestDiff {
				best, bestDiff = data, diff
			}
		}
	}
	if bestDiff > 3 {
		return nil, fmt.Errorf("%w: nearest format codeword is %d bits away", qrcodec.ErrFormatInfoUnreadable, bestDiff)
	}
	level, _ := ECLevelForBits(best >> 3)
	return &FormatInformation{ECLevel: level, DataMask: byte(best & 0x07)}, nil
}
