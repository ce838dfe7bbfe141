// Package decoder reads QR code symbols: format and version information,
// unmasking, codeword extraction, block error correction and bitstream
// parsing. The version table, masks and module traversal defined here are
// shared with the encoder.
package decoder

import (
	"fmt"
	"strings"

	"github.com/skykywind/qrcodec"
)

// ErrorCorrectionLevel is one of the four QR reliability tiers, ordered from
// least to most redundant.
type ErrorCorrectionLevel int

const (
	ECLevelL ErrorCorrectionLevel = iota // ~7% of codewords recoverable
	ECLevelM                             // ~15%
	ECLevelQ                             // ~25%
	ECLevelH                             // ~30%
)

// Bits returns the two-bit value written in the format information.
func (ecl ErrorCorrectionLevel) Bits() int {
	return [...]int{0x01, 0x00, 0x03, 0x02}[ecl]
}

// Ordinal returns the position of the level, L=0 through H=3.
func (ecl ErrorCorrectionLevel) Ordinal() int {
	return int(ecl)
}

func (ecl ErrorCorrectionLevel) String() string {
	if ecl < ECLevelL || ecl > ECLevelH {
		return "?"
	}
	return [...]string{"L", "M", "Q", "H"}[ecl]
}

// ECLevelForBits maps format-information bits back to a level.
func ECLevelForBits(bits int) (ErrorCorrectionLevel, error) {
	switch bits {
	case 0:
		return ECLevelM, nil
	case 1:
		return ECLevelL, nil
	case 2:
		return ECLevelH, nil
	case 3:
		return ECLevelQ, nil
	}
	return 0, fmt.Errorf("%w: error correction bits %d", qrcodec.ErrFormatInfoUnreadable, bits)
}

// ParseECLevel parses "L", "M", "Q" or "H", case-insensitively. The empty
// string yields ECLevelL.
func ParseECLevel(s string) (ErrorCorrectionLevel, error) {
	switch strings.ToUpper(s) {
	case "", "L":
		return ECLevelL, nil
	case "M":
		return ECLevelM, nil
	case "Q":
		return ECLevelQ, nil
	case "H":
		return ECLevelH, nil
	}
	return 0, fmt.Errorf("%w: error correction level %q", qrcodec.ErrInvalidArgument, s)
}
