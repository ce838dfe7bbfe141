package decoder

import (
	"fmt"

	"github.com/skykywind/qrcodec"
)

// Mode is a four-bit segment mode indicator. Only the modes this codec
// writes are understood.
type Mode int

const (
	ModeTerminator Mode = 0x0
	ModeByte       Mode = 0x4
	ModeECI        Mode = 0x7
)

// ModeForBits returns the mode for a four-bit indicator.
func ModeForBits(bits int) (Mode, error) {
	switch Mode(bits) {
	case ModeTerminator, ModeByte, ModeECI:
		return Mode(bits), nil
	}
	return 0, fmt.Errorf("%w: unsupported mode indicator %#x", qrcodec.ErrMalformedBitstream, bits)
}

// CharacterCountBits returns the width of the character count field.
func (m Mode) CharacterCountBits(version *Version) int {
	if m != ModeByte {
		return 0
	}
	if version.Number <= 9 {
		return 8
	}
	return 16
}

// Bits returns the four-bit indicator.
func (m Mode) Bits() int {
	return int(m)
}

func (m Mode) String() string {
	switch m {
	case ModeTerminator:
		return "TERMINATOR"
	case ModeByte:
		return "BYTE"
	case ModeECI:
		return "ECI"
	}
	return fmt.Sprintf("MODE(%#x)", int(m))
}
