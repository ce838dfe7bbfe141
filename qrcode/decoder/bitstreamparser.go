package decoder

import (
	"fmt"
	"strings"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/bitutil"
	"github.com/skykywind/qrcodec/charset"
	"github.com/skykywind/qrcodec/internal"
)

// DecodeBitStream parses corrected data codewords into text. Byte segments
// are decoded with the ECI in effect, else characterSet, else by guessing.
func DecodeBitStream(bytes []byte, version *Version, ecLevel ErrorCorrectionLevel, characterSet string) (*internal.DecoderResult, error) {
	bs := bitutil.NewBitSource(bytes)
	var result strings.Builder
	var byteSegments [][]byte
	var currentECI *charset.ECI
	sawECI := false

	for {
		mode := ModeTerminator
		if bs.Available() >= 4 {
			modeBits, err := bs.ReadBits(4)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", qrcodec.ErrMalformedBitstream, err)
			}
			if mode, err = ModeForBits(modeBits); err != nil {
				return nil, err
			}
		}

		switch mode {
		case ModeTerminator:
			symbologyModifier := 1
			if sawECI {
				symbologyModifier = 2
			}
			res := internal.NewDecoderResult(bytes, result.String(), byteSegments, ecLevel.String())
			res.SymbologyModifier = symbologyModifier
			return res, nil
		case ModeECI:
			value, err := parseECIValue(bs)
			if err != nil {
				return nil, err
			}
			eci, err := charset.GetECIByValue(value)
			if err != nil || eci == nil {
				return nil, fmt.Errorf("%w: unsupported ECI designator %d", qrcodec.ErrMalformedBitstream, value)
			}
			currentECI = eci
			sawECI = true
		case ModeByte:
			count, err := bs.ReadBits(mode.CharacterCountBits(version))
			if err != nil {
				return nil, fmt.Errorf("%w: character count: %v", qrcodec.ErrMalformedBitstream, err)
			}
			seg, err := decodeByteSegment(bs, &result, count, currentECI, characterSet)
			if err != nil {
				return nil, err
			}
			byteSegments = append(byteSegments, seg)
		}
	}
}

func decodeByteSegment(bs *bitutil.BitSource, result *strings.Builder, count int, eci *charset.ECI, characterSet string) ([]byte, error) {
	if 8*count > bs.Available() {
		return nil, fmt.Errorf("%w: byte segment of %d bytes with %d bits left", qrcodec.ErrMalformedBitstream, count, bs.Available())
	}
	seg := make([]byte, count)
	for i := range seg {
		b, err := bs.ReadBits(8)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", qrcodec.ErrMalformedBitstream, err)
		}
		seg[i] = byte(b)
	}
	text, err := charset.DecodeBytes(seg, eci, characterSet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", qrcodec.ErrMalformedBitstream, err)
	}
	result.WriteString(text)
	return seg, nil
}

// parseECIValue reads a one, two or three byte ECI designator.
func parseECIValue(bs *bitutil.BitSource) (int, error) {
	first, err := bs.ReadBits(8)
	if err != nil {
		return 0, fmt.Errorf("%w: ECI designator: %v", qrcodec.ErrMalformedBitstream, err)
	}
	switch {
	case first&0x80 == 0:
		return first & 0x7F, nil
	case first&0xC0 == 0x80:
		second, err := bs.ReadBits(8)
		if err != nil {
			return 0, fmt.Errorf("%w: ECI designator: %v", qrcodec.ErrMalformedBitstream, err)
		}
		return (first&0x3F)<<8 | second, nil
	case first&0xE0 == 0xC0:
		rest, err := bs.ReadBits(16)
		if err != nil {
			return 0, fmt.Errorf("%w: ECI designator: %v", qrcodec.ErrMalformedBitstream, err)
		}
		return (first&0x1F)<<16 | rest, nil
	}
	return 0, fmt.Errorf("%w: bad ECI designator prefix %#x", qrcodec.ErrMalformedBitstream, first)
}
