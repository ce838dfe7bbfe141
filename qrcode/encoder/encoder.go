// Package encoder builds QR code symbols: byte mode segments, block
// interleaving with Reed-Solomon parity, module placement and mask
// selection.
package encoder

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/bitutil"
	"github.com/skykywind/qrcodec/internal"
	"github.com/skykywind/qrcodec/qrcode/decoder"
)

// QRCode is an encoded symbol.
type QRCode struct {
	ECLevel     decoder.ErrorCorrectionLevel
	Version     *decoder.Version
	MaskPattern int
	ECI         bool
	Matrix      *bitutil.BitMatrix // dark = set
}

// Params select how a message is encoded. The zero value picks the
// smallest of versions 1-40 and the best mask.
type Params struct {
	// Version forces a version; MinVersion and MaxVersion bound the search
	// otherwise. Zero means unset.
	Version    int
	MinVersion int
	MaxVersion int

	// MaskPattern forces a mask; nil picks the lowest penalty.
	MaskPattern *int

	// ECI prefixes the data with the UTF-8 designator.
	ECI bool

	Logger logrus.FieldLogger
}

// Encode encodes content in the smallest admissible version whose capacity
// at minECLevel fits it, then raises the level as far as that version still
// allows.
func Encode(content []byte, minECLevel decoder.ErrorCorrectionLevel, p *Params) (*QRCode, error) {
	if p == nil {
		p = &Params{}
	}
	log := internal.Logger(p.Logger)

	version, err := chooseVersion(len(content), minECLevel, p)
	if err != nil {
		return nil, err
	}
	ecLevel := minECLevel
	for l := minECLevel + 1; l <= decoder.ECLevelH; l++ {
		if segmentBits(len(content), version, p.ECI) <= 8*version.DataCodewords(l) {
			ecLevel = l
		}
	}

	data, err := EncodeSegments(content, version, ecLevel, p.ECI)
	if err != nil {
		return nil, err
	}
	codewords, err := InterleaveWithEC(data, version, ecLevel)
	if err != nil {
		return nil, err
	}
	mask := -1
	if p.MaskPattern != nil {
		mask = *p.MaskPattern
		if mask < 0 || mask >= decoder.NumMaskPatterns {
			return nil, fmt.Errorf("%w: mask pattern %d", qrcodec.ErrInvalidArgument, mask)
		}
	}
	matrix, mask, err := BuildMatrix(codewords, version, ecLevel, mask)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"stage":   "encode",
		"bytes":   len(content),
		"version": version.Number,
		"level":   ecLevel.String(),
		"mask":    mask,
	}).Debug("symbol built")

	return &QRCode{
		ECLevel:     ecLevel,
		Version:     version,
		MaskPattern: mask,
		ECI:         p.ECI,
		Matrix:      matrix,
	}, nil
}

func chooseVersion(n int, ecLevel decoder.ErrorCorrectionLevel, p *Params) (*decoder.Version, error) {
	lo, hi := 1, 40
	if p.MinVersion > 0 {
		lo = p.MinVersion
	}
	if p.MaxVersion > 0 {
		hi = p.MaxVersion
	}
	if p.Version > 0 {
		lo, hi = p.Version, p.Version
	}
	if lo < 1 || hi > 40 || lo > hi {
		return nil, fmt.Errorf("%w: version range %d-%d", qrcodec.ErrInvalidArgument, lo, hi)
	}
	for number := lo; number <= hi; number++ {
		version, _ := decoder.GetVersionForNumber(number)
		if segmentBits(n, version, p.ECI) <= 8*version.DataCodewords(ecLevel) {
			return version, nil
		}
	}
	return nil, fmt.Errorf("%w: %d bytes do not fit versions %d-%d at level %s", qrcodec.ErrMessageTooLong, n, lo, hi, ecLevel)
}

// String draws the symbol with two characters per module.
func (qr *QRCode) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "version: %d level: %s mask: %d\n", qr.Version.Number, qr.ECLevel, qr.MaskPattern)
	sb.WriteString(qr.Matrix.StringWithChars("##", "  "))
	return sb.String()
}
