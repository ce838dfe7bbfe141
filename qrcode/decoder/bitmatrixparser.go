package decoder

import (
	"fmt"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/bitutil"
)

// BitMatrixParser reads format information, version information and
// codewords from a module grid. It unmasks the grid in place.
type BitMatrixParser struct {
	bitMatrix        *bitutil.BitMatrix
	parsedVersion    *Version
	parsedFormatInfo *FormatInformation
	mirror           bool
	unmasked         bool
}

// NewBitMatrixParser checks that bitMatrix has a valid symbol size.
func NewBitMatrixParser(bitMatrix *bitutil.BitMatrix) (*BitMatrixParser, error) {
	dim := bitMatrix.Height()
	if dim < 21 || dim > 177 || dim&0x03 != 1 || bitMatrix.Width() != dim {
		return nil, fmt.Errorf("%w: %dx%d is not a symbol size", qrcodec.ErrInvalidArgument, bitMatrix.Width(), dim)
	}
	return &BitMatrixParser{bitMatrix: bitMatrix}, nil
}

// ReadFormatInformation reads both copies of the format information and
// returns the nearest valid format.
func (p *BitMatrixParser) ReadFormatInformation() (*FormatInformation, error) {
	if p.parsedFormatInfo != nil {
		return p.parsedFormatInfo, nil
	}

	// Around the top-left finder, most significant bit first.
	copy1 := 0
	for x := 0; x < 6; x++ {
		copy1 = p.copyBit(x, 8, copy1)
	}
	copy1 = p.copyBit(7, 8, copy1)
	copy1 = p.copyBit(8, 8, copy1)
	copy1 = p.copyBit(8, 7, copy1)
	for y := 5; y >= 0; y-- {
		copy1 = p.copyBit(8, y, copy1)
	}

	// Below the top-right finder and beside the bottom-left one.
	dim := p.bitMatrix.Height()
	copy2 := 0
	for y := dim - 1; y >= dim-7; y-- {
		copy2 = p.copyBit(8, y, copy2)
	}
	for x := dim - 8; x < dim; x++ {
		copy2 = p.copyBit(x, 8, copy2)
	}

	fi, err := DecodeFormatInformation(copy1, copy2)
	if err != nil {
		return nil, err
	}
	p.parsedFormatInfo = fi
	return fi, nil
}

// ReadVersion returns the version implied by the grid size, confirmed by
// the version information blocks for versions 7 and up.
func (p *BitMatrixParser) ReadVersion() (*Version, error) {
	if p.parsedVersion != nil {
		return p.parsedVersion, nil
	}
	dim := p.bitMatrix.Height()
	provisional := (dim - 17) / 4
	if provisional <= 6 {
		v, err := GetVersionForNumber(provisional)
		if err != nil {
			return nil, err
		}
		p.parsedVersion = v
		return v, nil
	}

	// Top-right block, 3 wide by 6 tall.
	bits := 0
	for y := 5; y >= 0; y-- {
		for x := dim - 9; x >= dim-11; x-- {
			bits = p.copyBit(x, y, bits)
		}
	}
	if v := DecodeVersionInformation(bits); v != nil && v.DimensionForVersion() == dim {
		p.parsedVersion = v
		return v, nil
	}

	// Bottom-left block, 6 wide by 3 tall.
	bits = 0
	for x := 5; x >= 0; x-- {
		for y := dim - 9; y >= dim-11; y-- {
			bits = p.copyBit(x, y, bits)
		}
	}
	if v := DecodeVersionInformation(bits); v != nil && v.DimensionForVersion() == dim {
		p.parsedVersion = v
		return v, nil
	}
	return nil, fmt.Errorf("%w: version information for dimension %d", qrcodec.ErrFormatInfoUnreadable, dim)
}

func (p *BitMatrixParser) copyBit(x, y, acc int) int {
	var bit bool
	if p.mirror {
		bit = p.bitMatrix.Get(y, x)
	} else {
		bit = p.bitMatrix.Get(x, y)
	}
	acc <<= 1
	if bit {
		acc |= 1
	}
	return acc
}

// ReadCodewords unmasks the grid and returns its codewords in placement
// order, data and error correction interleaved.
func (p *BitMatrixParser) ReadCodewords() ([]byte, error) {
	fi, err := p.ReadFormatInformation()
	if err != nil {
		return nil, err
	}
	v, err := p.ReadVersion()
	if err != nil {
		return nil, err
	}
	p.bitMatrix.Xor(MaskMatrix(v, int(fi.DataMask)))
	p.unmasked = true

	result := make([]byte, v.TotalCodewords)
	n := 0
	ForEachDataModule(v, func(x, y int) {
		if n/8 >= len(result) {
			return // remainder bits
		}
		if p.bitMatrix.Get(x, y) {
			result[n/8] |= 0x80 >> uint(n%8)
		}
		n++
	})
	if n/8 != v.TotalCodewords {
		return nil, fmt.Errorf("%w: read %d codewords, want %d", qrcodec.ErrFormatInfoUnreadable, n/8, v.TotalCodewords)
	}
	return result, nil
}

// Remask reapplies the data mask removed by ReadCodewords.
func (p *BitMatrixParser) Remask() {
	if !p.unmasked {
		return
	}
	p.bitMatrix.Xor(MaskMatrix(p.parsedVersion, int(p.parsedFormatInfo.DataMask)))
	p.unmasked = false
}

// SetMirror switches reading of format and version information to the
// transposed grid and forgets what was parsed before.
func (p *BitMatrixParser) SetMirror(mirror bool) {
	p.parsedVersion = nil
	p.parsedFormatInfo = nil
	p.mirror = mirror
}

// Mirror transposes the grid in place.
func (p *BitMatrixParser) Mirror() {
	dim := p.bitMatrix.Height()
	for x := 0; x < dim; x++ {
		for y := x + 1; y < dim; y++ {
			if p.bitMatrix.Get(x, y) != p.bitMatrix.Get(y, x) {
				p.bitMatrix.Flip(y, x)
				p.bitMatrix.Flip(x, y)
			}
		}
	}
}
