package encoder

import (
	"fmt"
	"math"
	"sync"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/bitutil"
	"github.com/skykywind/qrcodec/qrcode/decoder"
)

// Finder pattern, 7x7, and alignment pattern, 5x5, dark = 1.
var (
	positionDetectionPattern = [7][7]byte{
		{1, 1, 1, 1, 1, 1, 1},
		{1, 0, 0, 0, 0, 0, 1},
		{1, 0, 1, 1, 1, 0, 1},
		{1, 0, 1, 1, 1, 0, 1},
		{1, 0, 1, 1, 1, 0, 1},
		{1, 0, 0, 0, 0, 0, 1},
		{1, 1, 1, 1, 1, 1, 1},
	}
	positionAdjustmentPattern = [5][5]byte{
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 1},
		{1, 0, 1, 0, 1},
		{1, 0, 0, 0, 1},
		{1, 1, 1, 1, 1},
	}
)

// Format information positions around the top-left finder, least
// significant bit first.
var typeInfoCoordinates = [15][2]int{
	{8, 0}, {8, 1}, {8, 2}, {8, 3}, {8, 4}, {8, 5}, {8, 7}, {8, 8},
	{7, 8}, {5, 8}, {4, 8}, {3, 8}, {2, 8}, {1, 8}, {0, 8},
}

var templates [40]struct {
	once   sync.Once
	matrix *bitutil.BitMatrix
}

// template returns the structural modules of version drawn on an otherwise
// light grid: finders, separators, timing, alignment patterns, the dark
// module and, from version 7, version information. Shared; never modify.
func template(version *decoder.Version) *bitutil.BitMatrix {
	t := &templates[version.Number-1]
	t.once.Do(func() {
		t.matrix = drawTemplate(version)
	})
	return t.matrix
}

func drawTemplate(version *decoder.Version) *bitutil.BitMatrix {
	dim := version.DimensionForVersion()
	m := bitutil.NewBitMatrix(dim)

	// Separators are light and need no drawing.
	for _, corner := range [3][2]int{{0, 0}, {dim - 7, 0}, {0, dim - 7}} {
		for y := 0; y < 7; y++ {
			for x := 0; x < 7; x++ {
				m.SetTo(corner[0]+x, corner[1]+y, positionDetectionPattern[y][x] == 1)
			}
		}
	}
	for _, c := range version.AlignmentCenters() {
		for y := 0; y < 5; y++ {
			for x := 0; x < 5; x++ {
				m.SetTo(c[0]-2+x, c[1]-2+y, positionAdjustmentPattern[y][x] == 1)
			}
		}
	}
	for i := 8; i < dim-8; i++ {
		dark := i%2 == 0
		m.SetTo(i, 6, dark)
		m.SetTo(6, i, dark)
	}
	m.Set(8, dim-8)

	if version.Number >= 7 {
		info := decoder.VersionInfoBits(version.Number)
		for i := 0; i < 6; i++ {
			for j := 0; j < 3; j++ {
				dark := info>>uint(i*3+j)&1 == 1
				m.SetTo(i, dim-11+j, dark)
				m.SetTo(dim-11+j, i, dark)
			}
		}
	}
	return m
}

// embedTypeInfo writes both copies of the format information.
func embedTypeInfo(ecLevel decoder.ErrorCorrectionLevel, maskPattern int, m *bitutil.BitMatrix) {
	info := decoder.FormatInfoBits(ecLevel, maskPattern)
	dim := m.Height()
	for i := 0; i < 15; i++ {
		dark := info>>uint(i)&1 == 1
		c := typeInfoCoordinates[i]
		m.SetTo(c[0], c[1], dark)
		if i < 8 {
			m.SetTo(dim-1-i, 8, dark)
		} else {
			m.SetTo(8, dim-7+(i-8), dark)
		}
	}
}

// placeData draws codewords over the template along the module traversal,
// unmasked. Remainder modules stay light.
func placeData(codewords []byte, version *decoder.Version) *bitutil.BitMatrix {
	m := template(version).Clone()
	n := 0
	total := 8 * len(codewords)
	decoder.ForEachDataModule(version, func(x, y int) {
		if n < total && codewords[n/8]&(0x80>>uint(n%8)) != 0 {
			m.Set(x, y)
		}
		n++
	})
	return m
}

// BuildMatrix lays out the final codewords of (version, ecLevel) and
// applies maskPattern, or the lowest-penalty mask when maskPattern is
// negative (ties go to the lower mask). It returns the grid and the mask
// used.
func BuildMatrix(codewords []byte, version *decoder.Version, ecLevel decoder.ErrorCorrectionLevel, maskPattern int) (*bitutil.BitMatrix, int, error) {
	if len(codewords) != version.TotalCodewords {
		return nil, 0, fmt.Errorf("%w: %d codewords for version %d", qrcodec.ErrInvalidArgument, len(codewords), version.Number)
	}
	if maskPattern >= decoder.NumMaskPatterns {
		return nil, 0, fmt.Errorf("%w: mask pattern %d", qrcodec.ErrInvalidArgument, maskPattern)
	}
	raw := placeData(codewords, version)

	apply := func(mask int) *bitutil.BitMatrix {
		m := raw.Clone()
		m.Xor(decoder.MaskMatrix(version, mask))
		embedTypeInfo(ecLevel, mask, m)
		return m
	}
	if maskPattern >= 0 {
		return apply(maskPattern), maskPattern, nil
	}

	var best *bitutil.BitMatrix
	bestMask, minPenalty := 0, math.MaxInt
	for mask := 0; mask < decoder.NumMaskPatterns; mask++ {
		m := apply(mask)
		if penalty := CalculateMaskPenalty(m); penalty < minPenalty {
			best, bestMask, minPenalty = m, mask, penalty
		}
	}
	return best, bestMask, nil
}
