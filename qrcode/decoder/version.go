package decoder

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/bitutil"
)

// ECB is a group of blocks sharing a data codeword count.
type ECB struct {
	Count         int
	DataCodewords int
}

// ECBlocks describes the block structure of one (version, level) pair. Every
// block carries ECCodewordsPerBlock parity codewords; groups are listed with
// the shorter blocks first.
type ECBlocks struct {
	ECCodewordsPerBlock int
	Blocks              []ECB
}

// NumBlocks returns the total number of blocks.
func (ecb *ECBlocks) NumBlocks() int {
	total := 0
	for _, b := range ecb.Blocks {
		total += b.Count
	}
	return total
}

// TotalECCodewords returns the number of parity codewords over all blocks.
func (ecb *ECBlocks) TotalECCodewords() int {
	return ecb.ECCodewordsPerBlock * ecb.NumBlocks()
}

// Version is one of the 40 QR symbol sizes. Versions are shared read-only
// values; the function pattern is computed on first use.
type Version struct {
	Number                  int
	AlignmentPatternCenters []int
	ECBlocksArray           [4]ECBlocks // indexed by ErrorCorrectionLevel
	TotalCodewords          int

	patternOnce     sync.Once
	functionPattern *bitutil.BitMatrix
}

// DimensionForVersion returns the side length in modules, 17 + 4*Number.
func (v *Version) DimensionForVersion() int {
	return 17 + 4*v.Number
}

// ECBlocksForLevel returns the block structure for ecLevel.
func (v *Version) ECBlocksForLevel(ecLevel ErrorCorrectionLevel) *ECBlocks {
	return &v.ECBlocksArray[ecLevel.Ordinal()]
}

// DataCodewords returns the number of data codewords at ecLevel.
func (v *Version) DataCodewords(ecLevel ErrorCorrectionLevel) int {
	return v.TotalCodewords - v.ECBlocksForLevel(ecLevel).TotalECCodewords()
}

// FunctionPattern returns the modules reserved for finder patterns,
// separators, format information, timing, alignment patterns, the dark
// module and version information. The matrix is shared and must not be
// modified.
func (v *Version) FunctionPattern() *bitutil.BitMatrix {
	v.patternOnce.Do(func() {
		v.functionPattern = v.buildFunctionPattern()
	})
	return v.functionPattern
}

func (v *Version) buildFunctionPattern() *bitutil.BitMatrix {
	dim := v.DimensionForVersion()
	bm := bitutil.NewBitMatrix(dim)

	// Finders with their separators and format information. The bottom-left
	// region also covers the dark module at (8, dim-8).
	bm.SetRegion(0, 0, 9, 9)
	bm.SetRegion(dim-8, 0, 8, 9)
	bm.SetRegion(0, dim-8, 9, 8)

	for _, c := range v.AlignmentCenters() {
		bm.SetRegion(c[0]-2, c[1]-2, 5, 5)
	}

	// Timing
	bm.SetRegion(6, 9, 1, dim-17)
	bm.SetRegion(9, 6, dim-17, 1)

	if v.Number > 6 {
		bm.SetRegion(dim-11, 0, 3, 6)
		bm.SetRegion(0, dim-11, 6, 3)
	}
	return bm
}

// AlignmentCenters returns the (x, y) centres of all alignment patterns,
// leaving out the three positions that would overlap a finder.
func (v *Version) AlignmentCenters() [][2]int {
	pos := v.AlignmentPatternCenters
	last := len(pos) - 1
	var out [][2]int
	for i, y := range pos {
		for j, x := range pos {
			if (i == 0 && j == 0) || (i == 0 && j == last) || (i == last && j == 0) {
				continue
			}
			out = append(out, [2]int{x, y})
		}
	}
	return out
}

func (v *Version) String() string {
	return fmt.Sprintf("%d", v.Number)
}

// GetVersionForNumber returns version number (1-40).
func GetVersionForNumber(number int) (*Version, error) {
	if number < 1 || number > 40 {
		return nil, fmt.Errorf("%w: version %d", qrcodec.ErrInvalidArgument, number)
	}
	return versions[number-1], nil
}

// GetProvisionalVersionForDimension returns the version whose side length
// is dimension.
func GetProvisionalVersionForDimension(dimension int) (*Version, error) {
	if dimension%4 != 1 || dimension < 21 || dimension > 177 {
		return nil, fmt.Errorf("%w: dimension %d", qrcodec.ErrNotFound, dimension)
	}
	return versions[(dimension-17)/4-1], nil
}

// VersionInfoBits returns the 18-bit version information codeword: the
// version number followed by a BCH(18,6) remainder.
func VersionInfoBits(number int) int {
	return number<<12 | bchRemainder(number, versionInfoPoly)
}

// DecodeVersionInformation returns the version whose information codeword
// is nearest to versionBits, or nil when none is within 3 bits.
func DecodeVersionInformation(versionBits int) *Version {
	best, bestDiff := 0, 32
	for n := 7; n <= 40; n++ {
		diff := bits.OnesCount(uint(versionBits ^ VersionInfoBits(n)))
		if diff < bestDiff {
			best, bestDiff = n, diff
		}
		if diff == 0 {
			break
		}
	}
	if bestDiff <= 3 {
		return versions[best-1]
	}
	return nil
}

func version(number int, align []int, l, m, q, h ECBlocks) *Version {
	v := &Version{
		Number:                  number,
		AlignmentPatternCenters: align,
		ECBlocksArray:           [4]ECBlocks{l, m, q, h},
	}
	for _, b := range l.Blocks {
		v.TotalCodewords += b.Count * (b.DataCodewords + l.ECCodewordsPerBlock)
	}
	return v
}

// ec builds ECBlocks from (count, dataCodewords) pairs.
func ec(ecPerBlock int, groups ...int) ECBlocks {
	e := ECBlocks{ECCodewordsPerBlock: ecPerBlock}
	for i := 0; i+1 < len(groups); i += 2 {
		e.Blocks = append(e.Blocks, ECB{Count: groups[i], DataCodewords: groups[i+1]})
	}
	return e
}

var versions = [40]*Version{
	version(1, nil, ec(7, 1, 19), ec(10, 1, 16), ec(13, 1, 13), ec(17, 1, 9)),
	version(2, []int{6, 18}, ec(10, 1, 34), ec(16, 1, 28), ec(22, 1, 22), ec(28, 1, 16)),
	version(3, []int{6, 22}, ec(15, 1, 55), ec(26, 1, 44), ec(18, 2, 17), ec(22, 2, 13)),
	version(4, []int{6, 26}, ec(20, 1, 80), ec(18, 2, 32), ec(26, 2, 24), ec(16, 4, 9)),
	version(5, []int{6, 30}, ec(26, 1, 108), ec(24, 2, 43), ec(18, 2, 15, 2, 16), ec(22, 2, 11, 2, 12)),
	version(6, []int{6, 34}, ec(18, 2, 68), ec(16, 4, 27), ec(24, 4, 19), ec(28, 4, 15)),
	version(7, []int{6, 22, 38}, ec(20, 2, 78), ec(18, 4, 31), ec(18, 2, 14, 4, 15), ec(26, 4, 13, 1, 14)),
	version(8, []int{6, 24, 42}, ec(24, 2, 97), ec(22, 2, 38, 2, 39), ec(22, 4, 18, 2, 19), ec(26, 4, 14, 2, 15)),
	version(9, []int{6, 26, 46}, ec(30, 2, 116), ec(22, 3, 36, 2, 37), ec(20, 4, 16, 4, 17), ec(24, 4, 12, 4, 13)),
	version(10, []int{6, 28, 50}, ec(18, 2, 68, 2, 69), ec(26, 4, 43, 1, 44), ec(24, 6, 19, 2, 20), ec(28, 6, 15, 2, 16)),
	version(11, []int{6, 30, 54}, ec(20, 4, 81), ec(30, 1, 50, 4, 51), ec(28, 4, 22, 4, 23), ec(24, 3, 12, 8, 13)),
	version(12, []int{6, 32, 58}, ec(24, 2, 92, 2, 93), ec(22, 6, 36, 2, 37), ec(26, 4, 20, 6, 21), ec(28, 7, 14, 4, 15)),
	version(13, []int{6, 34, 62}, ec(26, 4, 107), ec(22, 8, 37, 1, 38), ec(24, 8, 20, 4, 21), ec(22, 12, 11, 4, 12)),
	version(14, []int{6, 26, 46, 66}, ec(30, 3, 115, 1, 116), ec(24, 4, 40, 5, 41), ec(20, 11, 16, 5, 17), ec(24, 11, 12, 5, 13)),
	version(15, []int{6, 26, 48, 70}, ec(22, 5, 87, 1, 88), ec(24, 5, 41, 5, 42), ec(30, 5, 24, 7, 25), ec(24, 11, 12, 7, 13)),
	version(16, []int{6, 26, 50, 74}, ec(24, 5, 98, 1, 99), ec(28, 7, 45, 3, 46), ec(24, 15, 19, 2, 20), ec(30, 3, 15, 13, 16)),
	version(17, []int{6, 30, 54, 78}, ec(28, 1, 107, 5, 108), ec(28, 10, 46, 1, 47), ec(28, 1, 22, 15, 23), ec(28, 2, 14, 17, 15)),
	version(18, []int{6, 30, 56, 82}, ec(30, 5, 120, 1, 121), ec(26, 9, 43, 4, 44), ec(28, 17, 22, 1, 23), ec(28, 2, 14, 19, 15)),
	version(19, []int{6, 30, 58, 86}, ec(28, 3, 113, 4, 114), ec(26, 3, 44, 11, 45), ec(26, 17, 21, 4, 22), ec(26, 9, 13, 16, 14)),
	version(20, []int{6, 34, 62, 90}, ec(28, 3, 107, 5, 108), ec(26, 3, 41, 13, 42), ec(30, 15, 24, 5, 25), ec(28, 15, 15, 10, 16)),
	version(21, []int{6, 28, 50, 72, 94}, ec(28, 4, 116, 4, 117), ec(26, 17, 42), ec(28, 17, 22, 6, 23), ec(30, 19, 16, 6, 17)),
	version(22, []int{6, 26, 50, 74, 98}, ec(28, 2, 111, 7, 112), ec(28, 17, 46), ec(30, 7, 24, 16, 25), ec(24, 34, 13)),
	version(23, []int{6, 30, 54, 78, 102}, ec(30, 4, 121, 5, 122), ec(28, 4, 47, 14, 48), ec(30, 11, 24, 14, 25), ec(30, 16, 15, 14, 16)),
	version(24, []int{6, 28, 54, 80, 106}, ec(30, 6, 117, 4, 118), ec(28, 6, 45, 14, 46), ec(30, 11, 24, 16, 25), ec(30, 30, 16, 2, 17)),
	version(25, []int{6, 32, 58, 84, 110}, ec(26, 8, 106, 4, 107), ec(28, 8, 47, 13, 48), ec(30, 7, 24, 22, 25), ec(30, 22, 15, 13, 16)),
	version(26, []int{6, 30, 58, 86, 114}, ec(28, 10, 114, 2, 115), ec(28, 19, 46, 4, 47), ec(28, 28, 22, 6, 23), ec(30, 33, 16, 4, 17)),
	version(27, []int{6, 34, 62, 90, 118}, ec(30, 8, 122, 4, 123), ec(28, 22, 45, 3, 46), ec(30, 8, 23, 26, 24), ec(30, 12, 15, 28, 16)),
	version(28, []int{6, 26, 50, 74, 98, 122}, ec(30, 3, 117, 10, 118), ec(28, 3, 45, 23, 46), ec(30, 4, 24, 31, 25), ec(30, 11, 15, 31, 16)),
	version(29, []int{6, 30, 54, 78, 102, 126}, ec(30, 7, 116, 7, 117), ec(28, 21, 45, 7, 46), ec(30, 1, 23, 37, 24), ec(30, 19, 15, 26, 16)),
	version(30, []int{6, 26, 52, 78, 104, 130}, ec(30, 5, 115, 10, 116), ec(28, 19, 47, 10, 48), ec(30, 15, 24, 25, 25), ec(30, 23, 15, 25, 16)),
	version(31, []int{6, 30, 56, 82, 108, 134}, ec(30, 13, 115, 3, 116), ec(28, 2, 46, 29, 47), ec(30, 42, 24, 1, 25), ec(30, 23, 15, 28, 16)),
	version(32, []int{6, 34, 60, 86, 112, 138}, ec(30, 17, 115), ec(28, 10, 46, 23, 47), ec(30, 10, 24, 35, 25), ec(30, 19, 15, 35, 16)),
	version(33, []int{6, 30, 58, 86, 114, 142}, ec(30, 17, 115, 1, 116), ec(28, 14, 46, 21, 47), ec(30, 29, 24, 19, 25), ec(30, 11, 15, 46, 16)),
	version(34, []int{6, 34, 62, 90, 118, 146}, ec(30, 13, 115, 6, 116), ec(28, 14, 46, 23, 47), ec(30, 44, 24, 7, 25), ec(30, 59, 16, 1, 17)),
	version(35, []int{6, 30, 54, 78, 102, 126, 150}, ec(30, 12, 121, 7, 122), ec(28, 12, 47, 26, 48), ec(30, 39, 24, 14, 25), ec(30, 22, 15, 41, 16)),
	version(36, []int{6, 24, 50, 76, 102, 128, 154}, ec(30, 6, 121, 14, 122), ec(28, 6, 47, 34, 48), ec(30, 46, 24, 10, 25), ec(30, 2, 15, 64, 16)),
	version(37, []int{6, 28, 54, 80, 106, 132, 158}, ec(30, 17, 122, 4, 123), ec(28, 29, 46, 14, 47), ec(30, 49, 24, 10, 25), ec(30, 24, 15, 46, 16)),
	version(38, []int{6, 32, 58, 84, 110, 136, 162}, ec(30, 4, 122, 18, 123), ec(28, 13, 46, 32, 47), ec(30, 48, 24, 14, 25), ec(30, 42, 15, 32, 16)),
	version(39, []int{6, 26, 54, 82, 110, 138, 166}, ec(30, 20, 117, 4, 118), ec(28, 40, 47, 7, 48), ec(30, 43, 24, 22, 25), ec(30, 10, 15, 67, 16)),
	version(40, []int{6, 30, 58, 86, 114, 142, 170}, ec(30, 19, 118, 6, 119), ec(28, 18, 47, 31, 48), ec(30, 34, 24, 34, 25), ec(30, 20, 15, 61, 16)),
}
