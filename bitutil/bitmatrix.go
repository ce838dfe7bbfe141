package bitutil

import (
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// BitMatrix is a two-dimensional bit grid stored row-major. x is the column,
// y the row, and the origin is the top-left corner. For QR symbols a set bit
// is a dark module.
type BitMatrix struct {
	width  int
	height int
	bits   *bitset.BitSet
}

// NewBitMatrix creates a square BitMatrix.
func NewBitMatrix(dimension int) *BitMatrix {
	return NewBitMatrixWithSize(dimension, dimension)
}

// NewBitMatrixWithSize creates a cleared width x height BitMatrix.
func NewBitMatrixWithSize(width, height int) *BitMatrix {
	if width < 1 || height < 1 {
		panic("bitmatrix: dimensions must be greater than 0")
	}
	return &BitMatrix{width: width, height: height, bits: bitset.New(uint(width * height))}
}

// ParseBoolMatrix creates a BitMatrix from rows of booleans.
func ParseBoolMatrix(image [][]bool) *BitMatrix {
	bm := NewBitMatrixWithSize(len(image[0]), len(image))
	for y, row := range image {
		for x, v := range row {
			if v {
				bm.Set(x, y)
			}
		}
	}
	return bm
}

// ParseStringMatrix parses the output of StringWithChars. Rows are separated
// by newlines.
func ParseStringMatrix(repr, setStr, unsetStr string) *BitMatrix {
	var rows [][]bool
	for _, line := range strings.Split(repr, "\n") {
		if line == "" {
			continue
		}
		var row []bool
		for len(line) > 0 {
			switch {
			case strings.HasPrefix(line, setStr):
				row = append(row, true)
				line = line[len(setStr):]
			case strings.HasPrefix(line, unsetStr):
				row = append(row, false)
				line = line[len(unsetStr):]
			default:
				panic("bitmatrix: illegal character in representation")
			}
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			panic("bitmatrix: row lengths do not match")
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		panic("bitmatrix: empty representation")
	}
	return ParseBoolMatrix(rows)
}

func (bm *BitMatrix) index(x, y int) uint {
	return uint(y*bm.width + x)
}

// Get reports whether (x, y) is set.
func (bm *BitMatrix) Get(x, y int) bool {
	return bm.bits.Test(bm.index(x, y))
}

// Set sets (x, y).
func (bm *BitMatrix) Set(x, y int) {
	bm.bits.Set(bm.index(x, y))
}

// SetTo sets (x, y) to v.
func (bm *BitMatrix) SetTo(x, y int, v bool) {
	bm.bits.SetTo(bm.index(x, y), v)
}

// Unset clears (x, y).
func (bm *BitMatrix) Unset(x, y int) {
	bm.bits.Clear(bm.index(x, y))
}

// Flip inverts (x, y).
func (bm *BitMatrix) Flip(x, y int) {
	bm.bits.Flip(bm.index(x, y))
}

// Xor inverts every bit that is set in mask. Both matrices must have the
// same dimensions.
func (bm *BitMatrix) Xor(mask *BitMatrix) {
	if bm.width != mask.width || bm.height != mask.height {
		panic("bitmatrix: dimensions do not match")
	}
	bm.bits.InPlaceSymmetricDifference(mask.bits)
}

// Clear clears all bits.
func (bm *BitMatrix) Clear() {
	bm.bits.ClearAll()
}

// SetRegion sets the rectangle with its top-left corner at (left, top).
func (bm *BitMatrix) SetRegion(left, top, width, height int) {
	if top < 0 || left < 0 {
		panic("bitmatrix: left and top must be nonnegative")
	}
	if height < 1 || width < 1 {
		panic("bitmatrix: height and width must be at least 1")
	}
	right, bottom := left+width, top+height
	if bottom > bm.height || right > bm.width {
		panic("bitmatrix: region must fit inside the matrix")
	}
	for y := top; y < bottom; y++ {
		for x := left; x < right; x++ {
			bm.Set(x, y)
		}
	}
}

// Row copies row y into row, allocating when row is nil or too small.
func (bm *BitMatrix) Row(y int, row *BitArray) *BitArray {
	if row == nil || row.Size() < bm.width {
		row = NewBitArray(bm.width)
	} else {
		row.Clear()
	}
	for x := 0; x < bm.width; x++ {
		if bm.Get(x, y) {
			row.Set(x)
		}
	}
	return row
}

// Count returns the number of set bits.
func (bm *BitMatrix) Count() int {
	return int(bm.bits.Count())
}

// TopLeftOnBit returns the first set bit in row-major order.
func (bm *BitMatrix) TopLeftOnBit() (x, y int, ok bool) {
	i, ok := bm.bits.NextSet(0)
	if !ok {
		return 0, 0, false
	}
	return int(i) % bm.width, int(i) / bm.width, true
}

// BottomRightOnBit returns the last set bit in row-major order.
func (bm *BitMatrix) BottomRightOnBit() (x, y int, ok bool) {
	for i := bm.width*bm.height - 1; i >= 0; i-- {
		if bm.bits.Test(uint(i)) {
			return i % bm.width, i / bm.width, true
		}
	}
	return 0, 0, false
}

func (bm *BitMatrix) Width() int  { return bm.width }
func (bm *BitMatrix) Height() int { return bm.height }

// Clone returns a deep copy.
func (bm *BitMatrix) Clone() *BitMatrix {
	return &BitMatrix{width: bm.width, height: bm.height, bits: bm.bits.Clone()}
}

// Equals reports whether both matrices have the same dimensions and bits.
func (bm *BitMatrix) Equals(other *BitMatrix) bool {
	return bm.width == other.width && bm.height == other.height && bm.bits.Equal(other.bits)
}

// String renders set bits as "X " and clear bits as "  ".
func (bm *BitMatrix) String() string {
	return bm.StringWithChars("X ", "  ")
}

// StringWithChars renders the matrix one row per line.
func (bm *BitMatrix) StringWithChars(setString, unsetString string) string {
	var sb strings.Builder
	sb.Grow(bm.height * (bm.width*len(setString) + 1))
	for y := 0; y < bm.height; y++ {
		for x := 0; x < bm.width; x++ {
			if bm.Get(x, y) {
				sb.WriteString(setString)
			} else {
				sb.WriteString(unsetString)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
