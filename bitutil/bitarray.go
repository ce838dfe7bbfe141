// Package bitutil provides the bit containers shared by the encoder and the
// decoder: a growable bit array, a two-dimensional bit matrix and a reader
// over packed bytes.
package bitutil

import (
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// BitArray is an append-friendly sequence of bits. Bit 0 is the first bit
// appended.
type BitArray struct {
	bits *bitset.BitSet
	size int
}

// NewBitArray creates a BitArray of size cleared bits.
func NewBitArray(size int) *BitArray {
	if size < 0 {
		size = 0
	}
	return &BitArray{bits: bitset.New(uint(size)), size: size}
}

// Size returns the number of bits in the array.
func (ba *BitArray) Size() int {
	return ba.size
}

// SizeInBytes returns the number of bytes needed to hold the bits.
func (ba *BitArray) SizeInBytes() int {
	return (ba.size + 7) / 8
}

// Get reports whether bit i is set.
func (ba *BitArray) Get(i int) bool {
	return ba.bits.Test(uint(i))
}

// Set sets bit i.
func (ba *BitArray) Set(i int) {
	ba.bits.Set(uint(i))
}

// Flip inverts bit i.
func (ba *BitArray) Flip(i int) {
	ba.bits.Flip(uint(i))
}

// Clear clears all bits without changing the size.
func (ba *BitArray) Clear() {
	ba.bits.ClearAll()
}

// AppendBit appends one bit. The zero BitArray is ready for appending.
func (ba *BitArray) AppendBit(bit bool) {
	if ba.bits == nil {
		ba.bits = bitset.New(0)
	}
	ba.bits.SetTo(uint(ba.size), bit)
	ba.size++
}

// AppendBits appends the numBits least significant bits of value, most
// significant first.
func (ba *BitArray) AppendBits(value uint32, numBits int) {
	if numBits < 0 || numBits > 32 {
		panic("bitarray: numBits must be between 0 and 32")
	}
	for i := numBits - 1; i >= 0; i-- {
		ba.AppendBit(value&(1<<uint(i)) != 0)
	}
}

// AppendBitArray appends all bits of other.
func (ba *BitArray) AppendBitArray(other *BitArray) {
	for i := 0; i < other.size; i++ {
		ba.AppendBit(other.Get(i))
	}
}

// Bytes packs the bits into bytes, first bit in the most significant
// position. A trailing partial byte is zero-padded.
func (ba *BitArray) Bytes() []byte {
	out := make([]byte, ba.SizeInBytes())
	for i, e := ba.bits.NextSet(0); e && int(i) < ba.size; i, e = ba.bits.NextSet(i + 1) {
		out[i/8] |= 0x80 >> (i % 8)
	}
	return out
}

// Clone returns a deep copy.
func (ba *BitArray) Clone() *BitArray {
	return &BitArray{bits: ba.bits.Clone(), size: ba.size}
}

// String renders the bits as 'X' and '.' in groups of eight.
func (ba *BitArray) String() string {
	var sb strings.Builder
	sb.Grow(ba.size + ba.size/8 + 1)
	for i := 0; i < ba.size; i++ {
		if i&0x07 == 0 {
			sb.WriteByte(' ')
		}
		if ba.Get(i) {
			sb.WriteByte('X')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
